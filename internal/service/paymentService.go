package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ds124wfegd/eventhub/internal/database"
	"github.com/ds124wfegd/eventhub/internal/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	mockOrderPrefix   = "order_mock_"
	mockCurrency      = "INR"
	mockPaymentMethod = "mock"
)

type PaymentOrderRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type PaymentVerifyRequest struct {
	OrderID   string `json:"order_id" binding:"required"`
	PaymentID string `json:"payment_id" binding:"required"`
	Signature string `json:"signature"`
	TicketID  int64  `json:"ticket_id" binding:"required"`
}

type PaymentVerifyResult struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Ticket  *entity.Ticket `json:"ticket,omitempty"`
	Order   *entity.Order  `json:"order,omitempty"`
}

type OrderRequest struct {
	TicketID      *int64          `json:"ticket_id"`
	PaymentID     string          `json:"payment_id" binding:"required"`
	PaymentMethod string          `json:"payment_method"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// paymentService is a stand-in for a gateway. Any order id it issued is
// accepted as paid.
type paymentService struct {
	bookings database.BookingRepository
	events   database.EventRepository
	orders   database.OrderRepository
	booking  BookingService
	now      func() time.Time
}

func NewPaymentService(repos *database.Repositories, booking BookingService, now func() time.Time) PaymentService {
	if now == nil {
		now = time.Now
	}
	return &paymentService{
		bookings: repos.Bookings,
		events:   repos.Events,
		orders:   repos.Orders,
		booking:  booking,
		now:      now,
	}
}

func (s *paymentService) CreatePaymentOrder(_ context.Context, req *PaymentOrderRequest) (*entity.PaymentOrder, error) {
	if req.Amount.IsNegative() {
		return nil, entity.NewInvalidInput("Amount must not be negative")
	}
	return &entity.PaymentOrder{
		OrderID:  fmt.Sprintf("%s%d", mockOrderPrefix, s.now().UnixMilli()),
		Amount:   req.Amount,
		Currency: mockCurrency,
		Status:   "created",
	}, nil
}

func (s *paymentService) VerifyPayment(ctx context.Context, userID int64, req *PaymentVerifyRequest) (*PaymentVerifyResult, error) {
	if !strings.HasPrefix(req.OrderID, mockOrderPrefix) {
		return &PaymentVerifyResult{Message: "Payment verification failed"}, nil
	}

	ticket, err := s.bookings.GetTicketByID(ctx, req.TicketID)
	if err != nil {
		return nil, err
	}
	booking, err := s.bookings.GetByID(ctx, ticket.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, entity.ErrNotTicketOwner
	}
	event, err := s.events.GetByID(ctx, booking.EventID)
	if err != nil {
		return nil, err
	}

	ticket, err = s.booking.ConfirmTicket(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}

	order, replayed, err := s.recordTicketOrder(ctx, userID, ticket.ID, req.PaymentID, event)
	if err != nil {
		return nil, err
	}

	log := logrus.WithFields(logrus.Fields{
		"order_id":  req.OrderID,
		"ticket_id": ticket.ID,
		"user_id":   userID,
	})
	if replayed {
		log.Info("Mock payment already verified")
		return &PaymentVerifyResult{
			Success: true,
			Message: "Payment already verified",
			Ticket:  ticket,
			Order:   order,
		}, nil
	}
	log.Info("Mock payment verified")

	return &PaymentVerifyResult{
		Success: true,
		Message: "Payment verified and ticket confirmed",
		Ticket:  ticket,
		Order:   order,
	}, nil
}

// recordTicketOrder stores the order for a paid ticket. A ticket that
// already has one gets that order back with replayed set.
func (s *paymentService) recordTicketOrder(ctx context.Context, userID, ticketID int64, paymentID string, event *entity.Event) (*entity.Order, bool, error) {
	existing, err := s.orders.GetByTicketID(ctx, ticketID)
	if err == nil {
		return existing, true, nil
	}
	if !errors.Is(err, entity.ErrNotFound) {
		return nil, false, err
	}

	order := &entity.Order{
		UUID:          uuid.NewString(),
		UserID:        userID,
		TicketID:      &ticketID,
		PaymentID:     paymentID,
		PaymentMethod: mockPaymentMethod,
		TotalAmount:   event.TicketPrice,
		Status:        entity.OrderStatusConfirmed,
		CreatedAt:     s.now(),
	}
	err = s.orders.Create(ctx, order)
	if errors.Is(err, entity.ErrOrderExists) {
		// a concurrent verify of the same ticket got there first
		existing, err := s.orders.GetByTicketID(ctx, ticketID)
		if err != nil {
			return nil, false, err
		}
		return existing, true, nil
	}
	if err != nil {
		return nil, false, err
	}
	return order, false, nil
}

func (s *paymentService) CreateOrder(ctx context.Context, userID int64, req *OrderRequest) (*entity.Order, error) {
	if req.TotalAmount.IsNegative() {
		return nil, entity.NewInvalidInput("Total amount must not be negative")
	}
	method := strings.TrimSpace(req.PaymentMethod)
	if method == "" {
		method = mockPaymentMethod
	}

	order := &entity.Order{
		UUID:          uuid.NewString(),
		UserID:        userID,
		TicketID:      req.TicketID,
		PaymentID:     req.PaymentID,
		PaymentMethod: method,
		TotalAmount:   req.TotalAmount,
		Status:        entity.OrderStatusConfirmed,
		CreatedAt:     s.now(),
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *paymentService) ListOrders(ctx context.Context, userID int64) ([]*entity.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

func (s *paymentService) GetOrder(ctx context.Context, orderID, userID int64) (*entity.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, entity.ErrNotOrderOwner
	}
	return order, nil
}
