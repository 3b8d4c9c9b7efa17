package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ds124wfegd/eventhub/internal/database"
	"github.com/ds124wfegd/eventhub/internal/entity"
	"github.com/ds124wfegd/eventhub/pkg/metrics"
	"github.com/ds124wfegd/eventhub/pkg/qrcode"

	"github.com/sirupsen/logrus"
)

const qrCodeSize = 256

type bookingService struct {
	users     database.UserRepository
	events    database.EventRepository
	bookings  database.BookingRepository
	publisher BookingPublisher
	now       func() time.Time
}

// NewBookingService builds the booking engine. publisher may be nil.
func NewBookingService(repos *database.Repositories, publisher BookingPublisher, now func() time.Time) BookingService {
	if now == nil {
		now = time.Now
	}
	return &bookingService{
		users:     repos.Users,
		events:    repos.Events,
		bookings:  repos.Bookings,
		publisher: publisher,
		now:       now,
	}
}

func bookingResult(err error) string {
	switch {
	case err == nil:
		return "reserved"
	case errors.Is(err, entity.ErrCapacity):
		return "full"
	case errors.Is(err, entity.ErrConflict):
		return "duplicate"
	case errors.Is(err, entity.ErrNotFound):
		return "not_found"
	}
	return "error"
}

// BookEvent reserves a place for the user. Capacity and duplicate checks
// happen inside the repository under the event lock.
func (s *bookingService) BookEvent(ctx context.Context, userID, eventID int64) (*entity.Ticket, error) {
	if _, err := s.users.GetVerifiedByID(ctx, userID); err != nil {
		metrics.RecordBooking(bookingResult(err))
		return nil, err
	}
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		metrics.RecordBooking(bookingResult(err))
		return nil, err
	}

	booking := &entity.Booking{
		UserID:        userID,
		EventID:       eventID,
		PaymentStatus: entity.PaymentStatusPending,
		BookingTime:   s.now(),
	}
	ticket := &entity.Ticket{Status: entity.TicketStatusBooked}

	err := s.bookings.Reserve(ctx, booking, ticket)
	metrics.RecordBooking(bookingResult(err))
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"ticket_id":  ticket.ID,
		"event_id":   eventID,
		"user_id":    userID,
	}).Info("Booking created")

	publishBooking(ctx, s.publisher, &entity.BookingEvent{
		Type:      entity.BookingEventCreated,
		BookingID: booking.ID,
		TicketID:  ticket.ID,
		UserID:    userID,
		EventID:   eventID,
		Status:    booking.PaymentStatus,
		At:        booking.BookingTime,
	})
	return ticket, nil
}

func (s *bookingService) ConfirmTicket(ctx context.Context, ticketID int64) (*entity.Ticket, error) {
	ticket, booking, err := s.bookings.Confirm(ctx, ticketID)
	if err != nil {
		if errors.Is(err, entity.ErrCapacity) {
			metrics.RecordBooking("confirm_full")
		}
		return nil, err
	}

	metrics.RecordBooking("confirmed")
	logrus.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"ticket_id":  ticket.ID,
	}).Info("Ticket confirmed")

	publishBooking(ctx, s.publisher, &entity.BookingEvent{
		Type:      entity.BookingEventConfirmed,
		BookingID: booking.ID,
		TicketID:  ticket.ID,
		UserID:    booking.UserID,
		EventID:   booking.EventID,
		Status:    booking.PaymentStatus,
		At:        s.now(),
	})
	return ticket, nil
}

func (s *bookingService) ConfirmTicketAsOrganizer(ctx context.Context, ticketID, organizerID int64) (*entity.Ticket, error) {
	ticket, err := s.bookings.GetTicketByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	booking, err := s.bookings.GetByID(ctx, ticket.BookingID)
	if err != nil {
		return nil, err
	}
	event, err := s.events.GetByID(ctx, booking.EventID)
	if err != nil {
		return nil, err
	}
	if event.CreatorID != organizerID {
		return nil, entity.ErrNotEventOrganizer
	}
	return s.ConfirmTicket(ctx, ticketID)
}

// GetUserTickets skips bookings whose ticket cannot be loaded.
func (s *bookingService) GetUserTickets(ctx context.Context, userID int64) ([]*entity.TicketView, error) {
	bookings, err := s.bookings.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]*entity.TicketView, 0, len(bookings))
	for _, b := range bookings {
		ticket, err := s.bookings.GetTicketByBookingID(ctx, b.ID)
		if err != nil {
			continue
		}
		event, err := s.events.GetByID(ctx, b.EventID)
		if err != nil {
			event = nil
		}
		views = append(views, entity.NewTicketView(ticket, b, event))
	}
	return views, nil
}

func (s *bookingService) GetTicket(ctx context.Context, ticketID, userID int64) (*entity.TicketView, error) {
	ticket, err := s.bookings.GetTicketByID(ctx, ticketID)
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
	return entity.NewTicketView(ticket, booking, event), nil
}

func (s *bookingService) TicketQRCode(ctx context.Context, ticketID, userID int64) ([]byte, error) {
	view, err := s.GetTicket(ctx, ticketID, userID)
	if err != nil {
		return nil, err
	}
	return qrcode.PNG(TicketQRContent(view.TicketID, view.BookingID), qrCodeSize)
}

// TicketQRContent is the payload scanned at the venue entrance.
func TicketQRContent(ticketID, bookingID int64) string {
	return fmt.Sprintf("ticket:%d:booking:%d", ticketID, bookingID)
}
