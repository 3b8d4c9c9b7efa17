package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

type TicketStatus string

const (
	TicketStatusBooked    TicketStatus = "BOOKED"
	TicketStatusActive    TicketStatus = "ACTIVE"
	TicketStatusCancelled TicketStatus = "CANCELLED"
)

// Booking is created PENDING and only moves to COMPLETED through ticket
// confirmation.
type Booking struct {
	ID            int64         `json:"id" db:"id"`
	UserID        int64         `json:"user_id" db:"user_id"`
	EventID       int64         `json:"event_id" db:"event_id"`
	PaymentStatus PaymentStatus `json:"payment_status" db:"payment_status"`
	BookingTime   time.Time     `json:"booking_time" db:"booking_time"`
}

// Ticket belongs to exactly one booking.
type Ticket struct {
	ID        int64        `json:"id" db:"id"`
	BookingID int64        `json:"booking_id" db:"booking_id"`
	Status    TicketStatus `json:"status" db:"status"`
}

// TicketView is what a ticket holder sees.
type TicketView struct {
	TicketID      int64           `json:"ticket_id"`
	TicketStatus  TicketStatus    `json:"ticket_status"`
	BookingID     int64           `json:"booking_id"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	BookingTime   time.Time       `json:"booking_time"`
	UserID        int64           `json:"user_id"`
	EventID       int64           `json:"event_id"`
	EventName     string          `json:"event_name"`
	Venue         string          `json:"venue"`
	EventDate     Date            `json:"event_date"`
	EventTime     string          `json:"event_time"`
	TicketPrice   decimal.Decimal `json:"ticket_price"`
}

func NewTicketView(t *Ticket, b *Booking, e *Event) *TicketView {
	v := &TicketView{
		TicketID:      t.ID,
		TicketStatus:  t.Status,
		BookingID:     b.ID,
		PaymentStatus: b.PaymentStatus,
		BookingTime:   b.BookingTime,
		UserID:        b.UserID,
		EventID:       b.EventID,
	}
	if e != nil {
		v.EventName = e.Name
		v.Venue = e.Venue
		v.EventDate = e.Date
		v.EventTime = e.Time
		v.TicketPrice = e.TicketPrice
	}
	return v
}

// BookingEvent is published on every booking state change.
type BookingEvent struct {
	Type      string        `json:"type"`
	BookingID int64         `json:"booking_id"`
	TicketID  int64         `json:"ticket_id"`
	UserID    int64         `json:"user_id"`
	EventID   int64         `json:"event_id"`
	Status    PaymentStatus `json:"status"`
	At        time.Time     `json:"at"`
}

const (
	BookingEventCreated   = "booking.created"
	BookingEventConfirmed = "booking.confirmed"
)
