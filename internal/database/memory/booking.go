package memory

import (
	"context"
	"sort"
	"time"

	"github.com/ds124wfegd/eventhub/internal/entity"
)

type bookingRepository struct{ s *Store }

// countCompleted must be called with mu held.
func (r *bookingRepository) countCompleted(eventID int64) int {
	n := 0
	for _, b := range r.s.bookings {
		if b.EventID == eventID && b.PaymentStatus == entity.PaymentStatusCompleted {
			n++
		}
	}
	return n
}

func (r *bookingRepository) Reserve(_ context.Context, booking *entity.Booking, ticket *entity.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	event, ok := r.s.events[booking.EventID]
	if !ok {
		return entity.ErrEventNotFound
	}
	if event.MaxAttendees != nil && r.countCompleted(event.ID) >= *event.MaxAttendees {
		return entity.ErrEventFullyBooked
	}
	for _, b := range r.s.bookings {
		if b.EventID == booking.EventID && b.UserID == booking.UserID {
			return entity.ErrAlreadyBooked
		}
	}

	if booking.BookingTime.IsZero() {
		booking.BookingTime = time.Now()
	}
	booking.ID = r.s.id()
	booking.PaymentStatus = entity.PaymentStatusPending
	b := *booking
	r.s.bookings[b.ID] = &b

	ticket.ID = r.s.id()
	ticket.BookingID = booking.ID
	ticket.Status = entity.TicketStatusBooked
	t := *ticket
	r.s.tickets[t.ID] = &t
	return nil
}

func (r *bookingRepository) Confirm(_ context.Context, ticketID int64) (*entity.Ticket, *entity.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ticket, ok := r.s.tickets[ticketID]
	if !ok {
		return nil, nil, entity.ErrTicketNotFound
	}
	booking, ok := r.s.bookings[ticket.BookingID]
	if !ok {
		return nil, nil, entity.ErrBookingNotFound
	}

	if booking.PaymentStatus != entity.PaymentStatusCompleted {
		event, ok := r.s.events[booking.EventID]
		if !ok {
			return nil, nil, entity.ErrEventNotFound
		}
		if event.MaxAttendees != nil && r.countCompleted(event.ID) >= *event.MaxAttendees {
			return nil, nil, entity.ErrEventFullyBooked
		}
		booking.PaymentStatus = entity.PaymentStatusCompleted
	}
	ticket.Status = entity.TicketStatusActive

	t, b := *ticket, *booking
	return &t, &b, nil
}

func (r *bookingRepository) GetByID(_ context.Context, id int64) (*entity.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.bookings[id]
	if !ok {
		return nil, entity.ErrBookingNotFound
	}
	c := *b
	return &c, nil
}

func (r *bookingRepository) list(match func(*entity.Booking) bool) []*entity.Booking {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var bookings []*entity.Booking
	for _, b := range r.s.bookings {
		if match(b) {
			c := *b
			bookings = append(bookings, &c)
		}
	}
	sort.Slice(bookings, func(i, j int) bool {
		if bookings[i].BookingTime.Equal(bookings[j].BookingTime) {
			return bookings[i].ID > bookings[j].ID
		}
		return bookings[i].BookingTime.After(bookings[j].BookingTime)
	})
	return bookings
}

func (r *bookingRepository) GetByUserID(_ context.Context, userID int64) ([]*entity.Booking, error) {
	return r.list(func(b *entity.Booking) bool { return b.UserID == userID }), nil
}

func (r *bookingRepository) GetByEventID(_ context.Context, eventID int64) ([]*entity.Booking, error) {
	return r.list(func(b *entity.Booking) bool { return b.EventID == eventID }), nil
}

func (r *bookingRepository) CountByEventAndStatus(_ context.Context, eventID int64, status entity.PaymentStatus) (int, error) {
	return len(r.list(func(b *entity.Booking) bool {
		return b.EventID == eventID && b.PaymentStatus == status
	})), nil
}

func (r *bookingRepository) GetTicketByID(_ context.Context, id int64) (*entity.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tickets[id]
	if !ok {
		return nil, entity.ErrTicketNotFound
	}
	c := *t
	return &c, nil
}

func (r *bookingRepository) GetTicketByBookingID(_ context.Context, bookingID int64) (*entity.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, t := range r.s.tickets {
		if t.BookingID == bookingID {
			c := *t
			return &c, nil
		}
	}
	return nil, entity.ErrTicketNotFound
}

// DropTicket removes the ticket of a booking, leaving the booking behind.
// Only useful to reproduce partially written data in tests.
func (s *Store) DropTicket(bookingID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, t := range s.tickets {
		if t.BookingID == bookingID {
			delete(s.tickets, id)
		}
	}
}
