package service

import (
	"context"
	"sort"
	"time"

	"github.com/ds124wfegd/eventhub/internal/database"
	"github.com/ds124wfegd/eventhub/internal/entity"

	"github.com/shopspring/decimal"
)

const (
	recentEventsLimit   = 5
	recentBookingsLimit = 10
)

type dashboardService struct {
	events   database.EventRepository
	bookings database.BookingRepository
	now      func() time.Time
}

func NewDashboardService(repos *database.Repositories, now func() time.Time) DashboardService {
	if now == nil {
		now = time.Now
	}
	return &dashboardService{
		events:   repos.Events,
		bookings: repos.Bookings,
		now:      now,
	}
}

func revenue(price decimal.Decimal, completed int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(completed)))
}

func (s *dashboardService) GetOrganizerDashboard(ctx context.Context, userID int64) (*entity.OrganizerDashboard, error) {
	events, err := s.events.List(ctx, entity.EventFilter{CreatorID: userID})
	if err != nil {
		return nil, err
	}

	today := entity.NewDate(s.now())
	dash := &entity.OrganizerDashboard{
		TotalEvents:  len(events),
		TotalRevenue: decimal.Zero,
	}
	for _, e := range events {
		if !e.Date.Before(today.Time) {
			dash.UpcomingEvents++
		}

		bookings, err := s.bookings.GetByEventID(ctx, e.ID)
		if err != nil {
			return nil, err
		}
		dash.TotalBookings += len(bookings)
		dash.TotalRevenue = dash.TotalRevenue.Add(revenue(e.TicketPrice, countCompleted(bookings)))
	}

	recent := make([]*entity.Event, len(events))
	copy(recent, events)
	sort.SliceStable(recent, func(i, j int) bool {
		if recent[i].CreatedAt.Equal(recent[j].CreatedAt) {
			return recent[i].ID > recent[j].ID
		}
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > recentEventsLimit {
		recent = recent[:recentEventsLimit]
	}
	dash.RecentEvents = recent

	return dash, nil
}

func (s *dashboardService) GetEventDashboard(ctx context.Context, eventID, userID int64) (*entity.EventDashboard, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.CreatorID != userID {
		return nil, entity.ErrNotEventCreator
	}

	// newest first
	bookings, err := s.bookings.GetByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	dash := &entity.EventDashboard{
		Event:         event,
		TotalBookings: len(bookings),
	}
	for _, b := range bookings {
		switch b.PaymentStatus {
		case entity.PaymentStatusCompleted:
			dash.ConfirmedBookings++
		case entity.PaymentStatusPending:
			dash.PendingBookings++
		}
	}
	dash.Revenue = revenue(event.TicketPrice, dash.ConfirmedBookings)

	if len(bookings) > recentBookingsLimit {
		bookings = bookings[:recentBookingsLimit]
	}
	dash.RecentBookings = bookings
	return dash, nil
}

func countCompleted(bookings []*entity.Booking) int {
	n := 0
	for _, b := range bookings {
		if b.PaymentStatus == entity.PaymentStatusCompleted {
			n++
		}
	}
	return n
}
