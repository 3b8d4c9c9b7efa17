package memory

import (
	"context"
	"sort"
	"time"

	"github.com/ds124wfegd/eventhub/internal/entity"
)

type eventRepository struct{ s *Store }

func copyEvent(e *entity.Event) *entity.Event {
	c := *e
	if e.MaxAttendees != nil {
		n := *e.MaxAttendees
		c.MaxAttendees = &n
	}
	return &c
}

func (r *eventRepository) Create(_ context.Context, event *entity.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now()
	event.ID = r.s.id()
	event.CreatedAt = now
	event.UpdatedAt = now
	r.s.events[event.ID] = copyEvent(event)
	return nil
}

func (r *eventRepository) GetByID(_ context.Context, id int64) (*entity.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.events[id]
	if !ok {
		return nil, entity.ErrEventNotFound
	}
	return copyEvent(e), nil
}

func (r *eventRepository) Update(_ context.Context, event *entity.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.events[event.ID]
	if !ok {
		return entity.ErrEventNotFound
	}
	event.CreatedAt = stored.CreatedAt
	event.UpdatedAt = time.Now()
	r.s.events[event.ID] = copyEvent(event)
	return nil
}

// Delete cascades to bookings and tickets like the foreign keys do.
func (r *eventRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.events[id]; !ok {
		return entity.ErrEventNotFound
	}
	delete(r.s.events, id)
	for bid, b := range r.s.bookings {
		if b.EventID != id {
			continue
		}
		delete(r.s.bookings, bid)
		for tid, t := range r.s.tickets {
			if t.BookingID == bid {
				delete(r.s.tickets, tid)
			}
		}
	}
	return nil
}

func (r *eventRepository) List(_ context.Context, filter entity.EventFilter) ([]*entity.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var events []*entity.Event
	for _, e := range r.s.events {
		if filter.Matches(e) {
			events = append(events, copyEvent(e))
		}
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].Date.Equal(events[j].Date.Time) {
			return events[i].ID < events[j].ID
		}
		return events[i].Date.Before(events[j].Date.Time)
	})
	return events, nil
}
