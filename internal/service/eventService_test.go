package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ds124wfegd/eventhub/internal/entity"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapCache struct {
	mu      sync.Mutex
	events  map[int64]*entity.Event
	deletes int
}

func newMapCache() *mapCache {
	return &mapCache{events: make(map[int64]*entity.Event)}
}

func (c *mapCache) GetEvent(_ context.Context, id int64) (*entity.Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.events[id], nil
}

func (c *mapCache) SetEvent(_ context.Context, e *entity.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events[e.ID] = e
	return nil
}

func (c *mapCache) DeleteEvent(_ context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.events, id)
	c.deletes++
	return nil
}

func date(y int, m time.Month, d int) *entity.Date {
	v := entity.NewDate(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
	return &v
}

func TestEventService_CreateDefaults(t *testing.T) {
	env := newTestEnv(t)

	event, err := env.services.Events.CreateEvent(env.ctx(), 7, &EventRequest{
		Name:  " Meetup ",
		Venue: "Hall",
		Date:  date(2030, 3, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, "Meetup", event.Name)
	assert.Equal(t, entity.DefaultEventTime, event.Time)
	assert.True(t, event.TicketPrice.IsZero())
	require.NotNil(t, event.MaxAttendees)
	assert.Equal(t, entity.DefaultMaxAttendees, *event.MaxAttendees)
	assert.Equal(t, entity.CategoryOther, event.Category)
	assert.Equal(t, entity.PrivacyPublic, event.Privacy)
	assert.Equal(t, entity.EventStatusCreated, event.Status)
	assert.Equal(t, int64(7), event.CreatorID)
}

func TestEventService_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	negative := decimal.NewFromInt(-1)
	zero := 0

	tests := []struct {
		name string
		req  EventRequest
	}{
		{"missing name", EventRequest{Venue: "Hall", Date: date(2030, 3, 1)}},
		{"missing venue", EventRequest{Name: "X", Date: date(2030, 3, 1)}},
		{"missing date", EventRequest{Name: "X", Venue: "Hall"}},
		{"bad time", EventRequest{Name: "X", Venue: "Hall", Date: date(2030, 3, 1), Time: "25:99"}},
		{"negative price", EventRequest{Name: "X", Venue: "Hall", Date: date(2030, 3, 1), TicketPrice: &negative}},
		{"zero capacity", EventRequest{Name: "X", Venue: "Hall", Date: date(2030, 3, 1), MaxAttendees: &zero}},
		{"unknown category", EventRequest{Name: "X", Venue: "Hall", Date: date(2030, 3, 1), Category: "PARTY"}},
		{"unknown privacy", EventRequest{Name: "X", Venue: "Hall", Date: date(2030, 3, 1), Privacy: "SECRET"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.services.Events.CreateEvent(env.ctx(), 1, &tt.req)
			assert.ErrorIs(t, err, entity.ErrInvalidInput)
		})
	}
}

func TestEventService_UpdateAndDeleteByCreatorOnly(t *testing.T) {
	env := newTestEnv(t)
	cache := newMapCache()
	events := NewEventService(env.repos, cache)

	event, err := events.CreateEvent(env.ctx(), 1, &EventRequest{Name: "Talk", Venue: "Room", Date: date(2030, 3, 1)})
	require.NoError(t, err)

	_, err = events.UpdateEvent(env.ctx(), event.ID, 2, &EventRequest{Name: "Hijack"})
	assert.ErrorIs(t, err, entity.ErrUnauthorizedUpdate)
	assert.ErrorIs(t, events.DeleteEvent(env.ctx(), event.ID, 2), entity.ErrUnauthorizedDelete)

	// warm the cache
	_, err = events.GetEvent(env.ctx(), event.ID)
	require.NoError(t, err)
	require.Contains(t, cache.events, event.ID)

	price := decimal.RequireFromString("12.50")
	updated, err := events.UpdateEvent(env.ctx(), event.ID, 1, &EventRequest{
		Time:        "9:30",
		TicketPrice: &price,
		Category:    "workshop",
	})
	require.NoError(t, err)
	assert.Equal(t, "Talk", updated.Name)
	assert.Equal(t, "09:30", updated.Time)
	assert.True(t, price.Equal(updated.TicketPrice))
	assert.Equal(t, entity.CategoryWorkshop, updated.Category)
	assert.NotContains(t, cache.events, event.ID)

	got, err := events.GetEvent(env.ctx(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, "09:30", got.Time)

	require.NoError(t, events.DeleteEvent(env.ctx(), event.ID, 1))
	assert.Equal(t, 2, cache.deletes)

	_, err = events.GetEvent(env.ctx(), event.ID)
	assert.ErrorIs(t, err, entity.ErrEventNotFound)
}

func TestEventService_Listing(t *testing.T) {
	env := newTestEnv(t)
	create := func(name string, d *entity.Date, category entity.EventCategory, privacy entity.PrivacySetting, creator int64) {
		_, err := env.services.Events.CreateEvent(env.ctx(), creator, &EventRequest{
			Name:        name,
			Description: name + " description",
			Venue:       "Venue",
			Date:        d,
			Category:    category,
			Privacy:     privacy,
		})
		require.NoError(t, err)
	}
	create("Go Workshop", date(2030, 4, 1), entity.CategoryWorkshop, "", 1)
	create("Jazz Night", date(2030, 3, 1), entity.CategoryConcert, "", 1)
	create("Secret Party", date(2030, 3, 15), entity.CategoryConcert, entity.PrivacyPrivate, 2)

	names := func(events []*entity.Event) []string {
		out := make([]string, 0, len(events))
		for _, e := range events {
			out = append(out, e.Name)
		}
		return out
	}

	public, err := env.services.Events.ListPublicEvents(env.ctx())
	require.NoError(t, err)
	assert.Equal(t, []string{"Jazz Night", "Go Workshop"}, names(public))

	found, err := env.services.Events.SearchEvents(env.ctx(), "jazz")
	require.NoError(t, err)
	assert.Equal(t, []string{"Jazz Night"}, names(found))

	_, err = env.services.Events.SearchEvents(env.ctx(), "  ")
	assert.ErrorIs(t, err, entity.ErrInvalidInput)

	concerts, err := env.services.Events.GetEventsByCategory(env.ctx(), "concert")
	require.NoError(t, err)
	assert.Equal(t, []string{"Jazz Night"}, names(concerts))

	_, err = env.services.Events.GetEventsByCategory(env.ctx(), "nope")
	assert.ErrorIs(t, err, entity.ErrInvalidInput)

	filtered, err := env.services.Events.FilterEvents(env.ctx(), &EventFilterRequest{StartDate: "2030-03-10", EndDate: "2030-12-31"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Go Workshop"}, names(filtered))

	_, err = env.services.Events.FilterEvents(env.ctx(), &EventFilterRequest{StartDate: "2030-05-01", EndDate: "2030-01-01"})
	assert.ErrorIs(t, err, entity.ErrInvalidInput)

	_, err = env.services.Events.FilterEvents(env.ctx(), &EventFilterRequest{StartDate: "01/05/2030"})
	assert.ErrorIs(t, err, entity.ErrInvalidInput)

	mine, err := env.services.Events.GetEventsByCreator(env.ctx(), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Secret Party"}, names(mine))
}

func TestEventService_GetEventBookings(t *testing.T) {
	env := newTestEnv(t)
	organizer := env.seedUser(t, "org@example.com")
	guest := env.seedUser(t, "guest@example.com")
	event := env.seedEvent(t, organizer.ID, 5)

	_, err := env.services.Bookings.BookEvent(env.ctx(), guest.ID, event.ID)
	require.NoError(t, err)

	bookings, err := env.services.Events.GetEventBookings(env.ctx(), event.ID, organizer.ID)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, guest.ID, bookings[0].UserID)

	_, err = env.services.Events.GetEventBookings(env.ctx(), event.ID, guest.ID)
	assert.ErrorIs(t, err, entity.ErrNotEventCreator)
}
