package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ds124wfegd/eventhub/internal/entity"

	"github.com/go-redis/redismock/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent() *entity.Event {
	limit := 50
	return &entity.Event{
		ID:           7,
		Name:         "Go Meetup",
		Venue:        "Hall A",
		Date:         entity.NewDate(time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC)),
		Time:         "18:00",
		TicketPrice:  decimal.RequireFromString("12.50"),
		MaxAttendees: &limit,
		Category:     entity.CategoryMeetup,
		Privacy:      entity.PrivacyPublic,
		Status:       entity.EventStatusCreated,
		CreatorID:    3,
	}
}

func TestEventCache_SetEvent(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cache := NewEventCache(client, time.Minute)

	event := testEvent()
	data, err := json.Marshal(event)
	require.NoError(t, err)

	mock.ExpectSet("event:7", data, time.Minute).SetVal("OK")

	require.NoError(t, cache.SetEvent(context.Background(), event))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventCache_GetEvent(t *testing.T) {
	event := testEvent()
	data, err := json.Marshal(event)
	require.NoError(t, err)

	t.Run("hit", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		cache := NewEventCache(client, time.Minute)
		mock.ExpectGet("event:7").SetVal(string(data))

		got, err := cache.GetEvent(context.Background(), 7)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, event.Name, got.Name)
		assert.Equal(t, event.Date.Format(entity.DateLayout), got.Date.Format(entity.DateLayout))
		assert.True(t, event.TicketPrice.Equal(got.TicketPrice))
		require.NotNil(t, got.MaxAttendees)
		assert.Equal(t, 50, *got.MaxAttendees)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("miss", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		cache := NewEventCache(client, time.Minute)
		mock.ExpectGet("event:7").RedisNil()

		got, err := cache.GetEvent(context.Background(), 7)
		assert.NoError(t, err)
		assert.Nil(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("redis error", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		cache := NewEventCache(client, time.Minute)
		mock.ExpectGet("event:7").SetErr(errors.New("connection reset"))

		_, err := cache.GetEvent(context.Background(), 7)
		assert.Error(t, err)
	})
}

func TestEventCache_DeleteEvent(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cache := NewEventCache(client, time.Minute)
	mock.ExpectDel("event:7").SetVal(1)

	require.NoError(t, cache.DeleteEvent(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}
