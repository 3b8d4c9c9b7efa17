package service

import (
	"context"
	"errors"
	"testing"

	"github.com/ds124wfegd/eventhub/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type keyedMessage struct {
	key     string
	message interface{}
}

type fakeProducer struct {
	sent []keyedMessage
	err  error
}

func (p *fakeProducer) SendMessage(_ context.Context, key string, message interface{}) error {
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, keyedMessage{key: key, message: message})
	return nil
}

func (p *fakeProducer) Close() error { return nil }

func TestKafkaPublisher_KeysByBooking(t *testing.T) {
	producer := &fakeProducer{}
	publisher := NewKafkaPublisher(producer)

	event := &entity.BookingEvent{Type: entity.BookingEventCreated, BookingID: 42}
	require.NoError(t, publisher.Publish(context.Background(), event))

	require.Len(t, producer.sent, 1)
	assert.Equal(t, "42", producer.sent[0].key)
	assert.Same(t, event, producer.sent[0].message)
}

func TestBookingService_PublishFailureKeepsBooking(t *testing.T) {
	env := newTestEnv(t)
	organizer := env.seedUser(t, "org@example.com")
	guest := env.seedUser(t, "guest@example.com")
	event := env.seedEvent(t, organizer.ID, 5)

	bookings := NewBookingService(env.repos, NewKafkaPublisher(&fakeProducer{err: errors.New("broker down")}), env.clock.Now)

	ticket, err := bookings.BookEvent(env.ctx(), guest.ID, event.ID)
	require.NoError(t, err)

	_, err = env.repos.Bookings.GetByID(env.ctx(), ticket.BookingID)
	assert.NoError(t, err)
}
