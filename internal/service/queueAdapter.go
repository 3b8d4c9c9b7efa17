package service

import (
	"context"
	"strconv"

	"github.com/ds124wfegd/eventhub/internal/entity"
	"github.com/ds124wfegd/eventhub/pkg/kafka"
	"github.com/ds124wfegd/eventhub/pkg/mail"
	"github.com/ds124wfegd/eventhub/pkg/rabbitMQ"

	"github.com/sirupsen/logrus"
)

// QueueMailer hands mail to RabbitMQ. worker.MailWorker delivers it.
type QueueMailer struct {
	queue rabbitMQ.Queue
}

func NewQueueMailer(q rabbitMQ.Queue) *QueueMailer {
	return &QueueMailer{queue: q}
}

func (m *QueueMailer) Send(ctx context.Context, msg mail.Message) error {
	return m.queue.Publish(ctx, msg)
}

// KafkaPublisher writes booking events keyed by booking id, so all events
// of one booking land in the same partition.
type KafkaPublisher struct {
	producer kafka.Producer
}

func NewKafkaPublisher(p kafka.Producer) *KafkaPublisher {
	return &KafkaPublisher{producer: p}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event *entity.BookingEvent) error {
	return p.producer.SendMessage(ctx, strconv.FormatInt(event.BookingID, 10), event)
}

// publishBooking is best effort: a broker outage must not undo a booking
// that is already committed.
func publishBooking(ctx context.Context, p BookingPublisher, event *entity.BookingEvent) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, event); err != nil {
		logrus.WithFields(logrus.Fields{
			"type":       event.Type,
			"booking_id": event.BookingID,
			"error":      err,
		}).Warn("Failed to publish booking event")
	}
}
