package rabbitMQ

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const (
	attemptHeader = "x-attempt"
	deadSuffix    = ".dead"
)

// Queue is a durable work queue with bounded redelivery.
type Queue interface {
	Publish(ctx context.Context, message interface{}) error
	Consume(ctx context.Context, handler func(message []byte) error) error
	Close() error
}

type RabbitMQConfig struct {
	URL        string
	QueueName  string
	RetryCount int
}

// RabbitMQ publishes JSON messages to one queue. Messages that still fail
// after RetryCount redeliveries are dead-lettered to "<queue>.dead", where
// they stay for manual inspection.
type RabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	config  RabbitMQConfig
}

func NewRabbitMQ(config RabbitMQConfig) (*RabbitMQ, error) {
	conn, err := amqp.Dial(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	r := &RabbitMQ{conn: conn, channel: channel, config: config}
	if err := r.declare(); err != nil {
		r.Close()
		return nil, err
	}

	logrus.WithField("queue", config.QueueName).Info("Connected to RabbitMQ")
	return r, nil
}

// declare creates the work queue and its dead-letter queue.
func (r *RabbitMQ) declare() error {
	dead := r.config.QueueName + deadSuffix
	if _, err := r.channel.QueueDeclare(dead, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", dead, err)
	}

	_, err := r.channel.QueueDeclare(r.config.QueueName, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": dead,
	})
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", r.config.QueueName, err)
	}
	return nil
}

func (r *RabbitMQ) Publish(ctx context.Context, message interface{}) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return r.send(ctx, uuid.NewString(), body, 0)
}

func (r *RabbitMQ) send(ctx context.Context, id string, body []byte, attempt int) error {
	err := r.channel.PublishWithContext(ctx, "", r.config.QueueName, false, false, amqp.Publishing{
		MessageId:    id,
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Headers:      amqp.Table{attemptHeader: int32(attempt)},
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish message %s: %w", id, err)
	}
	return nil
}

// Consume delivers messages one at a time to handler until ctx is done.
func (r *RabbitMQ) Consume(ctx context.Context, handler func(message []byte) error) error {
	if err := r.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	deliveries, err := r.channel.Consume(r.config.QueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume %s: %w", r.config.QueueName, err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					logrus.WithField("queue", r.config.QueueName).Warn("Delivery channel closed")
					return
				}
				r.settle(ctx, d, handler(d.Body))
			}
		}
	}()
	return nil
}

func attemptOf(h amqp.Table) int {
	switch v := h[attemptHeader].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	}
	return 0
}

// settle acks a handled delivery. A failed one is republished with the
// next attempt number, or dead-lettered once RetryCount is used up.
func (r *RabbitMQ) settle(ctx context.Context, d amqp.Delivery, handleErr error) {
	if handleErr == nil {
		d.Ack(false)
		return
	}

	attempt := attemptOf(d.Headers) + 1
	log := logrus.WithFields(logrus.Fields{
		"queue":      r.config.QueueName,
		"message_id": d.MessageId,
		"attempt":    attempt,
		"error":      handleErr,
	})

	if attempt > r.config.RetryCount {
		log.Error("Retries exhausted, dead-lettering message")
		d.Nack(false, false)
		return
	}
	if err := r.send(ctx, d.MessageId, d.Body, attempt); err != nil {
		log.WithField("publish_error", err).Warn("Redelivery failed, requeueing")
		d.Nack(false, true)
		return
	}
	log.Warn("Message failed, redelivery scheduled")
	d.Ack(false)
}

func (r *RabbitMQ) Close() error {
	var errs []error
	if r.channel != nil {
		errs = append(errs, r.channel.Close())
	}
	if r.conn != nil {
		errs = append(errs, r.conn.Close())
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("failed to close RabbitMQ: %w", err)
	}
	return nil
}
