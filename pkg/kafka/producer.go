package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type Producer interface {
	SendMessage(ctx context.Context, key string, message interface{}) error
	Close() error
}

type kafkaProducer struct {
	writer *kafka.Writer
}

// NewProducer dials the broker and makes sure topic exists. When the broker
// is unreachable a logging producer is returned instead.
func NewProducer(brokers, topic string) Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	log := logrus.WithFields(logrus.Fields{"brokers": brokers, "topic": topic})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := kafka.DialContext(ctx, "tcp", brokers)
	if err != nil {
		log.WithError(err).Warn("Kafka connection failed, using logging producer")
		return NewLogProducer(topic)
	}
	defer conn.Close()

	err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if err != nil {
		log.WithError(err).Info("Could not create topic (might already exist)")
	}

	log.Info("Connected to Kafka")
	return &kafkaProducer{writer: writer}
}

func (p *kafkaProducer) SendMessage(ctx context.Context, key string, message interface{}) error {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: messageBytes,
		Time:  time.Now(),
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return err
	}
	return nil
}

func (p *kafkaProducer) Close() error {
	return p.writer.Close()
}

type logProducer struct {
	topic string
}

// NewLogProducer writes messages to the log instead of a broker.
func NewLogProducer(topic string) Producer {
	return &logProducer{topic: topic}
}

func (m *logProducer) SendMessage(_ context.Context, key string, message interface{}) error {
	logrus.WithFields(logrus.Fields{
		"topic":   m.topic,
		"key":     key,
		"message": message,
	}).Debug("Kafka disabled, message not sent")
	return nil
}

func (m *logProducer) Close() error {
	return nil
}
