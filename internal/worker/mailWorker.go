package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ds124wfegd/eventhub/pkg/mail"
	"github.com/ds124wfegd/eventhub/pkg/rabbitMQ"

	"github.com/sirupsen/logrus"
)

type Sender interface {
	Send(ctx context.Context, msg mail.Message) error
}

// MailWorker drains the mail queue into the SMTP sender. A failed delivery
// is returned to the queue, which retries it a bounded number of times.
type MailWorker struct {
	queue  rabbitMQ.Queue
	sender Sender
}

func NewMailWorker(queue rabbitMQ.Queue, sender Sender) *MailWorker {
	return &MailWorker{
		queue:  queue,
		sender: sender,
	}
}

func (w *MailWorker) Start(ctx context.Context) error {
	if err := w.queue.Consume(ctx, func(body []byte) error {
		return w.Handle(ctx, body)
	}); err != nil {
		return err
	}
	logrus.Info("Mail worker started")
	return nil
}

func (w *MailWorker) Handle(ctx context.Context, body []byte) error {
	var msg mail.Message
	if err := json.Unmarshal(body, &msg); err != nil {
		// a malformed message never becomes valid, so it is not retried
		logrus.WithField("error", err).Error("Dropping malformed mail message")
		return nil
	}

	if err := w.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("mail to %s: %w", msg.To, err)
	}

	logrus.WithFields(logrus.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
	}).Info("Mail delivered")
	return nil
}
