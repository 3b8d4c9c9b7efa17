package mail

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Message is a plain-text email.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Enabled  bool
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender delivers mail through an SMTP relay. When disabled or when no
// credentials are configured it only logs the message.
type SMTPSender struct {
	config  Config
	devMode bool
	send    sendFunc
}

func NewSMTPSender(cfg Config) *SMTPSender {
	return &SMTPSender{
		config:  cfg,
		devMode: !cfg.Enabled || cfg.Username == "" || cfg.Password == "",
		send:    smtp.SendMail,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("mail recipient is empty")
	}

	if s.devMode {
		logrus.WithFields(logrus.Fields{
			"to":      msg.To,
			"subject": msg.Subject,
		}).Info("SMTP disabled, mail logged instead of sent")
		return nil
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	if err := s.send(addr, auth, s.config.From, []string{msg.To}, s.build(msg)); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", msg.To, err)
	}
	return nil
}

func (s *SMTPSender) build(msg Message) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", s.config.From)
	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&buf, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	buf.WriteString(msg.Body)
	return buf.Bytes()
}
