package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ds124wfegd/eventhub/internal/database/memory"
	"github.com/ds124wfegd/eventhub/internal/entity"
	"github.com/ds124wfegd/eventhub/internal/service"
	"github.com/ds124wfegd/eventhub/pkg/mail"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chanQueue is an in-process rabbitMQ.Queue.
type chanQueue struct {
	mu       sync.Mutex
	messages [][]byte
	handler  func([]byte) error
}

func (q *chanQueue) Publish(_ context.Context, message interface{}) error {
	body, err := json.Marshal(message)
	if err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.messages = append(q.messages, body)
	return nil
}

func (q *chanQueue) Consume(_ context.Context, handler func([]byte) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handler = handler
	return nil
}

func (q *chanQueue) Close() error { return nil }

// drain hands every queued message to the consumer and returns the
// handler errors.
func (q *chanQueue) drain() []error {
	q.mu.Lock()
	messages, handler := q.messages, q.handler
	q.messages = nil
	q.mu.Unlock()

	var errs []error
	for _, m := range messages {
		if err := handler(m); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

type recordingSender struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg mail.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func TestMailWorker_DeliversQueuedMail(t *testing.T) {
	queue := &chanQueue{}
	sender := &recordingSender{}
	w := NewMailWorker(queue, sender)
	require.NoError(t, w.Start(context.Background()))

	mailer := service.NewQueueMailer(queue)
	msg := mail.Message{To: "a@example.com", Subject: "Login OTP", Body: "Your OTP is: 123456"}
	require.NoError(t, mailer.Send(context.Background(), msg))

	assert.Empty(t, queue.drain())
	require.Len(t, sender.sent, 1)
	assert.Equal(t, msg, sender.sent[0])
}

func TestMailWorker_Handle(t *testing.T) {
	boom := errors.New("smtp down")

	tests := []struct {
		name      string
		body      string
		senderErr error
		wantErr   bool
		wantSent  int
	}{
		{"valid", `{"to":"a@example.com","subject":"s","body":"b"}`, nil, false, 1},
		{"malformed is dropped", `{not json`, nil, false, 0},
		{"send failure is retried", `{"to":"a@example.com","subject":"s","body":"b"}`, boom, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &recordingSender{err: tt.senderErr}
			w := NewMailWorker(&chanQueue{}, sender)

			err := w.Handle(context.Background(), []byte(tt.body))
			if tt.wantErr {
				assert.ErrorIs(t, err, boom)
			} else {
				assert.NoError(t, err)
			}
			assert.Len(t, sender.sent, tt.wantSent)
		})
	}
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestCleanupWorker_RunOnce(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewRepositories(memory.NewStore())
	clk := &clock{now: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)}
	issuer := service.NewTokenIssuer(repos, service.DefaultIssuerConfig(), clk.Now)

	user := &entity.User{Name: "u", Email: "u@example.com"}
	require.NoError(t, repos.Users.Create(ctx, user))

	_, err := issuer.IssueOtp(ctx, user.ID)
	require.NoError(t, err)
	token, err := issuer.IssueVerificationToken(ctx, user.ID)
	require.NoError(t, err)

	w := NewCleanupWorker(issuer, time.Minute, 10*time.Minute, time.Hour)

	// nothing has expired yet
	w.RunOnce(ctx)
	_, err = repos.Otps.GetLatest(ctx, user.ID)
	require.NoError(t, err)

	// an expired OTP stays around long enough to report expiry
	clk.Advance(3 * time.Minute)
	w.RunOnce(ctx)
	assert.ErrorIs(t, issuer.ConsumeOtp(ctx, user.ID, "000000"), entity.ErrOtpExpired)

	clk.Advance(10 * time.Minute)
	w.RunOnce(ctx)
	_, err = repos.Otps.GetLatest(ctx, user.ID)
	assert.ErrorIs(t, err, entity.ErrOtpNotFound)
	_, err = repos.Tokens.GetByToken(ctx, token.Token)
	require.NoError(t, err)

	// expired tokens survive the retention window
	clk.Advance(24*time.Hour + 30*time.Minute)
	w.RunOnce(ctx)
	_, err = repos.Tokens.GetByToken(ctx, token.Token)
	require.NoError(t, err)

	clk.Advance(time.Hour)
	w.RunOnce(ctx)
	_, err = repos.Tokens.GetByToken(ctx, token.Token)
	assert.ErrorIs(t, err, entity.ErrTokenNotFound)
}

func TestCleanupWorker_StopsOnCancel(t *testing.T) {
	repos := memory.NewRepositories(memory.NewStore())
	issuer := service.NewTokenIssuer(repos, service.DefaultIssuerConfig(), nil)
	w := NewCleanupWorker(issuer, 10*time.Millisecond, time.Hour, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup worker did not stop")
	}
}
