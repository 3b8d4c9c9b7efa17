package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ds124wfegd/eventhub/internal/database"
	"github.com/ds124wfegd/eventhub/internal/database/memory"
	"github.com/ds124wfegd/eventhub/internal/entity"
	"github.com/ds124wfegd/eventhub/pkg/hash"
	"github.com/ds124wfegd/eventhub/pkg/jwt"
	"github.com/ds124wfegd/eventhub/pkg/mail"

	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (m *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

// last returns the newest mail to the address with the given subject.
func (m *fakeMailer) last(t *testing.T, to, subject string) mail.Message {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].To == to && m.sent[i].Subject == subject {
			return m.sent[i]
		}
	}
	t.Fatalf("no %q mail sent to %s", subject, to)
	return mail.Message{}
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []*entity.BookingEvent
}

func (p *fakePublisher) Publish(_ context.Context, e *entity.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type testEnv struct {
	store     *memory.Store
	repos     *database.Repositories
	clock     *testClock
	mailer    *fakeMailer
	publisher *fakePublisher
	services  *Services
	issuer    TokenIssuer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	env := &testEnv{
		store:     store,
		repos:     memory.NewRepositories(store),
		clock:     &testClock{now: time.Date(2030, 1, 10, 12, 0, 0, 0, time.UTC)},
		mailer:    &fakeMailer{},
		publisher: &fakePublisher{},
	}
	env.services, env.issuer = NewServices(Deps{
		Repos:       env.repos,
		Mailer:      env.mailer,
		Publisher:   env.publisher,
		Sessions:    jwt.NewManager("test-secret", time.Hour),
		Issuer:      DefaultIssuerConfig(),
		FrontendURL: "http://front.test",
		Now:         env.clock.Now,
	})
	return env
}

func (e *testEnv) ctx() context.Context { return context.Background() }

// seedUser stores a verified, logged out user directly.
func (e *testEnv) seedUser(t *testing.T, email string) *entity.User {
	t.Helper()
	pw, err := hash.HashPassword("secret123")
	require.NoError(t, err)
	u := &entity.User{
		Name:         strings.Split(email, "@")[0],
		Email:        email,
		PasswordHash: pw,
		Verified:     true,
		LoginStatus:  entity.LoginStatusLoggedOut,
	}
	require.NoError(t, e.repos.Users.Create(e.ctx(), u))
	return u
}

func (e *testEnv) seedEvent(t *testing.T, creatorID int64, maxAttendees int) *entity.Event {
	t.Helper()
	day := entity.NewDate(e.clock.Now().AddDate(0, 1, 0))
	event, err := e.services.Events.CreateEvent(e.ctx(), creatorID, &EventRequest{
		Name:         "GopherCon",
		Venue:        "Expo center",
		Date:         &day,
		MaxAttendees: &maxAttendees,
	})
	require.NoError(t, err)
	return event
}

func tokenFromMail(t *testing.T, msg mail.Message) string {
	t.Helper()
	_, token, ok := strings.Cut(msg.Body, "token=")
	require.True(t, ok, "mail has no token: %s", msg.Body)
	return token
}

func otpFromMail(t *testing.T, msg mail.Message) string {
	t.Helper()
	code, ok := strings.CutPrefix(msg.Body, "Your OTP is: ")
	require.True(t, ok, "mail has no otp: %s", msg.Body)
	return code
}

// registerVerified runs register and verify-email for email.
func (e *testEnv) registerVerified(t *testing.T, email string) *entity.User {
	t.Helper()
	user, err := e.services.Auth.Register(e.ctx(), &RegisterRequest{
		Name:     "Test User",
		Email:    email,
		Password: "secret123",
	})
	require.NoError(t, err)

	token := tokenFromMail(t, e.mailer.last(t, email, "Verify Your Email"))
	_, err = e.services.Auth.VerifyEmail(e.ctx(), token)
	require.NoError(t, err)
	return user
}

// login runs the password and OTP steps and returns the session.
func (e *testEnv) login(t *testing.T, email string) *Session {
	t.Helper()
	_, err := e.services.Auth.Login(e.ctx(), &LoginRequest{Email: email, Password: "secret123"})
	require.NoError(t, err)

	code := otpFromMail(t, e.mailer.last(t, email, "Login OTP"))
	session, err := e.services.Auth.VerifyOtp(e.ctx(), &VerifyOtpRequest{Email: email, Otp: code})
	require.NoError(t, err)
	return session
}
