package memory

import (
	"context"
	"time"

	"github.com/ds124wfegd/eventhub/internal/entity"
)

type tokenRepository struct{ s *Store }

func (r *tokenRepository) Save(_ context.Context, token *entity.EmailVerificationToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	token.Used = false
	if prev, ok := r.s.tokens[token.UserID]; ok {
		token.ID = prev.ID
	} else {
		token.ID = r.s.id()
	}
	c := *token
	r.s.tokens[token.UserID] = &c
	return nil
}

func (r *tokenRepository) GetByToken(_ context.Context, token string) (*entity.EmailVerificationToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, t := range r.s.tokens {
		if t.Token == token {
			c := *t
			return &c, nil
		}
	}
	return nil, entity.ErrTokenNotFound
}

func (r *tokenRepository) MarkVerified(_ context.Context, token string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, t := range r.s.tokens {
		if t.Token != token {
			continue
		}
		if t.Used {
			return false, nil
		}
		user, ok := r.s.users[t.UserID]
		if !ok {
			return false, entity.ErrUserNotFound
		}
		t.Used = true
		user.Verified = true
		user.LoginStatus = entity.LoginStatusLoggedOut
		user.UpdatedAt = time.Now()
		return true, nil
	}
	return false, nil
}

func (r *tokenRepository) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for userID, t := range r.s.tokens {
		if t.ExpiresAt.Before(before) {
			delete(r.s.tokens, userID)
			n++
		}
	}
	return n, nil
}

type otpRepository struct{ s *Store }

func (r *otpRepository) Replace(_ context.Context, otp *entity.OtpVerification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	otp.ID = r.s.id()
	c := *otp
	r.s.otps[otp.UserID] = &c
	return nil
}

func (r *otpRepository) GetLatest(_ context.Context, userID int64) (*entity.OtpVerification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	otp, ok := r.s.otps[userID]
	if !ok {
		return nil, entity.ErrOtpNotFound
	}
	c := *otp
	return &c, nil
}

func (r *otpRepository) Rotate(_ context.Context, otp *entity.OtpVerification, issuedBefore time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.otps[otp.UserID]
	if !ok || current.GeneratedAt.After(issuedBefore) {
		return false, nil
	}
	otp.ID = r.s.id()
	c := *otp
	r.s.otps[otp.UserID] = &c
	return true, nil
}

func (r *otpRepository) Consume(_ context.Context, otp *entity.OtpVerification) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.otps[otp.UserID]
	if !ok || current.ID != otp.ID || current.Code != otp.Code {
		return false, nil
	}
	delete(r.s.otps, otp.UserID)
	return true, nil
}

func (r *otpRepository) DeleteByUser(_ context.Context, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.otps, userID)
	return nil
}

func (r *otpRepository) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for userID, otp := range r.s.otps {
		if otp.ExpiresAt.Before(before) {
			delete(r.s.otps, userID)
			n++
		}
	}
	return n, nil
}
