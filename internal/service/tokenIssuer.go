package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"time"

	"github.com/ds124wfegd/eventhub/internal/database"
	"github.com/ds124wfegd/eventhub/internal/entity"

	"github.com/google/uuid"
)

type IssuerConfig struct {
	TokenTTL          time.Duration
	OtpTTL            time.Duration
	OtpResendCooldown time.Duration
	OtpLength         int
}

func DefaultIssuerConfig() IssuerConfig {
	return IssuerConfig{
		TokenTTL:          24 * time.Hour,
		OtpTTL:            2 * time.Minute,
		OtpResendCooldown: time.Minute,
		OtpLength:         6,
	}
}

type tokenIssuer struct {
	tokens database.TokenRepository
	otps   database.OtpRepository
	users  database.UserRepository
	cfg    IssuerConfig
	now    func() time.Time
}

func NewTokenIssuer(repos *database.Repositories, cfg IssuerConfig, now func() time.Time) TokenIssuer {
	if cfg.OtpLength <= 0 {
		cfg.OtpLength = 6
	}
	if now == nil {
		now = time.Now
	}
	return &tokenIssuer{
		tokens: repos.Tokens,
		otps:   repos.Otps,
		users:  repos.Users,
		cfg:    cfg,
		now:    now,
	}
}

func (s *tokenIssuer) IssueVerificationToken(ctx context.Context, userID int64) (*entity.EmailVerificationToken, error) {
	now := s.now()
	token := &entity.EmailVerificationToken{
		Token:       uuid.NewString(),
		UserID:      userID,
		GeneratedAt: now,
		ExpiresAt:   now.Add(s.cfg.TokenTTL),
	}
	if err := s.tokens.Save(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

func (s *tokenIssuer) ValidateVerificationToken(ctx context.Context, token string) (*entity.EmailVerificationToken, *entity.User, error) {
	t, err := s.tokens.GetByToken(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	if t.Expired(s.now()) {
		return nil, nil, entity.ErrTokenExpired
	}

	user, err := s.users.GetByID(ctx, t.UserID)
	if err != nil {
		return nil, nil, err
	}
	if t.Used && !user.Verified {
		return nil, nil, entity.ErrTokenUsed
	}
	return t, user, nil
}

func (s *tokenIssuer) IssueOtp(ctx context.Context, userID int64) (*entity.OtpVerification, error) {
	code, err := generateOtp(s.cfg.OtpLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate otp: %w", err)
	}

	now := s.now()
	otp := &entity.OtpVerification{
		UserID:      userID,
		Code:        code,
		GeneratedAt: now,
		ExpiresAt:   now.Add(s.cfg.OtpTTL),
	}
	if err := s.otps.Replace(ctx, otp); err != nil {
		return nil, err
	}
	return otp, nil
}

// ConsumeOtp checks code against the user's outstanding OTP and deletes it
// on a match. Of two concurrent calls with the same code only one succeeds.
func (s *tokenIssuer) ConsumeOtp(ctx context.Context, userID int64, code string) error {
	otp, err := s.otps.GetLatest(ctx, userID)
	if err != nil {
		return err
	}
	if otp.Expired(s.now()) {
		return entity.ErrOtpExpired
	}
	if subtle.ConstantTimeCompare([]byte(otp.Code), []byte(code)) != 1 {
		return entity.ErrInvalidOtp
	}

	applied, err := s.otps.Consume(ctx, otp)
	if err != nil {
		return err
	}
	if !applied {
		return entity.ErrInvalidOtp
	}
	return nil
}

func (s *tokenIssuer) ReissueOtp(ctx context.Context, userID int64) (*entity.OtpVerification, error) {
	current, err := s.otps.GetLatest(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.cooldown(current); err != nil {
		return nil, err
	}

	code, err := generateOtp(s.cfg.OtpLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate otp: %w", err)
	}
	now := s.now()
	otp := &entity.OtpVerification{
		UserID:      userID,
		Code:        code,
		GeneratedAt: now,
		ExpiresAt:   now.Add(s.cfg.OtpTTL),
	}

	applied, err := s.otps.Rotate(ctx, otp, now.Add(-s.cfg.OtpResendCooldown))
	if err != nil {
		return nil, err
	}
	if applied {
		return otp, nil
	}

	// lost to a concurrent resend, a login or a consumed code
	current, err = s.otps.GetLatest(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.cooldown(current); err != nil {
		return nil, err
	}
	return nil, entity.ErrOtpNotFound
}

func (s *tokenIssuer) cooldown(otp *entity.OtpVerification) error {
	wait := otp.GeneratedAt.Add(s.cfg.OtpResendCooldown).Sub(s.now())
	if wait > 0 {
		return &entity.RateLimitError{Wait: wait}
	}
	return nil
}

func (s *tokenIssuer) PurgeOtps(ctx context.Context, userID int64) error {
	return s.otps.DeleteByUser(ctx, userID)
}

func (s *tokenIssuer) PurgeExpired(ctx context.Context, otpRetention, tokenRetention time.Duration) (int64, int64, error) {
	now := s.now()

	otps, err := s.otps.DeleteExpired(ctx, now.Add(-otpRetention))
	if err != nil {
		return 0, 0, err
	}
	tokens, err := s.tokens.DeleteExpired(ctx, now.Add(-tokenRetention))
	if err != nil {
		return otps, 0, err
	}
	return otps, tokens, nil
}

// generateOtp returns length random decimal digits.
func generateOtp(length int) (string, error) {
	digits := make([]byte, length)
	ten := big.NewInt(10)
	for i := range digits {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
