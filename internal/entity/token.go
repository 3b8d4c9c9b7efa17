package entity

import "time"

// EmailVerificationToken proves ownership of an email address. One per user.
type EmailVerificationToken struct {
	ID          int64     `json:"id" db:"id"`
	Token       string    `json:"token" db:"token"`
	UserID      int64     `json:"user_id" db:"user_id"`
	GeneratedAt time.Time `json:"generated_at" db:"generated_at"`
	ExpiresAt   time.Time `json:"expires_at" db:"expires_at"`
	Used        bool      `json:"used" db:"used"`
}

func (t *EmailVerificationToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// OtpVerification is the second login factor. At most one exists per user.
type OtpVerification struct {
	ID          int64     `json:"id" db:"id"`
	UserID      int64     `json:"user_id" db:"user_id"`
	Code        string    `json:"-" db:"code"`
	GeneratedAt time.Time `json:"generated_at" db:"generated_at"`
	ExpiresAt   time.Time `json:"expires_at" db:"expires_at"`
}

func (o *OtpVerification) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}
