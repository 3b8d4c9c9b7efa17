package entity

import (
	"strings"
	"time"
)

type LoginStatus string

const (
	LoginStatusLoggedOut  LoginStatus = "LOGGED_OUT"
	LoginStatusOtpPending LoginStatus = "OTP_PENDING"
	LoginStatusLoggedIn   LoginStatus = "LOGGED_IN"
)

type SocialProvider string

const (
	ProviderGoogle   SocialProvider = "google"
	ProviderFacebook SocialProvider = "facebook"
)

// ParseProvider accepts provider names case-insensitively.
func ParseProvider(s string) (SocialProvider, error) {
	switch SocialProvider(strings.ToLower(strings.TrimSpace(s))) {
	case ProviderGoogle:
		return ProviderGoogle, nil
	case ProviderFacebook:
		return ProviderFacebook, nil
	}
	return "", ErrUnknownProvider
}

type User struct {
	ID              int64       `json:"id" db:"id"`
	Name            string      `json:"name" db:"name"`
	DateOfBirth     *Date       `json:"dob,omitempty" db:"dob"`
	Email           string      `json:"email" db:"email"`
	PasswordHash    string      `json:"-" db:"password_hash"`
	Verified        bool        `json:"verified" db:"verified"`
	LoginStatus     LoginStatus `json:"login_status" db:"login_status"`
	GoogleID        string      `json:"google_id,omitempty" db:"google_id"`
	FacebookID      string      `json:"facebook_id,omitempty" db:"facebook_id"`
	ProfileImageURL string      `json:"profile_image_url,omitempty" db:"profile_image_url"`
	PhoneNumber     string      `json:"phone_number,omitempty" db:"phone_number"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"`
}

// SocialID returns the external id bound for the given provider.
func (u *User) SocialID(p SocialProvider) string {
	if p == ProviderFacebook {
		return u.FacebookID
	}
	return u.GoogleID
}

type VerificationStatus struct {
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
}
