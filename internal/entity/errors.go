package entity

import (
	"errors"
	"fmt"
	"time"
)

// Error kinds. Every domain error unwraps to exactly one of them, which is
// what the transport layer uses to pick a status code.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrExpired      = errors.New("expired")
	ErrInvalidCode  = errors.New("invalid code")
	ErrRateLimited  = errors.New("rate limited")
	ErrCapacity     = errors.New("capacity exceeded")
	ErrInvalidInput = errors.New("invalid input")
)

// DomainError carries a caller-visible message together with its kind.
type DomainError struct {
	Kind    error
	Message string
}

func (e *DomainError) Error() string { return e.Message }

func (e *DomainError) Unwrap() error { return e.Kind }

func newError(kind error, msg string) *DomainError {
	return &DomainError{Kind: kind, Message: msg}
}

// NewInvalidInput builds a validation error with a custom message.
func NewInvalidInput(msg string) error {
	return newError(ErrInvalidInput, msg)
}

// RateLimitError is returned while a cooldown is still running.
type RateLimitError struct {
	Wait time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("Please wait %d seconds before resending OTP", e.Seconds())
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }

// Seconds rounds the remaining wait up so a caller never sees zero.
func (e *RateLimitError) Seconds() int64 {
	s := int64(e.Wait / time.Second)
	if e.Wait%time.Second != 0 {
		s++
	}
	if s < 1 {
		s = 1
	}
	return s
}

var (
	// User errors
	ErrUserNotFound        = newError(ErrNotFound, "User not found")
	ErrEmailTaken          = newError(ErrConflict, "User already registered with this email")
	ErrInvalidCredentials  = newError(ErrUnauthorized, "Invalid credentials")
	ErrEmailNotVerified    = newError(ErrUnauthorized, "Please verify your email first")
	ErrOldPasswordMismatch = newError(ErrUnauthorized, "Old password incorrect")
	ErrNotLoggedIn         = newError(ErrUnauthorized, "Session is not active, please log in")
	ErrInvalidSession      = newError(ErrUnauthorized, "Invalid or expired session token")
	ErrGoogleLinked        = newError(ErrConflict, "Google account already linked")
	ErrFacebookLinked      = newError(ErrConflict, "Facebook account already linked")
	ErrSocialIDTaken       = newError(ErrConflict, "Social account is bound to another user")
	ErrUnknownProvider     = newError(ErrInvalidInput, "Unsupported social provider")

	// Verification token errors
	ErrTokenNotFound   = newError(ErrNotFound, "Invalid or expired token")
	ErrTokenExpired    = newError(ErrExpired, "Token expired")
	ErrTokenUsed       = newError(ErrConflict, "Token already used, please request a new verification email")
	ErrAlreadyVerified = newError(ErrConflict, "Email already verified")

	// OTP errors
	ErrOtpNotFound = newError(ErrNotFound, "OTP not found, please log in again")
	ErrOtpExpired  = newError(ErrExpired, "OTP expired")
	ErrInvalidOtp  = newError(ErrInvalidCode, "Invalid OTP")

	ErrNoLoginPending = newError(ErrUnauthorized, "No login in progress, please log in with your password")

	// Event errors
	ErrEventNotFound      = newError(ErrNotFound, "Event not found")
	ErrUnauthorizedUpdate = newError(ErrUnauthorized, "Unauthorized update")
	ErrUnauthorizedDelete = newError(ErrUnauthorized, "Unauthorized delete")
	ErrNotEventCreator    = newError(ErrForbidden, "Only the event creator can view this")

	// Booking errors
	ErrEventFullyBooked  = newError(ErrCapacity, "Event is fully booked")
	ErrAlreadyBooked     = newError(ErrConflict, "You have already booked this event")
	ErrBookingNotFound   = newError(ErrNotFound, "Booking not found")
	ErrTicketNotFound    = newError(ErrNotFound, "Ticket not found")
	ErrNotTicketOwner    = newError(ErrForbidden, "Ticket belongs to another user")
	ErrNotEventOrganizer = newError(ErrForbidden, "Only the event creator can confirm tickets")

	// Order errors
	ErrOrderNotFound = newError(ErrNotFound, "Order not found")
	ErrOrderExists   = newError(ErrConflict, "An order already exists for this ticket")
	ErrNotOrderOwner = newError(ErrForbidden, "Order belongs to another user")

	// Community errors
	ErrPostNotFound       = newError(ErrNotFound, "Post not found")
	ErrPollNotFound       = newError(ErrNotFound, "Poll not found")
	ErrPollEnded          = newError(ErrConflict, "Poll has ended")
	ErrAlreadyVoted       = newError(ErrConflict, "You have already voted in this poll")
	ErrOptionNotInPoll    = newError(ErrInvalidInput, "Option does not belong to this poll")
	ErrQuestionNotFound   = newError(ErrNotFound, "Question not found")
	ErrOnlyCreatorAnswers = newError(ErrForbidden, "Only event creator can answer")
)
