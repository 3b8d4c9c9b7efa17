package database

import (
	"context"
	"time"

	"github.com/ds124wfegd/eventhub/internal/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetBySocialID(ctx context.Context, provider entity.SocialProvider, socialID string) (*entity.User, error)

	// Verified variants return ErrUserNotFound for accounts that have not
	// confirmed their email yet.
	GetVerifiedByID(ctx context.Context, id int64) (*entity.User, error)
	GetVerifiedByEmail(ctx context.Context, email string) (*entity.User, error)

	Update(ctx context.Context, user *entity.User) error
	UpdateLoginStatus(ctx context.Context, id int64, status entity.LoginStatus) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	LinkSocial(ctx context.Context, id int64, provider entity.SocialProvider, socialID string) error
}

type TokenRepository interface {
	// Save stores the token of a user, replacing any previous one.
	Save(ctx context.Context, token *entity.EmailVerificationToken) error
	GetByToken(ctx context.Context, token string) (*entity.EmailVerificationToken, error)

	// MarkVerified flips the token from unused to used and marks its owner
	// verified and logged out, atomically. applied is false when another
	// caller already consumed the token.
	MarkVerified(ctx context.Context, token string) (applied bool, err error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type OtpRepository interface {
	// Replace removes every OTP of the user and stores otp in one step.
	Replace(ctx context.Context, otp *entity.OtpVerification) error
	GetLatest(ctx context.Context, userID int64) (*entity.OtpVerification, error)

	// Rotate swaps in a new code for the user's outstanding OTP, provided
	// that OTP was generated at or before issuedBefore. applied is false when
	// the user has no OTP or the current one is too recent.
	Rotate(ctx context.Context, otp *entity.OtpVerification, issuedBefore time.Time) (applied bool, err error)

	// Consume deletes otp if it is still the stored one with the same code.
	// applied is false when another caller consumed or rotated it first.
	Consume(ctx context.Context, otp *entity.OtpVerification) (applied bool, err error)

	DeleteByUser(ctx context.Context, userID int64) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type EventRepository interface {
	Create(ctx context.Context, event *entity.Event) error
	GetByID(ctx context.Context, id int64) (*entity.Event, error)
	Update(ctx context.Context, event *entity.Event) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter entity.EventFilter) ([]*entity.Event, error)
}

type BookingRepository interface {
	// Reserve checks capacity and duplicates under the event lock, then
	// inserts the booking and its ticket.
	Reserve(ctx context.Context, booking *entity.Booking, ticket *entity.Ticket) error

	// Confirm completes the booking of the ticket and activates the ticket.
	Confirm(ctx context.Context, ticketID int64) (*entity.Ticket, *entity.Booking, error)

	GetByID(ctx context.Context, id int64) (*entity.Booking, error)
	GetByUserID(ctx context.Context, userID int64) ([]*entity.Booking, error)
	GetByEventID(ctx context.Context, eventID int64) ([]*entity.Booking, error)
	CountByEventAndStatus(ctx context.Context, eventID int64, status entity.PaymentStatus) (int, error)

	GetTicketByID(ctx context.Context, id int64) (*entity.Ticket, error)
	GetTicketByBookingID(ctx context.Context, bookingID int64) (*entity.Ticket, error)
}

type ForumRepository interface {
	CreatePost(ctx context.Context, post *entity.ForumPost) error
	GetPost(ctx context.Context, id int64) (*entity.ForumPost, error)
	ListPostsByEvent(ctx context.Context, eventID int64) ([]*entity.ForumPost, error)
	CreateComment(ctx context.Context, comment *entity.ForumComment) error
	ListComments(ctx context.Context, postID int64) ([]*entity.ForumComment, error)
}

type PollRepository interface {
	Create(ctx context.Context, poll *entity.Poll) error
	GetByID(ctx context.Context, id int64) (*entity.Poll, error)
	ListByEvent(ctx context.Context, eventID int64) ([]*entity.Poll, error)
	// Vote fails with ErrAlreadyVoted on a second vote by the same user.
	Vote(ctx context.Context, vote *entity.PollVote) error
	CountVotes(ctx context.Context, pollID int64) (map[int64]int, error)
}

type QuestionRepository interface {
	Create(ctx context.Context, q *entity.Question) error
	GetByID(ctx context.Context, id int64) (*entity.Question, error)
	Answer(ctx context.Context, id int64, answer string, at time.Time) error
	ListByEvent(ctx context.Context, eventID int64) ([]*entity.Question, error)
}

type OrderRepository interface {
	// Create fails with ErrOrderExists when the ticket already has an order.
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id int64) (*entity.Order, error)
	GetByTicketID(ctx context.Context, ticketID int64) (*entity.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]*entity.Order, error)
}

// Repositories groups every store the services need.
type Repositories struct {
	Users     UserRepository
	Tokens    TokenRepository
	Otps      OtpRepository
	Events    EventRepository
	Bookings  BookingRepository
	Forum     ForumRepository
	Polls     PollRepository
	Questions QuestionRepository
	Orders    OrderRepository
}
