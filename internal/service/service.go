package service

import (
	"context"
	"time"

	"github.com/ds124wfegd/eventhub/internal/database"
	"github.com/ds124wfegd/eventhub/internal/entity"
	"github.com/ds124wfegd/eventhub/pkg/jwt"
	"github.com/ds124wfegd/eventhub/pkg/mail"
)

// TokenIssuer owns email verification tokens and login OTPs.
type TokenIssuer interface {
	IssueVerificationToken(ctx context.Context, userID int64) (*entity.EmailVerificationToken, error)
	// ValidateVerificationToken returns the token and its owner. A used token
	// is accepted only when its owner is already verified.
	ValidateVerificationToken(ctx context.Context, token string) (*entity.EmailVerificationToken, *entity.User, error)

	IssueOtp(ctx context.Context, userID int64) (*entity.OtpVerification, error)
	ConsumeOtp(ctx context.Context, userID int64, code string) error
	// ReissueOtp replaces an outstanding OTP once the resend cooldown has
	// passed. It never creates a code for a user without one.
	ReissueOtp(ctx context.Context, userID int64) (*entity.OtpVerification, error)
	PurgeOtps(ctx context.Context, userID int64) error

	// PurgeExpired removes OTPs and tokens that expired longer ago than
	// their retention windows.
	PurgeExpired(ctx context.Context, otpRetention, tokenRetention time.Duration) (otps int64, tokens int64, err error)
}

type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*entity.User, error)
	VerifyEmail(ctx context.Context, token string) (*VerifyEmailResult, error)
	ResendVerification(ctx context.Context, email string) error
	Login(ctx context.Context, req *LoginRequest) (int64, error)
	VerifyOtp(ctx context.Context, req *VerifyOtpRequest) (*Session, error)
	ResendOtp(ctx context.Context, email string) error
	Logout(ctx context.Context, userID int64) error

	SocialLogin(ctx context.Context, req *SocialLoginRequest) (*Session, error)
	LinkSocialAccount(ctx context.Context, userID int64, req *LinkSocialRequest) error

	CheckVerificationStatus(ctx context.Context, email string) (*entity.VerificationStatus, error)
	GetProfile(ctx context.Context, userID int64) (*entity.User, error)
	UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*entity.User, error)
	ChangePassword(ctx context.Context, userID int64, req *ChangePasswordRequest) error

	// Authenticate resolves a session token to a user that is still logged in.
	Authenticate(ctx context.Context, token string) (*entity.User, error)
}

type EventService interface {
	CreateEvent(ctx context.Context, creatorID int64, req *EventRequest) (*entity.Event, error)
	UpdateEvent(ctx context.Context, eventID, userID int64, req *EventRequest) (*entity.Event, error)
	DeleteEvent(ctx context.Context, eventID, userID int64) error
	GetEvent(ctx context.Context, eventID int64) (*entity.Event, error)

	ListPublicEvents(ctx context.Context) ([]*entity.Event, error)
	SearchEvents(ctx context.Context, keyword string) ([]*entity.Event, error)
	FilterEvents(ctx context.Context, req *EventFilterRequest) ([]*entity.Event, error)
	GetEventsByCategory(ctx context.Context, category entity.EventCategory) ([]*entity.Event, error)
	GetEventsByCreator(ctx context.Context, creatorID int64) ([]*entity.Event, error)

	GetEventBookings(ctx context.Context, eventID, requesterID int64) ([]*entity.Booking, error)
}

type BookingService interface {
	BookEvent(ctx context.Context, userID, eventID int64) (*entity.Ticket, error)
	ConfirmTicket(ctx context.Context, ticketID int64) (*entity.Ticket, error)
	// ConfirmTicketAsOrganizer confirms a ticket on behalf of its event's
	// creator, e.g. for payment taken at the door.
	ConfirmTicketAsOrganizer(ctx context.Context, ticketID, organizerID int64) (*entity.Ticket, error)
	GetUserTickets(ctx context.Context, userID int64) ([]*entity.TicketView, error)
	GetTicket(ctx context.Context, ticketID, userID int64) (*entity.TicketView, error)
	TicketQRCode(ctx context.Context, ticketID, userID int64) ([]byte, error)
}

type PaymentService interface {
	CreatePaymentOrder(ctx context.Context, req *PaymentOrderRequest) (*entity.PaymentOrder, error)
	VerifyPayment(ctx context.Context, userID int64, req *PaymentVerifyRequest) (*PaymentVerifyResult, error)
	CreateOrder(ctx context.Context, userID int64, req *OrderRequest) (*entity.Order, error)
	ListOrders(ctx context.Context, userID int64) ([]*entity.Order, error)
	GetOrder(ctx context.Context, orderID, userID int64) (*entity.Order, error)
}

type ForumService interface {
	CreatePost(ctx context.Context, eventID, authorID int64, req *ForumPostRequest) (*entity.ForumPost, error)
	AddComment(ctx context.Context, postID, authorID int64, req *ForumCommentRequest) (*entity.ForumComment, error)
	GetEventPosts(ctx context.Context, eventID int64) ([]*entity.ForumThread, error)
	GetPost(ctx context.Context, postID int64) (*entity.ForumThread, error)
}

type PollService interface {
	CreatePoll(ctx context.Context, eventID, creatorID int64, req *PollRequest) (*entity.PollResult, error)
	Vote(ctx context.Context, pollID, userID int64, req *VoteRequest) (*entity.PollResult, error)
	GetEventPolls(ctx context.Context, eventID int64) ([]*entity.PollResult, error)
}

type QuestionService interface {
	AskQuestion(ctx context.Context, eventID, userID int64, req *QuestionRequest) (*entity.Question, error)
	AnswerQuestion(ctx context.Context, questionID, userID int64, req *AnswerRequest) (*entity.Question, error)
	GetEventQuestions(ctx context.Context, eventID int64) ([]*entity.Question, error)
}

type DashboardService interface {
	GetOrganizerDashboard(ctx context.Context, userID int64) (*entity.OrganizerDashboard, error)
	GetEventDashboard(ctx context.Context, eventID, userID int64) (*entity.EventDashboard, error)
}

// Mailer dispatches a single email.
type Mailer interface {
	Send(ctx context.Context, msg mail.Message) error
}

// BookingPublisher announces booking state changes to other systems.
type BookingPublisher interface {
	Publish(ctx context.Context, event *entity.BookingEvent) error
}

// EventCache is an optional read-through cache for event details.
type EventCache interface {
	GetEvent(ctx context.Context, id int64) (*entity.Event, error)
	SetEvent(ctx context.Context, event *entity.Event) error
	DeleteEvent(ctx context.Context, id int64) error
}

// Services is the set handed to the transport layer.
type Services struct {
	Auth      AuthService
	Events    EventService
	Bookings  BookingService
	Payments  PaymentService
	Forum     ForumService
	Polls     PollService
	Questions QuestionService
	Dashboard DashboardService
}

// Deps are the collaborators shared by the services. Publisher and Cache
// may be nil.
type Deps struct {
	Repos     *database.Repositories
	Mailer    Mailer
	Publisher BookingPublisher
	Cache     EventCache
	Sessions  *jwt.Manager
	Issuer    IssuerConfig

	FrontendURL string
	Now         func() time.Time
}

// NewServices wires every service over the same repositories. The token
// issuer is returned separately for the cleanup worker.
func NewServices(d Deps) (*Services, TokenIssuer) {
	issuer := NewTokenIssuer(d.Repos, d.Issuer, d.Now)
	bookings := NewBookingService(d.Repos, d.Publisher, d.Now)

	return &Services{
		Auth:      NewAuthService(d.Repos, issuer, d.Mailer, d.Sessions, d.FrontendURL),
		Events:    NewEventService(d.Repos, d.Cache),
		Bookings:  bookings,
		Payments:  NewPaymentService(d.Repos, bookings, d.Now),
		Forum:     NewForumService(d.Repos, d.Now),
		Polls:     NewPollService(d.Repos, d.Now),
		Questions: NewQuestionService(d.Repos, d.Now),
		Dashboard: NewDashboardService(d.Repos, d.Now),
	}, issuer
}
