// Package memory keeps every repository in process memory behind one
// mutex. It backs the service tests and local runs without PostgreSQL.
package memory

import (
	"sync"

	"github.com/ds124wfegd/eventhub/internal/database"
	"github.com/ds124wfegd/eventhub/internal/entity"
)

type Store struct {
	mu     sync.Mutex
	nextID int64

	users     map[int64]*entity.User
	tokens    map[int64]*entity.EmailVerificationToken // by user id
	otps      map[int64]*entity.OtpVerification        // by user id
	events    map[int64]*entity.Event
	bookings  map[int64]*entity.Booking
	tickets   map[int64]*entity.Ticket
	posts     map[int64]*entity.ForumPost
	comments  map[int64]*entity.ForumComment
	polls     map[int64]*entity.Poll
	votes     map[int64]*entity.PollVote
	questions map[int64]*entity.Question
	orders    map[int64]*entity.Order
}

func NewStore() *Store {
	return &Store{
		users:     make(map[int64]*entity.User),
		tokens:    make(map[int64]*entity.EmailVerificationToken),
		otps:      make(map[int64]*entity.OtpVerification),
		events:    make(map[int64]*entity.Event),
		bookings:  make(map[int64]*entity.Booking),
		tickets:   make(map[int64]*entity.Ticket),
		posts:     make(map[int64]*entity.ForumPost),
		comments:  make(map[int64]*entity.ForumComment),
		polls:     make(map[int64]*entity.Poll),
		votes:     make(map[int64]*entity.PollVote),
		questions: make(map[int64]*entity.Question),
		orders:    make(map[int64]*entity.Order),
	}
}

// id must be called with mu held.
func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// NewRepositories exposes the store through the repository interfaces.
func NewRepositories(s *Store) *database.Repositories {
	return &database.Repositories{
		Users:     &userRepository{s},
		Tokens:    &tokenRepository{s},
		Otps:      &otpRepository{s},
		Events:    &eventRepository{s},
		Bookings:  &bookingRepository{s},
		Forum:     &forumRepository{s},
		Polls:     &pollRepository{s},
		Questions: &questionRepository{s},
		Orders:    &orderRepository{s},
	}
}
