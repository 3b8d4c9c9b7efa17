package repository

import (
	"database/sql"

	"github.com/ds124wfegd/eventhub/internal/database"
)

func NewRepositories(db *sql.DB) *database.Repositories {
	return &database.Repositories{
		Users:     NewUserRepository(db),
		Tokens:    NewTokenRepository(db),
		Otps:      NewOtpRepository(db),
		Events:    NewEventRepository(db),
		Bookings:  NewBookingRepository(db),
		Forum:     NewForumRepository(db),
		Polls:     NewPollRepository(db),
		Questions: NewQuestionRepository(db),
		Orders:    NewOrderRepository(db),
	}
}
