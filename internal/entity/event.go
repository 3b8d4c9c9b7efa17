package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type EventCategory string

const (
	CategoryConference EventCategory = "CONFERENCE"
	CategoryWorkshop   EventCategory = "WORKSHOP"
	CategoryConcert    EventCategory = "CONCERT"
	CategorySports     EventCategory = "SPORTS"
	CategoryMeetup     EventCategory = "MEETUP"
	CategoryOther      EventCategory = "OTHER"
)

type PrivacySetting string

const (
	PrivacyPublic     PrivacySetting = "PUBLIC"
	PrivacyPrivate    PrivacySetting = "PRIVATE"
	PrivacyInviteOnly PrivacySetting = "INVITE_ONLY"
)

type EventStatus string

const (
	EventStatusCreated   EventStatus = "CREATED"
	EventStatusPublished EventStatus = "PUBLISHED"
	EventStatusCancelled EventStatus = "CANCELLED"
	EventStatusCompleted EventStatus = "COMPLETED"
)

const (
	DefaultEventTime    = "18:00"
	DefaultMaxAttendees = 100
)

type Event struct {
	ID           int64           `json:"id" db:"id"`
	Name         string          `json:"name" db:"name"`
	Description  string          `json:"description" db:"description"`
	Venue        string          `json:"venue" db:"venue"`
	Date         Date            `json:"date" db:"event_date"`
	Time         string          `json:"time" db:"event_time"`
	TicketPrice  decimal.Decimal `json:"ticket_price" db:"ticket_price"`
	MaxAttendees *int            `json:"max_attendees,omitempty" db:"max_attendees"`
	ImageURL     string          `json:"image_url,omitempty" db:"image_url"`
	Category     EventCategory   `json:"category" db:"category"`
	Privacy      PrivacySetting  `json:"privacy" db:"privacy"`
	Status       EventStatus     `json:"status" db:"status"`
	CreatorID    int64           `json:"creator_id" db:"creator_id"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

// EventFilter narrows catalog reads. Zero values mean "no restriction".
type EventFilter struct {
	Keyword    string
	Category   EventCategory
	StartDate  *time.Time
	EndDate    *time.Time
	PublicOnly bool
	CreatorID  int64
}

// Matches applies the filter in memory. The postgres repository builds the
// equivalent WHERE clause.
func (f EventFilter) Matches(e *Event) bool {
	if f.PublicOnly && e.Privacy != PrivacyPublic {
		return false
	}
	if f.CreatorID != 0 && e.CreatorID != f.CreatorID {
		return false
	}
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if f.StartDate != nil && e.Date.Time.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && e.Date.Time.After(*f.EndDate) {
		return false
	}
	if f.Keyword != "" {
		return containsFold(e.Name, f.Keyword) ||
			containsFold(e.Description, f.Keyword) ||
			containsFold(e.Venue, f.Keyword)
	}
	return true
}
