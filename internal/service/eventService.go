package service

import (
	"context"
	"strings"
	"time"

	"github.com/ds124wfegd/eventhub/internal/database"
	"github.com/ds124wfegd/eventhub/internal/entity"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// EventRequest is used for both create and update. On update only the
// fields that are set replace the stored ones.
type EventRequest struct {
	Name         string                `json:"name" binding:"max=255"`
	Description  string                `json:"description" binding:"max=2000"`
	Venue        string                `json:"venue" binding:"max=255"`
	Date         *entity.Date          `json:"date"`
	Time         string                `json:"time"`
	TicketPrice  *decimal.Decimal      `json:"ticket_price"`
	MaxAttendees *int                  `json:"max_attendees" binding:"omitempty,min=1"`
	ImageURL     string                `json:"image_url"`
	Category     entity.EventCategory  `json:"category"`
	Privacy      entity.PrivacySetting `json:"privacy"`
	Status       entity.EventStatus    `json:"status"`
}

type EventFilterRequest struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Category  string `form:"category"`
}

type eventService struct {
	events   database.EventRepository
	bookings database.BookingRepository
	cache    EventCache
}

// NewEventService builds the catalog. cache may be nil.
func NewEventService(repos *database.Repositories, cache EventCache) EventService {
	return &eventService{
		events:   repos.Events,
		bookings: repos.Bookings,
		cache:    cache,
	}
}

func ParseCategory(s string) (entity.EventCategory, error) {
	c := entity.EventCategory(strings.ToUpper(strings.TrimSpace(s)))
	switch c {
	case entity.CategoryConference, entity.CategoryWorkshop, entity.CategoryConcert,
		entity.CategorySports, entity.CategoryMeetup, entity.CategoryOther:
		return c, nil
	}
	return "", entity.NewInvalidInput("Unknown event category: " + s)
}

func parsePrivacy(s entity.PrivacySetting) (entity.PrivacySetting, error) {
	p := entity.PrivacySetting(strings.ToUpper(strings.TrimSpace(string(s))))
	switch p {
	case entity.PrivacyPublic, entity.PrivacyPrivate, entity.PrivacyInviteOnly:
		return p, nil
	}
	return "", entity.NewInvalidInput("Unknown privacy setting: " + string(s))
}

func parseStatus(s entity.EventStatus) (entity.EventStatus, error) {
	st := entity.EventStatus(strings.ToUpper(strings.TrimSpace(string(s))))
	switch st {
	case entity.EventStatusCreated, entity.EventStatusPublished,
		entity.EventStatusCancelled, entity.EventStatusCompleted:
		return st, nil
	}
	return "", entity.NewInvalidInput("Unknown event status: " + string(s))
}

func parseEventTime(s string) (string, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return "", entity.NewInvalidInput("Invalid event time, expected HH:MM")
	}
	return t.Format("15:04"), nil
}

// apply copies the set fields of req onto event.
func (req *EventRequest) apply(event *entity.Event) error {
	if name := strings.TrimSpace(req.Name); name != "" {
		event.Name = name
	}
	if req.Description != "" {
		event.Description = req.Description
	}
	if venue := strings.TrimSpace(req.Venue); venue != "" {
		event.Venue = venue
	}
	if req.Date != nil {
		event.Date = *req.Date
	}
	if req.Time != "" {
		t, err := parseEventTime(req.Time)
		if err != nil {
			return err
		}
		event.Time = t
	}
	if req.TicketPrice != nil {
		if req.TicketPrice.IsNegative() {
			return entity.NewInvalidInput("Ticket price must not be negative")
		}
		event.TicketPrice = *req.TicketPrice
	}
	if req.MaxAttendees != nil {
		if *req.MaxAttendees < 1 {
			return entity.NewInvalidInput("Max attendees must be positive")
		}
		n := *req.MaxAttendees
		event.MaxAttendees = &n
	}
	if req.ImageURL != "" {
		event.ImageURL = req.ImageURL
	}
	if req.Category != "" {
		c, err := ParseCategory(string(req.Category))
		if err != nil {
			return err
		}
		event.Category = c
	}
	if req.Privacy != "" {
		p, err := parsePrivacy(req.Privacy)
		if err != nil {
			return err
		}
		event.Privacy = p
	}
	if req.Status != "" {
		st, err := parseStatus(req.Status)
		if err != nil {
			return err
		}
		event.Status = st
	}
	return nil
}

func (s *eventService) CreateEvent(ctx context.Context, creatorID int64, req *EventRequest) (*entity.Event, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, entity.NewInvalidInput("Event name is required")
	}
	if strings.TrimSpace(req.Venue) == "" {
		return nil, entity.NewInvalidInput("Event venue is required")
	}
	if req.Date == nil || req.Date.IsZero() {
		return nil, entity.NewInvalidInput("Event date is required")
	}

	maxAttendees := entity.DefaultMaxAttendees
	event := &entity.Event{
		Time:         entity.DefaultEventTime,
		TicketPrice:  decimal.Zero,
		MaxAttendees: &maxAttendees,
		Category:     entity.CategoryOther,
		Privacy:      entity.PrivacyPublic,
		Status:       entity.EventStatusCreated,
		CreatorID:    creatorID,
	}
	if err := req.apply(event); err != nil {
		return nil, err
	}

	if err := s.events.Create(ctx, event); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"event_id":   event.ID,
		"creator_id": creatorID,
	}).Info("Event created")
	return event, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID, userID int64, req *EventRequest) (*entity.Event, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.CreatorID != userID {
		return nil, entity.ErrUnauthorizedUpdate
	}

	if err := req.apply(event); err != nil {
		return nil, err
	}
	if err := s.events.Update(ctx, event); err != nil {
		return nil, err
	}

	s.invalidate(ctx, eventID)
	return event, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID, userID int64) error {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if event.CreatorID != userID {
		return entity.ErrUnauthorizedDelete
	}

	if err := s.events.Delete(ctx, eventID); err != nil {
		return err
	}

	s.invalidate(ctx, eventID)
	logrus.WithField("event_id", eventID).Info("Event deleted")
	return nil
}

func (s *eventService) invalidate(ctx context.Context, eventID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteEvent(ctx, eventID); err != nil {
		logrus.WithFields(logrus.Fields{
			"event_id": eventID,
			"error":    err,
		}).Warn("Failed to invalidate cached event")
	}
}

func (s *eventService) GetEvent(ctx context.Context, eventID int64) (*entity.Event, error) {
	if s.cache != nil {
		cached, err := s.cache.GetEvent(ctx, eventID)
		if err != nil {
			logrus.WithField("error", err).Warn("Event cache read failed")
		}
		if cached != nil {
			return cached, nil
		}
	}

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetEvent(ctx, event); err != nil {
			logrus.WithField("error", err).Warn("Event cache write failed")
		}
	}
	return event, nil
}

func (s *eventService) ListPublicEvents(ctx context.Context) ([]*entity.Event, error) {
	return s.events.List(ctx, entity.EventFilter{PublicOnly: true})
}

func (s *eventService) SearchEvents(ctx context.Context, keyword string) ([]*entity.Event, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, entity.NewInvalidInput("Search keyword is required")
	}
	return s.events.List(ctx, entity.EventFilter{Keyword: keyword, PublicOnly: true})
}

func (s *eventService) FilterEvents(ctx context.Context, req *EventFilterRequest) ([]*entity.Event, error) {
	filter := entity.EventFilter{PublicOnly: true}

	if req.StartDate != "" {
		d, err := entity.ParseDate(req.StartDate)
		if err != nil {
			return nil, err
		}
		filter.StartDate = &d.Time
	}
	if req.EndDate != "" {
		d, err := entity.ParseDate(req.EndDate)
		if err != nil {
			return nil, err
		}
		filter.EndDate = &d.Time
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, entity.NewInvalidInput("End date is before start date")
	}
	if req.Category != "" {
		c, err := ParseCategory(req.Category)
		if err != nil {
			return nil, err
		}
		filter.Category = c
	}

	return s.events.List(ctx, filter)
}

func (s *eventService) GetEventsByCategory(ctx context.Context, category entity.EventCategory) ([]*entity.Event, error) {
	c, err := ParseCategory(string(category))
	if err != nil {
		return nil, err
	}
	return s.events.List(ctx, entity.EventFilter{Category: c, PublicOnly: true})
}

func (s *eventService) GetEventsByCreator(ctx context.Context, creatorID int64) ([]*entity.Event, error) {
	return s.events.List(ctx, entity.EventFilter{CreatorID: creatorID})
}

func (s *eventService) GetEventBookings(ctx context.Context, eventID, requesterID int64) ([]*entity.Booking, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.CreatorID != requesterID {
		return nil, entity.ErrNotEventCreator
	}
	return s.bookings.GetByEventID(ctx, eventID)
}
