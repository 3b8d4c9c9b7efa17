package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ds124wfegd/eventhub/internal/database"
	"github.com/ds124wfegd/eventhub/internal/entity"
)

type eventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) database.EventRepository {
	return &eventRepository{db: db}
}

const eventColumns = `id, name, description, venue, event_date, event_time, ticket_price,
	max_attendees, image_url, category, privacy, status, creator_id, created_at, updated_at`

func scanEvent(row rowScanner) (*entity.Event, error) {
	var (
		event        entity.Event
		maxAttendees sql.NullInt64
		imageURL     sql.NullString
		description  sql.NullString
	)
	err := row.Scan(
		&event.ID,
		&event.Name,
		&description,
		&event.Venue,
		&event.Date,
		&event.Time,
		&event.TicketPrice,
		&maxAttendees,
		&imageURL,
		&event.Category,
		&event.Privacy,
		&event.Status,
		&event.CreatorID,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if maxAttendees.Valid {
		n := int(maxAttendees.Int64)
		event.MaxAttendees = &n
	}
	event.Description = description.String
	event.ImageURL = imageURL.String
	return &event, nil
}

func (r *eventRepository) Create(ctx context.Context, event *entity.Event) error {
	query := `
		INSERT INTO events (
			name, description, venue, event_date, event_time, ticket_price, max_attendees,
			image_url, category, privacy, status, creator_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)
		RETURNING id
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		event.Name,
		event.Description,
		event.Venue,
		event.Date,
		event.Time,
		event.TicketPrice,
		event.MaxAttendees,
		nullString(event.ImageURL),
		event.Category,
		event.Privacy,
		event.Status,
		event.CreatorID,
		now,
	).Scan(&event.ID)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}

	event.CreatedAt = now
	event.UpdatedAt = now
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id int64) (*entity.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	event, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, entity.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

func (r *eventRepository) Update(ctx context.Context, event *entity.Event) error {
	query := `
		UPDATE events
		SET name = $1, description = $2, venue = $3, event_date = $4, event_time = $5,
			ticket_price = $6, max_attendees = $7, image_url = $8, category = $9,
			privacy = $10, status = $11, updated_at = $12
		WHERE id = $13
	`

	event.UpdatedAt = time.Now()
	result, err := r.db.ExecContext(ctx, query,
		event.Name,
		event.Description,
		event.Venue,
		event.Date,
		event.Time,
		event.TicketPrice,
		event.MaxAttendees,
		nullString(event.ImageURL),
		event.Category,
		event.Privacy,
		event.Status,
		event.UpdatedAt,
		event.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	return expectOneRow(result, entity.ErrEventNotFound)
}

func (r *eventRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return expectOneRow(result, entity.ErrEventNotFound)
}

func (r *eventRepository) List(ctx context.Context, filter entity.EventFilter) ([]*entity.Event, error) {
	var (
		conditions []string
		args       []interface{}
	)
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.PublicOnly {
		add("privacy = $%d", entity.PrivacyPublic)
	}
	if filter.CreatorID != 0 {
		add("creator_id = $%d", filter.CreatorID)
	}
	if filter.Category != "" {
		add("category = $%d", filter.Category)
	}
	if filter.StartDate != nil {
		add("event_date >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		add("event_date <= $%d", *filter.EndDate)
	}
	if filter.Keyword != "" {
		args = append(args, "%"+filter.Keyword+"%")
		n := len(args)
		conditions = append(conditions,
			fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d OR venue ILIKE $%d)", n, n, n))
	}

	query := `SELECT ` + eventColumns + ` FROM events`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY event_date ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []*entity.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}
	return events, nil
}
