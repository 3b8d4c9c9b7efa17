package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ds124wfegd/eventhub/internal/database"
	"github.com/ds124wfegd/eventhub/internal/entity"
)

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) database.BookingRepository {
	return &bookingRepository{db: db}
}

// lockEventCapacity locks the event row for the rest of tx and returns its
// limit (nil when unlimited) and the number of completed bookings.
func lockEventCapacity(ctx context.Context, tx *sql.Tx, eventID int64) (*int, int, error) {
	var maxAttendees sql.NullInt64
	query := `SELECT max_attendees FROM events WHERE id = $1 FOR UPDATE`
	err := tx.QueryRowContext(ctx, query, eventID).Scan(&maxAttendees)
	if err == sql.ErrNoRows {
		return nil, 0, entity.ErrEventNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to lock event: %w", err)
	}

	var completed int
	query = `SELECT COUNT(*) FROM bookings WHERE event_id = $1 AND payment_status = $2`
	if err := tx.QueryRowContext(ctx, query, eventID, entity.PaymentStatusCompleted).Scan(&completed); err != nil {
		return nil, 0, fmt.Errorf("failed to count completed bookings: %w", err)
	}

	if !maxAttendees.Valid {
		return nil, completed, nil
	}
	limit := int(maxAttendees.Int64)
	return &limit, completed, nil
}

// Reserve creates a booking together with its ticket in one transaction
func (r *bookingRepository) Reserve(ctx context.Context, booking *entity.Booking, ticket *entity.Ticket) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	limit, completed, err := lockEventCapacity(ctx, tx, booking.EventID)
	if err != nil {
		return err
	}
	if limit != nil && completed >= *limit {
		return entity.ErrEventFullyBooked
	}

	// Any status counts, so a pending booking blocks a second attempt too
	var existing int
	query := `SELECT COUNT(*) FROM bookings WHERE event_id = $1 AND user_id = $2`
	if err := tx.QueryRowContext(ctx, query, booking.EventID, booking.UserID).Scan(&existing); err != nil {
		return fmt.Errorf("failed to check existing bookings: %w", err)
	}
	if existing > 0 {
		return entity.ErrAlreadyBooked
	}

	if booking.BookingTime.IsZero() {
		booking.BookingTime = time.Now()
	}
	booking.PaymentStatus = entity.PaymentStatusPending

	query = `
		INSERT INTO bookings (user_id, event_id, payment_status, booking_time)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err = tx.QueryRowContext(ctx, query,
		booking.UserID,
		booking.EventID,
		booking.PaymentStatus,
		booking.BookingTime,
	).Scan(&booking.ID)
	if isUniqueViolation(err, "bookings_user_event_key") {
		return entity.ErrAlreadyBooked
	}
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	ticket.BookingID = booking.ID
	ticket.Status = entity.TicketStatusBooked
	query = `INSERT INTO tickets (booking_id, status) VALUES ($1, $2) RETURNING id`
	if err := tx.QueryRowContext(ctx, query, ticket.BookingID, ticket.Status).Scan(&ticket.ID); err != nil {
		return fmt.Errorf("failed to create ticket: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if pqCode(err) == pqSerializationFailure {
			return fmt.Errorf("booking conflicted with a concurrent transaction: %w", entity.ErrConflict)
		}
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Confirm completes a booking. Capacity is re-checked under the event lock
// so completed bookings never exceed max_attendees.
func (r *bookingRepository) Confirm(ctx context.Context, ticketID int64) (*entity.Ticket, *entity.Booking, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		ticket  entity.Ticket
		booking entity.Booking
	)
	query := `
		SELECT t.id, t.booking_id, t.status,
			b.id, b.user_id, b.event_id, b.payment_status, b.booking_time
		FROM tickets t
		JOIN bookings b ON b.id = t.booking_id
		WHERE t.id = $1
	`
	err = tx.QueryRowContext(ctx, query, ticketID).Scan(
		&ticket.ID,
		&ticket.BookingID,
		&ticket.Status,
		&booking.ID,
		&booking.UserID,
		&booking.EventID,
		&booking.PaymentStatus,
		&booking.BookingTime,
	)
	if err == sql.ErrNoRows {
		return nil, nil, entity.ErrTicketNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	limit, completed, err := lockEventCapacity(ctx, tx, booking.EventID)
	if err != nil {
		return nil, nil, err
	}

	// Re-read under the event lock: a concurrent confirm of the same ticket
	// has committed by now.
	query = `SELECT payment_status FROM bookings WHERE id = $1`
	if err := tx.QueryRowContext(ctx, query, booking.ID).Scan(&booking.PaymentStatus); err != nil {
		return nil, nil, fmt.Errorf("failed to reload booking: %w", err)
	}
	if booking.PaymentStatus == entity.PaymentStatusCompleted {
		ticket.Status = entity.TicketStatusActive
		return &ticket, &booking, nil
	}

	if limit != nil && completed >= *limit {
		return nil, nil, entity.ErrEventFullyBooked
	}

	query = `UPDATE bookings SET payment_status = $1 WHERE id = $2`
	if _, err := tx.ExecContext(ctx, query, entity.PaymentStatusCompleted, booking.ID); err != nil {
		return nil, nil, fmt.Errorf("failed to complete booking: %w", err)
	}
	query = `UPDATE tickets SET status = $1 WHERE id = $2`
	if _, err := tx.ExecContext(ctx, query, entity.TicketStatusActive, ticket.ID); err != nil {
		return nil, nil, fmt.Errorf("failed to activate ticket: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	booking.PaymentStatus = entity.PaymentStatusCompleted
	ticket.Status = entity.TicketStatusActive
	return &ticket, &booking, nil
}

// GetByID retrieves a booking by its ID
func (r *bookingRepository) GetByID(ctx context.Context, id int64) (*entity.Booking, error) {
	query := `
		SELECT id, user_id, event_id, payment_status, booking_time
		FROM bookings
		WHERE id = $1
	`

	var booking entity.Booking
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&booking.ID,
		&booking.UserID,
		&booking.EventID,
		&booking.PaymentStatus,
		&booking.BookingTime,
	)
	if err == sql.ErrNoRows {
		return nil, entity.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

func (r *bookingRepository) list(ctx context.Context, column string, id int64) ([]*entity.Booking, error) {
	query := `
		SELECT id, user_id, event_id, payment_status, booking_time
		FROM bookings
		WHERE ` + column + ` = $1
		ORDER BY booking_time DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings by %s: %w", column, err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		var booking entity.Booking
		err := rows.Scan(
			&booking.ID,
			&booking.UserID,
			&booking.EventID,
			&booking.PaymentStatus,
			&booking.BookingTime,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, &booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bookings: %w", err)
	}
	return bookings, nil
}

// GetByUserID retrieves all bookings of a user, newest first
func (r *bookingRepository) GetByUserID(ctx context.Context, userID int64) ([]*entity.Booking, error) {
	return r.list(ctx, "user_id", userID)
}

// GetByEventID retrieves all bookings for a specific event, newest first
func (r *bookingRepository) GetByEventID(ctx context.Context, eventID int64) ([]*entity.Booking, error) {
	return r.list(ctx, "event_id", eventID)
}

func (r *bookingRepository) CountByEventAndStatus(ctx context.Context, eventID int64, status entity.PaymentStatus) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM bookings WHERE event_id = $1 AND payment_status = $2`
	if err := r.db.QueryRowContext(ctx, query, eventID, status).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func (r *bookingRepository) getTicket(ctx context.Context, column string, id int64) (*entity.Ticket, error) {
	query := `SELECT id, booking_id, status FROM tickets WHERE ` + column + ` = $1`

	var ticket entity.Ticket
	err := r.db.QueryRowContext(ctx, query, id).Scan(&ticket.ID, &ticket.BookingID, &ticket.Status)
	if err == sql.ErrNoRows {
		return nil, entity.ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return &ticket, nil
}

func (r *bookingRepository) GetTicketByID(ctx context.Context, id int64) (*entity.Ticket, error) {
	return r.getTicket(ctx, "id", id)
}

func (r *bookingRepository) GetTicketByBookingID(ctx context.Context, bookingID int64) (*entity.Ticket, error) {
	return r.getTicket(ctx, "booking_id", bookingID)
}
