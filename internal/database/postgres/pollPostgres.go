package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ds124wfegd/eventhub/internal/database"
	"github.com/ds124wfegd/eventhub/internal/entity"
)

type pollRepository struct {
	db *sql.DB
}

func NewPollRepository(db *sql.DB) database.PollRepository {
	return &pollRepository{db: db}
}

func (r *pollRepository) Create(ctx context.Context, poll *entity.Poll) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if poll.CreatedAt.IsZero() {
		poll.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO polls (event_id, creator_id, question, ends_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err = tx.QueryRowContext(ctx, query,
		poll.EventID,
		poll.CreatorID,
		poll.Question,
		poll.EndsAt,
		poll.CreatedAt,
	).Scan(&poll.ID)
	if err != nil {
		return fmt.Errorf("failed to create poll: %w", err)
	}

	query = `INSERT INTO poll_options (poll_id, option_text) VALUES ($1, $2) RETURNING id`
	for _, option := range poll.Options {
		option.PollID = poll.ID
		if err := tx.QueryRowContext(ctx, query, poll.ID, option.Text).Scan(&option.ID); err != nil {
			return fmt.Errorf("failed to create poll option: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *pollRepository) loadOptions(ctx context.Context, poll *entity.Poll) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, poll_id, option_text FROM poll_options WHERE poll_id = $1 ORDER BY id`, poll.ID)
	if err != nil {
		return fmt.Errorf("failed to query poll options: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var o entity.PollOption
		if err := rows.Scan(&o.ID, &o.PollID, &o.Text); err != nil {
			return fmt.Errorf("failed to scan poll option: %w", err)
		}
		poll.Options = append(poll.Options, &o)
	}
	return rows.Err()
}

func (r *pollRepository) GetByID(ctx context.Context, id int64) (*entity.Poll, error) {
	query := `SELECT id, event_id, creator_id, question, ends_at, created_at FROM polls WHERE id = $1`

	var poll entity.Poll
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&poll.ID,
		&poll.EventID,
		&poll.CreatorID,
		&poll.Question,
		&poll.EndsAt,
		&poll.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, entity.ErrPollNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}

	if err := r.loadOptions(ctx, &poll); err != nil {
		return nil, err
	}
	return &poll, nil
}

func (r *pollRepository) ListByEvent(ctx context.Context, eventID int64) ([]*entity.Poll, error) {
	query := `
		SELECT id, event_id, creator_id, question, ends_at, created_at
		FROM polls
		WHERE event_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query polls: %w", err)
	}

	var polls []*entity.Poll
	for rows.Next() {
		var p entity.Poll
		if err := rows.Scan(&p.ID, &p.EventID, &p.CreatorID, &p.Question, &p.EndsAt, &p.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}
		polls = append(polls, &p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating polls: %w", err)
	}

	for _, p := range polls {
		if err := r.loadOptions(ctx, p); err != nil {
			return nil, err
		}
	}
	return polls, nil
}

func (r *pollRepository) Vote(ctx context.Context, vote *entity.PollVote) error {
	query := `
		INSERT INTO poll_votes (poll_id, option_id, user_id, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	if vote.CreatedAt.IsZero() {
		vote.CreatedAt = time.Now()
	}
	err := r.db.QueryRowContext(ctx, query,
		vote.PollID,
		vote.OptionID,
		vote.UserID,
		vote.CreatedAt,
	).Scan(&vote.ID)
	if isUniqueViolation(err, "poll_votes_poll_user_key") {
		return entity.ErrAlreadyVoted
	}
	if err != nil {
		return fmt.Errorf("failed to record vote: %w", err)
	}
	return nil
}

func (r *pollRepository) CountVotes(ctx context.Context, pollID int64) (map[int64]int, error) {
	query := `SELECT option_id, COUNT(*) FROM poll_votes WHERE poll_id = $1 GROUP BY option_id`

	rows, err := r.db.QueryContext(ctx, query, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to count votes: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var optionID int64
		var n int
		if err := rows.Scan(&optionID, &n); err != nil {
			return nil, fmt.Errorf("failed to scan vote count: %w", err)
		}
		counts[optionID] = n
	}
	return counts, rows.Err()
}
