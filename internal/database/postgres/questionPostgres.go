package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ds124wfegd/eventhub/internal/database"
	"github.com/ds124wfegd/eventhub/internal/entity"
)

type questionRepository struct {
	db *sql.DB
}

func NewQuestionRepository(db *sql.DB) database.QuestionRepository {
	return &questionRepository{db: db}
}

const questionColumns = `id, event_id, asked_by, question, answer, asked_at, answered_at`

func scanQuestion(row rowScanner) (*entity.Question, error) {
	var (
		q          entity.Question
		answer     sql.NullString
		answeredAt sql.NullTime
	)
	if err := row.Scan(&q.ID, &q.EventID, &q.AskedBy, &q.Question, &answer, &q.AskedAt, &answeredAt); err != nil {
		return nil, err
	}
	q.Answer = answer.String
	if answeredAt.Valid {
		q.AnsweredAt = &answeredAt.Time
	}
	return &q, nil
}

func (r *questionRepository) Create(ctx context.Context, q *entity.Question) error {
	query := `
		INSERT INTO questions (event_id, asked_by, question, asked_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	if q.AskedAt.IsZero() {
		q.AskedAt = time.Now()
	}
	if err := r.db.QueryRowContext(ctx, query, q.EventID, q.AskedBy, q.Question, q.AskedAt).Scan(&q.ID); err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	return nil
}

func (r *questionRepository) GetByID(ctx context.Context, id int64) (*entity.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE id = $1`

	q, err := scanQuestion(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, entity.ErrQuestionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return q, nil
}

func (r *questionRepository) Answer(ctx context.Context, id int64, answer string, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE questions SET answer = $1, answered_at = $2 WHERE id = $3`, answer, at, id)
	if err != nil {
		return fmt.Errorf("failed to answer question: %w", err)
	}
	return expectOneRow(result, entity.ErrQuestionNotFound)
}

func (r *questionRepository) ListByEvent(ctx context.Context, eventID int64) ([]*entity.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE event_id = $1 ORDER BY asked_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	var questions []*entity.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
