package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ds124wfegd/eventhub/internal/database"
	"github.com/ds124wfegd/eventhub/internal/entity"
)

type tokenRepository struct {
	db *sql.DB
}

func NewTokenRepository(db *sql.DB) database.TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Save(ctx context.Context, token *entity.EmailVerificationToken) error {
	query := `
		INSERT INTO email_verification_tokens (token, user_id, generated_at, expires_at, used)
		VALUES ($1, $2, $3, $4, FALSE)
		ON CONFLICT (user_id) DO UPDATE
		SET token = EXCLUDED.token,
			generated_at = EXCLUDED.generated_at,
			expires_at = EXCLUDED.expires_at,
			used = FALSE
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		token.Token,
		token.UserID,
		token.GeneratedAt,
		token.ExpiresAt,
	).Scan(&token.ID)
	if err != nil {
		return fmt.Errorf("failed to save verification token: %w", err)
	}
	token.Used = false
	return nil
}

func (r *tokenRepository) GetByToken(ctx context.Context, token string) (*entity.EmailVerificationToken, error) {
	query := `
		SELECT id, token, user_id, generated_at, expires_at, used
		FROM email_verification_tokens
		WHERE token = $1
	`

	var t entity.EmailVerificationToken
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&t.ID,
		&t.Token,
		&t.UserID,
		&t.GeneratedAt,
		&t.ExpiresAt,
		&t.Used,
	)
	if err == sql.ErrNoRows {
		return nil, entity.ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get verification token: %w", err)
	}
	return &t, nil
}

func (r *tokenRepository) MarkVerified(ctx context.Context, token string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// The row lock taken by UPDATE makes a concurrent caller wait and then
	// see used = TRUE, so only one of them proceeds.
	var userID int64
	query := `UPDATE email_verification_tokens SET used = TRUE WHERE token = $1 AND used = FALSE RETURNING user_id`
	err = tx.QueryRowContext(ctx, query, token).Scan(&userID)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to consume verification token: %w", err)
	}

	query = `UPDATE users SET verified = TRUE, login_status = $1, updated_at = $2 WHERE id = $3`
	if _, err := tx.ExecContext(ctx, query, entity.LoginStatusLoggedOut, time.Now(), userID); err != nil {
		return false, fmt.Errorf("failed to mark user verified: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return true, nil
}

func (r *tokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM email_verification_tokens WHERE expires_at < $1`

	result, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}
	return result.RowsAffected()
}
