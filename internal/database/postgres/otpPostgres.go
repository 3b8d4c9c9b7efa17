package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ds124wfegd/eventhub/internal/database"
	"github.com/ds124wfegd/eventhub/internal/entity"
)

type otpRepository struct {
	db *sql.DB
}

func NewOtpRepository(db *sql.DB) database.OtpRepository {
	return &otpRepository{db: db}
}

func (r *otpRepository) Replace(ctx context.Context, otp *entity.OtpVerification) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM otp_verifications WHERE user_id = $1`, otp.UserID); err != nil {
		return fmt.Errorf("failed to purge otps: %w", err)
	}

	// user_id is unique, so a racing Replace either waits on the row lock
	// or fails here instead of leaving two live codes.
	query := `
		INSERT INTO otp_verifications (user_id, code, generated_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET code = EXCLUDED.code,
			generated_at = EXCLUDED.generated_at,
			expires_at = EXCLUDED.expires_at
		RETURNING id
	`
	err = tx.QueryRowContext(ctx, query,
		otp.UserID,
		otp.Code,
		otp.GeneratedAt,
		otp.ExpiresAt,
	).Scan(&otp.ID)
	if err != nil {
		return fmt.Errorf("failed to insert otp: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *otpRepository) GetLatest(ctx context.Context, userID int64) (*entity.OtpVerification, error) {
	query := `
		SELECT id, user_id, code, generated_at, expires_at
		FROM otp_verifications
		WHERE user_id = $1
		ORDER BY generated_at DESC
		LIMIT 1
	`

	var otp entity.OtpVerification
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&otp.ID,
		&otp.UserID,
		&otp.Code,
		&otp.GeneratedAt,
		&otp.ExpiresAt,
	)
	if err == sql.ErrNoRows {
		return nil, entity.ErrOtpNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get otp: %w", err)
	}
	return &otp, nil
}

// Rotate relies on the row lock taken by UPDATE, so of two racing resends
// only the first still sees the old generated_at.
func (r *otpRepository) Rotate(ctx context.Context, otp *entity.OtpVerification, issuedBefore time.Time) (bool, error) {
	query := `
		UPDATE otp_verifications
		SET code = $2, generated_at = $3, expires_at = $4
		WHERE user_id = $1 AND generated_at <= $5
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		otp.UserID,
		otp.Code,
		otp.GeneratedAt,
		otp.ExpiresAt,
		issuedBefore,
	).Scan(&otp.ID)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to rotate otp: %w", err)
	}
	return true, nil
}

func (r *otpRepository) Consume(ctx context.Context, otp *entity.OtpVerification) (bool, error) {
	query := `DELETE FROM otp_verifications WHERE id = $1 AND user_id = $2 AND code = $3`
	result, err := r.db.ExecContext(ctx, query, otp.ID, otp.UserID, otp.Code)
	if err != nil {
		return false, fmt.Errorf("failed to consume otp: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to consume otp: %w", err)
	}
	return n == 1, nil
}

func (r *otpRepository) DeleteByUser(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM otp_verifications WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete otps: %w", err)
	}
	return nil
}

func (r *otpRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM otp_verifications WHERE expires_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired otps: %w", err)
	}
	return result.RowsAffected()
}
