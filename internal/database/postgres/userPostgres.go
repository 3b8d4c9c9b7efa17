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

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) database.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, name, dob, email, password_hash, verified, login_status,
	google_id, facebook_id, profile_image_url, phone_number, created_at, updated_at`

func scanUser(row rowScanner) (*entity.User, error) {
	var (
		user                         entity.User
		dob                          entity.Date
		dobValid                     sql.NullTime
		googleID, facebookID         sql.NullString
		profileImageURL, phoneNumber sql.NullString
	)
	err := row.Scan(
		&user.ID,
		&user.Name,
		&dobValid,
		&user.Email,
		&user.PasswordHash,
		&user.Verified,
		&user.LoginStatus,
		&googleID,
		&facebookID,
		&profileImageURL,
		&phoneNumber,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if dobValid.Valid {
		dob = entity.NewDate(dobValid.Time)
		user.DateOfBirth = &dob
	}
	user.GoogleID = googleID.String
	user.FacebookID = facebookID.String
	user.ProfileImageURL = profileImageURL.String
	user.PhoneNumber = phoneNumber.String
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (
			name, dob, email, password_hash, verified, login_status,
			google_id, facebook_id, profile_image_url, phone_number, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		RETURNING id
	`

	if user.LoginStatus == "" {
		user.LoginStatus = entity.LoginStatusLoggedOut
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	user.UpdatedAt = user.CreatedAt

	var dob interface{}
	if user.DateOfBirth != nil {
		dob = user.DateOfBirth.Time
	}

	err := r.db.QueryRowContext(ctx, query,
		user.Name,
		dob,
		strings.ToLower(user.Email),
		user.PasswordHash,
		user.Verified,
		user.LoginStatus,
		nullString(user.GoogleID),
		nullString(user.FacebookID),
		nullString(user.ProfileImageURL),
		nullString(user.PhoneNumber),
		user.CreatedAt,
	).Scan(&user.ID)

	if isUniqueViolation(err, "users_email_key") {
		return entity.ErrEmailTaken
	}
	if isUniqueViolation(err, "") {
		return entity.ErrSocialIDTaken
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) getOne(ctx context.Context, where string, args ...interface{}) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where

	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, entity.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	return r.getOne(ctx, `id = $1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, `email = $1`, strings.ToLower(strings.TrimSpace(email)))
}

func (r *userRepository) GetVerifiedByID(ctx context.Context, id int64) (*entity.User, error) {
	return r.getOne(ctx, `id = $1 AND verified = TRUE`, id)
}

func (r *userRepository) GetVerifiedByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, `email = $1 AND verified = TRUE`, strings.ToLower(strings.TrimSpace(email)))
}

func (r *userRepository) GetBySocialID(ctx context.Context, provider entity.SocialProvider, socialID string) (*entity.User, error) {
	switch provider {
	case entity.ProviderGoogle:
		return r.getOne(ctx, `google_id = $1`, socialID)
	case entity.ProviderFacebook:
		return r.getOne(ctx, `facebook_id = $1`, socialID)
	}
	return nil, entity.ErrUnknownProvider
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users
		SET name = $1, dob = $2, verified = $3, login_status = $4,
			profile_image_url = $5, phone_number = $6, updated_at = $7
		WHERE id = $8
	`

	var dob interface{}
	if user.DateOfBirth != nil {
		dob = user.DateOfBirth.Time
	}
	user.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		user.Name,
		dob,
		user.Verified,
		user.LoginStatus,
		nullString(user.ProfileImageURL),
		nullString(user.PhoneNumber),
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return expectOneRow(result, entity.ErrUserNotFound)
}

func (r *userRepository) UpdateLoginStatus(ctx context.Context, id int64, status entity.LoginStatus) error {
	query := `UPDATE users SET login_status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update login status: %w", err)
	}
	return expectOneRow(result, entity.ErrUserNotFound)
}

func (r *userRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, passwordHash, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return expectOneRow(result, entity.ErrUserNotFound)
}

// LinkSocial binds the external id only when the slot is still empty.
func (r *userRepository) LinkSocial(ctx context.Context, id int64, provider entity.SocialProvider, socialID string) error {
	var query string
	var linkedErr error
	switch provider {
	case entity.ProviderGoogle:
		query = `UPDATE users SET google_id = $1, updated_at = $2 WHERE id = $3 AND google_id IS NULL`
		linkedErr = entity.ErrGoogleLinked
	case entity.ProviderFacebook:
		query = `UPDATE users SET facebook_id = $1, updated_at = $2 WHERE id = $3 AND facebook_id IS NULL`
		linkedErr = entity.ErrFacebookLinked
	default:
		return entity.ErrUnknownProvider
	}

	result, err := r.db.ExecContext(ctx, query, socialID, time.Now(), id)
	if isUniqueViolation(err, "") {
		return entity.ErrSocialIDTaken
	}
	if err != nil {
		return fmt.Errorf("failed to link social account: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return linkedErr
	}
	return nil
}

func expectOneRow(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
