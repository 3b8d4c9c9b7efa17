package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ds124wfegd/eventhub/config"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

func NewPostgresDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.Info("Successfully connected to PostgreSQL")
	return db, nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		dob DATE,
		email VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL DEFAULT '',
		verified BOOLEAN NOT NULL DEFAULT FALSE,
		login_status VARCHAR(20) NOT NULL DEFAULT 'LOGGED_OUT',
		google_id VARCHAR(255),
		facebook_id VARCHAR(255),
		profile_image_url TEXT,
		phone_number VARCHAR(32),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT users_email_key UNIQUE (email),
		CONSTRAINT users_google_id_key UNIQUE (google_id),
		CONSTRAINT users_facebook_id_key UNIQUE (facebook_id)
	)`,

	`CREATE TABLE IF NOT EXISTS email_verification_tokens (
		id BIGSERIAL PRIMARY KEY,
		token VARCHAR(64) NOT NULL UNIQUE,
		user_id BIGINT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		generated_at TIMESTAMPTZ NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL,
		used BOOLEAN NOT NULL DEFAULT FALSE
	)`,

	`CREATE TABLE IF NOT EXISTS otp_verifications (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		code VARCHAR(12) NOT NULL,
		generated_at TIMESTAMPTZ NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS events (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description VARCHAR(1000),
		venue VARCHAR(255) NOT NULL,
		event_date DATE NOT NULL,
		event_time VARCHAR(5) NOT NULL,
		ticket_price NUMERIC(12, 2) NOT NULL DEFAULT 0,
		max_attendees INTEGER CHECK (max_attendees IS NULL OR max_attendees >= 0),
		image_url TEXT,
		category VARCHAR(32) NOT NULL,
		privacy VARCHAR(32) NOT NULL,
		status VARCHAR(32) NOT NULL,
		creator_id BIGINT NOT NULL REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS bookings (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id),
		event_id BIGINT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		payment_status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
		booking_time TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT bookings_user_event_key UNIQUE (user_id, event_id)
	)`,

	`CREATE TABLE IF NOT EXISTS tickets (
		id BIGSERIAL PRIMARY KEY,
		booking_id BIGINT NOT NULL UNIQUE REFERENCES bookings(id) ON DELETE CASCADE,
		status VARCHAR(20) NOT NULL DEFAULT 'BOOKED'
	)`,

	`CREATE TABLE IF NOT EXISTS forum_posts (
		id BIGSERIAL PRIMARY KEY,
		event_id BIGINT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		author_id BIGINT NOT NULL REFERENCES users(id),
		title VARCHAR(255) NOT NULL,
		content TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS forum_comments (
		id BIGSERIAL PRIMARY KEY,
		post_id BIGINT NOT NULL REFERENCES forum_posts(id) ON DELETE CASCADE,
		author_id BIGINT NOT NULL REFERENCES users(id),
		content TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS polls (
		id BIGSERIAL PRIMARY KEY,
		event_id BIGINT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		creator_id BIGINT NOT NULL REFERENCES users(id),
		question VARCHAR(500) NOT NULL,
		ends_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS poll_options (
		id BIGSERIAL PRIMARY KEY,
		poll_id BIGINT NOT NULL REFERENCES polls(id) ON DELETE CASCADE,
		option_text VARCHAR(255) NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS poll_votes (
		id BIGSERIAL PRIMARY KEY,
		poll_id BIGINT NOT NULL REFERENCES polls(id) ON DELETE CASCADE,
		option_id BIGINT NOT NULL REFERENCES poll_options(id) ON DELETE CASCADE,
		user_id BIGINT NOT NULL REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT poll_votes_poll_user_key UNIQUE (poll_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS questions (
		id BIGSERIAL PRIMARY KEY,
		event_id BIGINT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		asked_by BIGINT NOT NULL REFERENCES users(id),
		question TEXT NOT NULL,
		answer TEXT,
		asked_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		answered_at TIMESTAMPTZ
	)`,

	`CREATE TABLE IF NOT EXISTS orders (
		id BIGSERIAL PRIMARY KEY,
		order_uuid UUID NOT NULL UNIQUE,
		user_id BIGINT NOT NULL REFERENCES users(id),
		ticket_id BIGINT REFERENCES tickets(id) ON DELETE SET NULL,
		payment_id VARCHAR(255) NOT NULL,
		payment_method VARCHAR(64) NOT NULL,
		total_amount NUMERIC(12, 2) NOT NULL,
		status VARCHAR(32) NOT NULL DEFAULT 'confirmed',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	// Indexes
	`CREATE INDEX IF NOT EXISTS idx_events_creator_id ON events(creator_id)`,
	`CREATE INDEX IF NOT EXISTS idx_events_date ON events(event_date)`,
	`CREATE INDEX IF NOT EXISTS idx_events_category ON events(category)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_event_status ON bookings(event_id, payment_status)`,
	`CREATE INDEX IF NOT EXISTS idx_tokens_expires_at ON email_verification_tokens(expires_at)`,
	`CREATE INDEX IF NOT EXISTS idx_otps_expires_at ON otp_verifications(expires_at)`,
	`CREATE INDEX IF NOT EXISTS idx_forum_posts_event_id ON forum_posts(event_id)`,
	`CREATE INDEX IF NOT EXISTS idx_forum_comments_post_id ON forum_comments(post_id)`,
	`CREATE INDEX IF NOT EXISTS idx_polls_event_id ON polls(event_id)`,
	`CREATE INDEX IF NOT EXISTS idx_questions_event_id ON questions(event_id)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS orders_ticket_id_key ON orders(ticket_id) WHERE ticket_id IS NOT NULL`,
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	for i, migration := range migrations {
		if _, err := db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("failed to execute migration %d: %w", i, err)
		}
	}

	logrus.WithField("count", len(migrations)).Info("Database migrations completed successfully")
	return nil
}
