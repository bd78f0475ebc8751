package config

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/LovationAdmin/calendar-api/utils"
)

func InitDB(databaseURL string) (*sql.DB, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

func RunMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			email VARCHAR(255) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			name VARCHAR(255) NOT NULL,
			totp_secret VARCHAR(255),
			totp_enabled BOOLEAN DEFAULT FALSE,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS sessions (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id UUID REFERENCES users(id) ON DELETE CASCADE,
			refresh_token VARCHAR(500) UNIQUE NOT NULL,
			expires_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS calendars (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			name VARCHAR(255) NOT NULL,
			description TEXT DEFAULT '',
			color VARCHAR(20) DEFAULT '',
			is_main BOOLEAN DEFAULT FALSE,
			is_holiday BOOLEAN DEFAULT FALSE,
			is_visible BOOLEAN DEFAULT TRUE,
			owner_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS calendar_members (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			calendar_id UUID NOT NULL REFERENCES calendars(id) ON DELETE CASCADE,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			role VARCHAR(50) NOT NULL DEFAULT 'READER',
			joined_at TIMESTAMP DEFAULT NOW(),
			UNIQUE(calendar_id, user_id)
		)`,

		`CREATE TABLE IF NOT EXISTS calendar_invite_links (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			calendar_id UUID NOT NULL REFERENCES calendars(id) ON DELETE CASCADE,
			role VARCHAR(50) NOT NULL DEFAULT 'READER',
			expires_at TIMESTAMP,
			created_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS calendar_email_invites (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			calendar_id UUID NOT NULL REFERENCES calendars(id) ON DELETE CASCADE,
			email VARCHAR(255) NOT NULL,
			role VARCHAR(50) NOT NULL DEFAULT 'READER',
			token VARCHAR(255) UNIQUE NOT NULL,
			invited_by UUID REFERENCES users(id),
			expires_at TIMESTAMP,
			created_at TIMESTAMP DEFAULT NOW(),
			UNIQUE(calendar_id, email)
		)`,

		`CREATE TABLE IF NOT EXISTS events (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			calendar_id UUID NOT NULL REFERENCES calendars(id) ON DELETE CASCADE,
			title VARCHAR(255) NOT NULL,
			description TEXT DEFAULT '',
			starts_at TIMESTAMP NOT NULL,
			ends_at TIMESTAMP NOT NULL,
			color VARCHAR(20) DEFAULT '',
			created_by UUID NOT NULL REFERENCES users(id),
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS event_participants (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			has_confirmed BOOLEAN DEFAULT FALSE,
			created_at TIMESTAMP DEFAULT NOW(),
			UNIQUE(event_id, user_id)
		)`,

		`CREATE TABLE IF NOT EXISTS event_email_invites (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
			email VARCHAR(255) NOT NULL,
			user_id UUID REFERENCES users(id) ON DELETE CASCADE,
			token VARCHAR(255) UNIQUE NOT NULL,
			invited_by UUID REFERENCES users(id),
			expires_at TIMESTAMP,
			created_at TIMESTAMP DEFAULT NOW(),
			UNIQUE(event_id, email)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_calendar_members_calendar_id ON calendar_members(calendar_id)`,
		`CREATE INDEX IF NOT EXISTS idx_calendar_members_user_id ON calendar_members(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_calendar_email_invites_token ON calendar_email_invites(token)`,
		`CREATE INDEX IF NOT EXISTS idx_calendar_email_invites_email ON calendar_email_invites(email)`,
		`CREATE INDEX IF NOT EXISTS idx_events_calendar_id ON events(calendar_id)`,
		`CREATE INDEX IF NOT EXISTS idx_events_starts_at ON events(starts_at)`,
		`CREATE INDEX IF NOT EXISTS idx_event_participants_event_id ON event_participants(event_id)`,
		`CREATE INDEX IF NOT EXISTS idx_event_email_invites_token ON event_email_invites(token)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id)`,
	}

	// The batch runs atomically so a half-applied schema never survives a
	// failed deploy.
	return utils.WithTransaction(db, func(tx *sql.Tx) error {
		for _, migration := range migrations {
			if _, err := tx.Exec(migration); err != nil {
				return fmt.Errorf("failed to run migration: %w", err)
			}
		}
		return nil
	})
}
