package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/LovationAdmin/calendar-api/models"
)

// Postgres implements Store on top of database/sql with lib/pq.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// translate maps driver errors onto the store sentinels.
func translate(err error) error {
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}

// ============================================================================
// USERS
// ============================================================================

func (s *Postgres) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash, name)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, strings.ToLower(user.Email), user.PasswordHash, user.Name).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return models.User{}, translate(err)
	}
	user.Email = strings.ToLower(user.Email)
	return user, nil
}

func (s *Postgres) GetUser(ctx context.Context, id string) (models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, name, COALESCE(totp_secret, ''), totp_enabled, created_at, updated_at
		FROM users WHERE id = $1
	`, id))
}

func (s *Postgres) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, name, COALESCE(totp_secret, ''), totp_enabled, created_at, updated_at
		FROM users WHERE LOWER(email) = LOWER($1)
	`, email))
}

func (s *Postgres) scanUser(row *sql.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.TOTPSecret, &u.TOTPEnabled, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return models.User{}, translate(err)
	}
	return u, nil
}

func (s *Postgres) UpdateUser(ctx context.Context, user models.User) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET name = $1, password_hash = $2, totp_secret = NULLIF($3, ''), totp_enabled = $4, updated_at = NOW()
		WHERE id = $5
	`, user.Name, user.PasswordHash, user.TOTPSecret, user.TOTPEnabled, user.ID)
	if err != nil {
		return translate(err)
	}
	return requireRows(result)
}

// ============================================================================
// SESSIONS
// ============================================================================

func (s *Postgres) CreateSession(ctx context.Context, userID, refreshToken string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (user_id, refresh_token, expires_at)
		VALUES ($1, $2, $3)
	`, userID, refreshToken, expiresAt)
	return translate(err)
}

func (s *Postgres) GetSessionUser(ctx context.Context, refreshToken string) (string, error) {
	var userID string
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id FROM sessions
		WHERE refresh_token = $1 AND expires_at > NOW()
	`, refreshToken).Scan(&userID)
	if err != nil {
		return "", translate(err)
	}
	return userID, nil
}

func (s *Postgres) DeleteSession(ctx context.Context, refreshToken string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE refresh_token = $1`, refreshToken)
	return translate(err)
}

// ============================================================================
// CALENDARS
// ============================================================================

func (s *Postgres) CreateCalendar(ctx context.Context, cal models.Calendar) (models.Calendar, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO calendars (name, description, color, is_main, is_holiday, is_visible, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, cal.Name, cal.Description, cal.Color, cal.IsMain, cal.IsHoliday, cal.IsVisible, cal.OwnerID).
		Scan(&cal.ID, &cal.CreatedAt, &cal.UpdatedAt)
	if err != nil {
		return models.Calendar{}, translate(err)
	}
	return cal, nil
}

func (s *Postgres) GetCalendar(ctx context.Context, id string) (models.Calendar, error) {
	var cal models.Calendar
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, color, is_main, is_holiday, is_visible, owner_id, created_at, updated_at
		FROM calendars WHERE id = $1
	`, id).Scan(&cal.ID, &cal.Name, &cal.Description, &cal.Color, &cal.IsMain, &cal.IsHoliday,
		&cal.IsVisible, &cal.OwnerID, &cal.CreatedAt, &cal.UpdatedAt)
	if err != nil {
		return models.Calendar{}, translate(err)
	}
	return cal, nil
}

func (s *Postgres) GetMainCalendar(ctx context.Context, ownerID string) (models.Calendar, error) {
	var cal models.Calendar
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, color, is_main, is_holiday, is_visible, owner_id, created_at, updated_at
		FROM calendars WHERE owner_id = $1 AND is_main = TRUE
		LIMIT 1
	`, ownerID).Scan(&cal.ID, &cal.Name, &cal.Description, &cal.Color, &cal.IsMain, &cal.IsHoliday,
		&cal.IsVisible, &cal.OwnerID, &cal.CreatedAt, &cal.UpdatedAt)
	if err != nil {
		return models.Calendar{}, translate(err)
	}
	return cal, nil
}

func (s *Postgres) ListCalendars(ctx context.Context, userID string) ([]models.Calendar, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.description, c.color, c.is_main, c.is_holiday, c.is_visible,
		       c.owner_id, c.created_at, c.updated_at, COALESCE(cm.role, '')
		FROM calendars c
		LEFT JOIN calendar_members cm ON c.id = cm.calendar_id AND cm.user_id = $1
		WHERE c.owner_id = $1 OR cm.user_id = $1
		ORDER BY c.is_main DESC, c.created_at ASC
	`, userID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var calendars []models.Calendar
	for rows.Next() {
		var cal models.Calendar
		if err := rows.Scan(&cal.ID, &cal.Name, &cal.Description, &cal.Color, &cal.IsMain, &cal.IsHoliday,
			&cal.IsVisible, &cal.OwnerID, &cal.CreatedAt, &cal.UpdatedAt, &cal.Role); err != nil {
			return nil, err
		}
		cal.IsOwner = cal.OwnerID == userID
		calendars = append(calendars, cal)
	}
	return calendars, rows.Err()
}

func (s *Postgres) UpdateCalendar(ctx context.Context, cal models.Calendar) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE calendars
		SET name = $1, description = $2, color = $3, is_visible = $4, updated_at = NOW()
		WHERE id = $5
	`, cal.Name, cal.Description, cal.Color, cal.IsVisible, cal.ID)
	if err != nil {
		return translate(err)
	}
	return requireRows(result)
}

func (s *Postgres) DeleteCalendar(ctx context.Context, id string) error {
	// Cascades to members, links, invites, events via foreign keys.
	result, err := s.db.ExecContext(ctx, `DELETE FROM calendars WHERE id = $1`, id)
	if err != nil {
		return translate(err)
	}
	return requireRows(result)
}

func requireRows(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
