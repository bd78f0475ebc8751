package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/LovationAdmin/calendar-api/models"
)

// ============================================================================
// EVENTS
// ============================================================================

func (s *Postgres) CreateEvent(ctx context.Context, ev models.Event) (models.Event, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO events (calendar_id, title, description, starts_at, ends_at, color, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, ev.CalendarID, ev.Title, ev.Description, ev.StartsAt, ev.EndsAt, ev.Color, ev.CreatedBy).
		Scan(&ev.ID, &ev.CreatedAt, &ev.UpdatedAt)
	if err != nil {
		return models.Event{}, translate(err)
	}
	return ev, nil
}

func (s *Postgres) GetEvent(ctx context.Context, id string) (models.Event, error) {
	var ev models.Event
	err := s.db.QueryRowContext(ctx, `
		SELECT id, calendar_id, title, description, starts_at, ends_at, color, created_by, created_at, updated_at
		FROM events WHERE id = $1
	`, id).Scan(&ev.ID, &ev.CalendarID, &ev.Title, &ev.Description, &ev.StartsAt, &ev.EndsAt,
		&ev.Color, &ev.CreatedBy, &ev.CreatedAt, &ev.UpdatedAt)
	if err != nil {
		return models.Event{}, translate(err)
	}
	return ev, nil
}

func (s *Postgres) ListEvents(ctx context.Context, calendarID string, from, to time.Time) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, calendar_id, title, description, starts_at, ends_at, color, created_by, created_at, updated_at
		FROM events
		WHERE calendar_id = $1 AND starts_at < $3 AND ends_at > $2
		ORDER BY starts_at ASC
	`, calendarID, from, to)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var ev models.Event
		if err := rows.Scan(&ev.ID, &ev.CalendarID, &ev.Title, &ev.Description, &ev.StartsAt, &ev.EndsAt,
			&ev.Color, &ev.CreatedBy, &ev.CreatedAt, &ev.UpdatedAt); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (s *Postgres) UpdateEvent(ctx context.Context, ev models.Event) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE events
		SET title = $1, description = $2, starts_at = $3, ends_at = $4, color = $5, updated_at = NOW()
		WHERE id = $6
	`, ev.Title, ev.Description, ev.StartsAt, ev.EndsAt, ev.Color, ev.ID)
	if err != nil {
		return translate(err)
	}
	return requireRows(result)
}

func (s *Postgres) DeleteEvent(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return translate(err)
	}
	return requireRows(result)
}

// ============================================================================
// EVENT PARTICIPANTS
// ============================================================================

func (s *Postgres) AddParticipant(ctx context.Context, p models.EventParticipant) (models.EventParticipant, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO event_participants (event_id, user_id, has_confirmed)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, p.EventID, p.UserID, p.HasConfirmed).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return models.EventParticipant{}, translate(err)
	}
	return p, nil
}

func (s *Postgres) UpsertParticipant(ctx context.Context, p models.EventParticipant) (models.EventParticipant, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO event_participants (event_id, user_id, has_confirmed)
		VALUES ($1, $2, $3)
		ON CONFLICT (event_id, user_id) DO UPDATE SET has_confirmed = EXCLUDED.has_confirmed
		RETURNING id, created_at
	`, p.EventID, p.UserID, p.HasConfirmed).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return models.EventParticipant{}, translate(err)
	}
	return p, nil
}

func (s *Postgres) GetParticipant(ctx context.Context, eventID, userID string) (models.EventParticipant, error) {
	var p models.EventParticipant
	err := s.db.QueryRowContext(ctx, `
		SELECT ep.id, ep.event_id, ep.user_id, ep.has_confirmed, ep.created_at, u.name, u.email
		FROM event_participants ep
		INNER JOIN users u ON ep.user_id = u.id
		WHERE ep.event_id = $1 AND ep.user_id = $2
	`, eventID, userID).Scan(&p.ID, &p.EventID, &p.UserID, &p.HasConfirmed, &p.CreatedAt, &p.UserName, &p.UserEmail)
	if err != nil {
		return models.EventParticipant{}, translate(err)
	}
	return p, nil
}

func (s *Postgres) ListParticipants(ctx context.Context, eventID string) ([]models.EventParticipant, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ep.id, ep.event_id, ep.user_id, ep.has_confirmed, ep.created_at, u.name, u.email
		FROM event_participants ep
		INNER JOIN users u ON ep.user_id = u.id
		WHERE ep.event_id = $1
		ORDER BY ep.created_at ASC
	`, eventID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var participants []models.EventParticipant
	for rows.Next() {
		var p models.EventParticipant
		if err := rows.Scan(&p.ID, &p.EventID, &p.UserID, &p.HasConfirmed, &p.CreatedAt, &p.UserName, &p.UserEmail); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func (s *Postgres) SetConfirmation(ctx context.Context, eventID, userID string, hasConfirmed bool) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE event_participants SET has_confirmed = $1
		WHERE event_id = $2 AND user_id = $3
	`, hasConfirmed, eventID, userID)
	if err != nil {
		return translate(err)
	}
	return requireRows(result)
}

func (s *Postgres) RemoveParticipant(ctx context.Context, eventID, userID string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM event_participants
		WHERE event_id = $1 AND user_id = $2
	`, eventID, userID)
	if err != nil {
		return translate(err)
	}
	return requireRows(result)
}

// ============================================================================
// EVENT EMAIL INVITES
// ============================================================================

func (s *Postgres) CreateEventInvite(ctx context.Context, inv models.EventEmailInvite) (models.EventEmailInvite, error) {
	userID := sql.NullString{String: inv.UserID, Valid: inv.UserID != ""}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO event_email_invites (event_id, email, user_id, token, invited_by, expires_at)
		VALUES ($1, LOWER($2), $3, $4, $5, $6)
		RETURNING id, created_at
	`, inv.EventID, inv.Email, userID, inv.Token, inv.InvitedBy, inv.ExpiresAt).Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		return models.EventEmailInvite{}, translate(err)
	}
	return inv, nil
}

func (s *Postgres) GetEventInviteByToken(ctx context.Context, token string) (models.EventEmailInvite, error) {
	return s.scanEventInvite(ctx, `
		SELECT id, event_id, email, user_id, token, invited_by, expires_at, created_at
		FROM event_email_invites WHERE token = $1
	`, token)
}

func (s *Postgres) FindEventInvite(ctx context.Context, eventID, email string) (models.EventEmailInvite, error) {
	return s.scanEventInvite(ctx, `
		SELECT id, event_id, email, user_id, token, invited_by, expires_at, created_at
		FROM event_email_invites
		WHERE event_id = $1 AND LOWER(email) = LOWER($2)
	`, eventID, email)
}

func (s *Postgres) scanEventInvite(ctx context.Context, query string, args ...interface{}) (models.EventEmailInvite, error) {
	var inv models.EventEmailInvite
	var userID sql.NullString
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&inv.ID, &inv.EventID, &inv.Email, &userID,
		&inv.Token, &inv.InvitedBy, &inv.ExpiresAt, &inv.CreatedAt)
	if err != nil {
		return models.EventEmailInvite{}, translate(err)
	}
	inv.UserID = userID.String
	return inv, nil
}

func (s *Postgres) ListEventInvites(ctx context.Context, eventID string) ([]models.EventEmailInvite, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_id, email, user_id, token, invited_by, expires_at, created_at
		FROM event_email_invites
		WHERE event_id = $1
		ORDER BY created_at DESC
	`, eventID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var invites []models.EventEmailInvite
	for rows.Next() {
		var inv models.EventEmailInvite
		var userID sql.NullString
		if err := rows.Scan(&inv.ID, &inv.EventID, &inv.Email, &userID, &inv.Token, &inv.InvitedBy,
			&inv.ExpiresAt, &inv.CreatedAt); err != nil {
			return nil, err
		}
		inv.UserID = userID.String
		invites = append(invites, inv)
	}
	return invites, rows.Err()
}

func (s *Postgres) DeleteEventInvite(ctx context.Context, eventID, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM event_email_invites
		WHERE id = $1 AND event_id = $2
	`, id, eventID)
	if err != nil {
		return translate(err)
	}
	return requireRows(result)
}

func (s *Postgres) DeleteEventInviteByToken(ctx context.Context, token string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM event_email_invites WHERE token = $1`, token)
	if err != nil {
		return translate(err)
	}
	return requireRows(result)
}
