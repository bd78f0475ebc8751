package store

import (
	"context"

	"github.com/LovationAdmin/calendar-api/models"
)

// ============================================================================
// CALENDAR MEMBERS
// ============================================================================

func (s *Postgres) AddMember(ctx context.Context, m models.CalendarMember) (models.CalendarMember, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO calendar_members (calendar_id, user_id, role)
		VALUES ($1, $2, $3)
		RETURNING id, joined_at
	`, m.CalendarID, m.UserID, m.Role).Scan(&m.ID, &m.JoinedAt)
	if err != nil {
		return models.CalendarMember{}, translate(err)
	}
	return m, nil
}

func (s *Postgres) GetMember(ctx context.Context, calendarID, userID string) (models.CalendarMember, error) {
	var m models.CalendarMember
	err := s.db.QueryRowContext(ctx, `
		SELECT cm.id, cm.calendar_id, cm.user_id, cm.role, cm.joined_at, u.name, u.email
		FROM calendar_members cm
		INNER JOIN users u ON cm.user_id = u.id
		WHERE cm.calendar_id = $1 AND cm.user_id = $2
	`, calendarID, userID).Scan(&m.ID, &m.CalendarID, &m.UserID, &m.Role, &m.JoinedAt, &m.UserName, &m.UserEmail)
	if err != nil {
		return models.CalendarMember{}, translate(err)
	}
	return m, nil
}

func (s *Postgres) ListMembers(ctx context.Context, calendarID string) ([]models.CalendarMember, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT cm.id, cm.calendar_id, cm.user_id, cm.role, cm.joined_at, u.name, u.email
		FROM calendar_members cm
		INNER JOIN users u ON cm.user_id = u.id
		WHERE cm.calendar_id = $1
		ORDER BY cm.joined_at ASC
	`, calendarID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var members []models.CalendarMember
	for rows.Next() {
		var m models.CalendarMember
		if err := rows.Scan(&m.ID, &m.CalendarID, &m.UserID, &m.Role, &m.JoinedAt, &m.UserName, &m.UserEmail); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *Postgres) UpdateMemberRole(ctx context.Context, calendarID, userID, role string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE calendar_members SET role = $1
		WHERE calendar_id = $2 AND user_id = $3
	`, role, calendarID, userID)
	if err != nil {
		return translate(err)
	}
	return requireRows(result)
}

func (s *Postgres) RemoveMember(ctx context.Context, calendarID, userID string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM calendar_members
		WHERE calendar_id = $1 AND user_id = $2
	`, calendarID, userID)
	if err != nil {
		return translate(err)
	}
	return requireRows(result)
}

// ============================================================================
// INVITE LINKS
// ============================================================================

func (s *Postgres) CreateInviteLink(ctx context.Context, link models.CalendarInviteLink) (models.CalendarInviteLink, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO calendar_invite_links (calendar_id, role, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, link.CalendarID, link.Role, link.ExpiresAt).Scan(&link.ID, &link.CreatedAt)
	if err != nil {
		return models.CalendarInviteLink{}, translate(err)
	}
	return link, nil
}

func (s *Postgres) GetInviteLink(ctx context.Context, id string) (models.CalendarInviteLink, error) {
	var link models.CalendarInviteLink
	err := s.db.QueryRowContext(ctx, `
		SELECT id, calendar_id, role, expires_at, created_at
		FROM calendar_invite_links WHERE id = $1
	`, id).Scan(&link.ID, &link.CalendarID, &link.Role, &link.ExpiresAt, &link.CreatedAt)
	if err != nil {
		return models.CalendarInviteLink{}, translate(err)
	}
	return link, nil
}

func (s *Postgres) ListInviteLinks(ctx context.Context, calendarID string) ([]models.CalendarInviteLink, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, calendar_id, role, expires_at, created_at
		FROM calendar_invite_links
		WHERE calendar_id = $1
		ORDER BY created_at DESC
	`, calendarID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var links []models.CalendarInviteLink
	for rows.Next() {
		var link models.CalendarInviteLink
		if err := rows.Scan(&link.ID, &link.CalendarID, &link.Role, &link.ExpiresAt, &link.CreatedAt); err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

func (s *Postgres) DeleteInviteLink(ctx context.Context, calendarID, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM calendar_invite_links
		WHERE id = $1 AND calendar_id = $2
	`, id, calendarID)
	if err != nil {
		return translate(err)
	}
	return requireRows(result)
}

// ============================================================================
// CALENDAR EMAIL INVITES
// ============================================================================

func (s *Postgres) CreateEmailInvite(ctx context.Context, inv models.CalendarEmailInvite) (models.CalendarEmailInvite, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO calendar_email_invites (calendar_id, email, role, token, invited_by, expires_at)
		VALUES ($1, LOWER($2), $3, $4, $5, $6)
		RETURNING id, created_at
	`, inv.CalendarID, inv.Email, inv.Role, inv.Token, inv.InvitedBy, inv.ExpiresAt).Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		return models.CalendarEmailInvite{}, translate(err)
	}
	return inv, nil
}

func (s *Postgres) GetEmailInviteByToken(ctx context.Context, token string) (models.CalendarEmailInvite, error) {
	var inv models.CalendarEmailInvite
	err := s.db.QueryRowContext(ctx, `
		SELECT id, calendar_id, email, role, token, invited_by, expires_at, created_at
		FROM calendar_email_invites WHERE token = $1
	`, token).Scan(&inv.ID, &inv.CalendarID, &inv.Email, &inv.Role, &inv.Token, &inv.InvitedBy,
		&inv.ExpiresAt, &inv.CreatedAt)
	if err != nil {
		return models.CalendarEmailInvite{}, translate(err)
	}
	return inv, nil
}

func (s *Postgres) FindEmailInvite(ctx context.Context, calendarID, email string) (models.CalendarEmailInvite, error) {
	var inv models.CalendarEmailInvite
	err := s.db.QueryRowContext(ctx, `
		SELECT id, calendar_id, email, role, token, invited_by, expires_at, created_at
		FROM calendar_email_invites
		WHERE calendar_id = $1 AND LOWER(email) = LOWER($2)
	`, calendarID, email).Scan(&inv.ID, &inv.CalendarID, &inv.Email, &inv.Role, &inv.Token, &inv.InvitedBy,
		&inv.ExpiresAt, &inv.CreatedAt)
	if err != nil {
		return models.CalendarEmailInvite{}, translate(err)
	}
	return inv, nil
}

func (s *Postgres) ListEmailInvites(ctx context.Context, calendarID string) ([]models.CalendarEmailInvite, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, calendar_id, email, role, token, invited_by, expires_at, created_at
		FROM calendar_email_invites
		WHERE calendar_id = $1
		ORDER BY created_at DESC
	`, calendarID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var invites []models.CalendarEmailInvite
	for rows.Next() {
		var inv models.CalendarEmailInvite
		if err := rows.Scan(&inv.ID, &inv.CalendarID, &inv.Email, &inv.Role, &inv.Token, &inv.InvitedBy,
			&inv.ExpiresAt, &inv.CreatedAt); err != nil {
			return nil, err
		}
		invites = append(invites, inv)
	}
	return invites, rows.Err()
}

func (s *Postgres) DeleteEmailInvite(ctx context.Context, calendarID, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM calendar_email_invites
		WHERE id = $1 AND calendar_id = $2
	`, id, calendarID)
	if err != nil {
		return translate(err)
	}
	return requireRows(result)
}

func (s *Postgres) DeleteEmailInviteByToken(ctx context.Context, token string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM calendar_email_invites WHERE token = $1`, token)
	if err != nil {
		return translate(err)
	}
	return requireRows(result)
}
