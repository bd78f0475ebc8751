package models

import "time"

// CalendarInviteLink is an anonymous multi-use invite. The link id is the
// token: anyone holding it may join until the link expires or is deleted.
type CalendarInviteLink struct {
	ID         string     `json:"id"`
	CalendarID string     `json:"calendar_id"`
	Role       string     `json:"role"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// CalendarEmailInvite is a single-use invite addressed to one email.
// It is deleted when accepted; membership is the only trace left.
type CalendarEmailInvite struct {
	ID         string     `json:"id"`
	CalendarID string     `json:"calendar_id"`
	Email      string     `json:"email"`
	Role       string     `json:"role"`
	Token      string     `json:"token"`
	InvitedBy  string     `json:"invited_by"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// EventEmailInvite promotes calendar-level trust to event level. The
// invited email must already belong to a member of the event's calendar.
type EventEmailInvite struct {
	ID        string     `json:"id"`
	EventID   string     `json:"event_id"`
	Email     string     `json:"email"`
	UserID    string     `json:"user_id,omitempty"` // resolved when the email matches an account
	Token     string     `json:"token"`
	InvitedBy string     `json:"invited_by"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type CreateInviteLinkRequest struct {
	Role      string     `json:"role"`
	ExpiresAt *time.Time `json:"expires_at"`
}

type AcceptInviteLinkRequest struct {
	LinkID string `json:"link_id" binding:"required"`
}

type CreateEmailInviteRequest struct {
	Email     string     `json:"email" binding:"required,email"`
	Role      string     `json:"role"`
	ExpiresAt *time.Time `json:"expires_at"`
}

type AcceptInvitationRequest struct {
	Token string `json:"token" binding:"required"`
}

type CreateEventInvitesRequest struct {
	Emails    []string   `json:"emails" binding:"required,min=1"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// InviteInfo is what the accept page renders before the user signs in.
type InviteInfo struct {
	CalendarName string `json:"calendar_name,omitempty"`
	EventTitle   string `json:"event_title,omitempty"`
	InviterName  string `json:"inviter_name"`
	Email        string `json:"email"`
	Role         string `json:"role,omitempty"`
}
