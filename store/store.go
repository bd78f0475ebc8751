// Package store defines the persistence collaborator consumed by the
// service layer. Implementations return fully-populated model values;
// services never assume a partially loaded object graph.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/LovationAdmin/calendar-api/models"
)

var (
	// ErrNotFound signals that no row matched the lookup.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate signals a unique-constraint violation on write.
	ErrDuplicate = errors.New("store: duplicate")
)

type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	GetUser(ctx context.Context, id string) (models.User, error)
	// GetUserByEmail matches case-insensitively.
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	UpdateUser(ctx context.Context, user models.User) error
}

type SessionStore interface {
	CreateSession(ctx context.Context, userID, refreshToken string, expiresAt time.Time) error
	// GetSessionUser returns the user id owning an unexpired refresh token.
	GetSessionUser(ctx context.Context, refreshToken string) (string, error)
	DeleteSession(ctx context.Context, refreshToken string) error
}

type CalendarStore interface {
	CreateCalendar(ctx context.Context, cal models.Calendar) (models.Calendar, error)
	GetCalendar(ctx context.Context, id string) (models.Calendar, error)
	// GetMainCalendar returns the owner's personal calendar, if provisioned.
	GetMainCalendar(ctx context.Context, ownerID string) (models.Calendar, error)
	// ListCalendars returns calendars the user owns or is a member of.
	ListCalendars(ctx context.Context, userID string) ([]models.Calendar, error)
	UpdateCalendar(ctx context.Context, cal models.Calendar) error
	// DeleteCalendar cascades to members, links, invites and events.
	DeleteCalendar(ctx context.Context, id string) error
}

type MembershipStore interface {
	AddMember(ctx context.Context, m models.CalendarMember) (models.CalendarMember, error)
	GetMember(ctx context.Context, calendarID, userID string) (models.CalendarMember, error)
	ListMembers(ctx context.Context, calendarID string) ([]models.CalendarMember, error)
	UpdateMemberRole(ctx context.Context, calendarID, userID, role string) error
	RemoveMember(ctx context.Context, calendarID, userID string) error
}

type InviteLinkStore interface {
	CreateInviteLink(ctx context.Context, link models.CalendarInviteLink) (models.CalendarInviteLink, error)
	GetInviteLink(ctx context.Context, id string) (models.CalendarInviteLink, error)
	ListInviteLinks(ctx context.Context, calendarID string) ([]models.CalendarInviteLink, error)
	DeleteInviteLink(ctx context.Context, calendarID, id string) error
}

type EmailInviteStore interface {
	CreateEmailInvite(ctx context.Context, inv models.CalendarEmailInvite) (models.CalendarEmailInvite, error)
	GetEmailInviteByToken(ctx context.Context, token string) (models.CalendarEmailInvite, error)
	// FindEmailInvite locates the live invite for (calendar, email), matched
	// case-insensitively on email.
	FindEmailInvite(ctx context.Context, calendarID, email string) (models.CalendarEmailInvite, error)
	ListEmailInvites(ctx context.Context, calendarID string) ([]models.CalendarEmailInvite, error)
	DeleteEmailInvite(ctx context.Context, calendarID, id string) error
	DeleteEmailInviteByToken(ctx context.Context, token string) error
}

type EventStore interface {
	CreateEvent(ctx context.Context, ev models.Event) (models.Event, error)
	GetEvent(ctx context.Context, id string) (models.Event, error)
	ListEvents(ctx context.Context, calendarID string, from, to time.Time) ([]models.Event, error)
	UpdateEvent(ctx context.Context, ev models.Event) error
	DeleteEvent(ctx context.Context, id string) error
}

type EventParticipantStore interface {
	AddParticipant(ctx context.Context, p models.EventParticipant) (models.EventParticipant, error)
	// UpsertParticipant creates the row or updates has_confirmed in place.
	UpsertParticipant(ctx context.Context, p models.EventParticipant) (models.EventParticipant, error)
	GetParticipant(ctx context.Context, eventID, userID string) (models.EventParticipant, error)
	ListParticipants(ctx context.Context, eventID string) ([]models.EventParticipant, error)
	SetConfirmation(ctx context.Context, eventID, userID string, hasConfirmed bool) error
	RemoveParticipant(ctx context.Context, eventID, userID string) error
}

type EventInviteStore interface {
	CreateEventInvite(ctx context.Context, inv models.EventEmailInvite) (models.EventEmailInvite, error)
	GetEventInviteByToken(ctx context.Context, token string) (models.EventEmailInvite, error)
	FindEventInvite(ctx context.Context, eventID, email string) (models.EventEmailInvite, error)
	ListEventInvites(ctx context.Context, eventID string) ([]models.EventEmailInvite, error)
	DeleteEventInvite(ctx context.Context, eventID, id string) error
	DeleteEventInviteByToken(ctx context.Context, token string) error
}

// Store aggregates every collaborator the services need.
type Store interface {
	UserStore
	SessionStore
	CalendarStore
	MembershipStore
	InviteLinkStore
	EmailInviteStore
	EventStore
	EventParticipantStore
	EventInviteStore
}
