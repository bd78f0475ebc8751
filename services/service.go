package services

import (
	"context"
	"errors"
	"time"

	"github.com/LovationAdmin/calendar-api/apperrors"
	"github.com/LovationAdmin/calendar-api/store"
)

// DefaultInviteRole is the role granted when an invite link or email
// invite does not name one. This is the single place it is declared.
const DefaultInviteRole = "READER"

// Notification kinds pushed to the notification collaborator.
const (
	NotifyParticipantAdded = "participant_added"
	NotifyRoleChanged      = "role_changed"
	NotifyCalendarUpdated  = "calendar_updated"
	NotifyEventCreated     = "event_created"
	NotifyEventUpdated     = "event_updated"
	NotifyEventDeleted     = "event_deleted"
)

// Notifier is the fire-and-forget notification collaborator. Implementations
// must swallow and log their own failures: a notification error never
// affects the outcome of the state transition that triggered it.
type Notifier interface {
	Notify(kind, initiatorID, targetID string, payload map[string]interface{})
}

// EmailSender delivers invitation mails, best-effort.
type EmailSender interface {
	SendCalendarInvite(to, inviterName, calendarName, token string) error
	SendEventInvite(to, inviterName, eventTitle, token string) error
}

// base carries the collaborators shared by every service. The clock is
// injectable so expiry behavior is testable.
type base struct {
	store    store.Store
	notifier Notifier
	now      func() time.Time
}

func (b *base) clock() time.Time {
	if b.now != nil {
		return b.now()
	}
	return time.Now()
}

func (b *base) notify(kind, initiatorID, targetID string, payload map[string]interface{}) {
	if b.notifier == nil {
		return
	}
	b.notifier.Notify(kind, initiatorID, targetID, payload)
}

// access fetches the authorization snapshot for an actor on a calendar.
// A missing calendar is NotFound; a missing member row just leaves
// Access.Member nil.
func (b *base) access(ctx context.Context, calendarID, actorID string) (Access, error) {
	cal, err := b.store.GetCalendar(ctx, calendarID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Access{}, apperrors.NotFound("Calendar not found")
		}
		return Access{}, apperrors.Internal("fetch calendar", err)
	}

	acc := Access{ActorID: actorID, Calendar: cal}
	member, err := b.store.GetMember(ctx, calendarID, actorID)
	if err == nil {
		acc.Member = &member
	} else if !errors.Is(err, store.ErrNotFound) {
		return Access{}, apperrors.Internal("fetch membership", err)
	}
	return acc, nil
}

// isExpired implements the shared expiry rule: a nil expiry never expires.
func isExpired(expiresAt *time.Time, now time.Time) bool {
	return expiresAt != nil && expiresAt.Before(now)
}
