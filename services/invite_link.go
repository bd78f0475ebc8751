package services

import (
	"context"
	"errors"
	"time"

	"github.com/LovationAdmin/calendar-api/apperrors"
	"github.com/LovationAdmin/calendar-api/models"
	"github.com/LovationAdmin/calendar-api/store"
	"github.com/LovationAdmin/calendar-api/utils"
)

// InvitationService owns the lifecycle of the three invitation channels:
// anonymous invite links, calendar email invites and event email invites.
// Accepted and cancelled invitations are deleted; the only trace of an
// acceptance is the membership or participant row it produced.
type InvitationService struct {
	base
	email EmailSender
}

func NewInvitationService(st store.Store, notifier Notifier, email EmailSender) *InvitationService {
	return &InvitationService{base: base{store: st, notifier: notifier}, email: email}
}

// WithClock overrides the service clock. Used by tests to control expiry.
func (s *InvitationService) WithClock(now func() time.Time) *InvitationService {
	s.now = now
	return s
}

// CreateLink creates a multi-use invite link. The link id doubles as the
// token: anyone holding it may join until expiry or deletion.
func (s *InvitationService) CreateLink(ctx context.Context, actorID, calendarID string, req models.CreateInviteLinkRequest) (models.CalendarInviteLink, error) {
	acc, err := s.access(ctx, calendarID, actorID)
	if err != nil {
		return models.CalendarInviteLink{}, err
	}
	if !acc.CanManageSharing() {
		return models.CalendarInviteLink{}, errNotAuthorized()
	}

	role := req.Role
	if role == "" {
		role = DefaultInviteRole
	}
	if !models.ValidRole(role) {
		return models.CalendarInviteLink{}, apperrors.Validation("Invalid role")
	}

	link, err := s.store.CreateInviteLink(ctx, models.CalendarInviteLink{
		CalendarID: calendarID,
		Role:       role,
		ExpiresAt:  req.ExpiresAt,
	})
	if err != nil {
		return models.CalendarInviteLink{}, apperrors.Internal("create invite link", err)
	}
	return link, nil
}

func (s *InvitationService) ListLinks(ctx context.Context, actorID, calendarID string) ([]models.CalendarInviteLink, error) {
	acc, err := s.access(ctx, calendarID, actorID)
	if err != nil {
		return nil, err
	}
	if !acc.CanManageSharing() {
		return nil, errNotAuthorized()
	}

	links, err := s.store.ListInviteLinks(ctx, calendarID)
	if err != nil {
		return nil, apperrors.Internal("list invite links", err)
	}
	return links, nil
}

func (s *InvitationService) DeleteLink(ctx context.Context, actorID, calendarID, linkID string) error {
	acc, err := s.access(ctx, calendarID, actorID)
	if err != nil {
		return err
	}
	if !acc.CanManageSharing() {
		return errNotAuthorized()
	}

	if err := s.store.DeleteInviteLink(ctx, calendarID, linkID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NotFound("Invite link not found")
		}
		return apperrors.Internal("delete invite link", err)
	}
	return nil
}

// AcceptLink redeems an invite link for the actor. Links are multi-use:
// redemption never deletes them, every eligible holder may join until the
// link expires or is removed.
func (s *InvitationService) AcceptLink(ctx context.Context, actorID, linkID string) (models.CalendarMember, error) {
	link, err := s.store.GetInviteLink(ctx, linkID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.CalendarMember{}, apperrors.NotFound("Invite link not found")
		}
		return models.CalendarMember{}, apperrors.Internal("fetch invite link", err)
	}
	if isExpired(link.ExpiresAt, s.clock()) {
		return models.CalendarMember{}, apperrors.Expired("This invite link has expired")
	}

	cal, err := s.store.GetCalendar(ctx, link.CalendarID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.CalendarMember{}, apperrors.NotFound("Calendar not found")
		}
		return models.CalendarMember{}, apperrors.Internal("fetch calendar", err)
	}
	if cal.OwnerID == actorID {
		return models.CalendarMember{}, apperrors.Conflict("You already own this calendar")
	}
	if _, err := s.store.GetMember(ctx, cal.ID, actorID); err == nil {
		return models.CalendarMember{}, apperrors.Conflict("You are already a participant of this calendar")
	} else if !errors.Is(err, store.ErrNotFound) {
		return models.CalendarMember{}, apperrors.Internal("check membership", err)
	}

	member, err := s.store.AddMember(ctx, models.CalendarMember{
		CalendarID: cal.ID,
		UserID:     actorID,
		Role:       link.Role,
	})
	if err != nil {
		// Lost a race with a concurrent redemption by the same user.
		if errors.Is(err, store.ErrDuplicate) {
			return models.CalendarMember{}, apperrors.Conflict("You are already a participant of this calendar")
		}
		return models.CalendarMember{}, apperrors.Internal("add member", err)
	}

	s.notify(NotifyParticipantAdded, actorID, cal.ID, map[string]interface{}{
		"calendar_id": cal.ID,
		"user_id":     actorID,
		"role":        member.Role,
	})
	return member, nil
}

// logMailFailure records a failed invite mail without surfacing it:
// delivery is best-effort and never fails the invitation itself.
func logMailFailure(kind, to string, err error) {
	utils.LogWarn("Failed to send %s email to %s: %v", kind, utils.MaskEmail(to), err)
}
