package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/LovationAdmin/calendar-api/apperrors"
	"github.com/LovationAdmin/calendar-api/models"
	"github.com/LovationAdmin/calendar-api/store"
	"github.com/LovationAdmin/calendar-api/utils"
)

// CreateEmailInvite creates a single-use invite addressed to one email.
//
// The duplicate checks here are advisory reads, not a transactional
// guarantee: two concurrent requests can both pass them. The unique
// constraints in the store turn the losing writer into a Conflict.
func (s *InvitationService) CreateEmailInvite(ctx context.Context, actorID, calendarID string, req models.CreateEmailInviteRequest) (models.CalendarEmailInvite, error) {
	acc, err := s.access(ctx, calendarID, actorID)
	if err != nil {
		return models.CalendarEmailInvite{}, err
	}
	if !acc.CanManageSharing() {
		return models.CalendarEmailInvite{}, errNotAuthorized()
	}

	role := req.Role
	if role == "" {
		role = DefaultInviteRole
	}
	if !models.ValidRole(role) {
		return models.CalendarEmailInvite{}, apperrors.Validation("Invalid role")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	// If the email already belongs to an account, reject when that account
	// is the owner or an existing member.
	if user, err := s.store.GetUserByEmail(ctx, email); err == nil {
		if user.ID == acc.Calendar.OwnerID {
			return models.CalendarEmailInvite{}, apperrors.Conflict("User already owns this calendar")
		}
		if _, err := s.store.GetMember(ctx, calendarID, user.ID); err == nil {
			return models.CalendarEmailInvite{}, apperrors.Conflict("User is already a participant")
		} else if !errors.Is(err, store.ErrNotFound) {
			return models.CalendarEmailInvite{}, apperrors.Internal("check membership", err)
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		return models.CalendarEmailInvite{}, apperrors.Internal("look up user", err)
	}

	if existing, err := s.store.FindEmailInvite(ctx, calendarID, email); err == nil {
		if !isExpired(existing.ExpiresAt, s.clock()) {
			return models.CalendarEmailInvite{}, apperrors.Conflict("Invitation already sent")
		}
		// Stale invite: replace it.
		if err := s.store.DeleteEmailInvite(ctx, calendarID, existing.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return models.CalendarEmailInvite{}, apperrors.Internal("replace expired invitation", err)
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		return models.CalendarEmailInvite{}, apperrors.Internal("check pending invitation", err)
	}

	inv, err := s.store.CreateEmailInvite(ctx, models.CalendarEmailInvite{
		CalendarID: calendarID,
		Email:      email,
		Role:       role,
		Token:      uuid.New().String(),
		InvitedBy:  actorID,
		ExpiresAt:  req.ExpiresAt,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return models.CalendarEmailInvite{}, apperrors.Conflict("Invitation already sent")
		}
		return models.CalendarEmailInvite{}, apperrors.Internal("create invitation", err)
	}

	if s.email != nil {
		inviter, err := s.store.GetUser(ctx, actorID)
		inviterName := "A user"
		if err == nil {
			inviterName = inviter.Name
		}
		if err := s.email.SendCalendarInvite(inv.Email, inviterName, acc.Calendar.Name, inv.Token); err != nil {
			logMailFailure("calendar invitation", inv.Email, err)
		}
	}
	return inv, nil
}

// GetEmailInviteInfo resolves a token into what the accept page renders.
// It is reachable without calendar membership: holding the token is
// the credential.
func (s *InvitationService) GetEmailInviteInfo(ctx context.Context, token string) (models.InviteInfo, error) {
	inv, err := s.store.GetEmailInviteByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.InviteInfo{}, apperrors.NotFound("Invitation not found")
		}
		return models.InviteInfo{}, apperrors.Internal("fetch invitation", err)
	}
	if isExpired(inv.ExpiresAt, s.clock()) {
		return models.InviteInfo{}, apperrors.Expired("Invitation has expired")
	}

	cal, err := s.store.GetCalendar(ctx, inv.CalendarID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.InviteInfo{}, apperrors.NotFound("Calendar not found")
		}
		return models.InviteInfo{}, apperrors.Internal("fetch calendar", err)
	}

	info := models.InviteInfo{
		CalendarName: cal.Name,
		InviterName:  "A user",
		Email:        inv.Email,
		Role:         inv.Role,
	}
	if inviter, err := s.store.GetUser(ctx, inv.InvitedBy); err == nil {
		info.InviterName = inviter.Name
	}
	return info, nil
}

func (s *InvitationService) ListEmailInvites(ctx context.Context, actorID, calendarID string) ([]models.CalendarEmailInvite, error) {
	acc, err := s.access(ctx, calendarID, actorID)
	if err != nil {
		return nil, err
	}
	if !acc.CanManageSharing() {
		return nil, errNotAuthorized()
	}

	invites, err := s.store.ListEmailInvites(ctx, calendarID)
	if err != nil {
		return nil, apperrors.Internal("list invitations", err)
	}
	return invites, nil
}

func (s *InvitationService) DeleteEmailInvite(ctx context.Context, actorID, calendarID, inviteID string) error {
	acc, err := s.access(ctx, calendarID, actorID)
	if err != nil {
		return err
	}
	if !acc.CanManageSharing() {
		return errNotAuthorized()
	}

	if err := s.store.DeleteEmailInvite(ctx, calendarID, inviteID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NotFound("Invitation not found")
		}
		return apperrors.Internal("delete invitation", err)
	}
	return nil
}

// AcceptEmailInvite redeems a single-use email invite. The invite is
// deleted on success; a second attempt with the same token is NotFound.
func (s *InvitationService) AcceptEmailInvite(ctx context.Context, actorID, token string) (models.CalendarMember, error) {
	inv, err := s.store.GetEmailInviteByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.CalendarMember{}, apperrors.NotFound("Invitation not found")
		}
		return models.CalendarMember{}, apperrors.Internal("fetch invitation", err)
	}
	if isExpired(inv.ExpiresAt, s.clock()) {
		return models.CalendarMember{}, apperrors.Expired("Invitation has expired")
	}

	cal, err := s.store.GetCalendar(ctx, inv.CalendarID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.CalendarMember{}, apperrors.NotFound("Calendar not found")
		}
		return models.CalendarMember{}, apperrors.Internal("fetch calendar", err)
	}

	actor, err := s.store.GetUser(ctx, actorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.CalendarMember{}, apperrors.NotFound("User not found")
		}
		return models.CalendarMember{}, apperrors.Internal("fetch user", err)
	}
	if !strings.EqualFold(actor.Email, inv.Email) {
		return models.CalendarMember{}, apperrors.Forbidden("This invitation is for a different email address")
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
		Role:       inv.Role,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return models.CalendarMember{}, apperrors.Conflict("You are already a participant of this calendar")
		}
		return models.CalendarMember{}, apperrors.Internal("add member", err)
	}

	// Single-use: acceptance consumes the invite. A concurrent acceptance
	// may have deleted it already; that is not an error here.
	if err := s.store.DeleteEmailInviteByToken(ctx, token); err != nil && !errors.Is(err, store.ErrNotFound) {
		utils.LogWarn("Failed to delete accepted invitation %s: %v", utils.MaskToken(token), err)
	}

	s.notify(NotifyParticipantAdded, actorID, cal.ID, map[string]interface{}{
		"calendar_id": cal.ID,
		"user_id":     actorID,
		"role":        member.Role,
	})
	return member, nil
}
