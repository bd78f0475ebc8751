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

// CreateEventInvites invites calendar participants to an event by email.
//
// An event invite promotes calendar-level trust to event level, it is not
// a way into the calendar: candidate emails are filtered to current
// calendar members (the owner is not part of that set), and anything
// outside it is dropped silently rather than erroring per address.
func (s *InvitationService) CreateEventInvites(ctx context.Context, actorID, eventID string, req models.CreateEventInvitesRequest) ([]models.EventEmailInvite, error) {
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("Event not found")
		}
		return nil, apperrors.Internal("fetch event", err)
	}

	acc, err := s.access(ctx, event.CalendarID, actorID)
	if err != nil {
		return nil, err
	}
	if !acc.CanInviteToEvent() {
		return nil, errNotAuthorized()
	}

	members, err := s.store.ListMembers(ctx, event.CalendarID)
	if err != nil {
		return nil, apperrors.Internal("list members", err)
	}
	memberByEmail := make(map[string]models.CalendarMember, len(members))
	for _, m := range members {
		memberByEmail[strings.ToLower(m.UserEmail)] = m
	}

	// First filter: keep only emails of current calendar members.
	var eligible []string
	seen := make(map[string]bool)
	for _, raw := range req.Emails {
		email := strings.ToLower(strings.TrimSpace(raw))
		if email == "" || seen[email] {
			continue
		}
		seen[email] = true
		if _, ok := memberByEmail[email]; ok {
			eligible = append(eligible, email)
		}
	}
	if len(eligible) == 0 {
		return nil, apperrors.Validation("No valid calendar participants to invite")
	}

	// Second filter: drop emails already participating in the event.
	participants, err := s.store.ListParticipants(ctx, eventID)
	if err != nil {
		return nil, apperrors.Internal("list participants", err)
	}
	participating := make(map[string]bool, len(participants))
	for _, p := range participants {
		participating[strings.ToLower(p.UserEmail)] = true
	}
	var pending []string
	for _, email := range eligible {
		if !participating[email] {
			pending = append(pending, email)
		}
	}
	if len(pending) == 0 {
		return nil, apperrors.Validation("All selected users are already participants")
	}

	var created []models.EventEmailInvite
	for _, email := range pending {
		// A live invite for this (event, email) is skipped, not an error.
		if existing, err := s.store.FindEventInvite(ctx, eventID, email); err == nil {
			if !isExpired(existing.ExpiresAt, s.clock()) {
				continue
			}
			if err := s.store.DeleteEventInvite(ctx, eventID, existing.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
				return nil, apperrors.Internal("replace expired invite", err)
			}
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.Internal("check pending invite", err)
		}

		inv := models.EventEmailInvite{
			EventID:   eventID,
			Email:     email,
			UserID:    memberByEmail[email].UserID,
			Token:     uuid.New().String(),
			InvitedBy: actorID,
			ExpiresAt: req.ExpiresAt,
		}
		inv, err := s.store.CreateEventInvite(ctx, inv)
		if err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				continue
			}
			return nil, apperrors.Internal("create event invite", err)
		}
		created = append(created, inv)

		if s.email != nil {
			inviter, err := s.store.GetUser(ctx, actorID)
			inviterName := "A user"
			if err == nil {
				inviterName = inviter.Name
			}
			if err := s.email.SendEventInvite(inv.Email, inviterName, event.Title, inv.Token); err != nil {
				logMailFailure("event invitation", inv.Email, err)
			}
		}
	}
	return created, nil
}

func (s *InvitationService) GetEventInviteInfo(ctx context.Context, token string) (models.InviteInfo, error) {
	inv, err := s.store.GetEventInviteByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.InviteInfo{}, apperrors.NotFound("Invite not found")
		}
		return models.InviteInfo{}, apperrors.Internal("fetch invite", err)
	}
	if isExpired(inv.ExpiresAt, s.clock()) {
		return models.InviteInfo{}, apperrors.Expired("Invite has expired")
	}

	event, err := s.store.GetEvent(ctx, inv.EventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.InviteInfo{}, apperrors.NotFound("Event not found")
		}
		return models.InviteInfo{}, apperrors.Internal("fetch event", err)
	}

	info := models.InviteInfo{
		EventTitle:  event.Title,
		InviterName: "A user",
		Email:       inv.Email,
	}
	if inviter, err := s.store.GetUser(ctx, inv.InvitedBy); err == nil {
		info.InviterName = inviter.Name
	}
	return info, nil
}

func (s *InvitationService) ListEventInvites(ctx context.Context, actorID, eventID string) ([]models.EventEmailInvite, error) {
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("Event not found")
		}
		return nil, apperrors.Internal("fetch event", err)
	}

	acc, err := s.access(ctx, event.CalendarID, actorID)
	if err != nil {
		return nil, err
	}
	if !acc.CanInviteToEvent() {
		return nil, errNotAuthorized()
	}

	invites, err := s.store.ListEventInvites(ctx, eventID)
	if err != nil {
		return nil, apperrors.Internal("list event invites", err)
	}
	return invites, nil
}

func (s *InvitationService) DeleteEventInvite(ctx context.Context, actorID, eventID, inviteID string) error {
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NotFound("Event not found")
		}
		return apperrors.Internal("fetch event", err)
	}

	acc, err := s.access(ctx, event.CalendarID, actorID)
	if err != nil {
		return err
	}
	if !acc.CanInviteToEvent() {
		return errNotAuthorized()
	}

	if err := s.store.DeleteEventInvite(ctx, eventID, inviteID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NotFound("Invite not found")
		}
		return apperrors.Internal("delete event invite", err)
	}
	return nil
}

// AcceptEventInvite redeems an event invite. Eligibility is re-checked at
// redemption: the actor must still be a calendar member of the event's
// calendar (a member row, not ownership) even when the email matches.
func (s *InvitationService) AcceptEventInvite(ctx context.Context, actorID, token string) (models.EventParticipant, error) {
	inv, err := s.store.GetEventInviteByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.EventParticipant{}, apperrors.NotFound("Invite not found")
		}
		return models.EventParticipant{}, apperrors.Internal("fetch invite", err)
	}
	if isExpired(inv.ExpiresAt, s.clock()) {
		return models.EventParticipant{}, apperrors.Expired("Invite has expired")
	}

	event, err := s.store.GetEvent(ctx, inv.EventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.EventParticipant{}, apperrors.NotFound("Event not found")
		}
		return models.EventParticipant{}, apperrors.Internal("fetch event", err)
	}

	actor, err := s.store.GetUser(ctx, actorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.EventParticipant{}, apperrors.NotFound("User not found")
		}
		return models.EventParticipant{}, apperrors.Internal("fetch user", err)
	}
	if !strings.EqualFold(actor.Email, inv.Email) {
		return models.EventParticipant{}, apperrors.Forbidden("This invite is for a different email address")
	}

	if _, err := s.store.GetMember(ctx, event.CalendarID, actorID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.EventParticipant{}, apperrors.Forbidden("You must be a participant of the calendar to join this event")
		}
		return models.EventParticipant{}, apperrors.Internal("check membership", err)
	}

	participant, err := s.store.UpsertParticipant(ctx, models.EventParticipant{
		EventID:      event.ID,
		UserID:       actorID,
		HasConfirmed: true,
	})
	if err != nil {
		return models.EventParticipant{}, apperrors.Internal("add participant", err)
	}

	if err := s.store.DeleteEventInviteByToken(ctx, token); err != nil && !errors.Is(err, store.ErrNotFound) {
		utils.LogWarn("Failed to delete accepted event invite %s: %v", utils.MaskToken(token), err)
	}

	s.notify(NotifyParticipantAdded, actorID, event.CalendarID, map[string]interface{}{
		"event_id": event.ID,
		"user_id":  actorID,
	})
	return participant, nil
}
