package services

import (
	"context"
	"errors"

	"github.com/LovationAdmin/calendar-api/apperrors"
	"github.com/LovationAdmin/calendar-api/models"
	"github.com/LovationAdmin/calendar-api/store"
)

type MembershipService struct {
	base
}

func NewMembershipService(st store.Store, notifier Notifier) *MembershipService {
	return &MembershipService{base{store: st, notifier: notifier}}
}

func (s *MembershipService) ListMembers(ctx context.Context, actorID, calendarID string) ([]models.CalendarMember, error) {
	acc, err := s.access(ctx, calendarID, actorID)
	if err != nil {
		return nil, err
	}
	if !acc.CanView() {
		return nil, errNotAuthorized()
	}

	members, err := s.store.ListMembers(ctx, calendarID)
	if err != nil {
		return nil, apperrors.Internal("list members", err)
	}
	return members, nil
}

// UpdateRole changes a participant's role. The write is idempotent; the
// targeted notification only goes out when the role actually changed.
func (s *MembershipService) UpdateRole(ctx context.Context, actorID, calendarID, targetUserID, newRole string) (models.CalendarMember, error) {
	if !models.ValidRole(newRole) {
		return models.CalendarMember{}, apperrors.Validation("Invalid role")
	}

	acc, err := s.access(ctx, calendarID, actorID)
	if err != nil {
		return models.CalendarMember{}, err
	}
	if !acc.CanManageSharing() {
		return models.CalendarMember{}, errNotAuthorized()
	}
	if targetUserID == acc.Calendar.OwnerID {
		return models.CalendarMember{}, apperrors.Forbidden("Cannot change the role of the calendar owner")
	}

	member, err := s.store.GetMember(ctx, calendarID, targetUserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.CalendarMember{}, apperrors.NotFound("Participant not found")
		}
		return models.CalendarMember{}, apperrors.Internal("fetch participant", err)
	}

	changed := member.Role != newRole
	if err := s.store.UpdateMemberRole(ctx, calendarID, targetUserID, newRole); err != nil {
		return models.CalendarMember{}, apperrors.Internal("update role", err)
	}
	member.Role = newRole

	if changed {
		s.notify(NotifyRoleChanged, actorID, targetUserID, map[string]interface{}{
			"calendar_id": calendarID,
			"user_id":     targetUserID,
			"role":        newRole,
		})
	}
	return member, nil
}

// RemoveParticipant removes another user's membership. The owner can never
// be the target: that guard is structural and runs before the role check.
func (s *MembershipService) RemoveParticipant(ctx context.Context, actorID, calendarID, targetUserID string) error {
	acc, err := s.access(ctx, calendarID, actorID)
	if err != nil {
		return err
	}
	if targetUserID == acc.Calendar.OwnerID {
		return apperrors.Forbidden("The calendar owner cannot be removed")
	}
	if !acc.CanManageSharing() {
		return errNotAuthorized()
	}

	if err := s.store.RemoveMember(ctx, calendarID, targetUserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NotFound("Participant not found")
		}
		return apperrors.Internal("remove participant", err)
	}
	return nil
}

// Leave removes the actor's own membership. Owners cannot leave: there is
// no ownership transfer, a calendar without an owner cannot exist.
func (s *MembershipService) Leave(ctx context.Context, actorID, calendarID string) error {
	acc, err := s.access(ctx, calendarID, actorID)
	if err != nil {
		return err
	}
	if acc.IsOwner() {
		return apperrors.Forbidden("The owner cannot leave their own calendar")
	}
	if acc.Member == nil {
		return apperrors.NotFound("You are not a participant of this calendar")
	}

	if err := s.store.RemoveMember(ctx, calendarID, actorID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NotFound("You are not a participant of this calendar")
		}
		return apperrors.Internal("leave calendar", err)
	}
	return nil
}
