package services

import (
	"github.com/LovationAdmin/calendar-api/apperrors"
	"github.com/LovationAdmin/calendar-api/models"
)

// Access is the authorization snapshot for one actor on one calendar.
// It is built from explicit store lookups; decisions below are pure
// functions over it and perform no I/O.
//
// Ownership is a calendar attribute, not a membership role: the owner
// never has a member row, and Member is nil for them.
type Access struct {
	ActorID  string
	Calendar models.Calendar
	Member   *models.CalendarMember
}

func (a Access) IsOwner() bool {
	return a.Calendar.OwnerID == a.ActorID
}

// Role returns the actor's member role, or "" for the owner and non-members.
func (a Access) Role() string {
	if a.Member == nil {
		return ""
	}
	return a.Member.Role
}

// CanView: the owner or any member, READER included.
func (a Access) CanView() bool {
	return a.IsOwner() || a.Member != nil
}

// CanManageSharing covers calendar metadata mutation, visibility, invite
// links, email invites and participant role changes/removals. Main and
// holiday calendars deny this unconditionally, whatever the role.
func (a Access) CanManageSharing() bool {
	if a.Calendar.IsMain || a.Calendar.IsHoliday {
		return false
	}
	return a.IsOwner() || a.Role() == models.RoleAdmin
}

// CanDeleteCalendar: owner only, never for main or holiday calendars.
func (a Access) CanDeleteCalendar() bool {
	if a.Calendar.IsMain || a.Calendar.IsHoliday {
		return false
	}
	return a.IsOwner()
}

// CanCreateEvent: owner, ADMIN or CREATOR. Holiday calendars are
// system-managed and reject event creation outright.
func (a Access) CanCreateEvent() bool {
	if a.Calendar.IsHoliday {
		return false
	}
	if a.IsOwner() {
		return true
	}
	role := a.Role()
	return role == models.RoleAdmin || role == models.RoleCreator
}

// CanEditEvent: the event creator, the calendar owner, or an ADMIN.
// CREATOR role alone is not enough to touch someone else's event.
func (a Access) CanEditEvent(ev models.Event) bool {
	if ev.CreatedBy == a.ActorID {
		return true
	}
	return a.IsOwner() || a.Role() == models.RoleAdmin
}

// CanInviteToEvent: owner or ADMIN only, never CREATOR or READER.
func (a Access) CanInviteToEvent() bool {
	return a.IsOwner() || a.Role() == models.RoleAdmin
}

// CanRemoveEventParticipant: self-removal is always allowed; removing
// anyone else needs the owner or an ADMIN.
func (a Access) CanRemoveEventParticipant(targetUserID string) bool {
	if targetUserID == a.ActorID {
		return true
	}
	return a.IsOwner() || a.Role() == models.RoleAdmin
}

// errNotAuthorized is the default-deny signal for every predicate above.
func errNotAuthorized() error {
	return apperrors.Forbidden("Not authorized")
}
