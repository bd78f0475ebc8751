package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/LovationAdmin/calendar-api/models"
)

func accessWith(cal models.Calendar, actorID, role string) Access {
	acc := Access{ActorID: actorID, Calendar: cal}
	if role != "" {
		acc.Member = &models.CalendarMember{CalendarID: cal.ID, UserID: actorID, Role: role}
	}
	return acc
}

func TestAccessOwnerHasNoRole(t *testing.T) {
	cal := models.Calendar{ID: "c1", OwnerID: "alice"}
	acc := accessWith(cal, "alice", "")

	assert.True(t, acc.IsOwner())
	assert.Empty(t, acc.Role())
	assert.True(t, acc.CanView())
	assert.True(t, acc.CanManageSharing())
	assert.True(t, acc.CanDeleteCalendar())
}

func TestAccessRoleMatrix(t *testing.T) {
	cal := models.Calendar{ID: "c1", OwnerID: "alice"}
	event := models.Event{ID: "e1", CalendarID: "c1", CreatedBy: "alice"}

	tests := []struct {
		role          string
		view          bool
		manageSharing bool
		createEvent   bool
		editOthers    bool
		inviteToEvent bool
	}{
		{role: models.RoleAdmin, view: true, manageSharing: true, createEvent: true, editOthers: true, inviteToEvent: true},
		{role: models.RoleCreator, view: true, manageSharing: false, createEvent: true, editOthers: false, inviteToEvent: false},
		{role: models.RoleReader, view: true, manageSharing: false, createEvent: false, editOthers: false, inviteToEvent: false},
		{role: "", view: false, manageSharing: false, createEvent: false, editOthers: false, inviteToEvent: false},
	}
	for _, tc := range tests {
		acc := accessWith(cal, "bob", tc.role)
		assert.Equal(t, tc.view, acc.CanView(), "CanView role=%q", tc.role)
		assert.Equal(t, tc.manageSharing, acc.CanManageSharing(), "CanManageSharing role=%q", tc.role)
		assert.Equal(t, tc.createEvent, acc.CanCreateEvent(), "CanCreateEvent role=%q", tc.role)
		assert.Equal(t, tc.editOthers, acc.CanEditEvent(event), "CanEditEvent role=%q", tc.role)
		assert.Equal(t, tc.inviteToEvent, acc.CanInviteToEvent(), "CanInviteToEvent role=%q", tc.role)
		assert.False(t, acc.CanDeleteCalendar(), "CanDeleteCalendar role=%q", tc.role)
	}
}

func TestAccessMainCalendarFreezesSharing(t *testing.T) {
	cal := models.Calendar{ID: "c1", OwnerID: "alice", IsMain: true}
	acc := accessWith(cal, "alice", "")

	assert.True(t, acc.CanView())
	assert.True(t, acc.CanCreateEvent())
	assert.False(t, acc.CanManageSharing())
	assert.False(t, acc.CanDeleteCalendar())
}

func TestAccessHolidayCalendarIsReadOnly(t *testing.T) {
	cal := models.Calendar{ID: "c1", OwnerID: "alice", IsHoliday: true}
	acc := accessWith(cal, "alice", "")

	assert.True(t, acc.CanView())
	assert.False(t, acc.CanCreateEvent())
	assert.False(t, acc.CanManageSharing())
	assert.False(t, acc.CanDeleteCalendar())
}

func TestAccessEventOwnership(t *testing.T) {
	cal := models.Calendar{ID: "c1", OwnerID: "alice"}
	own := models.Event{ID: "e1", CalendarID: "c1", CreatedBy: "bob"}
	other := models.Event{ID: "e2", CalendarID: "c1", CreatedBy: "carol"}

	acc := accessWith(cal, "bob", models.RoleCreator)
	assert.True(t, acc.CanEditEvent(own))
	assert.False(t, acc.CanEditEvent(other))

	assert.True(t, acc.CanRemoveEventParticipant("bob"))
	assert.False(t, acc.CanRemoveEventParticipant("carol"))
}
