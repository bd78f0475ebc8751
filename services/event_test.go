package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LovationAdmin/calendar-api/apperrors"
	"github.com/LovationAdmin/calendar-api/models"
)

func TestCreateEventAddsCreatorAsConfirmedParticipant(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Alice", "alice@example.com")
	cal := f.calendar(owner, "Vacances")

	ev := f.event(cal, owner, "Barbecue")

	participants, err := f.events.ListParticipants(f.ctx, owner.ID, ev.ID)
	require.NoError(t, err)
	require.Len(t, participants, 1)
	assert.Equal(t, owner.ID, participants[0].UserID)
	assert.True(t, participants[0].HasConfirmed)
	assert.Contains(t, f.notifier.kinds(), NotifyEventCreated)
}

func TestCreateEventRoleMatrix(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Alice", "alice@example.com")
	cal := f.calendar(owner, "Vacances")

	creator := f.user("Bob", "bob@example.com")
	reader := f.user("Carol", "carol@example.com")
	f.member(cal, creator, models.RoleCreator)
	f.member(cal, reader, models.RoleReader)

	start := time.Now().Add(24 * time.Hour)
	req := models.CreateEventRequest{Title: "Atelier", StartsAt: start, EndsAt: start.Add(time.Hour)}

	_, err := f.events.Create(f.ctx, creator.ID, cal.ID, req)
	require.NoError(t, err)

	_, err = f.events.Create(f.ctx, reader.ID, cal.ID, req)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
}

func TestCreateEventValidation(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Alice", "alice@example.com")
	cal := f.calendar(owner, "Vacances")
	start := time.Now().Add(24 * time.Hour)

	_, err := f.events.Create(f.ctx, owner.ID, cal.ID, models.CreateEventRequest{
		Title: "  ", StartsAt: start, EndsAt: start.Add(time.Hour),
	})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = f.events.Create(f.ctx, owner.ID, cal.ID, models.CreateEventRequest{
		Title: "Barbecue", StartsAt: start, EndsAt: start.Add(-time.Hour),
	})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestUpdateEventCreatorRoleCannotEditOthers(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Alice", "alice@example.com")
	cal := f.calendar(owner, "Vacances")
	bob := f.user("Bob", "bob@example.com")
	carol := f.user("Carol", "carol@example.com")
	f.member(cal, bob, models.RoleCreator)
	f.member(cal, carol, models.RoleCreator)
	ev := f.event(cal, bob, "Atelier")

	start := time.Now().Add(48 * time.Hour)
	req := models.UpdateEventRequest{Title: "Atelier bois", StartsAt: start, EndsAt: start.Add(time.Hour)}

	// CREATOR edits their own events only.
	_, err := f.events.Update(f.ctx, carol.ID, ev.ID, req)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	updated, err := f.events.Update(f.ctx, bob.ID, ev.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Atelier bois", updated.Title)
}

func TestUpdateEventAdminAndOwnerOverride(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Alice", "alice@example.com")
	cal := f.calendar(owner, "Vacances")
	bob := f.user("Bob", "bob@example.com")
	admin := f.user("Dave", "dave@example.com")
	f.member(cal, bob, models.RoleCreator)
	f.member(cal, admin, models.RoleAdmin)
	ev := f.event(cal, bob, "Atelier")

	start := time.Now().Add(48 * time.Hour)
	req := models.UpdateEventRequest{Title: "Atelier", StartsAt: start, EndsAt: start.Add(time.Hour)}

	_, err := f.events.Update(f.ctx, admin.ID, ev.ID, req)
	require.NoError(t, err)
	_, err = f.events.Update(f.ctx, owner.ID, ev.ID, req)
	require.NoError(t, err)
}

func TestDeleteEventCascades(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Alice", "alice@example.com")
	cal := f.calendar(owner, "Vacances")
	ev := f.event(cal, owner, "Barbecue")

	require.NoError(t, f.events.Delete(f.ctx, owner.ID, ev.ID))

	_, err := f.events.Get(f.ctx, owner.ID, ev.ID)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	assert.Contains(t, f.notifier.kinds(), NotifyEventDeleted)
}

func TestConfirmParticipationRequiresInvite(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Alice", "alice@example.com")
	cal := f.calendar(owner, "Vacances")
	bob := f.user("Bob", "bob@example.com")
	f.member(cal, bob, models.RoleReader)
	ev := f.event(cal, owner, "Barbecue")

	// No participant row yet: confirming does not create one.
	_, err := f.events.ConfirmParticipation(f.ctx, bob.ID, ev.ID, true)
	require.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	assert.Equal(t, "You are not invited", apperrors.Message(err))
}

func TestConfirmParticipationFlipsBothWays(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Alice", "alice@example.com")
	cal := f.calendar(owner, "Vacances")
	bob := f.user("Bob", "bob@example.com")
	f.member(cal, bob, models.RoleReader)
	ev := f.event(cal, owner, "Barbecue")

	created, err := f.invitations.CreateEventInvites(f.ctx, owner.ID, ev.ID, models.CreateEventInvitesRequest{
		Emails: []string{"bob@example.com"},
	})
	require.NoError(t, err)
	_, err = f.invitations.AcceptEventInvite(f.ctx, bob.ID, created[0].Token)
	require.NoError(t, err)

	p, err := f.events.ConfirmParticipation(f.ctx, bob.ID, ev.ID, false)
	require.NoError(t, err)
	assert.False(t, p.HasConfirmed)

	p, err = f.events.ConfirmParticipation(f.ctx, bob.ID, ev.ID, true)
	require.NoError(t, err)
	assert.True(t, p.HasConfirmed)

	// Confirming an already confirmed row is a no-op, not an error.
	p, err = f.events.ConfirmParticipation(f.ctx, bob.ID, ev.ID, true)
	require.NoError(t, err)
	assert.True(t, p.HasConfirmed)
}

func TestRemoveEventParticipantGuards(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Alice", "alice@example.com")
	cal := f.calendar(owner, "Vacances")
	bob := f.user("Bob", "bob@example.com")
	f.member(cal, bob, models.RoleAdmin)
	ev := f.event(cal, bob, "Atelier")

	err := f.events.RemoveParticipant(f.ctx, owner.ID, ev.ID, bob.ID)
	require.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
	assert.Equal(t, "The event creator cannot be removed", apperrors.Message(err))

	err = f.events.RemoveParticipant(f.ctx, bob.ID, ev.ID, owner.ID)
	require.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
	assert.Equal(t, "The calendar owner cannot be removed", apperrors.Message(err))
}

func TestRemoveEventParticipantSelfService(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Alice", "alice@example.com")
	cal := f.calendar(owner, "Vacances")
	bob := f.user("Bob", "bob@example.com")
	f.member(cal, bob, models.RoleReader)
	ev := f.event(cal, owner, "Barbecue")

	created, err := f.invitations.CreateEventInvites(f.ctx, owner.ID, ev.ID, models.CreateEventInvitesRequest{
		Emails: []string{"bob@example.com"},
	})
	require.NoError(t, err)
	_, err = f.invitations.AcceptEventInvite(f.ctx, bob.ID, created[0].Token)
	require.NoError(t, err)

	// A reader can remove themselves but nobody else.
	err = f.events.RemoveParticipant(f.ctx, bob.ID, ev.ID, owner.ID)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
	require.NoError(t, f.events.RemoveParticipant(f.ctx, bob.ID, ev.ID, bob.ID))

	participants, err := f.events.ListParticipants(f.ctx, owner.ID, ev.ID)
	require.NoError(t, err)
	require.Len(t, participants, 1)
	assert.Equal(t, owner.ID, participants[0].UserID)
}

func TestListEventsWindow(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Alice", "alice@example.com")
	cal := f.calendar(owner, "Vacances")

	now := time.Now()
	mk := func(title string, offset time.Duration) {
		_, err := f.events.Create(f.ctx, owner.ID, cal.ID, models.CreateEventRequest{
			Title:    title,
			StartsAt: now.Add(offset),
			EndsAt:   now.Add(offset + time.Hour),
		})
		require.NoError(t, err)
	}
	mk("Demain", 24*time.Hour)
	mk("Semaine prochaine", 7*24*time.Hour)

	events, err := f.events.List(f.ctx, owner.ID, cal.ID, now, now.Add(48*time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Demain", events[0].Title)
}
