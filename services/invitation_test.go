package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LovationAdmin/calendar-api/apperrors"
	"github.com/LovationAdmin/calendar-api/models"
)

// ============================================================================
// INVITE LINKS
// ============================================================================

func TestCreateLinkDefaultsToReader(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Alice", "alice@example.com")
	cal := f.calendar(owner, "Vacances")

	link, err := f.invitations.CreateLink(f.ctx, owner.ID, cal.ID, models.CreateInviteLinkRequest{})
	require.NoError(t, err)
	assert.Equal(t, models.RoleReader, link.Role)
	assert.Nil(t, link.ExpiresAt)
}

func TestCreateLinkRejectsUnknownRole(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Alice", "alice@example.com")
	cal := f.calendar(owner, "Vacances")

	_, err := f.invitations.CreateLink(f.ctx, owner.ID, cal.ID, models.CreateInviteLinkRequest{Role: "OWNER"})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestCreateLinkDeniedForCreatorAndReader(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Alice", "alice@example.com")
	cal := f.calendar(owner, "Vacances")

	for _, role := range []string{models.RoleCreator, models.RoleReader} {
		u := f.user("User "+role, role+"@example.com")
		f.member(cal, u, role)
		_, err := f.invitations.CreateLink(f.ctx, u.ID, cal.ID, models.CreateInviteLinkRequest{})
		assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err), "role %s", role)
	}
}

func TestCreateLinkDeniedOnMainCalendar(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Alice", "alice@example.com")
	main, err := f.calendars.EnsureMainCalendar(f.ctx, owner.ID)
	require.NoError(t, err)

	_, err = f.invitations.CreateLink(f.ctx, owner.ID, main.ID, models.CreateInviteLinkRequest{})
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
}

func TestAcceptLinkIsMultiUse(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Alice", "alice@example.com")
	cal := f.calendar(owner, "Vacances")
	link, err := f.invitations.CreateLink(f.ctx, owner.ID, cal.ID, models.CreateInviteLinkRequest{Role: models.RoleCreator})
	require.NoError(t, err)

	bob := f.user("Bob", "bob@example.com")
	carol := f.user("Carol", "carol@example.com")

	m1, err := f.invitations.AcceptLink(f.ctx, bob.ID, link.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleCreator, m1.Role)

	// The link survives its first redemption.
	m2, err := f.invitations.AcceptLink(f.ctx, carol.ID, link.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleCreator, m2.Role)

	members, err := f.members.ListMembers(f.ctx, owner.ID, cal.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)
	assert.Contains(t, f.notifier.kinds(), NotifyParticipantAdded)
}

func TestAcceptLinkExpired(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Alice", "alice@example.com")
	cal := f.calendar(owner, "Vacances")
	link, err := f.invitations.CreateLink(f.ctx, owner.ID, cal.ID, models.CreateInviteLinkRequest{ExpiresAt: hoursFromNow(1)})
	require.NoError(t, err)

	bob := f.user("Bob", "bob@example.com")

	// Advance the clock past the expiry instead of waiting.
	f.invitations.WithClock(func() time.Time { return time.Now().Add(2 * time.Hour) })
	_, err = f.invitations.AcceptLink(f.ctx, bob.ID, link.ID)
	assert.Equal(t, apperrors.KindExpired, apperrors.KindOf(err))
	assert.Equal(t, "This invite link has expired", apperrors.Message(err))

	members, err := f.members.ListMembers(f.ctx, owner.ID, cal.ID)
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestAcceptLinkOwnerAndExistingMemberConflict(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Alice", "alice@example.com")
	cal := f.calendar(owner, "Vacances")
	link, err := f.invitations.CreateLink(f.ctx, owner.ID, cal.ID, models.CreateInviteLinkRequest{})
	require.NoError(t, err)

	_, err = f.invitations.AcceptLink(f.ctx, owner.ID, link.ID)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

	bob := f.user("Bob", "bob@example.com")
	_, err = f.invitations.AcceptLink(f.ctx, bob.ID, link.ID)
	require.NoError(t, err)
	_, err = f.invitations.AcceptLink(f.ctx, bob.ID, link.ID)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestDeleteLinkStopsRedemption(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Alice", "alice@example.com")
	cal := f.calendar(owner, "Vacances")
	link, err := f.invitations.CreateLink(f.ctx, owner.ID, cal.ID, models.CreateInviteLinkRequest{})
	require.NoError(t, err)

	require.NoError(t, f.invitations.DeleteLink(f.ctx, owner.ID, cal.ID, link.ID))

	bob := f.user("Bob", "bob@example.com")
	_, err = f.invitations.AcceptLink(f.ctx, bob.ID, link.ID)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

// ============================================================================
// CALENDAR EMAIL INVITES
// ============================================================================

func TestEmailInviteRoundTrip(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Alice", "alice@example.com")
	cal := f.calendar(owner, "Vacances")
	bob := f.user("Bob", "bob@example.com")

	inv, err := f.invitations.CreateEmailInvite(f.ctx, owner.ID, cal.ID, models.CreateEmailInviteRequest{
		Email: "Bob@Example.com",
		Role:  models.RoleCreator,
	})
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", inv.Email)
	assert.NotEmpty(t, inv.Token)
	assert.Equal(t, []string{"bob@example.com"}, f.mail.calendarMails)

	member, err := f.invitations.AcceptEmailInvite(f.ctx, bob.ID, inv.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleCreator, member.Role)

	// Single-use: the accepted invite is gone.
	_, err = f.invitations.AcceptEmailInvite(f.ctx, bob.ID, inv.Token)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	invites, err := f.invitations.ListEmailInvites(f.ctx, owner.ID, cal.ID)
	require.NoError(t, err)
	assert.Empty(t, invites)
}

func TestEmailInviteWrongRecipient(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Alice", "alice@example.com")
	cal := f.calendar(owner, "Vacances")
	f.user("Bob", "bob@example.com")
	mallory := f.user("Mallory", "mallory@example.com")

	inv, err := f.invitations.CreateEmailInvite(f.ctx, owner.ID, cal.ID, models.CreateEmailInviteRequest{Email: "bob@example.com"})
	require.NoError(t, err)

	// Holding the token is not enough: the account email must match.
	_, err = f.invitations.AcceptEmailInvite(f.ctx, mallory.ID, inv.Token)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	members, err := f.members.ListMembers(f.ctx, owner.ID, cal.ID)
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestEmailInviteDuplicatesAndExistingMembers(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Alice", "alice@example.com")
	cal := f.calendar(owner, "Vacances")
	bob := f.user("Bob", "bob@example.com")
	f.member(cal, bob, models.RoleReader)

	_, err := f.invitations.CreateEmailInvite(f.ctx, owner.ID, cal.ID, models.CreateEmailInviteRequest{Email: "bob@example.com"})
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

	_, err = f.invitations.CreateEmailInvite(f.ctx, owner.ID, cal.ID, models.CreateEmailInviteRequest{Email: "alice@example.com"})
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

	_, err = f.invitations.CreateEmailInvite(f.ctx, owner.ID, cal.ID, models.CreateEmailInviteRequest{Email: "carol@example.com"})
	require.NoError(t, err)
	_, err = f.invitations.CreateEmailInvite(f.ctx, owner.ID, cal.ID, models.CreateEmailInviteRequest{Email: "Carol@example.com"})
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestEmailInviteReplacesExpiredOne(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Alice", "alice@example.com")
	cal := f.calendar(owner, "Vacances")

	first, err := f.invitations.CreateEmailInvite(f.ctx, owner.ID, cal.ID, models.CreateEmailInviteRequest{
		Email:     "carol@example.com",
		ExpiresAt: hoursFromNow(1),
	})
	require.NoError(t, err)

	f.invitations.WithClock(func() time.Time { return time.Now().Add(2 * time.Hour) })
	second, err := f.invitations.CreateEmailInvite(f.ctx, owner.ID, cal.ID, models.CreateEmailInviteRequest{Email: "carol@example.com"})
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)

	invites, err := f.invitations.ListEmailInvites(f.ctx, owner.ID, cal.ID)
	require.NoError(t, err)
	assert.Len(t, invites, 1)
}

func TestEmailInviteMailFailureDoesNotFailInvite(t *testing.T) {
	f := newFixture(t)
	f.mail.fail = true
	owner := f.user("Alice", "alice@example.com")
	cal := f.calendar(owner, "Vacances")

	inv, err := f.invitations.CreateEmailInvite(f.ctx, owner.ID, cal.ID, models.CreateEmailInviteRequest{Email: "bob@example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, inv.Token)
}

func TestEmailInviteInfo(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Alice", "alice@example.com")
	cal := f.calendar(owner, "Vacances")

	inv, err := f.invitations.CreateEmailInvite(f.ctx, owner.ID, cal.ID, models.CreateEmailInviteRequest{Email: "bob@example.com"})
	require.NoError(t, err)

	info, err := f.invitations.GetEmailInviteInfo(f.ctx, inv.Token)
	require.NoError(t, err)
	assert.Equal(t, "Vacances", info.CalendarName)
	assert.Equal(t, "Alice", info.InviterName)
	assert.Equal(t, "bob@example.com", info.Email)

	_, err = f.invitations.GetEmailInviteInfo(f.ctx, "no-such-token")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

// ============================================================================
// EVENT EMAIL INVITES
// ============================================================================

func TestCreateEventInvitesFiltersToCalendarMembers(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Alice", "alice@example.com")
	cal := f.calendar(owner, "Vacances")
	bob := f.user("Bob", "bob@example.com")
	f.member(cal, bob, models.RoleReader)
	f.user("Dave", "dave@example.com") // has an account but is not a member
	ev := f.event(cal, owner, "Barbecue")

	// The outsider email is dropped silently, not an error.
	created, err := f.invitations.CreateEventInvites(f.ctx, owner.ID, ev.ID, models.CreateEventInvitesRequest{
		Emails: []string{"bob@example.com", "dave@example.com", "stranger@example.com"},
	})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "bob@example.com", created[0].Email)
	assert.Equal(t, bob.ID, created[0].UserID)
	assert.Equal(t, []string{"bob@example.com"}, f.mail.eventMails)
}

func TestCreateEventInvitesNoEligibleEmails(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Alice", "alice@example.com")
	cal := f.calendar(owner, "Vacances")
	ev := f.event(cal, owner, "Barbecue")

	_, err := f.invitations.CreateEventInvites(f.ctx, owner.ID, ev.ID, models.CreateEventInvitesRequest{
		Emails: []string{"stranger@example.com"},
	})
	require.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	assert.Equal(t, "No valid calendar participants to invite", apperrors.Message(err))
}

func TestCreateEventInvitesAllAlreadyParticipating(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Alice", "alice@example.com")
	cal := f.calendar(owner, "Vacances")
	bob := f.user("Bob", "bob@example.com")
	f.member(cal, bob, models.RoleReader)
	ev := f.event(cal, owner, "Barbecue")

	inv, err := f.invitations.CreateEventInvites(f.ctx, owner.ID, ev.ID, models.CreateEventInvitesRequest{
		Emails: []string{"bob@example.com"},
	})
	require.NoError(t, err)
	_, err = f.invitations.AcceptEventInvite(f.ctx, bob.ID, inv[0].Token)
	require.NoError(t, err)

	_, err = f.invitations.CreateEventInvites(f.ctx, owner.ID, ev.ID, models.CreateEventInvitesRequest{
		Emails: []string{"bob@example.com"},
	})
	require.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	assert.Equal(t, "All selected users are already participants", apperrors.Message(err))
}

func TestCreateEventInvitesSkipsPendingDuplicates(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Alice", "alice@example.com")
	cal := f.calendar(owner, "Vacances")
	bob := f.user("Bob", "bob@example.com")
	carol := f.user("Carol", "carol@example.com")
	f.member(cal, bob, models.RoleReader)
	f.member(cal, carol, models.RoleReader)
	ev := f.event(cal, owner, "Barbecue")

	_, err := f.invitations.CreateEventInvites(f.ctx, owner.ID, ev.ID, models.CreateEventInvitesRequest{
		Emails: []string{"bob@example.com"},
	})
	require.NoError(t, err)

	// Bob already has a live invite; only Carol's is created.
	created, err := f.invitations.CreateEventInvites(f.ctx, owner.ID, ev.ID, models.CreateEventInvitesRequest{
		Emails: []string{"bob@example.com", "carol@example.com"},
	})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "carol@example.com", created[0].Email)
}

func TestCreateEventInvitesDeniedForCreatorRole(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Alice", "alice@example.com")
	cal := f.calendar(owner, "Vacances")
	bob := f.user("Bob", "bob@example.com")
	f.member(cal, bob, models.RoleCreator)
	ev := f.event(cal, bob, "Atelier")

	// CREATOR can create events but not invite to them.
	_, err := f.invitations.CreateEventInvites(f.ctx, bob.ID, ev.ID, models.CreateEventInvitesRequest{
		Emails: []string{"bob@example.com"},
	})
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
}

func TestAcceptEventInviteConfirmsParticipant(t *testing.T) {
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

	p, err := f.invitations.AcceptEventInvite(f.ctx, bob.ID, created[0].Token)
	require.NoError(t, err)
	assert.True(t, p.HasConfirmed)

	// The invite is consumed.
	_, err = f.invitations.AcceptEventInvite(f.ctx, bob.ID, created[0].Token)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestAcceptEventInviteRequiresCalendarMembership(t *testing.T) {
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

	// Bob was removed from the calendar between invite and redemption.
	require.NoError(t, f.members.RemoveParticipant(f.ctx, owner.ID, cal.ID, bob.ID))

	_, err = f.invitations.AcceptEventInvite(f.ctx, bob.ID, created[0].Token)
	require.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
	assert.Equal(t, "You must be a participant of the calendar to join this event", apperrors.Message(err))
}
