package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LovationAdmin/calendar-api/apperrors"
	"github.com/LovationAdmin/calendar-api/models"
)

func TestCreateCalendarRequiresName(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Alice", "alice@example.com")

	_, err := f.calendars.Create(f.ctx, owner.ID, models.CreateCalendarRequest{Name: "   "})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestEnsureMainCalendarIsIdempotent(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Alice", "alice@example.com")

	first, err := f.calendars.EnsureMainCalendar(f.ctx, owner.ID)
	require.NoError(t, err)
	assert.True(t, first.IsMain)
	assert.True(t, first.IsOwner)

	second, err := f.calendars.EnsureMainCalendar(f.ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	calendars, err := f.calendars.List(f.ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, calendars, 1)
}

func TestGetCalendarAnnotatesRole(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Alice", "alice@example.com")
	cal := f.calendar(owner, "Vacances")
	bob := f.user("Bob", "bob@example.com")
	f.member(cal, bob, models.RoleCreator)

	got, err := f.calendars.Get(f.ctx, bob.ID, cal.ID)
	require.NoError(t, err)
	assert.False(t, got.IsOwner)
	assert.Equal(t, models.RoleCreator, got.Role)
	assert.Len(t, got.Members, 1)

	asOwner, err := f.calendars.Get(f.ctx, owner.ID, cal.ID)
	require.NoError(t, err)
	assert.True(t, asOwner.IsOwner)
	assert.Empty(t, asOwner.Role)
}

func TestGetCalendarDeniedForStranger(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Alice", "alice@example.com")
	cal := f.calendar(owner, "Vacances")
	stranger := f.user("Mallory", "mallory@example.com")

	_, err := f.calendars.Get(f.ctx, stranger.ID, cal.ID)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	_, err = f.calendars.Get(f.ctx, owner.ID, "no-such-calendar")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestUpdateCalendarDeniedOnMain(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Alice", "alice@example.com")
	main, err := f.calendars.EnsureMainCalendar(f.ctx, owner.ID)
	require.NoError(t, err)

	_, err = f.calendars.Update(f.ctx, owner.ID, main.ID, models.UpdateCalendarRequest{Name: "Renamed"})
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
}

func TestUpdateCalendarByAdminNotifies(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Alice", "alice@example.com")
	cal := f.calendar(owner, "Vacances")
	admin := f.user("Bob", "bob@example.com")
	f.member(cal, admin, models.RoleAdmin)

	updated, err := f.calendars.Update(f.ctx, admin.ID, cal.ID, models.UpdateCalendarRequest{Name: "Vacances 2026"})
	require.NoError(t, err)
	assert.Equal(t, "Vacances 2026", updated.Name)
	assert.Contains(t, f.notifier.kinds(), NotifyCalendarUpdated)
}

func TestDeleteCalendarOwnerOnly(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Alice", "alice@example.com")
	cal := f.calendar(owner, "Vacances")
	admin := f.user("Bob", "bob@example.com")
	f.member(cal, admin, models.RoleAdmin)

	// ADMIN can manage sharing but never delete the calendar itself.
	err := f.calendars.Delete(f.ctx, admin.ID, cal.ID)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	require.NoError(t, f.calendars.Delete(f.ctx, owner.ID, cal.ID))
	_, err = f.calendars.Get(f.ctx, owner.ID, cal.ID)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestDeleteMainCalendarDenied(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Alice", "alice@example.com")
	main, err := f.calendars.EnsureMainCalendar(f.ctx, owner.ID)
	require.NoError(t, err)

	err = f.calendars.Delete(f.ctx, owner.ID, main.ID)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
}
