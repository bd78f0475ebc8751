package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/LovationAdmin/calendar-api/models"
	"github.com/LovationAdmin/calendar-api/store"
)

// notifierRecorder captures notifications so tests can assert on what was
// pushed without a websocket in the loop.
type notifierRecorder struct {
	mu     sync.Mutex
	events []notification
}

type notification struct {
	kind        string
	initiatorID string
	targetID    string
	payload     map[string]interface{}
}

func (r *notifierRecorder) Notify(kind, initiatorID, targetID string, payload map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, notification{kind: kind, initiatorID: initiatorID, targetID: targetID, payload: payload})
}

func (r *notifierRecorder) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]string, len(r.events))
	for i, e := range r.events {
		kinds[i] = e.kind
	}
	return kinds
}

// mailRecorder captures outgoing invite mails. With fail set it errors on
// every send, which must never fail the mutation it accompanies.
type mailRecorder struct {
	mu            sync.Mutex
	calendarMails []string
	eventMails    []string
	fail          bool
}

type mailError struct{}

func (mailError) Error() string { return "smtp unavailable" }

func (m *mailRecorder) SendCalendarInvite(to, inviterName, calendarName, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return mailError{}
	}
	m.calendarMails = append(m.calendarMails, to)
	return nil
}

func (m *mailRecorder) SendEventInvite(to, inviterName, eventTitle, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return mailError{}
	}
	m.eventMails = append(m.eventMails, to)
	return nil
}

// fixture wires every service onto one in-memory store.
type fixture struct {
	t           *testing.T
	ctx         context.Context
	store       *store.Memory
	notifier    *notifierRecorder
	mail        *mailRecorder
	calendars   *CalendarService
	members     *MembershipService
	events      *EventService
	invitations *InvitationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := store.NewMemory()
	notifier := &notifierRecorder{}
	mail := &mailRecorder{}
	return &fixture{
		t:           t,
		ctx:         context.Background(),
		store:       st,
		notifier:    notifier,
		mail:        mail,
		calendars:   NewCalendarService(st, notifier),
		members:     NewMembershipService(st, notifier),
		events:      NewEventService(st, notifier),
		invitations: NewInvitationService(st, notifier, mail),
	}
}

func (f *fixture) user(name, email string) models.User {
	f.t.Helper()
	u, err := f.store.CreateUser(f.ctx, models.User{Name: name, Email: email})
	require.NoError(f.t, err)
	return u
}

func (f *fixture) calendar(owner models.User, name string) models.Calendar {
	f.t.Helper()
	cal, err := f.calendars.Create(f.ctx, owner.ID, models.CreateCalendarRequest{Name: name})
	require.NoError(f.t, err)
	return cal
}

func (f *fixture) member(cal models.Calendar, u models.User, role string) models.CalendarMember {
	f.t.Helper()
	m, err := f.store.AddMember(f.ctx, models.CalendarMember{CalendarID: cal.ID, UserID: u.ID, Role: role})
	require.NoError(f.t, err)
	return m
}

func (f *fixture) event(cal models.Calendar, creator models.User, title string) models.Event {
	f.t.Helper()
	start := time.Now().Add(24 * time.Hour)
	ev, err := f.events.Create(f.ctx, creator.ID, cal.ID, models.CreateEventRequest{
		Title:    title,
		StartsAt: start,
		EndsAt:   start.Add(time.Hour),
	})
	require.NoError(f.t, err)
	return ev
}

func hoursFromNow(h int) *time.Time {
	t := time.Now().Add(time.Duration(h) * time.Hour)
	return &t
}
