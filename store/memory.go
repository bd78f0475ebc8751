package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/LovationAdmin/calendar-api/models"
)

// Memory is an in-process Store used by the service tests. It enforces the
// same unique constraints as the Postgres schema so duplicate writes fail
// with ErrDuplicate in both implementations.
type Memory struct {
	mu sync.Mutex

	users        map[string]models.User
	sessions     map[string]session
	calendars    map[string]models.Calendar
	members      map[string]models.CalendarMember    // keyed by id
	links        map[string]models.CalendarInviteLink
	emailInvites map[string]models.CalendarEmailInvite
	events       map[string]models.Event
	participants map[string]models.EventParticipant
	eventInvites map[string]models.EventEmailInvite
}

type session struct {
	userID    string
	expiresAt time.Time
}

func NewMemory() *Memory {
	return &Memory{
		users:        make(map[string]models.User),
		sessions:     make(map[string]session),
		calendars:    make(map[string]models.Calendar),
		members:      make(map[string]models.CalendarMember),
		links:        make(map[string]models.CalendarInviteLink),
		emailInvites: make(map[string]models.CalendarEmailInvite),
		events:       make(map[string]models.Event),
		participants: make(map[string]models.EventParticipant),
		eventInvites: make(map[string]models.EventEmailInvite),
	}
}

func newID() string { return uuid.New().String() }

// ============================================================================
// USERS
// ============================================================================

func (s *Memory) CreateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return models.User{}, ErrDuplicate
		}
	}
	user.ID = newID()
	user.Email = strings.ToLower(user.Email)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	s.users[user.ID] = user
	return user, nil
}

func (s *Memory) GetUser(_ context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return user, nil
}

func (s *Memory) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (s *Memory) UpdateUser(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	user.Email = existing.Email
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = time.Now()
	s.users[user.ID] = user
	return nil
}

// ============================================================================
// SESSIONS
// ============================================================================

func (s *Memory) CreateSession(_ context.Context, userID, refreshToken string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[refreshToken]; ok {
		return ErrDuplicate
	}
	s.sessions[refreshToken] = session{userID: userID, expiresAt: expiresAt}
	return nil
}

func (s *Memory) GetSessionUser(_ context.Context, refreshToken string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[refreshToken]
	if !ok || time.Now().After(sess.expiresAt) {
		return "", ErrNotFound
	}
	return sess.userID, nil
}

func (s *Memory) DeleteSession(_ context.Context, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, refreshToken)
	return nil
}

// ============================================================================
// CALENDARS
// ============================================================================

func (s *Memory) CreateCalendar(_ context.Context, cal models.Calendar) (models.Calendar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cal.ID = newID()
	cal.CreatedAt = time.Now()
	cal.UpdatedAt = cal.CreatedAt
	s.calendars[cal.ID] = cal
	return cal, nil
}

func (s *Memory) GetCalendar(_ context.Context, id string) (models.Calendar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cal, ok := s.calendars[id]
	if !ok {
		return models.Calendar{}, ErrNotFound
	}
	return cal, nil
}

func (s *Memory) GetMainCalendar(_ context.Context, ownerID string) (models.Calendar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cal := range s.calendars {
		if cal.OwnerID == ownerID && cal.IsMain {
			return cal, nil
		}
	}
	return models.Calendar{}, ErrNotFound
}

func (s *Memory) ListCalendars(_ context.Context, userID string) ([]models.Calendar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var calendars []models.Calendar
	for _, cal := range s.calendars {
		if cal.OwnerID == userID {
			cal.IsOwner = true
			calendars = append(calendars, cal)
			continue
		}
		for _, m := range s.members {
			if m.CalendarID == cal.ID && m.UserID == userID {
				cal.Role = m.Role
				calendars = append(calendars, cal)
				break
			}
		}
	}
	sort.Slice(calendars, func(i, j int) bool {
		if calendars[i].IsMain != calendars[j].IsMain {
			return calendars[i].IsMain
		}
		return calendars[i].CreatedAt.Before(calendars[j].CreatedAt)
	})
	return calendars, nil
}

func (s *Memory) UpdateCalendar(_ context.Context, cal models.Calendar) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.calendars[cal.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Name = cal.Name
	existing.Description = cal.Description
	existing.Color = cal.Color
	existing.IsVisible = cal.IsVisible
	existing.UpdatedAt = time.Now()
	s.calendars[cal.ID] = existing
	return nil
}

func (s *Memory) DeleteCalendar(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.calendars[id]; !ok {
		return ErrNotFound
	}
	delete(s.calendars, id)
	for mid, m := range s.members {
		if m.CalendarID == id {
			delete(s.members, mid)
		}
	}
	for lid, l := range s.links {
		if l.CalendarID == id {
			delete(s.links, lid)
		}
	}
	for iid, inv := range s.emailInvites {
		if inv.CalendarID == id {
			delete(s.emailInvites, iid)
		}
	}
	for eid, ev := range s.events {
		if ev.CalendarID == id {
			s.deleteEventLocked(eid)
		}
	}
	return nil
}

func (s *Memory) deleteEventLocked(eventID string) {
	delete(s.events, eventID)
	for pid, p := range s.participants {
		if p.EventID == eventID {
			delete(s.participants, pid)
		}
	}
	for iid, inv := range s.eventInvites {
		if inv.EventID == eventID {
			delete(s.eventInvites, iid)
		}
	}
}

// ============================================================================
// CALENDAR MEMBERS
// ============================================================================

func (s *Memory) AddMember(_ context.Context, m models.CalendarMember) (models.CalendarMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.members {
		if existing.CalendarID == m.CalendarID && existing.UserID == m.UserID {
			return models.CalendarMember{}, ErrDuplicate
		}
	}
	m.ID = newID()
	m.JoinedAt = time.Now()
	if u, ok := s.users[m.UserID]; ok {
		m.UserName = u.Name
		m.UserEmail = u.Email
	}
	s.members[m.ID] = m
	return m, nil
}

func (s *Memory) GetMember(_ context.Context, calendarID, userID string) (models.CalendarMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.members {
		if m.CalendarID == calendarID && m.UserID == userID {
			return m, nil
		}
	}
	return models.CalendarMember{}, ErrNotFound
}

func (s *Memory) ListMembers(_ context.Context, calendarID string) ([]models.CalendarMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var members []models.CalendarMember
	for _, m := range s.members {
		if m.CalendarID == calendarID {
			members = append(members, m)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].JoinedAt.Before(members[j].JoinedAt) })
	return members, nil
}

func (s *Memory) UpdateMemberRole(_ context.Context, calendarID, userID, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, m := range s.members {
		if m.CalendarID == calendarID && m.UserID == userID {
			m.Role = role
			s.members[id] = m
			return nil
		}
	}
	return ErrNotFound
}

func (s *Memory) RemoveMember(_ context.Context, calendarID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, m := range s.members {
		if m.CalendarID == calendarID && m.UserID == userID {
			delete(s.members, id)
			return nil
		}
	}
	return ErrNotFound
}

// ============================================================================
// INVITE LINKS
// ============================================================================

func (s *Memory) CreateInviteLink(_ context.Context, link models.CalendarInviteLink) (models.CalendarInviteLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	link.ID = newID()
	link.CreatedAt = time.Now()
	s.links[link.ID] = link
	return link, nil
}

func (s *Memory) GetInviteLink(_ context.Context, id string) (models.CalendarInviteLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	link, ok := s.links[id]
	if !ok {
		return models.CalendarInviteLink{}, ErrNotFound
	}
	return link, nil
}

func (s *Memory) ListInviteLinks(_ context.Context, calendarID string) ([]models.CalendarInviteLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var links []models.CalendarInviteLink
	for _, link := range s.links {
		if link.CalendarID == calendarID {
			links = append(links, link)
		}
	}
	sort.Slice(links, func(i, j int) bool { return links[i].CreatedAt.After(links[j].CreatedAt) })
	return links, nil
}

func (s *Memory) DeleteInviteLink(_ context.Context, calendarID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	link, ok := s.links[id]
	if !ok || link.CalendarID != calendarID {
		return ErrNotFound
	}
	delete(s.links, id)
	return nil
}

// ============================================================================
// CALENDAR EMAIL INVITES
// ============================================================================

func (s *Memory) CreateEmailInvite(_ context.Context, inv models.CalendarEmailInvite) (models.CalendarEmailInvite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.emailInvites {
		if existing.Token == inv.Token {
			return models.CalendarEmailInvite{}, ErrDuplicate
		}
		if existing.CalendarID == inv.CalendarID && strings.EqualFold(existing.Email, inv.Email) {
			return models.CalendarEmailInvite{}, ErrDuplicate
		}
	}
	inv.ID = newID()
	inv.Email = strings.ToLower(inv.Email)
	inv.CreatedAt = time.Now()
	s.emailInvites[inv.ID] = inv
	return inv, nil
}

func (s *Memory) GetEmailInviteByToken(_ context.Context, token string) (models.CalendarEmailInvite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inv := range s.emailInvites {
		if inv.Token == token {
			return inv, nil
		}
	}
	return models.CalendarEmailInvite{}, ErrNotFound
}

func (s *Memory) FindEmailInvite(_ context.Context, calendarID, email string) (models.CalendarEmailInvite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inv := range s.emailInvites {
		if inv.CalendarID == calendarID && strings.EqualFold(inv.Email, email) {
			return inv, nil
		}
	}
	return models.CalendarEmailInvite{}, ErrNotFound
}

func (s *Memory) ListEmailInvites(_ context.Context, calendarID string) ([]models.CalendarEmailInvite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var invites []models.CalendarEmailInvite
	for _, inv := range s.emailInvites {
		if inv.CalendarID == calendarID {
			invites = append(invites, inv)
		}
	}
	sort.Slice(invites, func(i, j int) bool { return invites[i].CreatedAt.After(invites[j].CreatedAt) })
	return invites, nil
}

func (s *Memory) DeleteEmailInvite(_ context.Context, calendarID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.emailInvites[id]
	if !ok || inv.CalendarID != calendarID {
		return ErrNotFound
	}
	delete(s.emailInvites, id)
	return nil
}

func (s *Memory) DeleteEmailInviteByToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, inv := range s.emailInvites {
		if inv.Token == token {
			delete(s.emailInvites, id)
			return nil
		}
	}
	return ErrNotFound
}

// ============================================================================
// EVENTS
// ============================================================================

func (s *Memory) CreateEvent(_ context.Context, ev models.Event) (models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev.ID = newID()
	ev.CreatedAt = time.Now()
	ev.UpdatedAt = ev.CreatedAt
	s.events[ev.ID] = ev
	return ev, nil
}

func (s *Memory) GetEvent(_ context.Context, id string) (models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[id]
	if !ok {
		return models.Event{}, ErrNotFound
	}
	return ev, nil
}

func (s *Memory) ListEvents(_ context.Context, calendarID string, from, to time.Time) ([]models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var events []models.Event
	for _, ev := range s.events {
		if ev.CalendarID == calendarID && ev.StartsAt.Before(to) && ev.EndsAt.After(from) {
			events = append(events, ev)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].StartsAt.Before(events[j].StartsAt) })
	return events, nil
}

func (s *Memory) UpdateEvent(_ context.Context, ev models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.events[ev.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Title = ev.Title
	existing.Description = ev.Description
	existing.StartsAt = ev.StartsAt
	existing.EndsAt = ev.EndsAt
	existing.Color = ev.Color
	existing.UpdatedAt = time.Now()
	s.events[ev.ID] = existing
	return nil
}

func (s *Memory) DeleteEvent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return ErrNotFound
	}
	s.deleteEventLocked(id)
	return nil
}

// ============================================================================
// EVENT PARTICIPANTS
// ============================================================================

func (s *Memory) AddParticipant(_ context.Context, p models.EventParticipant) (models.EventParticipant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.participants {
		if existing.EventID == p.EventID && existing.UserID == p.UserID {
			return models.EventParticipant{}, ErrDuplicate
		}
	}
	return s.insertParticipantLocked(p), nil
}

func (s *Memory) UpsertParticipant(_ context.Context, p models.EventParticipant) (models.EventParticipant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, existing := range s.participants {
		if existing.EventID == p.EventID && existing.UserID == p.UserID {
			existing.HasConfirmed = p.HasConfirmed
			s.participants[id] = existing
			return existing, nil
		}
	}
	return s.insertParticipantLocked(p), nil
}

func (s *Memory) insertParticipantLocked(p models.EventParticipant) models.EventParticipant {
	p.ID = newID()
	p.CreatedAt = time.Now()
	if u, ok := s.users[p.UserID]; ok {
		p.UserName = u.Name
		p.UserEmail = u.Email
	}
	s.participants[p.ID] = p
	return p
}

func (s *Memory) GetParticipant(_ context.Context, eventID, userID string) (models.EventParticipant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.participants {
		if p.EventID == eventID && p.UserID == userID {
			return p, nil
		}
	}
	return models.EventParticipant{}, ErrNotFound
}

func (s *Memory) ListParticipants(_ context.Context, eventID string) ([]models.EventParticipant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var participants []models.EventParticipant
	for _, p := range s.participants {
		if p.EventID == eventID {
			participants = append(participants, p)
		}
	}
	sort.Slice(participants, func(i, j int) bool { return participants[i].CreatedAt.Before(participants[j].CreatedAt) })
	return participants, nil
}

func (s *Memory) SetConfirmation(_ context.Context, eventID, userID string, hasConfirmed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.participants {
		if p.EventID == eventID && p.UserID == userID {
			p.HasConfirmed = hasConfirmed
			s.participants[id] = p
			return nil
		}
	}
	return ErrNotFound
}

func (s *Memory) RemoveParticipant(_ context.Context, eventID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.participants {
		if p.EventID == eventID && p.UserID == userID {
			delete(s.participants, id)
			return nil
		}
	}
	return ErrNotFound
}

// ============================================================================
// EVENT EMAIL INVITES
// ============================================================================

func (s *Memory) CreateEventInvite(_ context.Context, inv models.EventEmailInvite) (models.EventEmailInvite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.eventInvites {
		if existing.Token == inv.Token {
			return models.EventEmailInvite{}, ErrDuplicate
		}
		if existing.EventID == inv.EventID && strings.EqualFold(existing.Email, inv.Email) {
			return models.EventEmailInvite{}, ErrDuplicate
		}
	}
	inv.ID = newID()
	inv.Email = strings.ToLower(inv.Email)
	inv.CreatedAt = time.Now()
	s.eventInvites[inv.ID] = inv
	return inv, nil
}

func (s *Memory) GetEventInviteByToken(_ context.Context, token string) (models.EventEmailInvite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inv := range s.eventInvites {
		if inv.Token == token {
			return inv, nil
		}
	}
	return models.EventEmailInvite{}, ErrNotFound
}

func (s *Memory) FindEventInvite(_ context.Context, eventID, email string) (models.EventEmailInvite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inv := range s.eventInvites {
		if inv.EventID == eventID && strings.EqualFold(inv.Email, email) {
			return inv, nil
		}
	}
	return models.EventEmailInvite{}, ErrNotFound
}

func (s *Memory) ListEventInvites(_ context.Context, eventID string) ([]models.EventEmailInvite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var invites []models.EventEmailInvite
	for _, inv := range s.eventInvites {
		if inv.EventID == eventID {
			invites = append(invites, inv)
		}
	}
	sort.Slice(invites, func(i, j int) bool { return invites[i].CreatedAt.After(invites[j].CreatedAt) })
	return invites, nil
}

func (s *Memory) DeleteEventInvite(_ context.Context, eventID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.eventInvites[id]
	if !ok || inv.EventID != eventID {
		return ErrNotFound
	}
	delete(s.eventInvites, id)
	return nil
}

func (s *Memory) DeleteEventInviteByToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, inv := range s.eventInvites {
		if inv.Token == token {
			delete(s.eventInvites, id)
			return nil
		}
	}
	return ErrNotFound
}
