package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/LovationAdmin/calendar-api/apperrors"
	"github.com/LovationAdmin/calendar-api/models"
	"github.com/LovationAdmin/calendar-api/store"
)

type EventService struct {
	base
}

func NewEventService(st store.Store, notifier Notifier) *EventService {
	return &EventService{base{store: st, notifier: notifier}}
}

func (s *EventService) Create(ctx context.Context, actorID, calendarID string, req models.CreateEventRequest) (models.Event, error) {
	acc, err := s.access(ctx, calendarID, actorID)
	if err != nil {
		return models.Event{}, err
	}
	if !acc.CanCreateEvent() {
		return models.Event{}, errNotAuthorized()
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return models.Event{}, apperrors.Validation("Event title is required")
	}
	if !req.EndsAt.After(req.StartsAt) {
		return models.Event{}, apperrors.Validation("Event must end after it starts")
	}

	event, err := s.store.CreateEvent(ctx, models.Event{
		CalendarID:  calendarID,
		Title:       title,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Color:       req.Color,
		CreatedBy:   actorID,
	})
	if err != nil {
		return models.Event{}, apperrors.Internal("create event", err)
	}

	// The creator participates implicitly, already confirmed.
	if _, err := s.store.AddParticipant(ctx, models.EventParticipant{
		EventID:      event.ID,
		UserID:       actorID,
		HasConfirmed: true,
	}); err != nil && !errors.Is(err, store.ErrDuplicate) {
		return models.Event{}, apperrors.Internal("add creator as participant", err)
	}

	s.notify(NotifyEventCreated, actorID, calendarID, map[string]interface{}{
		"calendar_id": calendarID,
		"event_id":    event.ID,
		"title":       event.Title,
	})
	return event, nil
}

func (s *EventService) Get(ctx context.Context, actorID, eventID string) (models.Event, error) {
	event, acc, err := s.eventAccess(ctx, actorID, eventID)
	if err != nil {
		return models.Event{}, err
	}
	if !acc.CanView() {
		return models.Event{}, errNotAuthorized()
	}
	return event, nil
}

func (s *EventService) List(ctx context.Context, actorID, calendarID string, from, to time.Time) ([]models.Event, error) {
	acc, err := s.access(ctx, calendarID, actorID)
	if err != nil {
		return nil, err
	}
	if !acc.CanView() {
		return nil, errNotAuthorized()
	}

	if from.IsZero() {
		from = time.Now().AddDate(0, -1, 0)
	}
	if to.IsZero() {
		to = time.Now().AddDate(0, 3, 0)
	}

	events, err := s.store.ListEvents(ctx, calendarID, from, to)
	if err != nil {
		return nil, apperrors.Internal("list events", err)
	}
	return events, nil
}

func (s *EventService) Update(ctx context.Context, actorID, eventID string, req models.UpdateEventRequest) (models.Event, error) {
	event, acc, err := s.eventAccess(ctx, actorID, eventID)
	if err != nil {
		return models.Event{}, err
	}
	if !acc.CanEditEvent(event) {
		return models.Event{}, errNotAuthorized()
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return models.Event{}, apperrors.Validation("Event title is required")
	}
	if !req.EndsAt.After(req.StartsAt) {
		return models.Event{}, apperrors.Validation("Event must end after it starts")
	}

	event.Title = title
	event.Description = req.Description
	event.StartsAt = req.StartsAt
	event.EndsAt = req.EndsAt
	event.Color = req.Color
	if err := s.store.UpdateEvent(ctx, event); err != nil {
		return models.Event{}, apperrors.Internal("update event", err)
	}

	s.notify(NotifyEventUpdated, actorID, event.CalendarID, map[string]interface{}{
		"calendar_id": event.CalendarID,
		"event_id":    event.ID,
	})
	return event, nil
}

func (s *EventService) Delete(ctx context.Context, actorID, eventID string) error {
	event, acc, err := s.eventAccess(ctx, actorID, eventID)
	if err != nil {
		return err
	}
	if !acc.CanEditEvent(event) {
		return errNotAuthorized()
	}

	if err := s.store.DeleteEvent(ctx, eventID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NotFound("Event not found")
		}
		return apperrors.Internal("delete event", err)
	}

	s.notify(NotifyEventDeleted, actorID, event.CalendarID, map[string]interface{}{
		"calendar_id": event.CalendarID,
		"event_id":    event.ID,
	})
	return nil
}

// ConfirmParticipation flips the actor's RSVP flag. It never creates the
// participant row: only an invite acceptance or the event creation path
// does that. The flip is idempotent and freely reversible.
func (s *EventService) ConfirmParticipation(ctx context.Context, actorID, eventID string, hasConfirmed bool) (models.EventParticipant, error) {
	if _, err := s.store.GetEvent(ctx, eventID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.EventParticipant{}, apperrors.NotFound("Event not found")
		}
		return models.EventParticipant{}, apperrors.Internal("fetch event", err)
	}

	participant, err := s.store.GetParticipant(ctx, eventID, actorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.EventParticipant{}, apperrors.NotFound("You are not invited")
		}
		return models.EventParticipant{}, apperrors.Internal("fetch participant", err)
	}

	if err := s.store.SetConfirmation(ctx, eventID, actorID, hasConfirmed); err != nil {
		return models.EventParticipant{}, apperrors.Internal("update confirmation", err)
	}
	participant.HasConfirmed = hasConfirmed
	return participant, nil
}

// RemoveParticipant removes a user from an event. The event creator and
// the calendar owner are structurally protected from this path while they
// hold that role.
func (s *EventService) RemoveParticipant(ctx context.Context, actorID, eventID, targetUserID string) error {
	event, acc, err := s.eventAccess(ctx, actorID, eventID)
	if err != nil {
		return err
	}
	if targetUserID == event.CreatedBy {
		return apperrors.Forbidden("The event creator cannot be removed")
	}
	if targetUserID == acc.Calendar.OwnerID {
		return apperrors.Forbidden("The calendar owner cannot be removed")
	}
	if !acc.CanRemoveEventParticipant(targetUserID) {
		return errNotAuthorized()
	}

	if err := s.store.RemoveParticipant(ctx, eventID, targetUserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NotFound("Participant not found")
		}
		return apperrors.Internal("remove participant", err)
	}
	return nil
}

func (s *EventService) ListParticipants(ctx context.Context, actorID, eventID string) ([]models.EventParticipant, error) {
	_, acc, err := s.eventAccess(ctx, actorID, eventID)
	if err != nil {
		return nil, err
	}
	if !acc.CanView() {
		return nil, errNotAuthorized()
	}

	participants, err := s.store.ListParticipants(ctx, eventID)
	if err != nil {
		return nil, apperrors.Internal("list participants", err)
	}
	return participants, nil
}

// eventAccess resolves an event and the actor's access on its calendar.
func (s *EventService) eventAccess(ctx context.Context, actorID, eventID string) (models.Event, Access, error) {
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Event{}, Access{}, apperrors.NotFound("Event not found")
		}
		return models.Event{}, Access{}, apperrors.Internal("fetch event", err)
	}
	acc, err := s.access(ctx, event.CalendarID, actorID)
	if err != nil {
		return models.Event{}, Access{}, err
	}
	return event, acc, nil
}
