package services

import (
	"context"
	"errors"
	"strings"

	"github.com/LovationAdmin/calendar-api/apperrors"
	"github.com/LovationAdmin/calendar-api/models"
	"github.com/LovationAdmin/calendar-api/store"
)

type CalendarService struct {
	base
}

func NewCalendarService(st store.Store, notifier Notifier) *CalendarService {
	return &CalendarService{base{store: st, notifier: notifier}}
}

func (s *CalendarService) Create(ctx context.Context, actorID string, req models.CreateCalendarRequest) (models.Calendar, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return models.Calendar{}, apperrors.Validation("Calendar name is required")
	}

	cal, err := s.store.CreateCalendar(ctx, models.Calendar{
		Name:        name,
		Description: req.Description,
		Color:       req.Color,
		IsVisible:   true,
		OwnerID:     actorID,
	})
	if err != nil {
		return models.Calendar{}, apperrors.Internal("create calendar", err)
	}
	cal.IsOwner = true
	return cal, nil
}

// EnsureMainCalendar provisions the user's personal calendar once.
// Calling it again returns the existing calendar instead of erroring.
func (s *CalendarService) EnsureMainCalendar(ctx context.Context, userID string) (models.Calendar, error) {
	existing, err := s.store.GetMainCalendar(ctx, userID)
	if err == nil {
		existing.IsOwner = true
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return models.Calendar{}, apperrors.Internal("fetch main calendar", err)
	}

	cal, err := s.store.CreateCalendar(ctx, models.Calendar{
		Name:      "Personal",
		IsMain:    true,
		IsVisible: true,
		OwnerID:   userID,
	})
	if err != nil {
		return models.Calendar{}, apperrors.Internal("create main calendar", err)
	}
	cal.IsOwner = true
	return cal, nil
}

func (s *CalendarService) Get(ctx context.Context, actorID, calendarID string) (models.Calendar, error) {
	acc, err := s.access(ctx, calendarID, actorID)
	if err != nil {
		return models.Calendar{}, err
	}
	if !acc.CanView() {
		return models.Calendar{}, errNotAuthorized()
	}

	cal := acc.Calendar
	cal.IsOwner = acc.IsOwner()
	cal.Role = acc.Role()

	members, err := s.store.ListMembers(ctx, calendarID)
	if err != nil {
		return models.Calendar{}, apperrors.Internal("list members", err)
	}
	cal.Members = members
	return cal, nil
}

func (s *CalendarService) List(ctx context.Context, actorID string) ([]models.Calendar, error) {
	calendars, err := s.store.ListCalendars(ctx, actorID)
	if err != nil {
		return nil, apperrors.Internal("list calendars", err)
	}
	return calendars, nil
}

func (s *CalendarService) Update(ctx context.Context, actorID, calendarID string, req models.UpdateCalendarRequest) (models.Calendar, error) {
	acc, err := s.access(ctx, calendarID, actorID)
	if err != nil {
		return models.Calendar{}, err
	}
	if !acc.CanManageSharing() {
		return models.Calendar{}, errNotAuthorized()
	}

	cal := acc.Calendar
	cal.Name = strings.TrimSpace(req.Name)
	cal.Description = req.Description
	cal.Color = req.Color
	if cal.Name == "" {
		return models.Calendar{}, apperrors.Validation("Calendar name is required")
	}

	if err := s.store.UpdateCalendar(ctx, cal); err != nil {
		return models.Calendar{}, apperrors.Internal("update calendar", err)
	}

	s.notify(NotifyCalendarUpdated, actorID, calendarID, map[string]interface{}{
		"calendar_id": calendarID,
		"name":        cal.Name,
	})
	cal.IsOwner = acc.IsOwner()
	cal.Role = acc.Role()
	return cal, nil
}

func (s *CalendarService) SetVisibility(ctx context.Context, actorID, calendarID string, isVisible bool) error {
	acc, err := s.access(ctx, calendarID, actorID)
	if err != nil {
		return err
	}
	if !acc.CanManageSharing() {
		return errNotAuthorized()
	}

	cal := acc.Calendar
	cal.IsVisible = isVisible
	if err := s.store.UpdateCalendar(ctx, cal); err != nil {
		return apperrors.Internal("update calendar visibility", err)
	}

	s.notify(NotifyCalendarUpdated, actorID, calendarID, map[string]interface{}{
		"calendar_id": calendarID,
		"is_visible":  isVisible,
	})
	return nil
}

func (s *CalendarService) Delete(ctx context.Context, actorID, calendarID string) error {
	acc, err := s.access(ctx, calendarID, actorID)
	if err != nil {
		return err
	}
	if !acc.CanDeleteCalendar() {
		return errNotAuthorized()
	}

	if err := s.store.DeleteCalendar(ctx, calendarID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NotFound("Calendar not found")
		}
		return apperrors.Internal("delete calendar", err)
	}
	return nil
}
