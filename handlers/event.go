package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/LovationAdmin/calendar-api/middleware"
	"github.com/LovationAdmin/calendar-api/models"
	"github.com/LovationAdmin/calendar-api/services"
)

type EventHandler struct {
	Events *services.EventService
}

func (h *EventHandler) CreateEvent(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req models.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.Events.Create(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

func (h *EventHandler) GetEvents(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var from, to time.Time
	if v := c.Query("from"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'from' timestamp"})
			return
		}
		from = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'to' timestamp"})
			return
		}
		to = parsed
	}

	events, err := h.Events.List(c.Request.Context(), userID, c.Param("id"), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *EventHandler) GetEvent(c *gin.Context) {
	userID := middleware.GetUserID(c)

	event, err := h.Events.Get(c.Request.Context(), userID, c.Param("event_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) UpdateEvent(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req models.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.Events.Update(c.Request.Context(), userID, c.Param("event_id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) DeleteEvent(c *gin.Context) {
	userID := middleware.GetUserID(c)

	if err := h.Events.Delete(c.Request.Context(), userID, c.Param("event_id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Event deleted"})
}

// ============================================================================
// PARTICIPANTS
// ============================================================================

func (h *EventHandler) GetParticipants(c *gin.Context) {
	userID := middleware.GetUserID(c)

	participants, err := h.Events.ListParticipants(c.Request.Context(), userID, c.Param("event_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, participants)
}

func (h *EventHandler) ConfirmParticipation(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req models.ConfirmParticipationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	participant, err := h.Events.ConfirmParticipation(c.Request.Context(), userID, c.Param("event_id"), *req.HasConfirmed)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, participant)
}

func (h *EventHandler) RemoveParticipant(c *gin.Context) {
	userID := middleware.GetUserID(c)

	if err := h.Events.RemoveParticipant(c.Request.Context(), userID, c.Param("event_id"), c.Param("user_id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Participant removed successfully"})
}
