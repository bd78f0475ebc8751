package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LovationAdmin/calendar-api/middleware"
	"github.com/LovationAdmin/calendar-api/models"
	"github.com/LovationAdmin/calendar-api/services"
)

type CalendarHandler struct {
	Calendars *services.CalendarService
	Members   *services.MembershipService
}

func (h *CalendarHandler) CreateCalendar(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req models.CreateCalendarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cal, err := h.Calendars.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cal)
}

func (h *CalendarHandler) GetCalendars(c *gin.Context) {
	userID := middleware.GetUserID(c)

	calendars, err := h.Calendars.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, calendars)
}

func (h *CalendarHandler) GetCalendar(c *gin.Context) {
	userID := middleware.GetUserID(c)

	cal, err := h.Calendars.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cal)
}

func (h *CalendarHandler) UpdateCalendar(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req models.UpdateCalendarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cal, err := h.Calendars.Update(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cal)
}

func (h *CalendarHandler) SetVisibility(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req models.SetVisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Calendars.SetVisibility(c.Request.Context(), userID, c.Param("id"), *req.IsVisible); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Visibility updated"})
}

func (h *CalendarHandler) DeleteCalendar(c *gin.Context) {
	userID := middleware.GetUserID(c)

	if err := h.Calendars.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Calendar deleted"})
}

// ============================================================================
// MEMBER MANAGEMENT
// ============================================================================

func (h *CalendarHandler) GetMembers(c *gin.Context) {
	userID := middleware.GetUserID(c)

	members, err := h.Members.ListMembers(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

func (h *CalendarHandler) UpdateMemberRole(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req models.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := h.Members.UpdateRole(c.Request.Context(), userID, c.Param("id"), c.Param("member_id"), req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func (h *CalendarHandler) RemoveMember(c *gin.Context) {
	userID := middleware.GetUserID(c)

	if err := h.Members.RemoveParticipant(c.Request.Context(), userID, c.Param("id"), c.Param("member_id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Member removed successfully"})
}

func (h *CalendarHandler) LeaveCalendar(c *gin.Context) {
	userID := middleware.GetUserID(c)

	if err := h.Members.Leave(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "You left the calendar"})
}
