package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LovationAdmin/calendar-api/middleware"
	"github.com/LovationAdmin/calendar-api/models"
	"github.com/LovationAdmin/calendar-api/services"
)

type InvitationHandler struct {
	Invitations *services.InvitationService
}

// ============================================================================
// INVITE LINKS
// ============================================================================

func (h *InvitationHandler) CreateInviteLink(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req models.CreateInviteLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	link, err := h.Invitations.CreateLink(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, link)
}

func (h *InvitationHandler) GetInviteLinks(c *gin.Context) {
	userID := middleware.GetUserID(c)

	links, err := h.Invitations.ListLinks(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, links)
}

func (h *InvitationHandler) DeleteInviteLink(c *gin.Context) {
	userID := middleware.GetUserID(c)

	if err := h.Invitations.DeleteLink(c.Request.Context(), userID, c.Param("id"), c.Param("link_id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Invite link deleted"})
}

func (h *InvitationHandler) AcceptInviteLink(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req models.AcceptInviteLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := h.Invitations.AcceptLink(c.Request.Context(), userID, req.LinkID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "You joined the calendar",
		"calendar_id": member.CalendarID,
		"role":        member.Role,
	})
}

// ============================================================================
// CALENDAR EMAIL INVITES
// ============================================================================

func (h *InvitationHandler) InviteByEmail(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req models.CreateEmailInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inv, err := h.Invitations.CreateEmailInvite(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

func (h *InvitationHandler) GetEmailInvites(c *gin.Context) {
	userID := middleware.GetUserID(c)

	invites, err := h.Invitations.ListEmailInvites(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invites)
}

func (h *InvitationHandler) CancelEmailInvite(c *gin.Context) {
	userID := middleware.GetUserID(c)

	if err := h.Invitations.DeleteEmailInvite(c.Request.Context(), userID, c.Param("id"), c.Param("invitation_id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Invitation cancelled successfully"})
}

// GetEmailInviteInfo is public: the token is the credential, the accept
// page needs invitation details before the user has signed in.
func (h *InvitationHandler) GetEmailInviteInfo(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token is required"})
		return
	}

	info, err := h.Invitations.GetEmailInviteInfo(c.Request.Context(), token)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *InvitationHandler) AcceptEmailInvite(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req models.AcceptInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := h.Invitations.AcceptEmailInvite(c.Request.Context(), userID, req.Token)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "Invitation accepted successfully",
		"calendar_id": member.CalendarID,
		"role":        member.Role,
	})
}

// ============================================================================
// EVENT EMAIL INVITES
// ============================================================================

func (h *InvitationHandler) InviteToEvent(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req models.CreateEventInvitesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	invites, err := h.Invitations.CreateEventInvites(c.Request.Context(), userID, c.Param("event_id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invites)
}

func (h *InvitationHandler) GetEventInvites(c *gin.Context) {
	userID := middleware.GetUserID(c)

	invites, err := h.Invitations.ListEventInvites(c.Request.Context(), userID, c.Param("event_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invites)
}

func (h *InvitationHandler) CancelEventInvite(c *gin.Context) {
	userID := middleware.GetUserID(c)

	if err := h.Invitations.DeleteEventInvite(c.Request.Context(), userID, c.Param("event_id"), c.Param("invite_id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Invite cancelled successfully"})
}

func (h *InvitationHandler) GetEventInviteInfo(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token is required"})
		return
	}

	info, err := h.Invitations.GetEventInviteInfo(c.Request.Context(), token)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *InvitationHandler) AcceptEventInvite(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req models.AcceptInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	participant, err := h.Invitations.AcceptEventInvite(c.Request.Context(), userID, req.Token)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, participant)
}
