package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/LovationAdmin/calendar-api/handlers"
	"github.com/LovationAdmin/calendar-api/services"
	"github.com/LovationAdmin/calendar-api/store"
)

// SetupAuthRoutes sets up public authentication routes.
func SetupAuthRoutes(rg *gin.RouterGroup, st store.Store, calendars *services.CalendarService) {
	authHandler := &handlers.AuthHandler{Store: st, Calendars: calendars}

	rg.POST("/auth/signup", authHandler.Signup)
	rg.POST("/auth/login", authHandler.Login)
	rg.POST("/auth/refresh", authHandler.Refresh)
	rg.POST("/auth/logout", authHandler.Logout)
}

// SetupPublicInviteRoutes exposes the invite-info lookups the accept
// pages use before the user is signed in.
func SetupPublicInviteRoutes(rg *gin.RouterGroup, invitations *services.InvitationService) {
	invitationHandler := &handlers.InvitationHandler{Invitations: invitations}

	rg.GET("/invitations/info", invitationHandler.GetEmailInviteInfo)
	rg.GET("/event-invitations/info", invitationHandler.GetEventInviteInfo)
}

// SetupCalendarRoutes sets up protected calendar, member and event routes.
func SetupCalendarRoutes(rg *gin.RouterGroup, calendars *services.CalendarService, members *services.MembershipService, events *services.EventService) {
	calendarHandler := &handlers.CalendarHandler{Calendars: calendars, Members: members}
	eventHandler := &handlers.EventHandler{Events: events}

	rg.GET("/calendars", calendarHandler.GetCalendars)
	rg.POST("/calendars", calendarHandler.CreateCalendar)
	rg.GET("/calendars/:id", calendarHandler.GetCalendar)
	rg.PUT("/calendars/:id", calendarHandler.UpdateCalendar)
	rg.PUT("/calendars/:id/visibility", calendarHandler.SetVisibility)
	rg.DELETE("/calendars/:id", calendarHandler.DeleteCalendar)

	rg.GET("/calendars/:id/members", calendarHandler.GetMembers)
	rg.PUT("/calendars/:id/members/:member_id", calendarHandler.UpdateMemberRole)
	rg.DELETE("/calendars/:id/members/:member_id", calendarHandler.RemoveMember)
	rg.POST("/calendars/:id/leave", calendarHandler.LeaveCalendar)

	rg.GET("/calendars/:id/events", eventHandler.GetEvents)
	rg.POST("/calendars/:id/events", eventHandler.CreateEvent)
	rg.GET("/events/:event_id", eventHandler.GetEvent)
	rg.PUT("/events/:event_id", eventHandler.UpdateEvent)
	rg.DELETE("/events/:event_id", eventHandler.DeleteEvent)

	rg.GET("/events/:event_id/participants", eventHandler.GetParticipants)
	rg.POST("/events/:event_id/confirm", eventHandler.ConfirmParticipation)
	rg.DELETE("/events/:event_id/participants/:user_id", eventHandler.RemoveParticipant)
}

// SetupInvitationRoutes sets up the protected invitation routes for all
// three channels: links, calendar email invites and event email invites.
func SetupInvitationRoutes(rg *gin.RouterGroup, invitations *services.InvitationService) {
	invitationHandler := &handlers.InvitationHandler{Invitations: invitations}

	rg.POST("/calendars/:id/links", invitationHandler.CreateInviteLink)
	rg.GET("/calendars/:id/links", invitationHandler.GetInviteLinks)
	rg.DELETE("/calendars/:id/links/:link_id", invitationHandler.DeleteInviteLink)
	rg.POST("/links/accept", invitationHandler.AcceptInviteLink)

	rg.POST("/calendars/:id/invitations", invitationHandler.InviteByEmail)
	rg.GET("/calendars/:id/invitations", invitationHandler.GetEmailInvites)
	rg.DELETE("/calendars/:id/invitations/:invitation_id", invitationHandler.CancelEmailInvite)
	rg.POST("/invitations/accept", invitationHandler.AcceptEmailInvite)

	rg.POST("/events/:event_id/invitations", invitationHandler.InviteToEvent)
	rg.GET("/events/:event_id/invitations", invitationHandler.GetEventInvites)
	rg.DELETE("/events/:event_id/invitations/:invite_id", invitationHandler.CancelEventInvite)
	rg.POST("/event-invitations/accept", invitationHandler.AcceptEventInvite)
}

// SetupUserRoutes sets up protected user routes.
func SetupUserRoutes(rg *gin.RouterGroup, st store.Store) {
	userHandler := &handlers.UserHandler{Store: st}

	rg.GET("/user/profile", userHandler.GetProfile)
	rg.PUT("/user/profile", userHandler.UpdateProfile)
	rg.POST("/user/password", userHandler.ChangePassword)
	rg.POST("/user/2fa/setup", userHandler.SetupTOTP)
	rg.POST("/user/2fa/verify", userHandler.VerifyTOTP)
	rg.POST("/user/2fa/disable", userHandler.DisableTOTP)
}
