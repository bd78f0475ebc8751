package models

import "time"

// Participant roles on a shared calendar. The owner is not a role: it is
// the calendars.owner_id column, and owners never appear in calendar_members.
const (
	RoleAdmin   = "ADMIN"
	RoleCreator = "CREATOR"
	RoleReader  = "READER"
)

// ValidRole reports whether role is one of the three member roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleCreator || role == RoleReader
}

type Calendar struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	IsMain      bool      `json:"is_main"`
	IsHoliday   bool      `json:"is_holiday"`
	IsVisible   bool      `json:"is_visible"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	IsOwner bool             `json:"is_owner"`       // annotation for the requesting user
	Role    string           `json:"role,omitempty"` // requesting user's member role, empty for the owner
	Members []CalendarMember `json:"members,omitempty"`
}

type CalendarMember struct {
	ID         string    `json:"id"`
	CalendarID string    `json:"calendar_id"`
	UserID     string    `json:"user_id"`
	Role       string    `json:"role"`
	JoinedAt   time.Time `json:"joined_at"`
	UserName   string    `json:"user_name"`  // u.name from the JOIN
	UserEmail  string    `json:"user_email"` // u.email from the JOIN
}

type CreateCalendarRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

type UpdateCalendarRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

type SetVisibilityRequest struct {
	IsVisible *bool `json:"is_visible" binding:"required"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}
