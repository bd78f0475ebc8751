package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/LovationAdmin/calendar-api/apperrors"
	"github.com/LovationAdmin/calendar-api/utils"
)

// respondError maps a service error onto the HTTP surface. The taxonomy
// kind decides the status; internal details are logged, never returned.
func respondError(c *gin.Context, err error) {
	if apperrors.KindOf(err) == apperrors.KindInternal || apperrors.KindOf(err) == apperrors.KindUnknown {
		utils.LogError("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(apperrors.HTTPStatus(err), gin.H{"error": apperrors.Message(err)})
}
