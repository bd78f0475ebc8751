package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/LovationAdmin/calendar-api/utils"
)

const (
	contextUserID    = "user_id"
	contextUserEmail = "user_email"
)

// AuthMiddleware validates the Bearer token and stores the caller's
// identity on the gin context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		claims, err := utils.ParseAccessToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(contextUserID, claims.UserID)
		c.Set(contextUserEmail, claims.Email)
		c.Next()
	}
}

// GetUserID returns the authenticated user's id, or "" outside the
// protected group.
func GetUserID(c *gin.Context) string {
	return c.GetString(contextUserID)
}

func GetUserEmail(c *gin.Context) string {
	return c.GetString(contextUserEmail)
}
