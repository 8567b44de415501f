package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mockchat/internal/models"
	"mockchat/internal/observability"
)

// UserHeader carries the mock-login identity.
const UserHeader = observability.UserHeader

// UserLookup resolves a user id to an account.
type UserLookup interface {
	User(userID string) (models.User, error)
}

// AuthMiddleware resolves the caller from the X-User-ID header, or the user_id query
// parameter for websocket handshakes. The id must name an existing user.
func AuthMiddleware(users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := observability.ViewerIDFromRequest(c.Request)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing user id"})
			return
		}

		user, err := users.User(userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
			return
		}

		c.Set("userID", user.ID)
		c.Set("userRole", string(user.Role))
		c.Next()
	}
}

// RequireAdmin rejects callers whose role is not admin. It must run after AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("userRole") != string(models.RoleAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin only"})
			return
		}
		c.Next()
	}
}
