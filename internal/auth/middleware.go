package auth

import (
	"net/http"
	"strings"

	"kvadrat-backend/internal/models"

	"github.com/gin-gonic/gin"
)

const contextUserKey = "auth_user"

// UserLoader resolves an authenticated user id to a full user record.
type UserLoader interface {
	GetUserByID(id uint) (*models.User, error)
}

// RequireAuth parses the bearer token and loads the caller into the
// request context. Requests without a valid token get a 401.
func RequireAuth(tm *TokenManager, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Authentication credentials were not provided."})
			return
		}
		claims, err := tm.ParseAccess(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Token is invalid or expired."})
			return
		}
		id, err := UserID(claims.Subject)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Token is invalid or expired."})
			return
		}
		user, err := users.GetUserByID(id)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "User not found."})
			return
		}
		c.Set(contextUserKey, user)
		c.Next()
	}
}

// RequireStaff rejects non-staff callers with a 403. Must run after
// RequireAuth.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsStaff {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "You do not have permission to perform this action."})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user set by RequireAuth, or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(contextUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}
