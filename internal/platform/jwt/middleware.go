package jwtmw

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"recipe_backend/internal/feature/auth/domain"
)

// ContextUserID is the gin context key holding the authenticated user ID.
const ContextUserID = "userID"

// Accepted Authorization header schemes.
var authSchemes = []string{"Token ", "Bearer "}

// Authenticator resolves a raw token to a user ID.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (uint, error)
}

// AuthRequired returns a Gin middleware function that validates tokens
// and restricts access to authenticated users only.
func AuthRequired(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := bearer(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Authentication credentials were not provided."})
			return
		}

		userID, err := auth.Authenticate(c.Request.Context(), tokenStr)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Invalid token."})
				return
			}
			slog.Error("token authentication failed", "error", err, "remote_addr", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
			return
		}

		c.Set(ContextUserID, userID)
		c.Next()
	}
}

// UserID returns the authenticated user ID set by AuthRequired.
// The second value is false when the route is not behind the middleware.
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}

func bearer(header string) (string, bool) {
	for _, scheme := range authSchemes {
		if strings.HasPrefix(header, scheme) {
			token := strings.TrimSpace(strings.TrimPrefix(header, scheme))
			return token, token != ""
		}
	}
	return "", false
}
