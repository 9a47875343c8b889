package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"carshare/internal/auth"
)

// Context keys set by the auth middleware for downstream handlers.
const (
	ContextRiderIDKey   = "riderID"
	ContextRiderNameKey = "riderName"
	ContextTokenKey     = "sessionToken"
)

// AuthMiddleware returns middleware that resolves the session token from
// the Authorization header into an authenticated rider identity.
func AuthMiddleware(authService *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		identity, err := authService.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrInvalidSession.Error()})
			return
		}

		c.Set(ContextRiderIDKey, identity.ID)
		c.Set(ContextRiderNameKey, identity.Name)
		c.Set(ContextTokenKey, token)
		c.Next()
	}
}
