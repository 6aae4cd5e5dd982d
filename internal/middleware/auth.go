package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/acube-health/acube-api/internal/service/auth"
)

type AuthMiddleware struct {
	authService *auth.Service
}

func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Authenticate verifies the bearer token and that its session is still
// alive, then sets the caller's identity in context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "missing authorization header"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "invalid authorization format"})
			c.Abort()
			return
		}

		access, err := m.authService.ValidateAccess(c.Request.Context(), parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "invalid token"})
			c.Abort()
			return
		}

		c.Set("userID", access.UserID)
		c.Set("email", access.Email)
		c.Set("roles", access.Roles)
		c.Set("sessionID", access.SessionID)
		c.Next()
	}
}

// OptionalAuthenticate sets identity when a valid token is present but
// lets anonymous requests through. Used on the community feed so likes
// from signed-in users are tied to their account.
func (m *AuthMiddleware) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			if access, err := m.authService.ValidateAccess(c.Request.Context(), parts[1]); err == nil {
				c.Set("userID", access.UserID)
				c.Set("email", access.Email)
				c.Set("roles", access.Roles)
				c.Set("sessionID", access.SessionID)
			}
		}
		c.Next()
	}
}

// RequireRole checks the caller's role against the database so that
// revocations take effect on the next request
func (m *AuthMiddleware) RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get("userID")
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "authentication required"})
			c.Abort()
			return
		}

		userID, ok := v.(uuid.UUID)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "authentication required"})
			c.Abort()
			return
		}

		hasRole, err := m.authService.HasRole(c.Request.Context(), userID, role)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "failed to check permissions"})
			c.Abort()
			return
		}
		if !hasRole {
			c.JSON(http.StatusForbidden, gin.H{"status": "error", "message": "insufficient permissions"})
			c.Abort()
			return
		}
		c.Next()
	}
}
