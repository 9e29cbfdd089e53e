package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type contextKey string

const userContextKey contextKey = "mediavaultUser"

// Anonymous is the principal recorded when token checks are disabled.
const Anonymous = "anonymous"

// ContextUser represents the authenticated principal stored in the request context.
type ContextUser struct {
	ID      string
	Name    string
	IsAdmin bool
}

// AuthMiddleware validates bearer tokens and injects the authenticated user.
// With no secret configured every request passes as Anonymous.
func AuthMiddleware(service *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !service.Enabled() {
			c.Set(string(userContextKey), ContextUser{ID: Anonymous})
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		token := extractBearerToken(authHeader)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		claims, err := service.ValidateAccessToken(token)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, ErrTokenExpired) {
				msg = "token expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		c.Set(string(userContextKey), ContextUser{
			ID:      claims.Subject,
			Name:    claims.Name,
			IsAdmin: claims.IsAdmin,
		})

		c.Next()
	}
}

// CurrentUser extracts the authenticated user from the context.
func CurrentUser(c *gin.Context) (ContextUser, bool) {
	value, exists := c.Get(string(userContextKey))
	if !exists {
		return ContextUser{}, false
	}
	user, ok := value.(ContextUser)
	return user, ok
}

// Principal names the caller for audit records.
func Principal(c *gin.Context) string {
	user, ok := CurrentUser(c)
	if !ok || user.ID == "" {
		return Anonymous
	}
	return user.ID
}

func extractBearerToken(header string) string {
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
