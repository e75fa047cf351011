package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/hms-api/internal/access"
	"github.com/jwalitptl/hms-api/internal/handler"
	"github.com/jwalitptl/hms-api/internal/service/auth"
	jwtauth "github.com/jwalitptl/hms-api/pkg/auth"
)

type AuthMiddleware struct {
	authService auth.AuthServicer
}

func NewAuthMiddleware(authService auth.AuthServicer) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// Authenticate resolves the bearer token to a user and stores both in the
// context. Requests without a live session get 401.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, newErrorResponse(c, http.StatusUnauthorized, "missing authorization header"))
			return
		}
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, newErrorResponse(c, http.StatusUnauthorized, "invalid authorization format"))
			return
		}

		user, err := m.authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, newErrorResponse(c, http.StatusUnauthorized, authFailure(err)))
			return
		}

		c.Set(handler.ContextUser, user)
		c.Set(handler.ContextToken, token)
		c.Next()
	}
}

// OptionalAuthenticate attaches the user when a valid token is present and
// lets anonymous requests through.
func (m *AuthMiddleware) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if user, err := m.authService.Authenticate(c.Request.Context(), token); err == nil {
				c.Set(handler.ContextUser, user)
				c.Set(handler.ContextToken, token)
			}
		}
		c.Next()
	}
}

// RequirePermission checks the authenticated user's role against the
// permission's role set.
func (m *AuthMiddleware) RequirePermission(permission access.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := handler.CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, newErrorResponse(c, http.StatusUnauthorized, "authentication required"))
			return
		}

		if !access.Allowed(user.Role, permission) {
			log.Warn().
				Int64("user_id", user.ID).
				Str("role", string(user.Role)).
				Str("permission", string(permission)).
				Str("path", c.Request.URL.Path).
				Msg("Permission denied")
			c.AbortWithStatusJSON(http.StatusForbidden, newErrorResponse(c, http.StatusForbidden, "permission denied"))
			return
		}

		c.Next()
	}
}

func authFailure(err error) string {
	switch {
	case errors.Is(err, jwtauth.ErrExpiredToken):
		return "token expired"
	case errors.Is(err, auth.ErrSessionExpired):
		return "session expired"
	default:
		return "invalid token"
	}
}
