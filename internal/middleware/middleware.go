package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"todo-api/internal/apperr"
	"todo-api/internal/auth"
	"todo-api/internal/models"
	"todo-api/pkg/logger"
)

const scopeKey = "scope"

const bearerPrefix = "Bearer "

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" || !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}

// RequireAuth rejects requests without a valid bearer token. On success the
// resolved owned scope is attached to the gin context.
func RequireAuth(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Access token required"})
			return
		}
		userID, err := tokens.Verify(token)
		if err != nil {
			logger.Debug(ctx, "Token verification failed", "error", err)
			if errors.Is(err, apperr.ErrExpiredToken) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid or expired token"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		c.Set(scopeKey, models.OwnedScope(userID))
		c.Next()
	}
}

// OptionalAuth resolves an identity when a valid bearer token is present
// and proceeds with guest scope otherwise. It never fails the request, so
// one route can serve both guest and authenticated traffic.
func OptionalAuth(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		scope := models.GuestScope()
		if token, ok := bearerToken(c); ok {
			if userID, err := tokens.Verify(token); err == nil {
				scope = models.OwnedScope(userID)
			} else {
				logger.Debug(c.Request.Context(), "Optional auth falling back to guest", "error", err)
			}
		}
		c.Set(scopeKey, scope)
		c.Next()
	}
}

// Scope returns the ownership scope resolved by RequireAuth or
// OptionalAuth, defaulting to guest when neither ran.
func Scope(c *gin.Context) models.Scope {
	if v, ok := c.Get(scopeKey); ok {
		if s, ok := v.(models.Scope); ok {
			return s
		}
	}
	return models.GuestScope()
}
