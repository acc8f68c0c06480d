package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"terminal-portal/internal/auth"
	"terminal-portal/internal/model"
)

const (
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer"
	principalContextKey = "principal"

	// SessionCookie carries the same token as the bearer header for browser
	// clients.
	SessionCookie = "session"
)

// Auth resolves the caller from a bearer token or the session cookie. With
// optional set, anonymous callers pass through as the public role.
func Auth(parser *auth.Parser, optional bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, present, malformed := extractToken(c)
		if !present {
			if optional {
				c.Set(principalContextKey, model.Principal{Role: model.UserRolePublic})
				c.Next()
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization missing"})
			return
		}
		if malformed {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}
		claims, err := parser.Parse(token)
		if err != nil {
			if optional {
				c.Set(principalContextKey, model.Principal{Role: model.UserRolePublic})
				c.Next()
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(principalContextKey, claims.Principal())
		c.Next()
	}
}

// RequireRoles must run after Auth.
func RequireRoles(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := MustPrincipal(c)
		if !ok || !principal.IsAuthenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		for _, role := range roles {
			if principal.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "permission denied"})
	}
}

func MustPrincipal(c *gin.Context) (model.Principal, bool) {
	value, exists := c.Get(principalContextKey)
	if !exists {
		return model.Principal{}, false
	}
	principal, ok := value.(model.Principal)
	if !ok {
		return model.Principal{}, false
	}
	return principal, true
}

func extractToken(c *gin.Context) (token string, present, malformed bool) {
	if raw := c.GetHeader(authorizationHeader); raw != "" {
		parts := strings.SplitN(raw, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], bearerPrefix) {
			return "", true, true
		}
		return strings.TrimSpace(parts[1]), true, false
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie, true, false
	}
	return "", false, false
}
