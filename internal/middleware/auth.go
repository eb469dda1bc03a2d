package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/agrimeme/backend/internal/auth"
)

const identityKey = "identity"

// TokenParser turns a bearer token into the caller's identity.
type TokenParser interface {
	Parse(token string) (auth.Identity, error)
}

// AuthMiddleware rejects requests without a valid bearer token and stores the
// caller identity on the gin context.
func AuthMiddleware(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		id, err := tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		SetIdentity(c, id)
		c.Next()
	}
}

// SetIdentity records the authenticated caller. Tests use it to skip token
// handling.
func SetIdentity(c *gin.Context, id auth.Identity) {
	c.Set(identityKey, id)
}

// Identity returns the caller stored by AuthMiddleware.
func Identity(c *gin.Context) (auth.Identity, bool) {
	raw, exists := c.Get(identityKey)
	if !exists {
		return auth.Identity{}, false
	}
	id, ok := raw.(auth.Identity)
	return id, ok
}
