package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/basit/sharelink/auth"
)

const (
	userIDKey = "userID"
	emailKey  = "email"
)

// AuthRequired rejects requests without a valid access token.
func AuthRequired(tokens *auth.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, tokens) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// AuthOptional identifies the caller when a valid token is present and
// otherwise lets the request through anonymously.
func AuthOptional(tokens *auth.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		authenticate(c, tokens)
		c.Next()
	}
}

func authenticate(c *gin.Context, tokens *auth.Tokens) bool {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return false
	}

	claims, err := tokens.ValidateToken(parts[1], auth.TypeAccess)
	if err != nil {
		return false
	}
	userID, err := claims.UserID()
	if err != nil {
		return false
	}

	c.Set(userIDKey, userID)
	c.Set(emailKey, claims.Email)
	return true
}

// CurrentUser returns the authenticated caller, if any.
func CurrentUser(c *gin.Context) (uuid.UUID, string, bool) {
	v, exists := c.Get(userIDKey)
	if !exists {
		return uuid.Nil, "", false
	}
	userID, ok := v.(uuid.UUID)
	if !ok {
		return uuid.Nil, "", false
	}
	return userID, c.GetString(emailKey), true
}
