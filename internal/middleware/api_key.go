package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// APIKeyMiddleware authenticates the booking store when it pushes lifecycle events
type APIKeyMiddleware struct {
	keyHash []byte
}

// NewAPIKeyMiddleware creates a new API key middleware from a bcrypt hash of the key
func NewAPIKeyMiddleware(keyHash string) *APIKeyMiddleware {
	return &APIKeyMiddleware{keyHash: []byte(keyHash)}
}

// APIKeyAuthMiddleware validates the "ApiKey <key>" Authorization header
func (m *APIKeyMiddleware) APIKeyAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(m.keyHash) == 0 {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "API key authentication is not configured"})
			c.Abort()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		if !strings.HasPrefix(authHeader, "ApiKey ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key format"})
			c.Abort()
			return
		}

		apiKey := strings.TrimPrefix(authHeader, "ApiKey ")
		if apiKey == "" || bcrypt.CompareHashAndPassword(m.keyHash, []byte(apiKey)) != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
			c.Abort()
			return
		}

		c.Set("auth_type", "api_key")
		c.Next()
	}
}
