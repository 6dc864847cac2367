package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// AdminKeyHeader carries the shared admin secret.
const AdminKeyHeader = "X-Admin-Key"

// AdminRequired guards the admin routes with a single shared secret checked
// against its bcrypt hash. With no hash configured every request is refused.
func AdminRequired(passwordHash string) gin.HandlerFunc {
	hash := []byte(passwordHash)
	return func(c *gin.Context) {
		if len(hash) == 0 {
			slog.Warn("admin route called but ADMIN_PASSWORD_HASH is not set", "path", c.FullPath())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		key := c.GetHeader(AdminKeyHeader)
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: No admin key provided"})
			return
		}
		if err := bcrypt.CompareHashAndPassword(hash, []byte(key)); err != nil {
			slog.Info("admin key rejected", "path", c.FullPath(), "ip", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid admin key"})
			return
		}
		c.Next()
	}
}
