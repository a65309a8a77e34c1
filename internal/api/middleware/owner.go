package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orendrasingh/video-transcription/internal/logger"
)

// OwnerHeader carries the caller identity set by the fronting auth
// layer.
const OwnerHeader = "X-Owner-ID"

const ownerKey = "owner_id"

// Owner rejects requests without an owner identity and stashes it on
// the context for handlers and log fields.
func Owner() gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID := c.GetHeader(OwnerHeader)
		if ownerID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing owner identity"})
			return
		}
		c.Set(ownerKey, ownerID)
		c.Request = c.Request.WithContext(
			logger.WithField(c.Request.Context(), logger.FieldOwnerID, ownerID))
		c.Next()
	}
}

// OwnerID returns the caller identity set by Owner.
func OwnerID(c *gin.Context) string {
	return c.GetString(ownerKey)
}
