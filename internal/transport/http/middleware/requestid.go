package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const ContextRequestIDKey = "request_id"

// RequestID tags every request with a unique id for log correlation.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Writer.Header().Set("X-Request-Id", id)
		c.Set(ContextRequestIDKey, id)
		c.Next()
	}
}
