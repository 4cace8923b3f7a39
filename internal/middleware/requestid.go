package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HeaderXRequestID = "X-Request-ID"
	ContextRequestID = "request_id"

	maxRequestIDLen = 64
)

// RequestID propagates a caller-supplied X-Request-ID or mints one. The id
// ends up in logs and in error envelopes as trace_id.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderXRequestID)
		if !validRequestID(rid) {
			rid = uuid.NewString()
		}
		c.Set(ContextRequestID, rid)
		c.Writer.Header().Set(HeaderXRequestID, rid)
		c.Next()
	}
}

// validRequestID accepts short printable ASCII ids so a client cannot
// inject control characters into log lines.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
