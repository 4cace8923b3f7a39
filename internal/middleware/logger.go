package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Logger logs one line per request and stores a request-scoped logger in the
// request context for zerolog.Ctx. Bodies are never logged since they carry
// patient complaints.
func Logger(base zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqLogger := base.With().Str("request_id", c.GetString(ContextRequestID)).Logger()
		c.Request = c.Request.WithContext(reqLogger.WithContext(c.Request.Context()))

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()

		var event *zerolog.Event
		switch {
		case status >= 500:
			event = reqLogger.Error()
		case status >= 400:
			event = reqLogger.Warn()
		default:
			event = reqLogger.Info()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Msg("Request processed")
	}
}
