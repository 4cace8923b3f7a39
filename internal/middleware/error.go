package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/aegis-triage/pkg/errors"
	"github.com/jwalitptl/aegis-triage/pkg/httputil"
)

// ErrorHandler renders the last error a handler attached with c.Error.
// Handlers are expected to attach *errors.AppError values; anything else
// becomes a 500.
func ErrorHandler(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		lastErr := c.Errors.Last().Err
		status := 500
		if appErr, ok := errors.As(lastErr); ok {
			status = appErr.StatusCode()
		}

		event := logger.Warn()
		if status >= 500 {
			event = logger.Error()
		}
		event.
			Err(lastErr).
			Str("request_id", c.GetString(ContextRequestID)).
			Str("path", c.FullPath()).
			Str("method", c.Request.Method).
			Int("status", status).
			Msg("Request error")

		if c.Writer.Written() {
			return
		}
		httputil.RespondWithError(c, lastErr)
	}
}
