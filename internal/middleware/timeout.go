package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

type TimeoutConfig struct {
	Duration time.Duration
}

func DefaultTimeoutConfig() TimeoutConfig {
	return TimeoutConfig{Duration: 15 * time.Second}
}

// Timeout puts a deadline on the request context. It does not race the
// handler; the oracle call and the stores stop on ctx themselves.
func Timeout(config TimeoutConfig) gin.HandlerFunc {
	d := config.Duration
	if d <= 0 {
		d = DefaultTimeoutConfig().Duration
	}
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
