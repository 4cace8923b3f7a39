package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/aegis-triage/pkg/httputil"
)

// SizeLimitConfig represents size limit configuration
type SizeLimitConfig struct {
	MaxBodySize int64 // in bytes
}

func DefaultSizeLimitConfig() SizeLimitConfig {
	return SizeLimitConfig{
		MaxBodySize: 64 << 10, // 64KB, far above any intake form
	}
}

// SizeLimit rejects declared oversize bodies and caps undeclared ones.
func SizeLimit(config SizeLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > config.MaxBodySize {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, httputil.Response{
				Error: &httputil.Error{
					Code:    http.StatusRequestEntityTooLarge,
					Message: fmt.Sprintf("request body exceeds %d bytes", config.MaxBodySize),
				},
			})
			return
		}

		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, config.MaxBodySize)
		}
		c.Next()
	}
}
