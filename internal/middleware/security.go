package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// SecurityConfig lists the hardening headers sent on every response.
// A zero HSTS duration leaves Strict-Transport-Security off, which suits
// deployments where TLS terminates at a proxy that sets it.
type SecurityConfig struct {
	HSTS           time.Duration
	FrameOptions   string
	ReferrerPolicy string
	CSP            string
}

func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		FrameOptions:   "DENY",
		ReferrerPolicy: "no-referrer",
		CSP:            "default-src 'none'; frame-ancestors 'none'",
	}
}

// SecurityHeaders marks every response as uncacheable and unframeable.
// Case and report payloads carry patient data.
func SecurityHeaders(config SecurityConfig) gin.HandlerFunc {
	headers := http.Header{}
	headers.Set("X-Content-Type-Options", "nosniff")
	headers.Set("X-Frame-Options", config.FrameOptions)
	headers.Set("Referrer-Policy", config.ReferrerPolicy)
	headers.Set("Cache-Control", "no-store")
	headers.Set("Pragma", "no-cache")
	if config.CSP != "" {
		headers.Set("Content-Security-Policy", config.CSP)
	}
	if config.HSTS > 0 {
		headers.Set("Strict-Transport-Security",
			"max-age="+strconv.Itoa(int(config.HSTS.Seconds()))+"; includeSubDomains")
	}

	return func(c *gin.Context) {
		dst := c.Writer.Header()
		for k, v := range headers {
			dst[k] = v
		}
		c.Next()
	}
}
