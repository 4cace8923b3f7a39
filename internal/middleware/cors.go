package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           int
}

// DefaultCORSConfig allows any origin to call the patient-facing endpoints.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", HeaderXRequestID},
		ExposeHeaders: []string{"Content-Length", HeaderXRequestID},
		MaxAge:        86400,
	}
}

// CORS answers preflight requests itself and decorates responses for
// origins on the allow list. Unknown origins get no CORS headers at all.
func CORS(config CORSConfig) gin.HandlerFunc {
	wildcard := false
	allowed := make(map[string]struct{}, len(config.AllowOrigins))
	for _, o := range config.AllowOrigins {
		if o == "*" {
			wildcard = true
			continue
		}
		allowed[o] = struct{}{}
	}
	methods := strings.Join(config.AllowMethods, ", ")
	reqHeaders := strings.Join(config.AllowHeaders, ", ")
	exposed := strings.Join(config.ExposeHeaders, ", ")
	maxAge := strconv.Itoa(config.MaxAge)

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		_, listed := allowed[origin]

		var allowOrigin string
		switch {
		case listed:
			allowOrigin = origin
		case wildcard && config.AllowCredentials && origin != "":
			// Credentials cannot be combined with a literal "*".
			allowOrigin = origin
		case wildcard:
			allowOrigin = "*"
		}

		if allowOrigin != "" {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", allowOrigin)
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", reqHeaders)
			h.Set("Access-Control-Expose-Headers", exposed)
			h.Set("Access-Control-Max-Age", maxAge)
			if config.AllowCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
			if allowOrigin != "*" {
				h.Add("Vary", "Origin")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
