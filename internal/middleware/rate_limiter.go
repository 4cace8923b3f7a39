package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/aegis-triage/pkg/errors"
	"github.com/jwalitptl/aegis-triage/pkg/httputil"
)

type RateLimiterConfig struct {
	Rate  rate.Limit
	Burst int
	// IdleTTL is how long a client's bucket survives without requests.
	IdleTTL time.Duration
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	mu      sync.Mutex
	config  RateLimiterConfig
	clients *cache.Cache
}

func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.IdleTTL <= 0 {
		config.IdleTTL = 10 * time.Minute
	}
	if config.Burst <= 0 {
		config.Burst = 1
	}
	return &RateLimiter{
		config:  config,
		clients: cache.New(config.IdleTTL, 2*config.IdleTTL),
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if v, found := rl.clients.Get(key); found {
		l := v.(*rate.Limiter)
		rl.clients.Set(key, l, cache.DefaultExpiration)
		return l
	}
	l := rate.NewLimiter(rl.config.Rate, rl.config.Burst)
	rl.clients.Set(key, l, cache.DefaultExpiration)
	return l
}

// Allow reports whether the client identified by key may proceed now.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.limiter(key).Allow()
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			httputil.RespondWithError(c, errors.RateLimited())
			return
		}
		c.Next()
	}
}
