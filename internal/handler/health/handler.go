package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Checker is a named readiness probe, e.g. a database or redis ping.
type Checker struct {
	Name  string
	Check func(ctx context.Context) error
}

type Handler struct {
	checkers []Checker
	timeout  time.Duration
}

func NewHandler(checkers ...Checker) *Handler {
	return &Handler{
		checkers: checkers,
		timeout:  2 * time.Second,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	health := r.Group("/health")
	{
		health.GET("/live", h.LivenessCheck)
		health.GET("/ready", h.ReadinessCheck)
	}
}

func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}

func (h *Handler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	for _, chk := range h.checkers {
		if err := chk.Check(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "DOWN",
				"reason": chk.Name + " unavailable",
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}
