package wellness

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/aegis-triage/internal/handler"
	"github.com/jwalitptl/aegis-triage/internal/model"
	"github.com/jwalitptl/aegis-triage/pkg/errors"
	"github.com/jwalitptl/aegis-triage/pkg/httputil"
)

type Service interface {
	Score(ctx context.Context, patientID string, in model.AssumptionInput) (*model.HealthReport, error)
	Latest(ctx context.Context, patientID string) (*model.HealthReport, error)
	History(ctx context.Context, patientID string, limit int) ([]model.HealthReport, error)
	SharedContext(ctx context.Context, patientID string) (*model.SharedContext, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/patients/:id/wellness", h.Score)
}

// RegisterPatientRoutes expects r to be addressed by /patients/:id and to
// already check the caller's token against :id.
func (h *Handler) RegisterPatientRoutes(r *gin.RouterGroup) {
	r.GET("/reports", h.History)
	r.GET("/reports/latest", h.Latest)
	r.GET("/context", h.SharedContext)
}

func (h *Handler) Score(c *gin.Context) {
	var in model.AssumptionInput
	if !handler.BindJSON(c, &in) {
		return
	}

	report, err := h.service.Score(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithStatus(c, http.StatusCreated, report)
}

func (h *Handler) Latest(c *gin.Context) {
	report, err := h.service.Latest(c.Request.Context(), c.Param("id"))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, report)
}

func (h *Handler) History(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			handler.Fail(c, errors.BadRequest("invalid limit", err))
			return
		}
		limit = n
	}

	history, err := h.service.History(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, history)
}

func (h *Handler) SharedContext(c *gin.Context) {
	shared, err := h.service.SharedContext(c.Request.Context(), c.Param("id"))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, shared)
}
