package triage

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/aegis-triage/internal/handler"
	"github.com/jwalitptl/aegis-triage/internal/middleware"
	"github.com/jwalitptl/aegis-triage/internal/model"
	"github.com/jwalitptl/aegis-triage/pkg/httputil"
)

type Service interface {
	Evaluate(ctx context.Context, in model.TriageInput) (*model.TriageResult, error)
	Submit(ctx context.Context, req *model.CreateTriageRequest) (*model.TriageCase, error)
	ListPatientCases(ctx context.Context, patientID string) ([]*model.TriageCase, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	triage := r.Group("/triage")
	{
		triage.POST("", h.Submit)
		triage.POST("/evaluate", h.Evaluate)
	}
}

// RegisterPatientRoutes expects r to be addressed by /patients/:id and to
// already check the caller's token against :id.
func (h *Handler) RegisterPatientRoutes(r *gin.RouterGroup) {
	r.GET("/cases", h.ListPatientCases)
}

// Submit triages the intake and opens a case in the hospital queue.
func (h *Handler) Submit(c *gin.Context) {
	var req model.CreateTriageRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	tc, err := h.service.Submit(c.Request.Context(), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithStatus(c, http.StatusCreated, tc)
}

// Evaluate returns an assessment without opening a case.
func (h *Handler) Evaluate(c *gin.Context) {
	var in model.TriageInput
	if !handler.BindJSON(c, &in) {
		return
	}

	res, err := h.service.Evaluate(c.Request.Context(), in)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, res)
}

// ListPatientCases returns a patient's cases. Staff outside admin only get
// the cases routed to their hospital or not yet routed.
func (h *Handler) ListPatientCases(c *gin.Context) {
	cases, err := h.service.ListPatientCases(c.Request.Context(), c.Param("id"))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	out := make([]*model.TriageCase, 0, len(cases))
	for _, tc := range cases {
		if middleware.HospitalVisible(c, tc.AssignedHospitalID) {
			out = append(out, tc)
		}
	}
	httputil.RespondWithSuccess(c, out)
}
