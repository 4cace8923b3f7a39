package cases

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/aegis-triage/internal/handler"
	"github.com/jwalitptl/aegis-triage/internal/middleware"
	"github.com/jwalitptl/aegis-triage/internal/model"
	"github.com/jwalitptl/aegis-triage/pkg/auth"
	"github.com/jwalitptl/aegis-triage/pkg/errors"
	"github.com/jwalitptl/aegis-triage/pkg/httputil"
)

// RoleAdmin may read every hospital's queue.
const RoleAdmin = auth.RoleAdmin

type Service interface {
	GetCase(ctx context.Context, id uuid.UUID) (*model.TriageCase, error)
	ListCases(ctx context.Context, filters *model.CaseFilters) ([]*model.TriageCase, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.CaseStatus) (*model.TriageCase, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes expects r to already require staff authentication.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	cases := r.Group("/cases")
	{
		cases.GET("", h.ListCases)
		cases.GET("/:id", h.GetCase)
		cases.PATCH("/:id/status", h.UpdateStatus)
	}
}

// ListCases returns the triage queue, most acute first. Staff other than
// admins only see their own hospital's queue and the unassigned pool.
func (h *Handler) ListCases(c *gin.Context) {
	var filters model.CaseFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		handler.Fail(c, errors.BadRequest("invalid query", err))
		return
	}
	if filters.Status != "" && !filters.Status.Valid() {
		handler.Fail(c, errors.BadRequest("invalid status", nil))
		return
	}

	if claims, ok := middleware.StaffClaims(c); ok && claims.Role != RoleAdmin {
		filters.HospitalID = claims.HospitalID
	}

	cases, err := h.service.ListCases(c.Request.Context(), &filters)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithPagination(c, cases, max(filters.Page, 1), filters.Limit(), len(cases))
}

func (h *Handler) GetCase(c *gin.Context) {
	id, ok := handler.UUIDParam(c, "id")
	if !ok {
		return
	}

	tc, err := h.service.GetCase(c.Request.Context(), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	if !visible(c, tc) {
		handler.Fail(c, errors.NotFound("case", nil))
		return
	}
	httputil.RespondWithSuccess(c, tc)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := handler.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req model.UpdateCaseStatusRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	current, err := h.service.GetCase(c.Request.Context(), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	if !visible(c, current) {
		handler.Fail(c, errors.NotFound("case", nil))
		return
	}

	tc, err := h.service.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, tc)
}

func visible(c *gin.Context, tc *model.TriageCase) bool {
	return middleware.HospitalVisible(c, tc.AssignedHospitalID)
}
