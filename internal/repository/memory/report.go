package memory

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/aegis-triage/internal/model"
	"github.com/jwalitptl/aegis-triage/internal/repository"
)

type reportRepository struct {
	mu    sync.Mutex
	cache *cache.Cache
	limit int
}

// NewReportRepository keeps at most limit reports per patient, newest first.
func NewReportRepository(limit int) repository.ReportRepository {
	if limit <= 0 {
		limit = repository.DefaultHistoryLimit
	}
	return &reportRepository{
		cache: cache.New(cache.NoExpiration, 10*time.Minute),
		limit: limit,
	}
}

func (r *reportRepository) Append(ctx context.Context, patientID string, report *model.HealthReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	history := r.load(patientID)
	next := make([]model.HealthReport, 0, len(history)+1)
	next = append(next, cloneReport(*report))
	next = append(next, history...)
	if len(next) > r.limit {
		next = next[:r.limit]
	}
	r.cache.Set(patientID, next, cache.NoExpiration)
	return nil
}

func (r *reportRepository) Latest(ctx context.Context, patientID string) (*model.HealthReport, error) {
	history := r.load(patientID)
	if len(history) == 0 {
		return nil, repository.ErrNotFound
	}
	latest := cloneReport(history[0])
	return &latest, nil
}

func (r *reportRepository) History(ctx context.Context, patientID string, limit int) ([]model.HealthReport, error) {
	history := r.load(patientID)
	if limit <= 0 || limit > len(history) {
		limit = len(history)
	}
	out := make([]model.HealthReport, limit)
	for i := range out {
		out[i] = cloneReport(history[i])
	}
	return out, nil
}

func (r *reportRepository) load(patientID string) []model.HealthReport {
	if v, found := r.cache.Get(patientID); found {
		return v.([]model.HealthReport)
	}
	return nil
}

// cloneReport copies every slice so stored history never aliases a
// caller's report.
func cloneReport(r model.HealthReport) model.HealthReport {
	r.RiskRadar = append([]model.RiskCategory(nil), r.RiskRadar...)
	r.SimulatedLabs = append([]model.SimulatedLab(nil), r.SimulatedLabs...)
	r.RecommendedTests = append([]string(nil), r.RecommendedTests...)
	r.ActionPlanSteps = append([]string(nil), r.ActionPlanSteps...)
	r.Flags = append([]string(nil), r.Flags...)
	r.AffectedOrgans = append([]model.Organ(nil), r.AffectedOrgans...)
	r.LogicTrace = append([]model.Deduction(nil), r.LogicTrace...)
	return r
}
