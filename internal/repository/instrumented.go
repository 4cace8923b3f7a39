package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/aegis-triage/internal/model"
	"github.com/jwalitptl/aegis-triage/pkg/metrics"
)

// observe records one repository call. A not-found lookup counts as a
// success since the store answered.
func observe(m *metrics.Metrics, op string, start time.Time, err error) {
	status := "success"
	if err != nil && !errors.Is(err, ErrNotFound) {
		status = "error"
	}
	m.RepositoryOperations.WithLabelValues(op, status).Inc()
	m.RepositoryLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

type instrumentedCases struct {
	next    CaseRepository
	metrics *metrics.Metrics
}

// InstrumentCases wraps a case store with operation counters and latency.
func InstrumentCases(next CaseRepository, m *metrics.Metrics) CaseRepository {
	if m == nil {
		return next
	}
	return &instrumentedCases{next: next, metrics: m}
}

func (r *instrumentedCases) Create(ctx context.Context, c *model.TriageCase) (err error) {
	defer func(start time.Time) { observe(r.metrics, "case_create", start, err) }(time.Now())
	return r.next.Create(ctx, c)
}

func (r *instrumentedCases) Get(ctx context.Context, id uuid.UUID) (c *model.TriageCase, err error) {
	defer func(start time.Time) { observe(r.metrics, "case_get", start, err) }(time.Now())
	return r.next.Get(ctx, id)
}

func (r *instrumentedCases) List(ctx context.Context, filters *model.CaseFilters) (cs []*model.TriageCase, err error) {
	defer func(start time.Time) { observe(r.metrics, "case_list", start, err) }(time.Now())
	return r.next.List(ctx, filters)
}

func (r *instrumentedCases) ListByPatient(ctx context.Context, patientID string) (cs []*model.TriageCase, err error) {
	defer func(start time.Time) { observe(r.metrics, "case_list_by_patient", start, err) }(time.Now())
	return r.next.ListByPatient(ctx, patientID)
}

func (r *instrumentedCases) UpdateStatus(ctx context.Context, id uuid.UUID, status model.CaseStatus) (c *model.TriageCase, err error) {
	defer func(start time.Time) { observe(r.metrics, "case_update_status", start, err) }(time.Now())
	return r.next.UpdateStatus(ctx, id, status)
}

func (r *instrumentedCases) PurgeClosed(ctx context.Context, cutoff time.Time) (n int, err error) {
	defer func(start time.Time) { observe(r.metrics, "case_purge", start, err) }(time.Now())
	return r.next.PurgeClosed(ctx, cutoff)
}

type instrumentedReports struct {
	next    ReportRepository
	metrics *metrics.Metrics
}

// InstrumentReports wraps a report store with operation counters and latency.
func InstrumentReports(next ReportRepository, m *metrics.Metrics) ReportRepository {
	if m == nil {
		return next
	}
	return &instrumentedReports{next: next, metrics: m}
}

func (r *instrumentedReports) Append(ctx context.Context, patientID string, report *model.HealthReport) (err error) {
	defer func(start time.Time) { observe(r.metrics, "report_append", start, err) }(time.Now())
	return r.next.Append(ctx, patientID, report)
}

func (r *instrumentedReports) Latest(ctx context.Context, patientID string) (rep *model.HealthReport, err error) {
	defer func(start time.Time) { observe(r.metrics, "report_latest", start, err) }(time.Now())
	return r.next.Latest(ctx, patientID)
}

func (r *instrumentedReports) History(ctx context.Context, patientID string, limit int) (reps []model.HealthReport, err error) {
	defer func(start time.Time) { observe(r.metrics, "report_history", start, err) }(time.Now())
	return r.next.History(ctx, patientID, limit)
}
