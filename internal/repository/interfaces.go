package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/aegis-triage/internal/model"
)

// ErrNotFound is returned by every driver when a lookup matches nothing.
var ErrNotFound = errors.New("not found")

// DefaultHistoryLimit is how many reports a patient history keeps.
const DefaultHistoryLimit = 10

// All repository interfaces in one file
type (
	// CaseRepository stores triage cases for the staff queue.
	CaseRepository interface {
		Create(ctx context.Context, c *model.TriageCase) error
		Get(ctx context.Context, id uuid.UUID) (*model.TriageCase, error)
		List(ctx context.Context, filters *model.CaseFilters) ([]*model.TriageCase, error)
		ListByPatient(ctx context.Context, patientID string) ([]*model.TriageCase, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.CaseStatus) (*model.TriageCase, error)
		// PurgeClosed deletes CLOSED cases last updated before cutoff.
		PurgeClosed(ctx context.Context, cutoff time.Time) (int, error)
	}

	// ReportRepository keeps a bounded, newest-first history of wellness
	// reports per patient.
	ReportRepository interface {
		Append(ctx context.Context, patientID string, report *model.HealthReport) error
		Latest(ctx context.Context, patientID string) (*model.HealthReport, error)
		History(ctx context.Context, patientID string, limit int) ([]model.HealthReport, error)
	}
)
