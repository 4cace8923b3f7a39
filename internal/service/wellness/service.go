package wellness

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/aegis-triage/internal/model"
	"github.com/jwalitptl/aegis-triage/internal/repository"
	"github.com/jwalitptl/aegis-triage/internal/wellness"
	"github.com/jwalitptl/aegis-triage/pkg/metrics"
)

type Service struct {
	engine  *wellness.Engine
	reports repository.ReportRepository
	metrics *metrics.Metrics
	logger  zerolog.Logger
	now     func() time.Time
}

func NewService(reports repository.ReportRepository, m *metrics.Metrics, logger zerolog.Logger) *Service {
	return &Service{
		engine:  wellness.NewEngine(),
		reports: reports,
		metrics: m,
		logger:  logger.With().Str("service", "wellness").Logger(),
		now:     time.Now,
	}
}

// Score runs the questionnaire through the scoring engine and appends the
// report to the patient's history.
func (s *Service) Score(ctx context.Context, patientID string, in model.AssumptionInput) (*model.HealthReport, error) {
	report := s.engine.Score(in, s.now())
	report.ID = uuid.NewString()

	if err := s.reports.Append(ctx, patientID, report); err != nil {
		return nil, fmt.Errorf("failed to store health report: %w", err)
	}
	if s.metrics != nil {
		s.metrics.WellnessScores.Observe(float64(report.WellnessScore))
	}

	s.logger.Info().
		Str("patient_id", patientID).
		Str("report_id", report.ID).
		Int("score", report.WellnessScore).
		Msg("health report generated")
	return report, nil
}

func (s *Service) Latest(ctx context.Context, patientID string) (*model.HealthReport, error) {
	report, err := s.reports.Latest(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest report: %w", err)
	}
	return report, nil
}

func (s *Service) History(ctx context.Context, patientID string, limit int) ([]model.HealthReport, error) {
	if limit <= 0 {
		limit = repository.DefaultHistoryLimit
	}
	history, err := s.reports.History(ctx, patientID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get report history: %w", err)
	}
	return history, nil
}

// SharedContext is the summary a patient consents to attach to a triage case.
func (s *Service) SharedContext(ctx context.Context, patientID string) (*model.SharedContext, error) {
	history, err := s.reports.History(ctx, patientID, 2)
	if err != nil {
		return nil, fmt.Errorf("failed to build shared context: %w", err)
	}
	return wellness.SharedContextFrom(history), nil
}
