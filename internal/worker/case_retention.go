package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/aegis-triage/internal/repository"
	"github.com/jwalitptl/aegis-triage/pkg/metrics"
)

// CaseRetentionWorker periodically removes closed cases older than the
// retention window.
type CaseRetentionWorker struct {
	repo      repository.CaseRepository
	retention time.Duration
	interval  time.Duration
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	now       func() time.Time
}

func NewCaseRetentionWorker(repo repository.CaseRepository, retention, interval time.Duration, m *metrics.Metrics, logger zerolog.Logger) *CaseRetentionWorker {
	return &CaseRetentionWorker{
		repo:      repo,
		retention: retention,
		interval:  interval,
		metrics:   m,
		logger:    logger.With().Str("component", "case_retention").Logger(),
		now:       time.Now,
	}
}

func (w *CaseRetentionWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.Sweep(ctx); err != nil {
				w.logger.Error().Err(err).Msg("case retention sweep failed")
			}
		}
	}
}

// Sweep runs one purge pass and returns how many cases were removed.
func (w *CaseRetentionWorker) Sweep(ctx context.Context) (int, error) {
	cutoff := w.now().Add(-w.retention)

	n, err := w.repo.PurgeClosed(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge closed cases: %w", err)
	}
	if w.metrics != nil {
		w.metrics.CasesPurged.Add(float64(n))
	}
	if n > 0 {
		w.logger.Info().Int("purged", n).Time("cutoff", cutoff).Msg("closed cases purged")
	}
	return n, nil
}
