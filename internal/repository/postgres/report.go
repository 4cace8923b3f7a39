package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/aegis-triage/internal/model"
	"github.com/jwalitptl/aegis-triage/internal/repository"
)

type reportRepository struct {
	BaseRepository
	limit int
}

// NewReportRepository stores reports as JSONB and trims each patient's
// history to limit rows on every append.
func NewReportRepository(db *sqlx.DB, limit int) repository.ReportRepository {
	if limit <= 0 {
		limit = repository.DefaultHistoryLimit
	}
	return &reportRepository{BaseRepository: NewBaseRepository(db), limit: limit}
}

func (r *reportRepository) Append(ctx context.Context, patientID string, report *model.HealthReport) error {
	body, err := jsonColumn(report)
	if err != nil {
		return err
	}
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO health_reports (patient_id, report) VALUES ($1, $2)`, patientID, body); err != nil {
			return fmt.Errorf("failed to insert health report: %w", err)
		}
		_, err := tx.ExecContext(ctx, `
			DELETE FROM health_reports
			WHERE patient_id = $1 AND seq NOT IN (
				SELECT seq FROM health_reports WHERE patient_id = $1 ORDER BY seq DESC LIMIT $2
			)`, patientID, r.limit)
		if err != nil {
			return fmt.Errorf("failed to trim report history: %w", err)
		}
		return nil
	})
}

func (r *reportRepository) Latest(ctx context.Context, patientID string) (*model.HealthReport, error) {
	var body []byte
	err := r.db.GetContext(ctx, &body,
		`SELECT report FROM health_reports WHERE patient_id = $1 ORDER BY seq DESC LIMIT 1`, patientID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest report: %w", err)
	}
	var report model.HealthReport
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &report, nil
}

func (r *reportRepository) History(ctx context.Context, patientID string, limit int) ([]model.HealthReport, error) {
	if limit <= 0 || limit > r.limit {
		limit = r.limit
	}
	var bodies [][]byte
	err := r.db.SelectContext(ctx, &bodies,
		`SELECT report FROM health_reports WHERE patient_id = $1 ORDER BY seq DESC LIMIT $2`, patientID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	out := make([]model.HealthReport, 0, len(bodies))
	for _, b := range bodies {
		var report model.HealthReport
		if err := json.Unmarshal(b, &report); err != nil {
			return nil, fmt.Errorf("failed to decode report: %w", err)
		}
		out = append(out, report)
	}
	return out, nil
}
