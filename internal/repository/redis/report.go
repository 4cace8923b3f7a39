package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jwalitptl/aegis-triage/internal/model"
	"github.com/jwalitptl/aegis-triage/internal/repository"
)

const keyPrefix = "aegis:reports:"

type reportRepository struct {
	client *redis.Client
	limit  int
}

// NewReportRepository keeps each patient's history in a capped Redis list,
// newest at the head.
func NewReportRepository(client *redis.Client, limit int) repository.ReportRepository {
	if limit <= 0 {
		limit = repository.DefaultHistoryLimit
	}
	return &reportRepository{client: client, limit: limit}
}

func key(patientID string) string {
	return keyPrefix + patientID
}

func (r *reportRepository) Append(ctx context.Context, patientID string, report *model.HealthReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, key(patientID), payload)
	pipe.LTrim(ctx, key(patientID), 0, int64(r.limit-1))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append report: %w", err)
	}
	return nil
}

func (r *reportRepository) Latest(ctx context.Context, patientID string) (*model.HealthReport, error) {
	raw, err := r.client.LIndex(ctx, key(patientID), 0).Bytes()
	if err == redis.Nil {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read latest report: %w", err)
	}
	var report model.HealthReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &report, nil
}

func (r *reportRepository) History(ctx context.Context, patientID string, limit int) ([]model.HealthReport, error) {
	if limit <= 0 || limit > r.limit {
		limit = r.limit
	}
	raws, err := r.client.LRange(ctx, key(patientID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read report history: %w", err)
	}
	out := make([]model.HealthReport, 0, len(raws))
	for _, raw := range raws {
		var report model.HealthReport
		if err := json.Unmarshal([]byte(raw), &report); err != nil {
			return nil, fmt.Errorf("failed to decode report: %w", err)
		}
		out = append(out, report)
	}
	return out, nil
}
