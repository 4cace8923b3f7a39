package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/aegis-triage/internal/model"
	"github.com/jwalitptl/aegis-triage/internal/repository"
)

type caseRow struct {
	ID                 uuid.UUID `db:"id"`
	PatientID          string    `db:"patient_id"`
	PatientAlias       string    `db:"patient_alias"`
	Age                int       `db:"age"`
	Gender             string    `db:"gender"`
	ChiefComplaint     string    `db:"chief_complaint"`
	Symptoms           []byte    `db:"symptoms"`
	PainScore          int       `db:"pain_score"`
	Duration           string    `db:"duration"`
	SBAR               []byte    `db:"sbar"`
	ESILevel           int       `db:"esi_level"`
	ESIReasoning       string    `db:"esi_reasoning"`
	Flags              []byte    `db:"flags"`
	Category           string    `db:"category"`
	Source             string    `db:"source"`
	Status             string    `db:"status"`
	AssignedHospitalID string    `db:"assigned_hospital_id"`
	SharedContext      []byte    `db:"shared_context"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

func (row *caseRow) toModel() (*model.TriageCase, error) {
	c := &model.TriageCase{
		ID:                 row.ID,
		PatientID:          row.PatientID,
		PatientAlias:       row.PatientAlias,
		Age:                row.Age,
		Gender:             row.Gender,
		ChiefComplaint:     row.ChiefComplaint,
		PainScore:          row.PainScore,
		Duration:           row.Duration,
		ESILevel:           model.ESILevel(row.ESILevel),
		ESIReasoning:       row.ESIReasoning,
		Category:           model.Category(row.Category),
		Source:             model.TriageSource(row.Source),
		Status:             model.CaseStatus(row.Status),
		AssignedHospitalID: row.AssignedHospitalID,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
	if err := json.Unmarshal(row.Symptoms, &c.Symptoms); err != nil {
		return nil, fmt.Errorf("failed to decode symptoms: %w", err)
	}
	if err := json.Unmarshal(row.SBAR, &c.SBAR); err != nil {
		return nil, fmt.Errorf("failed to decode sbar: %w", err)
	}
	if err := json.Unmarshal(row.Flags, &c.Flags); err != nil {
		return nil, fmt.Errorf("failed to decode flags: %w", err)
	}
	if len(row.SharedContext) > 0 && string(row.SharedContext) != "null" {
		c.SharedContext = &model.SharedContext{}
		if err := json.Unmarshal(row.SharedContext, c.SharedContext); err != nil {
			return nil, fmt.Errorf("failed to decode shared context: %w", err)
		}
	}
	return c, nil
}

type caseRepository struct {
	BaseRepository
}

func NewCaseRepository(db *sqlx.DB) repository.CaseRepository {
	return &caseRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *caseRepository) Create(ctx context.Context, c *model.TriageCase) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt

	symptoms, err := jsonColumn(nonNil(c.Symptoms))
	if err != nil {
		return err
	}
	sbar, err := jsonColumn(c.SBAR)
	if err != nil {
		return err
	}
	flags, err := jsonColumn(nonNil(c.Flags))
	if err != nil {
		return err
	}
	var shared []byte
	if c.SharedContext != nil {
		if shared, err = jsonColumn(c.SharedContext); err != nil {
			return err
		}
	}

	query := `
		INSERT INTO triage_cases (
			id, patient_id, patient_alias, age, gender, chief_complaint, symptoms,
			pain_score, duration, sbar, esi_level, esi_reasoning, flags, category,
			source, status, assigned_hospital_id, shared_context, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`
	_, err = r.db.ExecContext(ctx, query,
		c.ID, c.PatientID, c.PatientAlias, c.Age, c.Gender, c.ChiefComplaint, symptoms,
		c.PainScore, c.Duration, sbar, int(c.ESILevel), c.ESIReasoning, flags, string(c.Category),
		string(c.Source), string(c.Status), c.AssignedHospitalID, shared, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create triage case: %w", err)
	}
	return nil
}

func (r *caseRepository) Get(ctx context.Context, id uuid.UUID) (*model.TriageCase, error) {
	var row caseRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM triage_cases WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get triage case: %w", err)
	}
	return row.toModel()
}

func (r *caseRepository) List(ctx context.Context, filters *model.CaseFilters) ([]*model.TriageCase, error) {
	if filters == nil {
		filters = &model.CaseFilters{}
	}
	var (
		where []string
		args  []interface{}
	)
	add := func(clause string, arg interface{}) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if filters.Status != "" {
		add("status = $%d", string(filters.Status))
	}
	if filters.HospitalID != "" {
		add("(assigned_hospital_id = $%d OR assigned_hospital_id = '')", filters.HospitalID)
	}
	if filters.PatientID != "" {
		add("patient_id = $%d", filters.PatientID)
	}

	query := `SELECT * FROM triage_cases`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, filters.Limit(), filters.Offset())
	query += fmt.Sprintf(" ORDER BY esi_level ASC, created_at ASC, id ASC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	return r.selectCases(ctx, query, args...)
}

func (r *caseRepository) ListByPatient(ctx context.Context, patientID string) ([]*model.TriageCase, error) {
	return r.selectCases(ctx,
		`SELECT * FROM triage_cases WHERE patient_id = $1 ORDER BY created_at DESC`, patientID)
}

func (r *caseRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.CaseStatus) (*model.TriageCase, error) {
	var row caseRow
	err := r.db.GetContext(ctx, &row,
		`UPDATE triage_cases SET status = $1, updated_at = $2 WHERE id = $3 RETURNING *`,
		string(status), time.Now().UTC(), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update case status: %w", err)
	}
	return row.toModel()
}

func (r *caseRepository) PurgeClosed(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM triage_cases WHERE status = $1 AND updated_at < $2`,
		string(model.CaseStatusClosed), cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge closed cases: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged cases: %w", err)
	}
	return int(n), nil
}

func (r *caseRepository) selectCases(ctx context.Context, query string, args ...interface{}) ([]*model.TriageCase, error) {
	var rows []caseRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list triage cases: %w", err)
	}
	out := make([]*model.TriageCase, 0, len(rows))
	for i := range rows {
		c, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
