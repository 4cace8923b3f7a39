package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/aegis-triage/internal/model"
	"github.com/jwalitptl/aegis-triage/internal/repository"
)

// openTestDB connects to AEGIS_TEST_POSTGRES_DSN or skips.
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("AEGIS_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("AEGIS_TEST_POSTGRES_DSN not set")
	}
	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	require.NoError(t, Migrate(context.Background(), db))
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCaseRepositoryIntegration(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewCaseRepository(db)
	patient := "pg-" + uuid.NewString()

	c := &model.TriageCase{
		PatientID:      patient,
		Age:            55,
		ChiefComplaint: "chest pain",
		SBAR:           model.SBAR{Situation: "s", Background: "b", Assessment: "a", Recommendation: "r"},
		ESILevel:       model.ESIEmergent,
		ESIReasoning:   "HIGH RISK",
		Flags:          []string{"High Risk"},
		Category:       model.CategoryCardiac,
		Source:         model.SourceRules,
		Status:         model.CaseStatusNew,
		SharedContext:  &model.SharedContext{ReportSummary: "x", Risks: []string{}, FitnessTrend: model.TrendStable},
	}
	require.NoError(t, repo.Create(ctx, c))

	got, err := repo.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.SBAR, got.SBAR)
	assert.Equal(t, []string{"High Risk"}, got.Flags)
	require.NotNil(t, got.SharedContext)

	updated, err := repo.UpdateStatus(ctx, c.ID, model.CaseStatusUnderReview)
	require.NoError(t, err)
	assert.Equal(t, model.CaseStatusUnderReview, updated.Status)

	list, err := repo.List(ctx, &model.CaseFilters{PatientID: patient})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = repo.UpdateStatus(ctx, c.ID, model.CaseStatusClosed)
	require.NoError(t, err)
	n, err := repo.PurgeClosed(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 1)
	_, err = repo.Get(ctx, c.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestReportRepositoryIntegration(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewReportRepository(db, 2)
	patient := "pg-" + uuid.NewString()

	for _, score := range []int{60, 70, 80} {
		require.NoError(t, repo.Append(ctx, patient, &model.HealthReport{WellnessScore: score}))
	}
	latest, err := repo.Latest(ctx, patient)
	require.NoError(t, err)
	assert.Equal(t, 80, latest.WellnessScore)

	history, err := repo.History(ctx, patient, 10)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}
