package triage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/aegis-triage/internal/model"
	"github.com/jwalitptl/aegis-triage/internal/oracle"
	"github.com/jwalitptl/aegis-triage/internal/repository/memory"
	"github.com/jwalitptl/aegis-triage/internal/service/notification"
	engine "github.com/jwalitptl/aegis-triage/internal/triage"
	"github.com/jwalitptl/aegis-triage/pkg/circuitbreaker"
	"github.com/jwalitptl/aegis-triage/pkg/messaging"
	"github.com/jwalitptl/aegis-triage/pkg/metrics"
)

type stubOracle struct {
	mu     sync.Mutex
	calls  int
	inputs []model.TriageInput
	result *model.TriageResult
	err    error
	delay  time.Duration
}

func (o *stubOracle) Name() string { return "stub" }

func (o *stubOracle) Triage(ctx context.Context, in model.TriageInput) (*model.TriageResult, error) {
	o.mu.Lock()
	o.calls++
	o.inputs = append(o.inputs, in)
	o.mu.Unlock()
	if o.delay > 0 {
		select {
		case <-time.After(o.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return o.result, o.err
}

type stubNotifier struct {
	mu      sync.Mutex
	created []*model.TriageCase
	changed []*model.TriageCase
	err     error
}

func (n *stubNotifier) CaseCreated(ctx context.Context, c *model.TriageCase) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, c)
	return n.err
}

func (n *stubNotifier) StatusChanged(ctx context.Context, c *model.TriageCase) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changed = append(n.changed, c)
	return n.err
}

func oracleResult() *model.TriageResult {
	return &model.TriageResult{
		SBAR: model.SBAR{
			Situation:      "s",
			Background:     "b",
			Assessment:     "a",
			Recommendation: "r",
		},
		ESILevel:  model.ESIEmergent,
		Reasoning: "model reasoning",
		Category:  model.CategoryCardiac,
		Severity:  model.SeverityHigh,
		Source:    model.SourceOracle,
	}
}

func chestPainInput() model.TriageInput {
	return model.TriageInput{
		SymptomsText: "My name is Ravi, crushing chest pain since morning, call 9876543210",
		PainScore:    8,
		HasChestPain: true,
		Age:          65,
		Gender:       "Male",
	}
}

func newTestService(t *testing.T, o oracle.TriageOracle, opts ...func(*Options)) (*Service, *stubNotifier, *metrics.Metrics) {
	t.Helper()
	m := metrics.New("test", prometheus.NewRegistry())
	n := &stubNotifier{}
	o2 := Options{
		Oracle:        o,
		OracleTimeout: 200 * time.Millisecond,
		Cases:         memory.NewCaseRepository(0),
		Reports:       memory.NewReportRepository(10),
		Notifier:      n,
		Metrics:       m,
		Logger:        zerolog.Nop(),
	}
	for _, fn := range opts {
		fn(&o2)
	}
	return NewService(o2), n, m
}

func TestEvaluateRejectsNonMedicalBeforeOracle(t *testing.T) {
	o := &stubOracle{result: oracleResult()}
	svc, _, m := newTestService(t, o)

	_, err := svc.Evaluate(context.Background(), model.TriageInput{SymptomsText: "tell me a joke", Age: 30})
	require.ErrorIs(t, err, engine.ErrNonMedicalIntent)
	assert.Zero(t, o.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TriageRejections))
}

func TestEvaluateUsesOracleWithMaskedText(t *testing.T) {
	o := &stubOracle{result: oracleResult()}
	svc, _, m := newTestService(t, o)

	res, err := svc.Evaluate(context.Background(), chestPainInput())
	require.NoError(t, err)
	assert.Equal(t, model.SourceOracle, res.Source)
	assert.Equal(t, "model reasoning", res.Reasoning)

	require.Len(t, o.inputs, 1)
	sent := o.inputs[0].SymptomsText
	assert.NotContains(t, sent, "Ravi")
	assert.NotContains(t, sent, "9876543210")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OracleCalls.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TriageDecisions.WithLabelValues("2", "oracle")))
}

func TestEvaluateFallsBackToRules(t *testing.T) {
	tests := []struct {
		name    string
		oracle  *stubOracle
		outcome string
	}{
		{"unavailable", &stubOracle{err: oracle.ErrUnavailable}, "unavailable"},
		{"malformed", &stubOracle{err: oracle.ErrMalformed}, "malformed"},
		{"timeout", &stubOracle{result: oracleResult(), delay: time.Second}, "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, m := newTestService(t, tt.oracle)

			res, err := svc.Evaluate(context.Background(), chestPainInput())
			require.NoError(t, err)
			assert.Equal(t, model.SourceRules, res.Source)
			assert.LessOrEqual(t, int(res.ESILevel), 2)
			assert.Equal(t, 1.0, testutil.ToFloat64(m.OracleCalls.WithLabelValues(tt.outcome)))
		})
	}
}

func TestEvaluateWithoutOracle(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	res, err := svc.Evaluate(context.Background(), chestPainInput())
	require.NoError(t, err)
	assert.Equal(t, model.SourceRules, res.Source)
	assert.Equal(t, model.CategoryCardiac, res.Category)
}

func TestBreakerStopsCallingFailingOracle(t *testing.T) {
	o := &stubOracle{err: oracle.ErrUnavailable}
	cb := circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
		Name:        "oracle",
		MaxFailures: 2,
		Timeout:     time.Minute,
	})
	svc, _, m := newTestService(t, o, func(opts *Options) { opts.Breaker = cb })

	for i := 0; i < 4; i++ {
		res, err := svc.Evaluate(context.Background(), chestPainInput())
		require.NoError(t, err)
		assert.Equal(t, model.SourceRules, res.Source)
	}
	assert.Equal(t, 2, o.calls)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.OracleCalls.WithLabelValues("breaker_open")))
}

func TestSubmitCreatesCase(t *testing.T) {
	svc, n, _ := newTestService(t, nil)

	c, err := svc.Submit(context.Background(), &model.CreateTriageRequest{
		PatientID:          "p-1",
		TriageInput:        chestPainInput(),
		AssignedHospitalID: "h1",
	})
	require.NoError(t, err)

	assert.Equal(t, model.CaseStatusNew, c.Status)
	assert.Equal(t, "p-1", c.PatientID)
	assert.Regexp(t, `^Patient-[0-9A-F]{4}$`, c.PatientAlias)
	assert.NotContains(t, c.ChiefComplaint, "Ravi")
	assert.LessOrEqual(t, len([]rune(c.ChiefComplaint)), chiefComplaintMax)
	assert.Equal(t, []string{"Chest Pain"}, c.Symptoms)
	assert.True(t, c.SBAR.Complete())
	assert.Nil(t, c.SharedContext)

	stored, err := svc.GetCase(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ESILevel, stored.ESILevel)

	require.Len(t, n.created, 1)
	assert.Equal(t, c.ID, n.created[0].ID)
}

type capturingEmail struct {
	mu     sync.Mutex
	bodies []string
}

func (e *capturingEmail) SendCustom(ctx context.Context, to []string, subject string, body string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bodies = append(e.bodies, body)
	return nil
}

func TestSubmitStoresMaskedSituation(t *testing.T) {
	mail := &capturingEmail{}
	svc, _, _ := newTestService(t, nil, func(o *Options) {
		o.Notifier = notification.NewService(mail, messaging.NewMemoryBroker(), []string{"oncall@example.org"}, zerolog.Nop())
	})

	c, err := svc.Submit(context.Background(), &model.CreateTriageRequest{
		PatientID:   "p-1",
		TriageInput: chestPainInput(),
	})
	require.NoError(t, err)
	assert.Equal(t, model.SourceRules, c.Source)
	require.True(t, c.ESILevel.Critical())

	stored, err := svc.GetCase(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Contains(t, stored.SBAR.Situation, "[Patient_ID_XXXX]")
	assert.Contains(t, stored.SBAR.Situation, "[PHONE_REDACTED]")
	for _, leak := range []string{"Ravi", "9876543210"} {
		assert.NotContains(t, stored.SBAR.Situation, leak)
		assert.NotContains(t, stored.ChiefComplaint, leak)
	}

	mail.mu.Lock()
	defer mail.mu.Unlock()
	require.Len(t, mail.bodies, 1)
	assert.Contains(t, mail.bodies[0], "[PHONE_REDACTED]")
	assert.NotContains(t, mail.bodies[0], "Ravi")
	assert.NotContains(t, mail.bodies[0], "9876543210")
}

func TestSubmitKeepsOracleSituation(t *testing.T) {
	svc, _, _ := newTestService(t, &stubOracle{result: oracleResult()})

	c, err := svc.Submit(context.Background(), &model.CreateTriageRequest{
		PatientID:   "p-1",
		TriageInput: chestPainInput(),
	})
	require.NoError(t, err)
	assert.Equal(t, model.SourceOracle, c.Source)
	assert.Equal(t, "s", c.SBAR.Situation)
}

func TestSubmitIgnoresNotificationFailure(t *testing.T) {
	svc, n, _ := newTestService(t, nil)
	n.err = errors.New("broker down")

	_, err := svc.Submit(context.Background(), &model.CreateTriageRequest{
		PatientID:   "p-1",
		TriageInput: chestPainInput(),
	})
	require.NoError(t, err)
}

func TestSubmitRejectsNonMedical(t *testing.T) {
	svc, n, _ := newTestService(t, nil)

	_, err := svc.Submit(context.Background(), &model.CreateTriageRequest{
		PatientID:   "p-1",
		TriageInput: model.TriageInput{SymptomsText: "what is the weather today", Age: 30},
	})
	require.ErrorIs(t, err, engine.ErrNonMedicalIntent)
	assert.Empty(t, n.created)

	cases, err := svc.ListPatientCases(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Empty(t, cases)
}

func TestSubmitAttachesSharedContext(t *testing.T) {
	reports := memory.NewReportRepository(10)
	ctx := context.Background()
	require.NoError(t, reports.Append(ctx, "p-1", &model.HealthReport{ID: "r1", Date: "2024-01-01", WellnessScore: 60, Summary: "older"}))
	require.NoError(t, reports.Append(ctx, "p-1", &model.HealthReport{ID: "r2", Date: "2024-02-01", WellnessScore: 70, Summary: "newer", Flags: []string{"Metabolic Risk"}}))

	svc, _, _ := newTestService(t, nil, func(opts *Options) { opts.Reports = reports })

	c, err := svc.Submit(ctx, &model.CreateTriageRequest{
		PatientID:    "p-1",
		TriageInput:  chestPainInput(),
		ShareContext: true,
	})
	require.NoError(t, err)
	require.NotNil(t, c.SharedContext)
	assert.Equal(t, "newer", c.SharedContext.ReportSummary)
	assert.Equal(t, model.TrendImproving, c.SharedContext.FitnessTrend)
	assert.Equal(t, "2024-02-01", c.SharedContext.LastCheckin)
}

func TestUpdateStatus(t *testing.T) {
	svc, n, _ := newTestService(t, nil)
	ctx := context.Background()

	c, err := svc.Submit(ctx, &model.CreateTriageRequest{PatientID: "p-1", TriageInput: chestPainInput()})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, c.ID, model.CaseStatusDispatched)
	require.NoError(t, err)
	assert.Equal(t, model.CaseStatusDispatched, updated.Status)
	require.Len(t, n.changed, 1)

	_, err = svc.UpdateStatus(ctx, c.ID, model.CaseStatus("LOST"))
	assert.Error(t, err)

	_, err = svc.UpdateStatus(ctx, uuid.New(), model.CaseStatusClosed)
	assert.Error(t, err)
}

func TestTruncateCountsRunes(t *testing.T) {
	assert.Equal(t, "सीने", truncate("सीने में दर्द", 4))
	assert.Equal(t, "short", truncate("short", 10))
}
