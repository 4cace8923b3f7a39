package triage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jwalitptl/aegis-triage/internal/model"
	"github.com/jwalitptl/aegis-triage/internal/oracle"
	"github.com/jwalitptl/aegis-triage/internal/repository"
	"github.com/jwalitptl/aegis-triage/internal/service/notification"
	engine "github.com/jwalitptl/aegis-triage/internal/triage"
	"github.com/jwalitptl/aegis-triage/internal/wellness"
	"github.com/jwalitptl/aegis-triage/pkg/circuitbreaker"
	"github.com/jwalitptl/aegis-triage/pkg/metrics"
)

const (
	defaultOracleTimeout = 3 * time.Second
	chiefComplaintMax    = 100
	sharedHistoryDepth   = 2
)

var tracer = otel.Tracer("github.com/jwalitptl/aegis-triage/internal/service/triage")

// Options wires the service collaborators. Oracle and Breaker may be nil,
// in which case every request is answered by the rule engine.
type Options struct {
	Engine        *engine.Engine
	Oracle        oracle.TriageOracle
	Breaker       *circuitbreaker.CircuitBreaker
	OracleTimeout time.Duration
	Cases         repository.CaseRepository
	Reports       repository.ReportRepository
	Notifier      notification.Service
	Metrics       *metrics.Metrics
	Logger        zerolog.Logger
}

type Service struct {
	engine        *engine.Engine
	oracle        oracle.TriageOracle
	breaker       *circuitbreaker.CircuitBreaker
	oracleTimeout time.Duration
	cases         repository.CaseRepository
	reports       repository.ReportRepository
	notifier      notification.Service
	metrics       *metrics.Metrics
	logger        zerolog.Logger
}

func NewService(opts Options) *Service {
	if opts.Engine == nil {
		opts.Engine = engine.NewEngine(nil)
	}
	if opts.OracleTimeout <= 0 {
		opts.OracleTimeout = defaultOracleTimeout
	}
	return &Service{
		engine:        opts.Engine,
		oracle:        opts.Oracle,
		breaker:       opts.Breaker,
		oracleTimeout: opts.OracleTimeout,
		cases:         opts.Cases,
		reports:       opts.Reports,
		notifier:      opts.Notifier,
		metrics:       opts.Metrics,
		logger:        opts.Logger.With().Str("service", "triage").Logger(),
	}
}

// Evaluate triages an intake. The guard runs before anything else. The
// oracle, when configured, gets PII-masked text and a bounded time budget.
// Any oracle failure falls through to the rule engine and is never returned.
func (s *Service) Evaluate(ctx context.Context, in model.TriageInput) (*model.TriageResult, error) {
	if !engine.IsMedicalIntent(in.SymptomsText) {
		if s.metrics != nil {
			s.metrics.TriageRejections.Inc()
		}
		return nil, engine.ErrNonMedicalIntent
	}
	in = in.Normalize()

	if res, ok := s.askOracle(ctx, in); ok {
		s.observeDecision(res)
		return res, nil
	}

	res, err := s.engine.Evaluate(in)
	if err != nil {
		return nil, err
	}
	s.observeDecision(res)
	return res, nil
}

func (s *Service) askOracle(ctx context.Context, in model.TriageInput) (*model.TriageResult, bool) {
	if s.oracle == nil {
		return nil, false
	}

	ctx, span := tracer.Start(ctx, "oracle.triage")
	defer span.End()
	span.SetAttributes(attribute.String("oracle.name", s.oracle.Name()))

	masked := in
	masked.SymptomsText = engine.MaskPII(in.SymptomsText)

	start := time.Now()
	var res *model.TriageResult
	call := func() error {
		octx, cancel := context.WithTimeout(ctx, s.oracleTimeout)
		defer cancel()
		var err error
		res, err = s.oracle.Triage(octx, masked)
		return err
	}

	var err error
	if s.breaker != nil {
		err = s.breaker.Execute(call)
	} else {
		err = call()
	}
	if s.metrics != nil {
		s.metrics.OracleLatency.Observe(time.Since(start).Seconds())
	}

	if err != nil {
		outcome := oracleOutcome(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		if s.metrics != nil {
			s.metrics.OracleCalls.WithLabelValues(outcome).Inc()
		}
		s.logger.Warn().Err(err).Str("oracle", s.oracle.Name()).Str("outcome", outcome).
			Msg("oracle failed, using rule engine")
		return nil, false
	}
	if s.metrics != nil {
		s.metrics.OracleCalls.WithLabelValues("ok").Inc()
	}
	span.SetAttributes(attribute.Int("triage.esi_level", int(res.ESILevel)))
	return res, true
}

func oracleOutcome(err error) string {
	switch {
	case errors.Is(err, circuitbreaker.ErrOpen):
		return "breaker_open"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, oracle.ErrMalformed):
		return "malformed"
	default:
		return "unavailable"
	}
}

func (s *Service) observeDecision(res *model.TriageResult) {
	if s.metrics == nil {
		return
	}
	s.metrics.TriageDecisions.WithLabelValues(strconv.Itoa(int(res.ESILevel)), string(res.Source)).Inc()
}

// Submit triages the request, stores it as a new case and notifies staff.
// Notification failures are logged, never returned.
func (s *Service) Submit(ctx context.Context, req *model.CreateTriageRequest) (*model.TriageCase, error) {
	res, err := s.Evaluate(ctx, req.TriageInput)
	if err != nil {
		return nil, err
	}
	in := req.TriageInput.Normalize()
	masked := in
	masked.SymptomsText = engine.MaskPII(in.SymptomsText)

	// The oracle already saw masked text. Rule results quote the raw
	// complaint, so the stored situation is rendered again.
	sbar := res.SBAR
	if res.Source == model.SourceRules {
		sbar.Situation = engine.Situation(masked, res.Category)
	}

	c := &model.TriageCase{
		ID:                 uuid.New(),
		PatientID:          req.PatientID,
		Age:                in.Age,
		Gender:             in.Gender,
		ChiefComplaint:     truncate(masked.SymptomsText, chiefComplaintMax),
		Symptoms:           symptomTags(in),
		PainScore:          in.PainScore,
		Duration:           in.Duration,
		SBAR:               sbar,
		ESILevel:           res.ESILevel,
		ESIReasoning:       res.Reasoning,
		Flags:              res.Flags,
		Category:           res.Category,
		Source:             res.Source,
		Status:             model.CaseStatusNew,
		AssignedHospitalID: req.AssignedHospitalID,
	}
	c.PatientAlias = "Patient-" + strings.ToUpper(c.ID.String()[:4])

	if req.ShareContext {
		shared, err := s.sharedContext(ctx, req.PatientID)
		if err != nil {
			s.logger.Warn().Err(err).Str("patient_id", req.PatientID).Msg("shared context unavailable")
		} else {
			c.SharedContext = shared
		}
	}

	if err := s.cases.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to store triage case: %w", err)
	}

	if s.notifier != nil {
		if err := s.notifier.CaseCreated(ctx, c); err != nil {
			s.logger.Error().Err(err).Str("case_id", c.ID.String()).Msg("failed to notify case creation")
		}
	}

	s.logger.Info().
		Str("case_id", c.ID.String()).
		Int("esi_level", int(c.ESILevel)).
		Str("source", string(c.Source)).
		Msg("triage case created")
	return c, nil
}

func (s *Service) sharedContext(ctx context.Context, patientID string) (*model.SharedContext, error) {
	if s.reports == nil {
		return wellness.SharedContextFrom(nil), nil
	}
	history, err := s.reports.History(ctx, patientID, sharedHistoryDepth)
	if err != nil {
		return nil, err
	}
	return wellness.SharedContextFrom(history), nil
}

func (s *Service) GetCase(ctx context.Context, id uuid.UUID) (*model.TriageCase, error) {
	c, err := s.cases.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get case: %w", err)
	}
	return c, nil
}

func (s *Service) ListCases(ctx context.Context, filters *model.CaseFilters) ([]*model.TriageCase, error) {
	cases, err := s.cases.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	return cases, nil
}

func (s *Service) ListPatientCases(ctx context.Context, patientID string) ([]*model.TriageCase, error) {
	cases, err := s.cases.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list patient cases: %w", err)
	}
	return cases, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status model.CaseStatus) (*model.TriageCase, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("invalid case status %q", status)
	}
	c, err := s.cases.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update case status: %w", err)
	}
	if s.notifier != nil {
		if err := s.notifier.StatusChanged(ctx, c); err != nil {
			s.logger.Error().Err(err).Str("case_id", id.String()).Msg("failed to publish status change")
		}
	}
	return c, nil
}

func symptomTags(in model.TriageInput) []string {
	tags := []string{}
	if in.HasChestPain {
		tags = append(tags, "Chest Pain")
	}
	if in.HasBreathingIssue {
		tags = append(tags, "Breathing Difficulty")
	}
	if in.HasConfusion {
		tags = append(tags, "Confusion")
	}
	return tags
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
