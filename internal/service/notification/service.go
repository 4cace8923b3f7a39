package notification

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	"github.com/jwalitptl/aegis-triage/internal/email"
	"github.com/jwalitptl/aegis-triage/internal/model"
	"github.com/jwalitptl/aegis-triage/pkg/messaging"
)

const (
	eventCaseCreated   = "case.created"
	eventCaseCritical  = "case.critical"
	eventStatusChanged = "case.status_changed"

	sendTimeout = 10 * time.Second
)

// Service tells downstream consumers about case activity.
type Service interface {
	CaseCreated(ctx context.Context, c *model.TriageCase) error
	StatusChanged(ctx context.Context, c *model.TriageCase) error
}

type service struct {
	emailSvc   email.Service
	broker     messaging.Publisher
	recipients []string
	logger     zerolog.Logger
}

func NewService(emailSvc email.Service, broker messaging.Publisher, recipients []string, logger zerolog.Logger) Service {
	return &service{
		emailSvc:   emailSvc,
		broker:     broker,
		recipients: recipients,
		logger:     logger.With().Str("component", "notification").Logger(),
	}
}

// CaseEvent is the payload published for every case event. It carries no
// free-text complaint.
type CaseEvent struct {
	CaseID     string           `json:"caseId"`
	PatientID  string           `json:"patientId"`
	ESILevel   model.ESILevel   `json:"esiLevel"`
	Category   model.Category   `json:"medicalCategory"`
	Status     model.CaseStatus `json:"status"`
	HospitalID string           `json:"assignedHospitalId,omitempty"`
	Flags      []string         `json:"flags"`
	At         time.Time        `json:"at"`
}

func NewCaseEvent(c *model.TriageCase) CaseEvent {
	return CaseEvent{
		CaseID:     c.ID.String(),
		PatientID:  c.PatientID,
		ESILevel:   c.ESILevel,
		Category:   c.Category,
		Status:     c.Status,
		HospitalID: c.AssignedHospitalID,
		Flags:      c.Flags,
		At:         c.UpdatedAt,
	}
}

// CaseCreated publishes the created event. Critical cases also go out on
// the critical channel and page on-call staff by email. Branches run in
// parallel and each one runs even if another fails.
func (s *service) CaseCreated(ctx context.Context, c *model.TriageCase) error {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	evt := NewCaseEvent(c)
	p := pool.New().WithErrors().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		return s.publish(ctx, messaging.ChannelCaseCreated, eventCaseCreated, evt)
	})

	if c.ESILevel.Critical() {
		p.Go(func(ctx context.Context) error {
			return s.publish(ctx, messaging.ChannelCaseCritical, eventCaseCritical, evt)
		})
		if s.emailSvc != nil {
			p.Go(func(ctx context.Context) error {
				return s.sendCriticalEmail(ctx, c)
			})
		}
	}

	if err := p.Wait(); err != nil {
		s.logger.Error().Err(err).Str("case_id", evt.CaseID).Msg("case notification incomplete")
		return err
	}
	return nil
}

func (s *service) StatusChanged(ctx context.Context, c *model.TriageCase) error {
	return s.publish(ctx, messaging.ChannelCaseStatus, eventStatusChanged, NewCaseEvent(c))
}

func (s *service) publish(ctx context.Context, channel, eventType string, payload CaseEvent) error {
	if err := s.broker.Publish(ctx, channel, messaging.Message{Type: eventType, Payload: payload}); err != nil {
		return fmt.Errorf("failed to publish %s: %w", eventType, err)
	}
	return nil
}

func (s *service) sendCriticalEmail(ctx context.Context, c *model.TriageCase) error {
	if s.emailSvc == nil || len(s.recipients) == 0 {
		return nil
	}
	if err := s.emailSvc.SendCustom(ctx, s.recipients, criticalSubject(c), criticalBody(c)); err != nil {
		return fmt.Errorf("failed to send critical alert: %w", err)
	}
	return nil
}

func criticalSubject(c *model.TriageCase) string {
	return AlertSubject(NewCaseEvent(c))
}

// AlertSubject is the mail subject for a critical case alert.
func AlertSubject(evt CaseEvent) string {
	id := evt.CaseID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("[ESI %d] %s case %s", evt.ESILevel, evt.Category, id)
}

// AlertBody renders an alert from a published event. Events carry no SBAR,
// so staff open the case in the queue for the handoff note.
func AlertBody(evt CaseEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>ESI %d - %s</h2>", evt.ESILevel, html.EscapeString(evt.ESILevel.Description()))
	fmt.Fprintf(&b, "<p><b>Case:</b> %s</p>", html.EscapeString(evt.CaseID))
	fmt.Fprintf(&b, "<p><b>Flags:</b> %s</p>", html.EscapeString(strings.Join(evt.Flags, ", ")))
	if evt.HospitalID != "" {
		fmt.Fprintf(&b, "<p><b>Hospital:</b> %s</p>", html.EscapeString(evt.HospitalID))
	}
	return b.String()
}

func criticalBody(c *model.TriageCase) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>ESI %d - %s</h2>", c.ESILevel, html.EscapeString(c.ESILevel.Description()))
	fmt.Fprintf(&b, "<p><b>Flags:</b> %s</p>", html.EscapeString(strings.Join(c.Flags, ", ")))
	fmt.Fprintf(&b, "<p><b>Situation:</b> %s</p>", html.EscapeString(c.SBAR.Situation))
	fmt.Fprintf(&b, "<p><b>Background:</b> %s</p>", html.EscapeString(c.SBAR.Background))
	fmt.Fprintf(&b, "<p><b>Assessment:</b> %s</p>", html.EscapeString(c.SBAR.Assessment))
	fmt.Fprintf(&b, "<p><b>Recommendation:</b> %s</p>", html.EscapeString(c.SBAR.Recommendation))
	return b.String()
}
