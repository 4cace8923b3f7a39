package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/aegis-triage/internal/email"
	"github.com/jwalitptl/aegis-triage/internal/service/notification"
	"github.com/jwalitptl/aegis-triage/pkg/messaging"
	pkgworker "github.com/jwalitptl/aegis-triage/pkg/worker"
)

// AlertHandler turns case events from the broker into staff email alerts.
type AlertHandler struct {
	email      email.Service
	recipients []string
	logger     zerolog.Logger
}

func NewAlertHandler(emailSvc email.Service, recipients []string, logger zerolog.Logger) *AlertHandler {
	return &AlertHandler{
		email:      emailSvc,
		recipients: recipients,
		logger:     logger.With().Str("component", "alerts").Logger(),
	}
}

// Register binds the handler to every case channel on c.
func (h *AlertHandler) Register(c *pkgworker.Consumer) {
	c.Handle(messaging.ChannelCaseCritical, h.Handle)
	c.Handle(messaging.ChannelCaseCreated, h.Handle)
	c.Handle(messaging.ChannelCaseStatus, h.Handle)
}

func (h *AlertHandler) Handle(ctx context.Context, channel string, env pkgworker.Envelope) error {
	var evt notification.CaseEvent
	if err := json.Unmarshal(env.Payload, &evt); err != nil {
		return fmt.Errorf("failed to decode case event: %w", err)
	}

	if channel != messaging.ChannelCaseCritical {
		h.logger.Info().
			Str("event", env.Type).
			Str("case_id", evt.CaseID).
			Str("status", string(evt.Status)).
			Int("esi", int(evt.ESILevel)).
			Msg("case event")
		return nil
	}

	if len(h.recipients) == 0 {
		h.logger.Warn().Str("case_id", evt.CaseID).Msg("critical case with no alert recipients")
		return nil
	}
	if err := h.email.SendCustom(ctx, h.recipients, notification.AlertSubject(evt), notification.AlertBody(evt)); err != nil {
		return fmt.Errorf("failed to send alert for case %s: %w", evt.CaseID, err)
	}
	return nil
}
