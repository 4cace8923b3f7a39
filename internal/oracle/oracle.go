// Package oracle talks to an external language model that can stand in for
// the rule engine. Every failure is reported as ErrUnavailable or
// ErrMalformed so callers can fall back without inspecting details.
package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jwalitptl/aegis-triage/internal/model"
)

var (
	// ErrUnavailable covers transport errors, timeouts and non-2xx replies.
	ErrUnavailable = errors.New("oracle unavailable")
	// ErrMalformed covers replies that do not match the triage result schema.
	ErrMalformed = errors.New("oracle response malformed")
)

// TriageOracle produces a triage result for an intake. Implementations must
// be safe for concurrent use.
type TriageOracle interface {
	Triage(ctx context.Context, in model.TriageInput) (*model.TriageResult, error)
	Name() string
}

// triageReply mirrors the JSON object the model is instructed to return.
type triageReply struct {
	MedicalCategory string   `json:"medicalCategory"`
	Severity        string   `json:"severity"`
	ESILevel        *int     `json:"esiLevel"`
	Reasoning       string   `json:"reasoning"`
	Flags           []string `json:"flags"`
	SBAR            *struct {
		Situation      string `json:"situation"`
		Background     string `json:"background"`
		Assessment     string `json:"assessment"`
		Recommendation string `json:"recommendation"`
	} `json:"sbar"`
}

var knownSeverities = map[model.Severity]bool{
	model.SeverityCritical: true,
	model.SeverityHigh:     true,
	model.SeverityModerate: true,
	model.SeverityLow:      true,
}

// DecodeTriage parses and validates a model reply. Any schema violation
// yields an error wrapping ErrMalformed.
func DecodeTriage(raw string) (*model.TriageResult, error) {
	var reply triageReply
	if err := json.Unmarshal([]byte(extractJSON(raw)), &reply); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if reply.ESILevel == nil || !model.ESILevel(*reply.ESILevel).Valid() {
		return nil, fmt.Errorf("%w: esiLevel missing or out of range", ErrMalformed)
	}
	if strings.TrimSpace(reply.Reasoning) == "" {
		return nil, fmt.Errorf("%w: reasoning missing", ErrMalformed)
	}
	if reply.SBAR == nil {
		return nil, fmt.Errorf("%w: sbar missing", ErrMalformed)
	}
	sbar := model.SBAR{
		Situation:      reply.SBAR.Situation,
		Background:     reply.SBAR.Background,
		Assessment:     reply.SBAR.Assessment,
		Recommendation: reply.SBAR.Recommendation,
	}
	if !sbar.Complete() {
		return nil, fmt.Errorf("%w: sbar incomplete", ErrMalformed)
	}

	category := model.Category(strings.ToUpper(reply.MedicalCategory))
	if !validCategory(category) {
		return nil, fmt.Errorf("%w: unknown category %q", ErrMalformed, reply.MedicalCategory)
	}
	severity := model.Severity(strings.ToUpper(reply.Severity))
	if !knownSeverities[severity] {
		return nil, fmt.Errorf("%w: unknown severity %q", ErrMalformed, reply.Severity)
	}

	flags := reply.Flags
	if flags == nil {
		flags = []string{}
	}

	return &model.TriageResult{
		SBAR:      sbar,
		ESILevel:  model.ESILevel(*reply.ESILevel),
		Reasoning: reply.Reasoning,
		Flags:     flags,
		Category:  category,
		Severity:  severity,
		Source:    model.SourceOracle,
	}, nil
}

func validCategory(c model.Category) bool {
	for _, known := range model.Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// extractJSON strips markdown fences some models wrap around JSON output.
func extractJSON(text string) string {
	t := strings.TrimSpace(text)
	if strings.HasPrefix(t, "```") {
		t = strings.TrimPrefix(t, "```json")
		t = strings.TrimPrefix(t, "```")
		t = strings.TrimSuffix(strings.TrimSpace(t), "```")
	}
	return strings.TrimSpace(t)
}
