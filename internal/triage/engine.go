package triage

import (
	"fmt"
	"strings"

	"github.com/jwalitptl/aegis-triage/internal/model"
)

const (
	FlagCodeBlue      = "CODE BLUE"
	FlagHighRisk      = "High Risk"
	FlagRedChestPain  = "Red Flag: Chest Pain"
	highPainThreshold = 7
	seniorAge         = 70
)

const (
	reasonLifeThreat = "IMMEDIATE LIFE THREAT: Patient unresponsive or apneic. Requires resuscitation."
	reasonUrgent     = "URGENT: Severe symptoms reported. Vitals likely stable but requires multiple resources (labs/imaging)."
	reasonStable     = "STABLE: Condition appears localized or minor. Likely requires single resource (e.g., X-ray or stitches)."
	reasonNonUrgent  = "NON-URGENT: Symptoms consistent with minor illness. No immediate resource needs indicated."
)

// Engine assigns an ESI level and SBAR note using fixed clinical rules.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	classifier Classifier
}

func NewEngine(classifier Classifier) *Engine {
	if classifier == nil {
		classifier = NewRuleClassifier()
	}
	return &Engine{classifier: classifier}
}

// Evaluate triages one intake. The guard runs first; on rejection the
// classifier is never consulted and ErrNonMedicalIntent is returned.
func (e *Engine) Evaluate(in model.TriageInput) (*model.TriageResult, error) {
	if !IsMedicalIntent(in.SymptomsText) {
		return nil, ErrNonMedicalIntent
	}
	in = in.Normalize()

	profile := e.classifier.Classify(in.SymptomsText)
	level, reasoning, extra := assignLevel(in, profile)

	flags := make([]string, 0, len(profile.Keywords)+len(extra))
	flags = append(flags, profile.Keywords...)
	flags = append(flags, extra...)

	return &model.TriageResult{
		SBAR:      buildSBAR(in, profile, level, reasoning),
		ESILevel:  level,
		Reasoning: reasoning,
		Flags:     flags,
		Category:  profile.Category,
		Severity:  profile.Severity,
		Source:    model.SourceRules,
	}, nil
}

// Classify exposes the underlying classifier.
func (e *Engine) Classify(text string) model.ClinicalProfile {
	return e.classifier.Classify(text)
}

func assignLevel(in model.TriageInput, p model.ClinicalProfile) (model.ESILevel, string, []string) {
	text := strings.ToLower(in.SymptomsText)
	elderly := in.Age > elderlyAge
	highPain := in.PainScore >= highPainThreshold

	switch {
	case strings.Contains(text, "unconscious") || strings.Contains(text, "not breathing"):
		return model.ESIResuscitation, reasonLifeThreat, []string{FlagCodeBlue}

	case p.Severity == model.SeverityCritical,
		p.Category == model.CategoryCardiac && (elderly || highPain),
		p.Category == model.CategoryNeuro,
		in.HasChestPain,
		in.HasBreathingIssue:
		factor := "high severity indicators"
		if elderly {
			factor = "age factor"
		}
		flags := []string{FlagHighRisk}
		if in.HasChestPain {
			flags = append(flags, FlagRedChestPain)
		}
		reason := fmt.Sprintf("HIGH RISK: %s symptoms with %s. Potential for rapid deterioration.", p.Category, factor)
		return model.ESIEmergent, reason, flags

	case highPain || p.Severity == model.SeverityHigh || in.Age > seniorAge:
		return model.ESIUrgent, reasonUrgent, nil

	case p.Category == model.CategoryTrauma || p.Severity == model.SeverityModerate:
		return model.ESILessUrgent, reasonStable, nil

	default:
		return model.ESINonUrgent, reasonNonUrgent, nil
	}
}
