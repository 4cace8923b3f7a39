package triage

import (
	"strings"

	"github.com/jwalitptl/aegis-triage/internal/model"
)

// Classifier maps complaint text to a clinical profile.
type Classifier interface {
	Classify(text string) model.ClinicalProfile
}

// rule is one row of the classification table. A rule with no triggers
// always matches and must be last.
type rule struct {
	category   model.Category
	keyword    string
	triggers   []string
	escalators []string
	base       model.Severity
	escalated  model.Severity
}

// RuleClassifier matches lowercased text against an ordered rule table.
// The first matching rule wins.
type RuleClassifier struct {
	rules []rule
}

func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{
		rules: []rule{
			{
				category:   model.CategoryCardiac,
				keyword:    "Cardiac Symptoms",
				triggers:   []string{"chest", "heart", "squeezing", "pressure", "left arm"},
				escalators: []string{"sweat", "crushing"},
				base:       model.SeverityHigh,
				escalated:  model.SeverityCritical,
			},
			{
				category:  model.CategoryNeuro,
				keyword:   "Neurological Deficit",
				triggers:  []string{"slurred", "drooping", "weakness", "confusion", "dizzy", "faint"},
				base:      model.SeverityCritical,
				escalated: model.SeverityCritical,
			},
			{
				category:   model.CategoryRespiratory,
				keyword:    "Respiratory Distress",
				triggers:   []string{"breath", "gasping", "choking", "air"},
				escalators: []string{"blue", "cannot speak"},
				base:       model.SeverityHigh,
				escalated:  model.SeverityCritical,
			},
			{
				category:   model.CategoryTrauma,
				keyword:    "Trauma/Injury",
				triggers:   []string{"blood", "cut", "bone", "fall", "accident"},
				escalators: []string{"heavy", "unconscious", "head"},
				base:       model.SeverityModerate,
				escalated:  model.SeverityCritical,
			},
			{
				category:   model.CategoryGeneral,
				keyword:    "General Malaise",
				escalators: []string{"severe", "worst"},
				base:       model.SeverityLow,
				escalated:  model.SeverityHigh,
			},
		},
	}
}

// Classify implements the Classifier interface
func (c *RuleClassifier) Classify(text string) model.ClinicalProfile {
	t := strings.ToLower(text)
	for _, r := range c.rules {
		if len(r.triggers) > 0 && !containsAny(t, r.triggers) {
			continue
		}
		severity := r.base
		if containsAny(t, r.escalators) {
			severity = r.escalated
		}
		return model.ClinicalProfile{
			Category: r.category,
			Severity: severity,
			Keywords: []string{r.keyword},
		}
	}
	// unreachable while the table ends with a catch-all
	return model.ClinicalProfile{Category: model.CategoryGeneral, Severity: model.SeverityLow}
}
