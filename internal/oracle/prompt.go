package oracle

import (
	"fmt"
	"strings"

	"github.com/jwalitptl/aegis-triage/internal/model"
)

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// BuildTriagePrompt renders the instruction sent to the model. Free text
// should already be PII-masked.
func BuildTriagePrompt(in model.TriageInput) string {
	categories := make([]string, 0, len(model.Categories()))
	for _, c := range model.Categories() {
		categories = append(categories, string(c))
	}

	var b strings.Builder
	b.WriteString("Act as an expert Triage Nurse and Emergency Physician.\n")
	b.WriteString("Analyze the following patient intake to generate a Triage Report.\n\n")
	b.WriteString("PATIENT DATA:\n")
	fmt.Fprintf(&b, "- Age/Gender: %d / %s\n", in.Age, in.Gender)
	fmt.Fprintf(&b, "- Chief Complaint: %s\n", in.SymptomsText)
	fmt.Fprintf(&b, "- Pain Score: %d/10\n", in.PainScore)
	fmt.Fprintf(&b, "- Duration: %s\n", in.Duration)
	fmt.Fprintf(&b, "- Chest Pain: %s\n", yesNo(in.HasChestPain))
	fmt.Fprintf(&b, "- Breathing Difficulty: %s\n", yesNo(in.HasBreathingIssue))
	fmt.Fprintf(&b, "- Confusion: %s\n", yesNo(in.HasConfusion))
	fmt.Fprintf(&b, "- Language: %s\n\n", in.Language)
	b.WriteString("REQUIRED OUTPUT (a single JSON object, no prose):\n")
	fmt.Fprintf(&b, "1. medicalCategory: One of [%s]\n", strings.Join(categories, ", "))
	b.WriteString("2. severity: One of [CRITICAL, HIGH, MODERATE, LOW]\n")
	b.WriteString("3. esiLevel: Integer 1 (Most Critical) to 5 (Least Critical) based on the ESI Triage Algorithm.\n")
	b.WriteString("4. reasoning: A concise clinical explanation for the ESI level.\n")
	b.WriteString("5. flags: Array of strings for key risk factors (e.g. \"Red Flag: Chest Pain\").\n")
	b.WriteString("6. sbar: Object with situation, background, assessment and recommendation keys, written in the requested language.\n")
	return b.String()
}

// triageSchema is the responseSchema passed to Gemini.
var triageSchema = map[string]interface{}{
	"type": "OBJECT",
	"properties": map[string]interface{}{
		"medicalCategory": map[string]string{"type": "STRING"},
		"severity":        map[string]string{"type": "STRING"},
		"esiLevel":        map[string]string{"type": "INTEGER"},
		"reasoning":       map[string]string{"type": "STRING"},
		"flags": map[string]interface{}{
			"type":  "ARRAY",
			"items": map[string]string{"type": "STRING"},
		},
		"sbar": map[string]interface{}{
			"type": "OBJECT",
			"properties": map[string]interface{}{
				"situation":      map[string]string{"type": "STRING"},
				"background":     map[string]string{"type": "STRING"},
				"assessment":     map[string]string{"type": "STRING"},
				"recommendation": map[string]string{"type": "STRING"},
			},
			"required": []string{"situation", "background", "assessment", "recommendation"},
		},
	},
	"required": []string{"medicalCategory", "severity", "esiLevel", "reasoning", "flags", "sbar"},
}
