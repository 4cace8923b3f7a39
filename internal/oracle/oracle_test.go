package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/aegis-triage/internal/model"
)

const validReply = `{
  "medicalCategory": "cardiac",
  "severity": "CRITICAL",
  "esiLevel": 2,
  "reasoning": "Chest pain with diaphoresis.",
  "flags": ["Red Flag: Chest Pain"],
  "sbar": {
    "situation": "s",
    "background": "b",
    "assessment": "a",
    "recommendation": "ECG within 10 mins"
  }
}`

func TestDecodeTriage(t *testing.T) {
	res, err := DecodeTriage(validReply)
	require.NoError(t, err)
	assert.Equal(t, model.ESIEmergent, res.ESILevel)
	assert.Equal(t, model.CategoryCardiac, res.Category)
	assert.Equal(t, model.SeverityCritical, res.Severity)
	assert.Equal(t, model.SourceOracle, res.Source)
	assert.Equal(t, []string{"Red Flag: Chest Pain"}, res.Flags)
}

func TestDecodeTriageStripsFences(t *testing.T) {
	res, err := DecodeTriage("```json\n" + validReply + "\n```")
	require.NoError(t, err)
	assert.Equal(t, model.ESIEmergent, res.ESILevel)
}

func TestDecodeTriageRejectsSchemaViolations(t *testing.T) {
	tests := map[string]string{
		"not json":         `I think ESI 2`,
		"missing esi":      `{"medicalCategory":"CARDIAC","severity":"HIGH","reasoning":"r","flags":[],"sbar":{"situation":"s","background":"b","assessment":"a","recommendation":"r"}}`,
		"esi out of range": `{"medicalCategory":"CARDIAC","severity":"HIGH","esiLevel":7,"reasoning":"r","flags":[],"sbar":{"situation":"s","background":"b","assessment":"a","recommendation":"r"}}`,
		"missing sbar":     `{"medicalCategory":"CARDIAC","severity":"HIGH","esiLevel":2,"reasoning":"r","flags":[]}`,
		"partial sbar":     `{"medicalCategory":"CARDIAC","severity":"HIGH","esiLevel":2,"reasoning":"r","flags":[],"sbar":{"situation":"s"}}`,
		"unknown category": `{"medicalCategory":"GASTRO","severity":"HIGH","esiLevel":2,"reasoning":"r","flags":[],"sbar":{"situation":"s","background":"b","assessment":"a","recommendation":"r"}}`,
		"unknown severity": `{"medicalCategory":"CARDIAC","severity":"SEVERE","esiLevel":2,"reasoning":"r","flags":[],"sbar":{"situation":"s","background":"b","assessment":"a","recommendation":"r"}}`,
		"empty reasoning":  `{"medicalCategory":"CARDIAC","severity":"HIGH","esiLevel":2,"reasoning":" ","flags":[],"sbar":{"situation":"s","background":"b","assessment":"a","recommendation":"r"}}`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeTriage(raw)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestBuildTriagePrompt(t *testing.T) {
	p := BuildTriagePrompt(model.TriageInput{
		SymptomsText: "chest pain",
		PainScore:    8,
		Age:          61,
		Gender:       "Female",
		HasChestPain: true,
		Language:     model.LanguageHindi,
	})
	assert.Contains(t, p, "- Age/Gender: 61 / Female")
	assert.Contains(t, p, "- Chest Pain: Yes")
	assert.Contains(t, p, "- Breathing Difficulty: No")
	assert.Contains(t, p, "- Language: hi")
	assert.Contains(t, p, "CARDIAC, NEURO, RESPIRATORY, TRAUMA, GENERAL")
}
