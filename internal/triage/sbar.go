package triage

import (
	"fmt"

	"github.com/jwalitptl/aegis-triage/internal/model"
)

const elderlyAge = 50

func buildSBAR(in model.TriageInput, profile model.ClinicalProfile, level model.ESILevel, reasoning string) model.SBAR {
	elderly := in.Age > elderlyAge
	rec := Recommendation(in.Language, level, profile.Category)

	if in.Language == model.LanguageHindi {
		ageNote := "कोई प्रमुख आयु संबंधित जोखिम नहीं."
		if elderly {
			ageNote = "आयु के कारण उच्च जोखिम."
		}
		return model.SBAR{
			Situation:      Situation(in, profile.Category),
			Background:     fmt.Sprintf("%s, आयु %d. %s", in.Gender, in.Age, ageNote),
			Assessment:     fmt.Sprintf("ESI स्तर %d के रूप में वर्गीकृत. %s (अनुवादित)", level, reasoning),
			Recommendation: rec,
		}
	}

	ageNote := "No major age-related risk factors."
	if elderly {
		ageNote = "Age puts patient in higher risk bracket."
	}
	return model.SBAR{
		Situation:      Situation(in, profile.Category),
		Background:     fmt.Sprintf("%s, Age %d. %s", in.Gender, in.Age, ageNote),
		Assessment:     fmt.Sprintf("Triaged as ESI Level %d. %s", level, reasoning),
		Recommendation: rec,
	}
}

// Situation renders the S line of the handoff note in the intake language.
// Callers that persist the note pass PII-masked text.
func Situation(in model.TriageInput, category model.Category) string {
	if in.Language == model.LanguageHindi {
		return fmt.Sprintf("रोगी की रिपोर्ट: %s. दर्द स्कोर %d/10. अवधि: %s. श्रेणी: %s.", in.SymptomsText, in.PainScore, in.Duration, category)
	}
	return fmt.Sprintf("Patient reports %s. Pain score %d/10. Duration: %s. Category: %s.", in.SymptomsText, in.PainScore, in.Duration, category)
}
