package triage

import "github.com/jwalitptl/aegis-triage/internal/model"

const (
	recCodeBlue    = "ACTIVATE CODE BLUE. Prepare Resuscitation Room immediately."
	recECG         = "Immediate ECG (within 10 mins). Prepare Cardiac Monitor. Notify Physician."
	recStroke      = "Activate Stroke Protocol. Immediate CT Scan."
	recAcuteBed    = "Immediate placement in acute care bed. Continuous monitoring."
	recTreatment   = "Place in treatment room. Order baseline labs/imaging. Re-assess pain."
	recFastTrack   = "Fast Track / Waiting Room. Vitals check every 2 hours."
	recHindiUrgent = "तत्काल ईआर मूल्यांकन. डॉक्टर को सूचित करें."
	recHindiWait   = "प्रतीक्षा क्षेत्र में निगरानी करें. विटाल की जांच करें."
)

type recKey struct {
	level    model.ESILevel
	category model.Category
}

// recommendations holds one entry for every (level, category) pair.
var recommendations = buildRecommendations()

func buildRecommendations() map[model.Language]map[recKey]string {
	en := make(map[recKey]string)
	hi := make(map[recKey]string)
	for _, level := range model.ESILevels() {
		for _, cat := range model.Categories() {
			k := recKey{level, cat}
			switch {
			case level == model.ESIResuscitation:
				en[k] = recCodeBlue
			case level == model.ESIEmergent && cat == model.CategoryCardiac:
				en[k] = recECG
			case level == model.ESIEmergent && cat == model.CategoryNeuro:
				en[k] = recStroke
			case level == model.ESIEmergent:
				en[k] = recAcuteBed
			case level == model.ESIUrgent:
				en[k] = recTreatment
			default:
				en[k] = recFastTrack
			}
			if level <= model.ESIEmergent {
				hi[k] = recHindiUrgent
			} else {
				hi[k] = recHindiWait
			}
		}
	}
	return map[model.Language]map[recKey]string{
		model.LanguageEnglish: en,
		model.LanguageHindi:   hi,
	}
}

// Recommendation returns the next-step instruction for the ER team.
func Recommendation(lang model.Language, level model.ESILevel, category model.Category) string {
	table, ok := recommendations[lang]
	if !ok {
		table = recommendations[model.LanguageEnglish]
	}
	if rec, ok := table[recKey{level, category}]; ok {
		return rec
	}
	return table[recKey{level, model.CategoryGeneral}]
}
