package wellness

import "github.com/jwalitptl/aegis-triage/internal/model"

const (
	trendThreshold  = 5
	noReportSummary = "No digital twin generated."
)

// Trend compares two consecutive scores. A move of 5 points or more in
// either direction counts as a change.
func Trend(previous, current int) model.FitnessTrend {
	switch d := current - previous; {
	case d >= trendThreshold:
		return model.TrendImproving
	case d <= -trendThreshold:
		return model.TrendWorsening
	default:
		return model.TrendStable
	}
}

// SharedContextFrom summarizes a patient's report history for hospital staff.
// history is newest first and may be empty.
func SharedContextFrom(history []model.HealthReport) *model.SharedContext {
	if len(history) == 0 {
		return &model.SharedContext{
			ReportSummary: noReportSummary,
			Risks:         []string{},
			FitnessTrend:  model.TrendStable,
		}
	}

	latest := history[0]
	trend := model.TrendStable
	if len(history) > 1 {
		trend = Trend(history[1].WellnessScore, latest.WellnessScore)
	}
	risks := append([]string{}, latest.Flags...)

	return &model.SharedContext{
		ReportSummary: latest.Summary,
		Risks:         risks,
		FitnessTrend:  trend,
		LastCheckin:   latest.Date,
	}
}
