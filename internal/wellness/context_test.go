package wellness

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/aegis-triage/internal/model"
)

func TestTrend(t *testing.T) {
	assert.Equal(t, model.TrendImproving, Trend(60, 65))
	assert.Equal(t, model.TrendStable, Trend(60, 64))
	assert.Equal(t, model.TrendStable, Trend(60, 56))
	assert.Equal(t, model.TrendWorsening, Trend(60, 55))
}

func TestSharedContextFrom(t *testing.T) {
	ctx := SharedContextFrom(nil)
	assert.Equal(t, noReportSummary, ctx.ReportSummary)
	assert.Equal(t, model.TrendStable, ctx.FitnessTrend)
	assert.Empty(t, ctx.Risks)

	history := []model.HealthReport{
		{WellnessScore: 50, Summary: "Wellness Score: 50/100. Moderate Risk.", Flags: []string{DomainCardiovascular}, Date: "2026-03-14"},
		{WellnessScore: 70, Date: "2026-02-01"},
	}
	ctx = SharedContextFrom(history)
	assert.Equal(t, history[0].Summary, ctx.ReportSummary)
	assert.Equal(t, []string{DomainCardiovascular}, ctx.Risks)
	assert.Equal(t, model.TrendWorsening, ctx.FitnessTrend)
	assert.Equal(t, "2026-03-14", ctx.LastCheckin)
}
