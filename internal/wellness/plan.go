package wellness

import "github.com/jwalitptl/aegis-triage/internal/model"

var baselineTests = []string{"Lipid Profile", "Complete Blood Count (CBC)"}

func recommendedTests(s signals, radar []model.RiskCategory) []string {
	tests := append([]string{}, baselineTests...)
	for _, r := range radar {
		if r.Category == DomainMetabolic && r.Status != model.RiskLow {
			tests = append(tests, "HbA1c (Diabetes Screen)")
			break
		}
	}
	if s.in.Age != nil && *s.in.Age > 40 {
		tests = append(tests, "Kidney Function Test (KFT)")
	}
	return tests
}

func actionPlan(s signals) []string {
	in := s.in
	hydration := "Maintain hydration"
	if in.DailyWaterIntake != nil && *in.DailyWaterIntake < 2 {
		hydration = "Increase water intake to 2.5L daily"
	}
	activity := "Maintain active routine"
	if in.ActivityLevel != nil && *in.ActivityLevel == model.ActivitySedentary {
		activity = "Start with 20 min brisk walking daily"
	}
	return []string{hydration, activity, "Schedule the recommended lab tests within 2 weeks"}
}
