// Package wellness turns a lifestyle questionnaire into a HealthReport.
// Scoring is deterministic: identical input and date produce identical output.
package wellness

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jwalitptl/aegis-triage/internal/model"
)

const (
	baseScore        = 100
	highStressCutoff = 7
	defaultStress    = 5
	dateLayout       = "2006-01-02"
)

const (
	StatusExcellent    = "Excellent"
	StatusGood         = "Good"
	StatusModerateRisk = "Moderate Risk"
	StatusActionNeeded = "Action Needed"
)

// Engine scores questionnaires. The zero value is ready to use.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// signals holds the derived facts that several rules share.
type signals struct {
	in      model.AssumptionInput
	bmi     float64
	hasBMI  bool
	fatigue bool
}

func derive(in model.AssumptionInput) signals {
	s := signals{in: in, fatigue: hasComplaint(in.PrimaryComplaints, "fatigue")}
	if bmi, ok := BMI(in.HeightCm, in.WeightKg); ok {
		s.bmi, s.hasBMI = bmi, true
	}
	return s
}

// Score builds a report for in. asOf only sets the report date.
func (e *Engine) Score(in model.AssumptionInput, asOf time.Time) *model.HealthReport {
	s := derive(in)

	score, trace := deductions(s)
	status := Band(score)
	radar := riskRadar(s)

	return &model.HealthReport{
		Type:             model.ReportAssumption,
		Date:             asOf.Format(dateLayout),
		WellnessScore:    score,
		WellnessStatus:   status,
		Summary:          fmt.Sprintf("Wellness Score: %d/100. %s.", score, status),
		RiskRadar:        radar,
		SimulatedLabs:    simulatedLabs(s),
		RecommendedTests: recommendedTests(s, radar),
		ActionPlanSteps:  actionPlan(s),
		DoctorsNote:      doctorsNote(s, score, radar),
		Vitals:           vitals(s),
		Flags:            flags(radar),
		AffectedOrgans:   affectedOrgans(radar),
		LogicTrace:       trace,
	}
}

// BMI returns weight/height² rounded to one decimal. It reports false
// when either measurement is missing or not positive.
func BMI(heightCm, weightKg *float64) (float64, bool) {
	if heightCm == nil || weightKg == nil || *heightCm <= 0 || *weightKg <= 0 {
		return 0, false
	}
	m := *heightCm / 100
	return math.Round(*weightKg/(m*m)*10) / 10, true
}

// Band maps a score to its status label. Lower bounds are inclusive.
func Band(score int) string {
	switch {
	case score >= 80:
		return StatusExcellent
	case score >= 60:
		return StatusGood
	case score >= 40:
		return StatusModerateRisk
	default:
		return StatusActionNeeded
	}
}

func deductions(s signals) (int, []model.Deduction) {
	in := s.in
	trace := []model.Deduction{}
	deduct := func(amount int, reason string) {
		trace = append(trace, model.Deduction{Amount: amount, Reason: reason})
	}

	if s.hasBMI {
		if s.bmi > 30 {
			deduct(15, "Obesity Class I")
		} else if s.bmi > 25 {
			deduct(10, "Overweight")
		}
	}
	if isTrue(in.Smoking) {
		deduct(20, "Smoker")
	}
	if in.ActivityLevel != nil && *in.ActivityLevel == model.ActivitySedentary {
		deduct(10, "Sedentary Lifestyle")
	}
	if in.PerceivedStress != nil && *in.PerceivedStress > highStressCutoff {
		deduct(10, "High Stress")
	}
	if isTrue(in.FamilyDiabetes) {
		deduct(5, "Family History: Diabetes")
	}
	if isTrue(in.FamilyHeart) {
		deduct(5, "Family History: Heart")
	}

	score := baseScore
	for _, d := range trace {
		score -= d.Amount
	}
	return clamp(score, 0, 100), trace
}

func vitals(s signals) model.Vitals {
	in := s.in
	v := model.Vitals{StressLevel: defaultStress, BMI: "N/A"}
	if in.PerceivedStress != nil {
		v.StressLevel = clamp(*in.PerceivedStress, 0, 10)
	}
	if s.hasBMI {
		v.BMI = formatBMI(s.bmi)
	}

	if in.SystolicBP != nil {
		dia := "--"
		if in.DiastolicBP != nil {
			dia = fmt.Sprint(*in.DiastolicBP)
		}
		v.BP = fmt.Sprintf("%d/%s", *in.SystolicBP, dia)
	} else {
		v.IsPredicted = true
		v.BP = "120/80 (Est)"
		if in.PerceivedStress != nil && *in.PerceivedStress > highStressCutoff {
			v.BP = "130/85 (Est)"
		}
	}

	if in.PulseRate != nil {
		v.HeartRate = fmt.Sprintf("%d bpm", *in.PulseRate)
	} else {
		v.IsPredicted = true
		v.HeartRate = "75 bpm (Est)"
		if in.ActivityLevel != nil && *in.ActivityLevel == model.ActivityActive {
			v.HeartRate = "65 bpm (Est)"
		}
	}
	return v
}

func doctorsNote(s signals, score int, radar []model.RiskCategory) string {
	in := s.in
	var b strings.Builder

	greeting := "there"
	if in.Gender != nil && *in.Gender == model.GenderMale {
		greeting = "mate"
	}
	fmt.Fprintf(&b, "Hey %s, ", greeting)
	if in.Age != nil {
		fmt.Fprintf(&b, "based on your age (%d) and symptoms, ", *in.Age)
	} else {
		b.WriteString("based on your answers, ")
	}
	fmt.Fprintf(&b, "your wellness score is %d/100. ", score)

	if score < 70 {
		b.WriteString("Your lifestyle inputs (like stress and activity) are pulling your score down. ")
	} else {
		b.WriteString("You're doing a great job maintaining a baseline. ")
	}

	focus := "minor nutritional gaps"
	if top, ok := topRisk(radar); ok {
		focus = top.Category
	}
	if c := firstComplaint(in.PrimaryComplaints); c != "" {
		fmt.Fprintf(&b, "I'm noticing a pattern with your %s that points towards %s. ", strings.ToLower(c), focus)
	} else if focus != "minor nutritional gaps" {
		fmt.Fprintf(&b, "No major complaints is a great sign, but keep an eye on %s. ", focus)
	} else {
		b.WriteString("No major complaints is a great sign! ")
	}

	b.WriteString("The simulated lab view shows where your levels might be. Let's get them tested to be sure!")
	return b.String()
}

func topRisk(radar []model.RiskCategory) (model.RiskCategory, bool) {
	var top model.RiskCategory
	found := false
	for _, r := range radar {
		if r.Status == model.RiskLow {
			continue
		}
		if !found || (r.Status == model.RiskHigh && top.Status != model.RiskHigh) {
			top, found = r, true
		}
	}
	return top, found
}

func firstComplaint(complaints []string) string {
	for _, c := range complaints {
		if c = strings.TrimSpace(c); c != "" {
			return c
		}
	}
	return ""
}

func hasComplaint(complaints []string, needle string) bool {
	for _, c := range complaints {
		if strings.Contains(strings.ToLower(c), needle) {
			return true
		}
	}
	return false
}

func formatBMI(bmi float64) string {
	return fmt.Sprintf("%.1f", bmi)
}

func isTrue(b *bool) bool {
	return b != nil && *b
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
