package wellness

import "github.com/jwalitptl/aegis-triage/internal/model"

func simulatedLabs(s signals) []model.SimulatedLab {
	in := s.in
	labs := make([]model.SimulatedLab, 0, 3)

	if (s.hasBMI && s.bmi > 25) || isTrue(in.FamilyDiabetes) {
		labs = append(labs, model.SimulatedLab{
			TestName:       "Fasting Blood Sugar",
			PredictedRange: "100 - 125 mg/dL",
			Status:         model.LabBorderline,
			Insight:        "Inputs suggest insulin resistance.",
		})
	} else {
		labs = append(labs, model.SimulatedLab{
			TestName:       "Fasting Blood Sugar",
			PredictedRange: "80 - 99 mg/dL",
			Status:         model.LabNormal,
			Insight:        "Metabolic indicators are stable.",
		})
	}

	if in.WorkType != nil && *in.WorkType == model.WorkDesk && s.fatigue {
		labs = append(labs, model.SimulatedLab{
			TestName:       "Vitamin D3",
			PredictedRange: "15 - 25 ng/mL",
			Status:         model.LabLow,
			Insight:        "Indoor lifestyle often correlates with deficiency.",
		})
	}

	female := in.Gender != nil && *in.Gender == model.GenderFemale
	if isTrue(in.IsPale) || (female && s.fatigue) {
		labs = append(labs, model.SimulatedLab{
			TestName:       "Hemoglobin",
			PredictedRange: "10.5 - 11.5 g/dL",
			Status:         model.LabLow,
			Insight:        "Symptoms match mild anemia profile.",
		})
	} else {
		labs = append(labs, model.SimulatedLab{
			TestName:       "Hemoglobin",
			PredictedRange: "13.5 - 15.5 g/dL",
			Status:         model.LabNormal,
			Insight:        "No pallor or exhaustion reported.",
		})
	}
	return labs
}
