package wellness

import (
	"fmt"

	"github.com/jwalitptl/aegis-triage/internal/model"
)

// Monitored risk domains, in radar order.
const (
	DomainMetabolic      = "Metabolic Health"
	DomainCardiovascular = "Cardiovascular"
	DomainNutritional    = "Nutritional Balance"
)

// Domains lists every domain the radar always reports on.
func Domains() []string {
	return []string{DomainMetabolic, DomainCardiovascular, DomainNutritional}
}

// domainOrgans maps each domain to the organs it implicates when not Low Risk.
var domainOrgans = map[string][]model.Organ{
	DomainMetabolic:      {model.OrganHeart, model.OrganStomach},
	DomainCardiovascular: {model.OrganHeart},
	DomainNutritional:    {},
}

type domainRule func(s signals) model.RiskCategory

var domainRules = map[string]domainRule{
	DomainMetabolic:      metabolicRisk,
	DomainCardiovascular: cardiovascularRisk,
	DomainNutritional:    nutritionalRisk,
}

func riskRadar(s signals) []model.RiskCategory {
	radar := make([]model.RiskCategory, 0, len(Domains()))
	for _, d := range Domains() {
		radar = append(radar, domainRules[d](s))
	}
	return radar
}

func metabolicRisk(s signals) model.RiskCategory {
	in := s.in
	highSugar := in.FastingSugar != nil && *in.FastingSugar > 100
	overweight := s.hasBMI && s.bmi > 25
	if !overweight && !isTrue(in.FamilyDiabetes) && !highSugar {
		return model.RiskCategory{Category: DomainMetabolic, Status: model.RiskLow, Reasoning: "BMI Normal & No Family History"}
	}

	status := model.RiskMedium
	if s.hasBMI && s.bmi > 30 {
		status = model.RiskHigh
	}
	bmi := "N/A"
	if s.hasBMI {
		bmi = formatBMI(s.bmi)
	}
	driver := "Lifestyle Factors"
	if isTrue(in.FamilyDiabetes) {
		driver = "Family History"
	}
	return model.RiskCategory{
		Category:  DomainMetabolic,
		Status:    status,
		Reasoning: fmt.Sprintf("BMI %s + %s", bmi, driver),
	}
}

func cardiovascularRisk(s signals) model.RiskCategory {
	in := s.in
	smoker := isTrue(in.Smoking)
	elevatedBP := in.SystolicBP != nil && *in.SystolicBP > 130
	if !smoker && !elevatedBP && !isTrue(in.FeetSwelling) {
		return model.RiskCategory{Category: DomainCardiovascular, Status: model.RiskLow, Reasoning: "No acute symptoms reported"}
	}
	if smoker {
		return model.RiskCategory{Category: DomainCardiovascular, Status: model.RiskHigh, Reasoning: "Smoker Status is major risk factor"}
	}
	return model.RiskCategory{Category: DomainCardiovascular, Status: model.RiskMedium, Reasoning: "Elevated BP / Symptoms"}
}

func nutritionalRisk(s signals) model.RiskCategory {
	in := s.in
	plantBased := in.Diet != nil && (*in.Diet == model.DietVeg || *in.Diet == model.DietVegan)
	if s.fatigue && plantBased {
		return model.RiskCategory{Category: DomainNutritional, Status: model.RiskMedium, Reasoning: "Fatigue + Plant-based diet suggests B12/Iron gaps"}
	}
	return model.RiskCategory{Category: DomainNutritional, Status: model.RiskLow, Reasoning: "Diet and Energy levels appear aligned"}
}

func flags(radar []model.RiskCategory) []string {
	out := []string{}
	for _, r := range radar {
		if r.Status != model.RiskLow {
			out = append(out, r.Category)
		}
	}
	return out
}

func affectedOrgans(radar []model.RiskCategory) []model.Organ {
	seen := make(map[model.Organ]bool)
	out := []model.Organ{}
	for _, r := range radar {
		if r.Status == model.RiskLow {
			continue
		}
		for _, o := range domainOrgans[r.Category] {
			if !seen[o] {
				seen[o] = true
				out = append(out, o)
			}
		}
	}
	return out
}
