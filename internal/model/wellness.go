package model

import "fmt"

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

type ActivityLevel string

const (
	ActivitySedentary ActivityLevel = "Sedentary"
	ActivityModerate  ActivityLevel = "Moderate"
	ActivityActive    ActivityLevel = "Active"
)

type EnergyLevel string

const (
	EnergyHigh      EnergyLevel = "High"
	EnergyNormal    EnergyLevel = "Normal"
	EnergyLow       EnergyLevel = "Low"
	EnergyExhausted EnergyLevel = "Exhausted"
)

type Appetite string

const (
	AppetiteNoChange  Appetite = "No Change"
	AppetiteIncreased Appetite = "Increased"
	AppetiteDecreased Appetite = "Decreased"
)

type SleepQuality string

const (
	SleepGood      SleepQuality = "Good"
	SleepInsomnia  SleepQuality = "Insomnia"
	SleepExcessive SleepQuality = "Excessive"
	SleepIrregular SleepQuality = "Irregular"
)

type AlcoholUse string

const (
	AlcoholNever   AlcoholUse = "Never"
	AlcoholSocial  AlcoholUse = "Social"
	AlcoholRegular AlcoholUse = "Regular"
	AlcoholHeavy   AlcoholUse = "Heavy"
)

type DietType string

const (
	DietVeg    DietType = "Veg"
	DietNonVeg DietType = "Non-Veg"
	DietVegan  DietType = "Vegan"
)

type WorkType string

const (
	WorkDesk     WorkType = "Desk"
	WorkPhysical WorkType = "Physical"
	WorkMixed    WorkType = "Mixed"
)

// AssumptionInput is the lifestyle/vitals questionnaire. Every field is
// optional: a nil field contributes no deduction and triggers no rule.
type AssumptionInput struct {
	Age                *int           `json:"age,omitempty"`
	Gender             *Gender        `json:"gender,omitempty"`
	HeightCm           *float64       `json:"heightCm,omitempty"`
	WeightKg           *float64       `json:"weightKg,omitempty"`
	ActivityLevel      *ActivityLevel `json:"activityLevel,omitempty"`
	SystolicBP         *int           `json:"systolicBp,omitempty"`
	DiastolicBP        *int           `json:"diastolicBp,omitempty"`
	PulseRate          *int           `json:"pulseRate,omitempty"`
	TempF              *float64       `json:"tempF,omitempty"`
	SpO2               *int           `json:"spo2,omitempty"`
	PrimaryComplaints  []string       `json:"primaryComplaints"`
	PainLocation       *string        `json:"painLocation,omitempty"`
	PainSeverity       *int           `json:"painSeverity,omitempty"`
	EnergyLevel        *EnergyLevel   `json:"energyLevel,omitempty"`
	Appetite           *Appetite      `json:"appetite,omitempty"`
	Sleep              *SleepQuality  `json:"sleep,omitempty"`
	Smoking            *bool          `json:"smoking,omitempty"`
	Alcohol            *AlcoholUse    `json:"alcohol,omitempty"`
	FamilyDiabetes     *bool          `json:"familyDiabetes,omitempty"`
	FamilyHeart        *bool          `json:"familyHeart,omitempty"`
	Diet               *DietType      `json:"diet,omitempty"`
	FastingSugar       *float64       `json:"fastingSugar,omitempty"`
	WaistCircumference *float64       `json:"waistCircumference,omitempty"`
	IsPale             *bool          `json:"isPale,omitempty"`
	FeetSwelling       *bool          `json:"feetSwelling,omitempty"`
	DeepDiveContext    []string       `json:"deepDiveContext,omitempty"`
	WorkType           *WorkType      `json:"workType,omitempty"`
	DailyWaterIntake   *float64       `json:"dailyWaterIntake,omitempty"`
	PerceivedStress    *int           `json:"perceivedStress,omitempty"`
}

type RiskStatus string

const (
	RiskLow    RiskStatus = "Low Risk"
	RiskMedium RiskStatus = "Medium Risk"
	RiskHigh   RiskStatus = "High Risk"
)

// RiskCategory is one entry of the risk radar.
type RiskCategory struct {
	Category  string     `json:"category"`
	Status    RiskStatus `json:"status"`
	Reasoning string     `json:"reasoning"`
}

type LabStatus string

const (
	LabNormal     LabStatus = "Normal"
	LabBorderline LabStatus = "Borderline"
	LabHigh       LabStatus = "High"
	LabLow        LabStatus = "Low"
)

// SimulatedLab is a projected, not measured, lab value.
type SimulatedLab struct {
	TestName       string    `json:"testName"`
	PredictedRange string    `json:"predictedRange"`
	Status         LabStatus `json:"status"`
	Insight        string    `json:"insight"`
}

type Organ string

const (
	OrganHeart   Organ = "HEART"
	OrganBrain   Organ = "BRAIN"
	OrganLungs   Organ = "LUNGS"
	OrganStomach Organ = "STOMACH"
	OrganJoints  Organ = "JOINTS"
)

// Deduction is one scoring step applied to the wellness score.
type Deduction struct {
	Amount int    `json:"amount"`
	Reason string `json:"reason"`
}

func (d Deduction) String() string {
	return fmt.Sprintf("SCORE: -%d (%s)", d.Amount, d.Reason)
}

// Vitals is the display snapshot attached to a report. Values marked
// "(Est)" were synthesized rather than reported.
type Vitals struct {
	BP          string `json:"bp"`
	HeartRate   string `json:"heartRate"`
	StressLevel int    `json:"stressLevel"`
	BMI         string `json:"bmi"`
	IsPredicted bool   `json:"isPredicted"`
}

type ReportType string

const (
	ReportAssumption ReportType = "ASSUMPTION"
	ReportUpload     ReportType = "UPLOAD"
)

// HealthReport is an immutable wellness snapshot.
type HealthReport struct {
	ID               string         `json:"id,omitempty"`
	Type             ReportType     `json:"type"`
	Date             string         `json:"date"`
	WellnessScore    int            `json:"wellnessScore"`
	WellnessStatus   string         `json:"wellnessStatus"`
	Summary          string         `json:"summary"`
	RiskRadar        []RiskCategory `json:"riskRadar"`
	SimulatedLabs    []SimulatedLab `json:"simulatedLabs"`
	RecommendedTests []string       `json:"recommendedTests"`
	ActionPlanSteps  []string       `json:"actionPlanSteps"`
	DoctorsNote      string         `json:"doctorsNote"`
	Vitals           Vitals         `json:"vitals"`
	Flags            []string       `json:"flags"`
	AffectedOrgans   []Organ        `json:"affectedOrgans"`
	LogicTrace       []Deduction    `json:"logicTrace"`
}

type FitnessTrend string

const (
	TrendImproving FitnessTrend = "improving"
	TrendStable    FitnessTrend = "stable"
	TrendWorsening FitnessTrend = "worsening"
)

// SharedContext is the consented summary of a patient's wellness history
// that travels with a triage case.
type SharedContext struct {
	ReportSummary string       `json:"reportSummary"`
	Risks         []string     `json:"risks"`
	FitnessTrend  FitnessTrend `json:"fitnessTrend"`
	LastCheckin   string       `json:"lastCheckin"`
}
