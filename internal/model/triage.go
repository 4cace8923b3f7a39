package model

// Language selects the locale of generated clinical notes.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageHindi   Language = "hi"
)

// Valid reports whether l is a supported note language.
func (l Language) Valid() bool {
	return l == LanguageEnglish || l == LanguageHindi
}

// ESILevel is the Emergency Severity Index, 1 (resuscitation) to 5 (non-urgent).
type ESILevel int

const (
	ESIResuscitation ESILevel = iota + 1
	ESIEmergent
	ESIUrgent
	ESILessUrgent
	ESINonUrgent
)

// ESILevels lists every level from most to least critical.
func ESILevels() []ESILevel {
	return []ESILevel{ESIResuscitation, ESIEmergent, ESIUrgent, ESILessUrgent, ESINonUrgent}
}

// Valid reports whether l is within 1..5.
func (l ESILevel) Valid() bool {
	return l >= ESIResuscitation && l <= ESINonUrgent
}

// Critical reports whether the level warrants an immediate staff alert.
func (l ESILevel) Critical() bool {
	return l == ESIResuscitation || l == ESIEmergent
}

var esiDescriptions = map[ESILevel]string{
	ESIResuscitation: "Resuscitation - Immediate Life Saving Intervention",
	ESIEmergent:      "Emergent - High risk, confused/lethargic, severe pain",
	ESIUrgent:        "Urgent - Needs multiple resources, vitals stable",
	ESILessUrgent:    "Less Urgent - Needs one resource",
	ESINonUrgent:     "Non-urgent - No resources needed",
}

// Description returns the display text for the level.
func (l ESILevel) Description() string {
	if d, ok := esiDescriptions[l]; ok {
		return d
	}
	return "Unknown"
}

// Category is the clinical domain a complaint was classified into.
type Category string

const (
	CategoryCardiac     Category = "CARDIAC"
	CategoryRespiratory Category = "RESPIRATORY"
	CategoryNeuro       Category = "NEURO"
	CategoryTrauma      Category = "TRAUMA"
	CategoryGeneral     Category = "GENERAL"
)

// Categories lists every category in classification precedence order.
func Categories() []Category {
	return []Category{CategoryCardiac, CategoryNeuro, CategoryRespiratory, CategoryTrauma, CategoryGeneral}
}

// Severity is the tier assigned by the text classifier.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityModerate Severity = "MODERATE"
	SeverityLow      Severity = "LOW"
)

// TriageInput is the patient intake submitted for triage.
type TriageInput struct {
	SymptomsText      string   `json:"symptomsText" binding:"required"`
	PainScore         int      `json:"painScore" binding:"pain_score"`
	Duration          string   `json:"duration"`
	HasChestPain      bool     `json:"hasChestPain"`
	HasBreathingIssue bool     `json:"hasBreathingIssue"`
	HasConfusion      bool     `json:"hasConfusion"`
	Age               int      `json:"age" binding:"gt=0"`
	Gender            string   `json:"gender"`
	Language          Language `json:"language" binding:"omitempty,esi_language"`
}

// Normalize clamps numeric fields to their valid range and defaults the
// language. Out-of-range values are pulled to the nearest boundary.
func (in TriageInput) Normalize() TriageInput {
	if in.PainScore < 0 {
		in.PainScore = 0
	}
	if in.PainScore > 10 {
		in.PainScore = 10
	}
	if in.Age < 0 {
		in.Age = 0
	}
	if !in.Language.Valid() {
		in.Language = LanguageEnglish
	}
	return in
}

// ClinicalProfile is the classifier output for one complaint.
type ClinicalProfile struct {
	Category Category
	Severity Severity
	Keywords []string
}

// SBAR is a Situation/Background/Assessment/Recommendation handoff note.
type SBAR struct {
	Situation      string `json:"situation" db:"situation"`
	Background     string `json:"background" db:"background"`
	Assessment     string `json:"assessment" db:"assessment"`
	Recommendation string `json:"recommendation" db:"recommendation"`
}

// Complete reports whether every SBAR section is filled in.
func (s SBAR) Complete() bool {
	return s.Situation != "" && s.Background != "" && s.Assessment != "" && s.Recommendation != ""
}

// TriageSource records which stage produced a result.
type TriageSource string

const (
	SourceOracle TriageSource = "oracle"
	SourceRules  TriageSource = "rules"
)

// TriageResult is the outcome of a triage evaluation.
type TriageResult struct {
	SBAR      SBAR         `json:"sbar"`
	ESILevel  ESILevel     `json:"esiLevel"`
	Reasoning string       `json:"reasoning"`
	Flags     []string     `json:"flags"`
	Category  Category     `json:"medicalCategory,omitempty"`
	Severity  Severity     `json:"severity,omitempty"`
	Source    TriageSource `json:"source"`
}
