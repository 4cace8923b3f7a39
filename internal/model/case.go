package model

import (
	"time"

	"github.com/google/uuid"
)

type CaseStatus string

const (
	CaseStatusNew         CaseStatus = "NEW"
	CaseStatusAnalyzing   CaseStatus = "ANALYZING"
	CaseStatusUnderReview CaseStatus = "UNDER_REVIEW"
	CaseStatusDispatched  CaseStatus = "DISPATCHED"
	CaseStatusClosed      CaseStatus = "CLOSED"
	CaseStatusDeferred    CaseStatus = "DEFERRED"
)

// Valid reports whether s is a known case status.
func (s CaseStatus) Valid() bool {
	switch s {
	case CaseStatusNew, CaseStatusAnalyzing, CaseStatusUnderReview,
		CaseStatusDispatched, CaseStatusClosed, CaseStatusDeferred:
		return true
	}
	return false
}

// TriageCase is a persisted triage submission as seen by hospital staff.
type TriageCase struct {
	ID                 uuid.UUID      `json:"id"`
	PatientID          string         `json:"patientId"`
	PatientAlias       string         `json:"patientAlias"`
	Age                int            `json:"age"`
	Gender             string         `json:"gender"`
	ChiefComplaint     string         `json:"chiefComplaint"`
	Symptoms           []string       `json:"symptoms"`
	PainScore          int            `json:"painScore"`
	Duration           string         `json:"duration"`
	SBAR               SBAR           `json:"sbar"`
	ESILevel           ESILevel       `json:"esiSuggestion"`
	ESIReasoning       string         `json:"esiReasoning"`
	Flags              []string       `json:"flags"`
	Category           Category       `json:"medicalCategory,omitempty"`
	Source             TriageSource   `json:"source"`
	Status             CaseStatus     `json:"status"`
	AssignedHospitalID string         `json:"assignedHospitalId,omitempty"`
	SharedContext      *SharedContext `json:"sharedContext,omitempty"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
}

// CaseFilters narrows a case queue listing. A HospitalID filter matches
// cases routed to that hospital plus the unassigned pool.
type CaseFilters struct {
	Status     CaseStatus `form:"status"`
	HospitalID string     `form:"hospital_id"`
	PatientID  string     `form:"patient_id"`
	Pagination
}

// CreateTriageRequest is the body of POST /triage.
type CreateTriageRequest struct {
	PatientID string `json:"patientId" binding:"required"`
	TriageInput
	AssignedHospitalID string `json:"assignedHospitalId"`
	ShareContext       bool   `json:"shareContext"`
}

// UpdateCaseStatusRequest is the body of PATCH /cases/:id/status.
type UpdateCaseStatusRequest struct {
	Status CaseStatus `json:"status" binding:"required,case_status"`
}
