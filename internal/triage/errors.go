package triage

import "errors"

// ErrNonMedicalIntent is returned when the input guard rejects the complaint text.
var ErrNonMedicalIntent = errors.New("non-medical intent detected: system restricted to emergency triage")
