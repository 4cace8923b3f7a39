package triage

import "regexp"

var (
	selfIntroPattern = regexp.MustCompile(`(?i)(my name is|i am) ([A-Z][a-z]+)`)
	phonePattern     = regexp.MustCompile(`\b\d{10}\b`)
	cityPattern      = regexp.MustCompile(`(?i)(Mumbai|Delhi|Bangalore|Chennai|Kolkata|Pune)`)
)

// MaskPII redacts names following a self-introduction, ten digit phone
// numbers and major city names before text leaves the process.
func MaskPII(text string) string {
	masked := selfIntroPattern.ReplaceAllString(text, "$1 [Patient_ID_XXXX]")
	masked = phonePattern.ReplaceAllString(masked, "[PHONE_REDACTED]")
	masked = cityPattern.ReplaceAllString(masked, "[LOCATION_REGION_1]")
	return masked
}
