package triage

import "strings"

// Inputs shorter than this are always let through.
const shortInputWords = 3

var offTopicKeywords = []string{"joke", "recipe", "weather", "stock market"}

var medicalKeywords = []string{
	"pain", "hurt", "ache", "blood", "dizzy", "faint", "chest", "breath",
	"broken", "cut", "burn", "sick", "emergency", "help", "stomach", "head",
	"vomit", "nausea", "fever", "unconscious", "collapse",
}

// IsMedicalIntent is a coarse pre-filter for free text. It only rejects text
// that names an off-topic subject and carries no medical vocabulary at all.
// Short inputs get the benefit of the doubt.
func IsMedicalIntent(text string) bool {
	if len(strings.Fields(text)) < shortInputWords {
		return true
	}
	lower := strings.ToLower(text)
	if containsAny(lower, offTopicKeywords) && !containsAny(lower, medicalKeywords) {
		return false
	}
	return true
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
