package ensemble

import (
	"strings"
	"unicode/utf8"
)

// FeatureSet holds the signals derived from a case body.
type FeatureSet struct {
	TextLength     int  `json:"text_length"`
	HasEvidence    bool `json:"has_evidence"`
	HasWeakness    bool `json:"has_weakness"`
	HasStrongFacts bool `json:"has_strong_facts"`
}

// ExtractFeatures scans text once for its keyword classes. Any input,
// including the empty string, yields a valid FeatureSet.
func ExtractFeatures(text string) FeatureSet {
	lower := strings.ToLower(text)
	return FeatureSet{
		TextLength:     utf8.RuneCountInString(text),
		HasEvidence:    strings.Contains(lower, "evidence"),
		HasWeakness:    containsAny(lower, "weakness", "problem"),
		HasStrongFacts: containsAny(lower, "clear", "strong"),
	}
}

func containsAny(s string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
