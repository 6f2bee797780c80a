package validation

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxTitleLength is the longest title, in runes, accepted for analysis.
const MaxTitleLength = 200

// CheckTitle trims title and checks that it fits on one quoted prompt line.
// It returns the trimmed title or a *TitleError. Wording is not judged here:
// novels are routinely called things like "Forget Everything", so callers
// pass the title to InspectTitle and log the result instead.
func CheckTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", &TitleError{Title: title, Reason: "title is empty"}
	}
	if utf8.RuneCountInString(trimmed) > MaxTitleLength {
		return "", &TitleError{Title: trimmed, Reason: "title is too long"}
	}
	for _, r := range trimmed {
		if r == '\n' || r == '\r' {
			return "", &TitleError{Title: trimmed, Reason: "title spans multiple lines"}
		}
		if unicode.IsControl(r) {
			return "", &TitleError{Title: trimmed, Reason: "title contains control characters"}
		}
	}
	return trimmed, nil
}

// InspectTitle runs the injection heuristics over a title. Pattern hits are
// reported alongside keyword hits so LogInjectionWarning can record both.
func InspectTitle(title string) *InjectionCheckResult {
	result := CheckBasicHeuristics(title)
	if !ContainsInjectionPattern(title) {
		return result
	}
	result.IsSafe = false
	result.DetectedKeywords = append(result.DetectedKeywords, "instruction pattern")
	result.Reason = "title reads like an instruction"
	return result
}
