// Package parsing turns free-form model output into typed records: it
// narrows text down to a JSON span, validates it against a schema and
// decodes it.
package parsing

import (
	"regexp"
	"strings"
)

// Shape is the JSON value kind a caller expects.
type Shape int

const (
	// ShapeArray expects a JSON array.
	ShapeArray Shape = iota
	// ShapeAny accepts whichever of object or array appears first.
	ShapeAny
)

// EmptyArray is returned when no JSON span is found.
const EmptyArray = "[]"

var (
	// An opening fence may carry a language tag such as json or javascript.
	fencePattern = regexp.MustCompile("```[\\w+-]*")
	arraySpan    = regexp.MustCompile(`(?s)\[.*\]`)
	anySpan      = regexp.MustCompile(`(?s)(\{.*\}|\[.*\])`)

	quoteReplacer = strings.NewReplacer(
		"\u201c", `"`,
		"\u201d", `"`,
		"\u201e", `"`,
		"\u201f", `"`,
		"\u2018", "'",
		"\u2019", "'",
		"\u201a", "'",
		"\u201b", "'",
	)
)

// ExtractJSON returns the first plausible JSON span in text. It never fails:
// when nothing bracketed is found the empty array literal is returned. The
// span is not validated.
func ExtractJSON(text string, shape Shape) string {
	cleaned := Clean(text)

	pattern := arraySpan
	if shape == ShapeAny {
		pattern = anySpan
	}

	if m := pattern.FindString(cleaned); m != "" {
		return m
	}
	return EmptyArray
}

// Clean strips markdown fences, with or without a language tag, and folds
// typographic quotes to ASCII.
func Clean(text string) string {
	text = fencePattern.ReplaceAllString(text, "")
	return quoteReplacer.Replace(text)
}
