// Package highlight marks whole-word occurrences of vocabulary in source text.
package highlight

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Marker is the pair of strings wrapped around each match.
type Marker struct {
	Open  string
	Close string
}

var (
	// DefaultMarker wraps matches in an HTML mark element.
	DefaultMarker = Marker{Open: "<mark>", Close: "</mark>"}
	// MarkdownMarker wraps matches in bold emphasis.
	MarkdownMarker = Marker{Open: "**", Close: "**"}
	// ANSIMarker renders matches in bold yellow on a terminal.
	ANSIMarker = Marker{Open: "\x1b[1;33m", Close: "\x1b[0m"}
)

// MarkerByName resolves "html", "markdown" or "ansi". Unknown names get DefaultMarker.
func MarkerByName(name string) Marker {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "markdown", "md":
		return MarkdownMarker
	case "ansi", "terminal":
		return ANSIMarker
	default:
		return DefaultMarker
	}
}

type span struct{ start, end int }

// Highlight wraps every case-insensitive whole-word occurrence of each word
// in source with marker, keeping the original casing. Words are applied in
// the given order to the same buffer; blank words are skipped. A match that
// would cut through a marker inserted earlier is left alone.
func Highlight(source string, words []string, marker Marker) string {
	if marker.Open == "" && marker.Close == "" {
		marker = DefaultMarker
	}

	buf := norm.NFC.String(source)
	for _, word := range words {
		word = norm.NFC.String(strings.TrimSpace(word))
		if word == "" {
			continue
		}
		buf = highlightWord(buf, word, marker)
	}
	return buf
}

func highlightWord(buf, word string, marker Marker) string {
	pattern := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(word))
	protected := markerSpans(buf, marker)

	var sb strings.Builder
	last, pos := 0, 0
	for pos < len(buf) {
		loc := pattern.FindStringIndex(buf[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]

		if wholeWord(buf, start, end) && !overlaps(protected, start, end) {
			sb.WriteString(buf[last:start])
			sb.WriteString(marker.Open)
			sb.WriteString(buf[start:end])
			sb.WriteString(marker.Close)
			last, pos = end, end
			continue
		}

		// retry one rune later so overlapping candidates are not skipped
		_, size := utf8.DecodeRuneInString(buf[start:])
		pos = start + size
	}
	if last == 0 {
		return buf
	}
	sb.WriteString(buf[last:])
	return sb.String()
}

// wholeWord reports whether buf[start:end] is not glued to neighbouring
// word characters. An edge of the match that is itself punctuation needs
// no boundary.
func wholeWord(buf string, start, end int) bool {
	first, _ := utf8.DecodeRuneInString(buf[start:end])
	if isWordRune(first) && start > 0 {
		prev, _ := utf8.DecodeLastRuneInString(buf[:start])
		if isWordRune(prev) {
			return false
		}
	}

	lastRune, _ := utf8.DecodeLastRuneInString(buf[start:end])
	if isWordRune(lastRune) && end < len(buf) {
		next, _ := utf8.DecodeRuneInString(buf[end:])
		if isWordRune(next) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// markerSpans locates every marker token already present in buf.
func markerSpans(buf string, marker Marker) []span {
	var spans []span
	for _, token := range []string{marker.Open, marker.Close} {
		if token == "" {
			continue
		}
		for offset := 0; ; {
			i := strings.Index(buf[offset:], token)
			if i < 0 {
				break
			}
			start := offset + i
			spans = append(spans, span{start: start, end: start + len(token)})
			offset = start + len(token)
		}
	}
	return spans
}

func overlaps(spans []span, start, end int) bool {
	for _, s := range spans {
		if start < s.end && s.start < end {
			return true
		}
	}
	return false
}
