package parsing

import (
	"regexp"
	"strings"
)

// listMarker matches "1. ", "2) ", "- ", "* " and "• " prefixes.
var listMarker = regexp.MustCompile(`^\s*(?:\d{1,3}[.)]|[-*•])\s+`)

// SplitSentences splits a free-text sentence list into one entry per
// non-blank line, without list numbering or bullets.
func SplitSentences(text string) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	sentences := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(listMarker.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		sentences = append(sentences, line)
	}
	return sentences
}
