// Package types provides type definitions for structured data used throughout the novel-lexicon system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// CEFLevel is a Common European Framework of Reference proficiency tier.
type CEFLevel string

// Recognized CEF levels, easiest first.
const (
	LevelA1 CEFLevel = "A1"
	LevelA2 CEFLevel = "A2"
	LevelB1 CEFLevel = "B1"
	LevelB2 CEFLevel = "B2"
	LevelC1 CEFLevel = "C1"
	LevelC2 CEFLevel = "C2"
)

// DefaultRank is the rank given to missing or unrecognized levels (B1).
const DefaultRank = 3

var levelRanks = map[CEFLevel]int{
	LevelC2: 6,
	LevelC1: 5,
	LevelB2: 4,
	LevelB1: 3,
	LevelA2: 2,
	LevelA1: 1,
}

// ParseCEFLevel trims and upper-cases raw level text. Unrecognized values
// are returned as-is so they stay visible to the reader.
func ParseCEFLevel(raw string) CEFLevel {
	return CEFLevel(strings.ToUpper(strings.TrimSpace(raw)))
}

// Valid reports whether l is one of A1..C2.
func (l CEFLevel) Valid() bool {
	_, ok := levelRanks[l]
	return ok
}

// Rank maps the level to its ordinal, C2 highest. Unknown levels rank as B1.
func (l CEFLevel) Rank() int {
	if r, ok := levelRanks[ParseCEFLevel(string(l))]; ok {
		return r
	}
	return DefaultRank
}
