// Package types provides type definitions for structured data used throughout the novel-lexicon system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// Canonical difficulty aspect names, in display order.
const (
	AspectVocabulary      = "Vocabulary"
	AspectSyntax          = "Syntax"
	AspectThemes          = "Themes"
	AspectCulturalContext = "Cultural context"
	AspectContentWarning  = "Content warning"

	// AspectError names the placeholder record used when the difficulty stage fails.
	AspectError = "Error"
)

// DifficultyAspects returns the five aspect names in display order.
func DifficultyAspects() []string {
	return []string{
		AspectVocabulary,
		AspectSyntax,
		AspectThemes,
		AspectCulturalContext,
		AspectContentWarning,
	}
}

// DifficultyAspect is one named dimension of reading difficulty.
type DifficultyAspect struct {
	Aspect  string `json:"aspect" yaml:"aspect"`
	Summary string `json:"summary" yaml:"summary"`
}

// VocabularyItem is a single word picked from the example sentences.
type VocabularyItem struct {
	Word            string   `json:"word" yaml:"word"`
	MeaningEn       string   `json:"meaning_en" yaml:"meaning_en"`
	PartOfSpeech    string   `json:"part_of_speech" yaml:"part_of_speech"`
	CEFLevel        CEFLevel `json:"cef_level" yaml:"cef_level"`
	ExampleSentence string   `json:"example_sentence" yaml:"example_sentence"`
}

// StageError records a terminal failure of one pipeline stage.
type StageError struct {
	Stage   string `json:"stage" yaml:"stage"`
	Message string `json:"message" yaml:"message"`
}

func (e StageError) Error() string {
	return e.Stage + ": " + e.Message
}

// AnalysisBundle is the complete result of one analysis run.
type AnalysisBundle struct {
	RunID           string             `json:"run_id" yaml:"run_id"`
	Title           string             `json:"title" yaml:"title"`
	Summary         string             `json:"summary" yaml:"summary"`
	Difficulty      []DifficultyAspect `json:"difficulty" yaml:"difficulty"`
	Sentences       []string           `json:"sentences" yaml:"sentences"`
	Vocabulary      []VocabularyItem   `json:"vocabulary" yaml:"vocabulary"`
	HighlightedText string             `json:"highlighted_text" yaml:"highlighted_text"`
	Warnings        []string           `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	StageErrors     []StageError       `json:"stage_errors,omitempty" yaml:"stage_errors,omitempty"`
	StartedAt       time.Time          `json:"started_at" yaml:"started_at"`
	CompletedAt     time.Time          `json:"completed_at" yaml:"completed_at"`
}

// Failed reports whether the named stage recorded a terminal error.
func (b *AnalysisBundle) Failed(stage string) bool {
	for _, e := range b.StageErrors {
		if e.Stage == stage {
			return true
		}
	}
	return false
}

// Words returns the word field of every vocabulary item, in bundle order.
func (b *AnalysisBundle) Words() []string {
	words := make([]string, 0, len(b.Vocabulary))
	for _, item := range b.Vocabulary {
		words = append(words, item.Word)
	}
	return words
}
