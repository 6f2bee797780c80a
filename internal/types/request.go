// Package types provides type definitions for structured data used throughout the novel-lexicon system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"github.com/go-playground/validator/v10"
)

// AnalyzeRequest is the body accepted by the HTTP analyze endpoints.
type AnalyzeRequest struct {
	Title           string `json:"title" validate:"required,min=1,max=200"`
	APIKey          string `json:"api_key,omitempty"`
	WebResearch     *bool  `json:"web_research,omitempty"`
	Elaborate       bool   `json:"elaborate,omitempty"`
	SentenceCount   int    `json:"sentence_count,omitempty" validate:"omitempty,min=1,max=30"`
	VocabularyCount int    `json:"vocabulary_count,omitempty" validate:"omitempty,min=1,max=50"`
}

// Validate validates the AnalyzeRequest using the validator.
func (r *AnalyzeRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
