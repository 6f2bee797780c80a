// Package repair asks the model to fix JSON it could not produce cleanly the first time.
package repair

import (
	"context"
	"errors"

	"github.com/jonathan/novel-lexicon/internal/llm"
	"github.com/jonathan/novel-lexicon/internal/parsing"
	"github.com/jonathan/novel-lexicon/internal/prompts"
)

// Fixer issues repair completions.
type Fixer struct {
	completer llm.Completer
	tier      llm.ModelTier
}

// NewFixer creates a Fixer. Repairs run on the lite tier: the task is
// mechanical and does not need the analysis model.
func NewFixer(completer llm.Completer) *Fixer {
	return &Fixer{completer: completer, tier: llm.TierLite}
}

// Repair sends badText back to the model as a malformed JSON array and
// returns the extracted span of its answer. It makes exactly one call.
func (f *Fixer) Repair(ctx context.Context, badText string) (string, error) {
	prompt, err := prompts.Render("repair.json", "fix-json-array", map[string]string{
		"BadText": badText,
	})
	if err != nil {
		return "", &ProposeError{Message: "failed to build repair prompt", Cause: err}
	}

	result := f.completer.Complete(ctx, llm.CompletionRequest{
		Prompt:     prompt,
		ExpectJSON: true,
		Tier:       f.tier,
	})
	if !result.OK() {
		return "", &ProposeError{Message: "repair completion failed", Cause: result.Err}
	}

	return parsing.ExtractJSON(result.Text, parsing.ShapeArray), nil
}

// Outcome describes how a DecodeArray call reached its result.
type Outcome struct {
	// Repaired is true when the first parse failed and a repair was attempted.
	Repaired bool
	// FirstError is the parse failure that triggered the repair.
	FirstError error
}

// DecodeArray decodes model text into a slice of T validated against the
// named schema. On a parse failure it repairs once and decodes again; a
// second failure is returned as *Error and no further call is made.
func DecodeArray[T any](ctx context.Context, f *Fixer, text, schema string) ([]T, Outcome, error) {
	var items []T
	err := parsing.Decode(text, parsing.ShapeArray, schema, &items)
	if err == nil {
		return items, Outcome{}, nil
	}

	outcome := Outcome{Repaired: true, FirstError: err}

	badText := text
	var parseErr *parsing.ParseError
	if errors.As(err, &parseErr) && parseErr.Extracted != "" {
		badText = parseErr.Extracted
	}

	fixed, repairErr := f.Repair(ctx, badText)
	if repairErr != nil {
		return nil, outcome, &Error{Message: "repair attempt failed", Cause: errors.Join(err, repairErr)}
	}

	var repaired []T
	if err := parsing.DecodeExtracted(fixed, schema, &repaired); err != nil {
		return nil, outcome, &Error{Message: "response still invalid after repair", Cause: err}
	}
	return repaired, outcome, nil
}
