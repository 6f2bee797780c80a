package repair

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/novel-lexicon/internal/llm"
	"github.com/jonathan/novel-lexicon/internal/parsing"
	"github.com/jonathan/novel-lexicon/internal/schemas"
	"github.com/jonathan/novel-lexicon/internal/types"
)

// scriptedCompleter answers calls in order and records every request.
type scriptedCompleter struct {
	mu       sync.Mutex
	answers  []llm.CompletionResult
	requests []llm.CompletionRequest
}

func (s *scriptedCompleter) Complete(_ context.Context, req llm.CompletionRequest) llm.CompletionResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if len(s.requests) > len(s.answers) {
		return llm.Failure(llm.ErrorKindTransport, "unexpected call")
	}
	return s.answers[len(s.requests)-1]
}

func TestRepair_BuildsPromptAndExtracts(t *testing.T) {
	completer := &scriptedCompleter{answers: []llm.CompletionResult{
		llm.Success("```json\n[{\"word\": \"hearth\"}]\n```"),
	}}
	fixer := NewFixer(completer)

	fixed, err := fixer.Repair(context.Background(), `[{"word": "hearth",}]`)
	require.NoError(t, err)
	assert.Equal(t, `[{"word": "hearth"}]`, fixed)

	require.Len(t, completer.requests, 1)
	req := completer.requests[0]
	assert.Contains(t, req.Prompt, `[{"word": "hearth",}]`)
	assert.Contains(t, req.Prompt, "JSON array")
	assert.False(t, req.WebAugmented)
	assert.True(t, req.ExpectJSON)
	assert.Equal(t, llm.TierLite, req.Tier)
}

func TestRepair_CompletionFailure(t *testing.T) {
	completer := &scriptedCompleter{answers: []llm.CompletionResult{
		llm.Failure(llm.ErrorKindQuota, "quota exceeded"),
	}}

	_, err := NewFixer(completer).Repair(context.Background(), "[")
	require.Error(t, err)

	var proposeErr *ProposeError
	require.ErrorAs(t, err, &proposeErr)
	var completionErr *llm.CompletionError
	require.ErrorAs(t, err, &completionErr)
	assert.Equal(t, llm.ErrorKindQuota, completionErr.Kind)
}

func TestDecodeArray_CleanInputMakesNoCall(t *testing.T) {
	completer := &scriptedCompleter{}

	items, outcome, err := DecodeArray[types.VocabularyItem](context.Background(), NewFixer(completer),
		`[{"word": "hearth", "cef_level": "B2"}]`, schemas.Vocabulary)
	require.NoError(t, err)
	assert.False(t, outcome.Repaired)
	require.Len(t, items, 1)
	assert.Equal(t, "hearth", items[0].Word)
	assert.Empty(t, completer.requests)
}

func TestDecodeArray_RepairsOnce(t *testing.T) {
	completer := &scriptedCompleter{answers: []llm.CompletionResult{
		llm.Success(`[{"word": "gloaming", "cef_level": "C2"}]`),
	}}

	items, outcome, err := DecodeArray[types.VocabularyItem](context.Background(), NewFixer(completer),
		"Here:\n[{'word': 'gloaming', 'cef_level': 'C2'}]", schemas.Vocabulary)
	require.NoError(t, err)
	assert.True(t, outcome.Repaired)
	assert.Error(t, outcome.FirstError)
	require.Len(t, items, 1)
	assert.Equal(t, types.LevelC2, items[0].CEFLevel)

	require.Len(t, completer.requests, 1)
	assert.Contains(t, completer.requests[0].Prompt, "[{'word': 'gloaming', 'cef_level': 'C2'}]")
	assert.NotContains(t, completer.requests[0].Prompt, "Here:")
}

func TestDecodeArray_SecondFailureIsTerminal(t *testing.T) {
	completer := &scriptedCompleter{answers: []llm.CompletionResult{
		llm.Success(`[{"word": still broken]`),
		llm.Success(`[{"word": "never used"}]`),
	}}

	items, outcome, err := DecodeArray[types.VocabularyItem](context.Background(), NewFixer(completer),
		`[{"word": broken]`, schemas.Vocabulary)
	require.Error(t, err)
	assert.Nil(t, items)
	assert.True(t, outcome.Repaired)

	var repairErr *Error
	require.ErrorAs(t, err, &repairErr)
	var parseErr *parsing.ParseError
	assert.ErrorAs(t, err, &parseErr)

	assert.Len(t, completer.requests, 1, "exactly one repair call")
}

func TestDecodeArray_RepairCompletionFails(t *testing.T) {
	completer := &scriptedCompleter{answers: []llm.CompletionResult{
		llm.Failure(llm.ErrorKindTransport, "connection reset"),
	}}

	_, _, err := DecodeArray[types.DifficultyAspect](context.Background(), NewFixer(completer),
		`[{"aspect": "Themes", "summary": }]`, schemas.Difficulty)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "connection reset"))

	var proposeErr *ProposeError
	assert.True(t, errors.As(err, &proposeErr))
}
