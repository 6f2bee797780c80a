package observability

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/novel-lexicon/internal/pipeline"
	"github.com/jonathan/novel-lexicon/internal/pipeline/stages"
	"github.com/jonathan/novel-lexicon/internal/types"
)

func TestPrintBundle(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintBundle(&types.AnalysisBundle{
		Title:   "Emma",
		Summary: "A matchmaker meddles.",
		Difficulty: []types.DifficultyAspect{
			{Aspect: types.AspectVocabulary, Summary: "Regency idiom."},
			{Aspect: types.AspectSyntax},
		},
		Vocabulary: []types.VocabularyItem{
			{Word: "officious", PartOfSpeech: "adjective", MeaningEn: "meddling", CEFLevel: types.LevelC2},
			{Word: "amiable"},
		},
		HighlightedText: "She was <mark>officious</mark>.",
		Warnings:        []string{"difficulty: falling back to model knowledge"},
		StageErrors:     []types.StageError{{Stage: "sentences", Message: "timeout"}},
	})
	output := buf.String()

	assert.Contains(t, output, "EMMA")
	assert.Contains(t, output, "PLOT SUMMARY")
	assert.Contains(t, output, "A matchmaker meddles.")
	assert.Contains(t, output, "Vocabulary: Regency idiom.")
	assert.Contains(t, output, "Syntax: n/a")
	assert.Contains(t, output, "VOCABULARY (2)")
	assert.Contains(t, output, "[C2] officious (adjective) - meddling")
	assert.Contains(t, output, "[??] amiable")
	assert.Contains(t, output, "She was <mark>officious</mark>.")
	assert.Contains(t, output, "✗ sentences: timeout")
	assert.Contains(t, output, "! difficulty: falling back")
}

func TestPrintBundle_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintBundle(nil)
	assert.Empty(t, buf.String())
}

func TestPrintProblems_None(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintProblems(nil, nil)
	assert.Empty(t, buf.String())
}

func TestPrintBox_LinesHaveEqualWidth(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintSummary(strings.Repeat("Tolstoï écrit longuement. ", 12))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Greater(t, len(lines), 4)
	for _, line := range lines {
		assert.Equal(t, boxWidth, utf8.RuneCountInString(line), line)
	}
}

func TestPrintSentences(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintSentences([]string{"One.", "Two."})

	assert.Contains(t, buf.String(), " 1. One.")
	assert.Contains(t, buf.String(), " 2. Two.")
}

func TestPrintProgress(t *testing.T) {
	tests := []struct {
		status string
		symbol string
	}{
		{pipeline.StatusStarted, "•"},
		{pipeline.StatusCompleted, "✓"},
		{pipeline.StatusFailed, "✗"},
		{pipeline.StatusFallback, "!"},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		NewPrinter(&buf).PrintProgress(pipeline.ProgressEvent{Stage: "summary", Status: tt.status, Message: "msg"})
		assert.Equal(t, tt.symbol+" [summary] msg\n", buf.String())
	}
}

func TestPrintStages(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintStages(stages.Ordered())

	output := buf.String()
	assert.Contains(t, output, "1. summary")
	assert.Contains(t, output, "depends on: sentences")
}

func TestWrap(t *testing.T) {
	assert.Equal(t, []string{"short"}, wrap("short", 10))
	assert.Equal(t, []string{"aaa bbb", "ccc"}, wrap("aaa bbb ccc", 7))
	assert.Equal(t, []string{"abcde", "fgh"}, wrap("abcdefgh", 5))
	assert.Equal(t, []string{""}, wrap("", 5))
}
