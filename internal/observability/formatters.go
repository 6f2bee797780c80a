// Package observability provides formatted terminal output for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/novel-lexicon/internal/pipeline"
	"github.com/jonathan/novel-lexicon/internal/pipeline/stages"
	"github.com/jonathan/novel-lexicon/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// maxItemsToShow is the default number of vocabulary rows to display
	maxItemsToShow = 50
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content. Long lines are
// wrapped at word boundaries.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(title, inner), inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		for _, wrapped := range wrap(line, inner) {
			fmt.Fprintf(p.out, "│ %s │\n", pad(wrapped, inner))
		}
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintBundle prints every section of an analysis bundle.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintBundle(bundle *types.AnalysisBundle) {
	if bundle == nil {
		return
	}
	fmt.Fprintf(p.out, "\n%s\n\n", strings.ToUpper(bundle.Title))
	p.PrintSummary(bundle.Summary)
	p.PrintDifficulty(bundle.Difficulty)
	p.PrintVocabulary(bundle.Vocabulary)
	p.PrintHighlighted(bundle.HighlightedText)
	p.PrintProblems(bundle.Warnings, bundle.StageErrors)
}

// PrintSummary outputs the plot summary.
func (p *Printer) PrintSummary(summary string) {
	if strings.TrimSpace(summary) == "" {
		return
	}
	p.printBox("PLOT SUMMARY", summary)
}

// PrintDifficulty outputs the difficulty aspects.
func (p *Printer) PrintDifficulty(aspects []types.DifficultyAspect) {
	if len(aspects) == 0 {
		return
	}

	var sb strings.Builder
	for i, a := range aspects {
		if i > 0 {
			sb.WriteString("\n")
		}
		summary := a.Summary
		if summary == "" {
			summary = "n/a"
		}
		sb.WriteString(fmt.Sprintf("%s: %s\n", a.Aspect, summary))
	}
	p.printBox("READING DIFFICULTY", strings.TrimRight(sb.String(), "\n"))
}

// PrintSentences outputs the example sentences, numbered.
func (p *Printer) PrintSentences(sentences []string) {
	if len(sentences) == 0 {
		return
	}

	var sb strings.Builder
	for i, s := range sentences {
		sb.WriteString(fmt.Sprintf("%2d. %s\n", i+1, s))
	}
	p.printBox("EXAMPLE SENTENCES", strings.TrimRight(sb.String(), "\n"))
}

// PrintVocabulary outputs the vocabulary, hardest first.
func (p *Printer) PrintVocabulary(items []types.VocabularyItem) {
	if len(items) == 0 {
		return
	}

	var sb strings.Builder
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		item := items[i]
		level := string(item.CEFLevel)
		if level == "" {
			level = "??"
		}
		sb.WriteString(fmt.Sprintf("[%-2s] %s", level, item.Word))
		if item.PartOfSpeech != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", item.PartOfSpeech))
		}
		if item.MeaningEn != "" {
			sb.WriteString(" - " + item.MeaningEn)
		}
		sb.WriteString("\n")
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(items)-maxItemsToShow))
	}
	p.printBox(fmt.Sprintf("VOCABULARY (%d)", len(items)), strings.TrimRight(sb.String(), "\n"))
}

// PrintHighlighted writes the highlighted sentences without a box, since
// terminal markers have no printed width.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintHighlighted(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	fmt.Fprintf(p.out, "\nHIGHLIGHTED SENTENCES\n\n%s\n\n", text)
}

// PrintProblems outputs warnings and stage errors, if any.
func (p *Printer) PrintProblems(warnings []string, stageErrors []types.StageError) {
	if len(warnings) == 0 && len(stageErrors) == 0 {
		return
	}

	var sb strings.Builder
	for _, e := range stageErrors {
		sb.WriteString(fmt.Sprintf("✗ %s\n", e.Error()))
	}
	for _, w := range warnings {
		sb.WriteString(fmt.Sprintf("! %s\n", w))
	}
	p.printBox("PROBLEMS", strings.TrimRight(sb.String(), "\n"))
}

// PrintProgress writes a one-line progress update.
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func (p *Printer) PrintProgress(event pipeline.ProgressEvent) {
	symbol := "•"
	switch event.Status {
	case pipeline.StatusCompleted:
		symbol = "✓"
	case pipeline.StatusFailed:
		symbol = "✗"
	case pipeline.StatusFallback, pipeline.StatusSkipped:
		symbol = "!"
	}
	fmt.Fprintf(p.out, "%s [%s] %s\n", symbol, event.Stage, event.Message)
}

// PrintStages lists stage definitions with their dependencies.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintStages(defs []stages.StageDefinition) {
	for _, def := range defs {
		deps := "none"
		if len(def.Dependencies) > 0 {
			deps = strings.Join(def.Dependencies, ", ")
		}
		fmt.Fprintf(p.out, "%d. %-11s %-9s depends on: %-10s %s\n",
			def.Order, def.Name, def.Category, deps, def.Description)
	}
}

func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-3]) + "..."
}

func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// wrap splits line into chunks of at most width runes, breaking at spaces
// where possible.
func wrap(line string, width int) []string {
	if utf8.RuneCountInString(line) <= width {
		return []string{line}
	}

	var out []string
	var current []rune
	for _, word := range strings.Fields(line) {
		w := []rune(word)
		for len(w) > width {
			if len(current) > 0 {
				out = append(out, string(current))
				current = nil
			}
			out = append(out, string(w[:width]))
			w = w[width:]
		}
		switch {
		case len(current) == 0:
			current = w
		case len(current)+1+len(w) <= width:
			current = append(append(current, ' '), w...)
		default:
			out = append(out, string(current))
			current = w
		}
	}
	if len(current) > 0 {
		out = append(out, string(current))
	}
	return out
}
