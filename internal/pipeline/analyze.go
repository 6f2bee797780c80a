package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jonathan/novel-lexicon/internal/highlight"
	"github.com/jonathan/novel-lexicon/internal/llm"
	"github.com/jonathan/novel-lexicon/internal/parsing"
	"github.com/jonathan/novel-lexicon/internal/pipeline/stages"
	"github.com/jonathan/novel-lexicon/internal/prompts"
	"github.com/jonathan/novel-lexicon/internal/repair"
	"github.com/jonathan/novel-lexicon/internal/schemas"
	"github.com/jonathan/novel-lexicon/internal/types"
	"github.com/jonathan/novel-lexicon/internal/vocabulary"
)

const promptFile = "analysis.json"

func (r *runner) prompt(key string, data map[string]string) string {
	return prompts.Format(prompts.MustGet(promptFile, key), data)
}

func (r *runner) runSummary(ctx context.Context) {
	r.emit(stages.Summary, StatusStarted, "Writing plot summary", nil)

	result := r.completer.Complete(ctx, llm.CompletionRequest{
		Prompt: r.prompt("summary", map[string]string{
			"Title":     r.title,
			"Sentences": strconv.Itoa(r.opts.SummarySentences),
		}),
	})
	if !result.OK() {
		r.failCompletion(stages.Summary, result)
		return
	}
	summary := strings.TrimSpace(result.Text)

	if r.opts.Elaborate {
		elaborated := r.completer.Complete(ctx, llm.CompletionRequest{
			Prompt: r.prompt("elaborate-summary", map[string]string{
				"Title":   r.title,
				"Summary": summary,
			}),
			Tier: llm.TierAdvanced,
		})
		if elaborated.OK() {
			summary = strings.TrimSpace(elaborated.Text)
		} else {
			r.warn(stages.Summary, "elaboration failed, keeping the short summary: "+elaborated.Err.Error())
		}
	}

	r.record(func(b *types.AnalysisBundle) { b.Summary = summary })
	r.markDone(stages.Summary)
	r.emit(stages.Summary, StatusCompleted, "Plot summary ready", summary)
}

func (r *runner) runDifficulty(ctx context.Context) {
	r.emit(stages.Difficulty, StatusStarted, "Assessing reading difficulty", nil)

	opinions, err := r.gatherOpinions(ctx)
	if err != nil {
		r.failDifficulty(err.Error())
		return
	}

	schema := llm.DifficultySchema(types.DifficultyAspects())
	result := r.completer.Complete(ctx, llm.CompletionRequest{
		Prompt: r.prompt("difficulty-aspects", map[string]string{
			"Title":        r.title,
			"Opinions":     opinions,
			"OutputFormat": llm.BuildArrayInstruction(schema),
		}),
		ExpectJSON: true,
	})
	if !result.OK() {
		r.failDifficulty(result.Err.Error())
		return
	}

	raw, outcome, err := repair.DecodeArray[types.DifficultyAspect](ctx, r.fixer, result.Text, schemas.Difficulty)
	r.noteRepair(stages.Difficulty, outcome, err)
	if err != nil {
		r.failDifficulty(err.Error())
		return
	}

	aspects := CanonicalizeAspects(raw)
	r.record(func(b *types.AnalysisBundle) { b.Difficulty = aspects })
	r.markDone(stages.Difficulty)
	r.emit(stages.Difficulty, StatusCompleted, "Difficulty assessment ready", aspects)
}

// gatherOpinions asks for reader opinions on the web when enabled and falls
// back to the model's own knowledge when that fails or comes back empty.
func (r *runner) gatherOpinions(ctx context.Context) (string, error) {
	if r.opts.WebResearch {
		web := r.completer.Complete(ctx, llm.CompletionRequest{
			Prompt:       r.prompt("difficulty-web", map[string]string{"Title": r.title}),
			WebAugmented: true,
			SearchQuery:  fmt.Sprintf("%q novel reading difficulty vocabulary review", r.title),
		})
		if web.OK() && strings.TrimSpace(web.Text) != "" {
			return web.Text, nil
		}

		reason := "web research returned nothing"
		if !web.OK() {
			reason = web.Err.Error()
		}
		r.warn(stages.Difficulty, "falling back to model knowledge: "+reason)
		r.emit(stages.Difficulty, StatusFallback, "Web research unavailable, using model knowledge", nil)
	}

	knowledge := r.completer.Complete(ctx, llm.CompletionRequest{
		Prompt: r.prompt("difficulty-knowledge", map[string]string{"Title": r.title}),
	})
	if !knowledge.OK() {
		return "", knowledge.Err
	}
	return knowledge.Text, nil
}

func (r *runner) failDifficulty(message string) {
	r.record(func(b *types.AnalysisBundle) {
		b.Difficulty = []types.DifficultyAspect{{Aspect: types.AspectError, Summary: message}}
	})
	r.fail(stages.Difficulty, message)
}

func (r *runner) runSentences(ctx context.Context) {
	r.emit(stages.Sentences, StatusStarted, "Collecting example sentences", nil)

	result := r.completer.Complete(ctx, llm.CompletionRequest{
		Prompt: r.prompt("sentences", map[string]string{
			"Title": r.title,
			"Count": strconv.Itoa(r.opts.SentenceCount),
		}),
	})
	if !result.OK() {
		r.failCompletion(stages.Sentences, result)
		return
	}

	text := strings.TrimSpace(result.Text)
	sentences := parsing.SplitSentences(text)

	r.mu.Lock()
	r.sentencesText = text
	r.bundle.Sentences = sentences
	r.bundle.HighlightedText = text
	r.mu.Unlock()

	r.markDone(stages.Sentences)
	r.emit(stages.Sentences, StatusCompleted,
		fmt.Sprintf("Collected %d sentences", len(sentences)), sentences)
}

func (r *runner) runVocabulary(ctx context.Context) {
	if err := stages.ValidateDependencies(r.completed, stages.Vocabulary); err != nil {
		r.log.Info("skipping stage", "stage", stages.Vocabulary, "reason", err.Error())
		r.record(func(b *types.AnalysisBundle) {
			b.StageErrors = append(b.StageErrors, types.StageError{
				Stage:   stages.Vocabulary,
				Message: "skipped: " + err.Error(),
			})
		})
		r.emit(stages.Vocabulary, StatusSkipped, "Skipped: no example sentences", nil)
		return
	}

	r.emit(stages.Vocabulary, StatusStarted, "Extracting vocabulary", nil)

	r.mu.Lock()
	text := r.sentencesText
	r.mu.Unlock()

	result := r.completer.Complete(ctx, llm.CompletionRequest{
		Prompt: r.prompt("vocabulary", map[string]string{
			"Title":        r.title,
			"Sentences":    text,
			"Count":        strconv.Itoa(r.opts.VocabularyCount),
			"OutputFormat": llm.BuildArrayInstruction(llm.VocabularySchema()),
		}),
		ExpectJSON: true,
	})
	if !result.OK() {
		r.failCompletion(stages.Vocabulary, result)
		return
	}

	raw, outcome, err := repair.DecodeArray[types.VocabularyItem](ctx, r.fixer, result.Text, schemas.Vocabulary)
	r.noteRepair(stages.Vocabulary, outcome, err)
	if err != nil {
		r.fail(stages.Vocabulary, err.Error())
		return
	}

	items := vocabulary.Normalize(raw)
	words := make([]string, 0, len(items))
	for _, item := range items {
		words = append(words, item.Word)
	}
	highlighted := highlight.Highlight(text, words, r.opts.Marker)

	r.record(func(b *types.AnalysisBundle) {
		b.Vocabulary = items
		b.HighlightedText = highlighted
	})
	r.markDone(stages.Vocabulary)
	r.emit(stages.Vocabulary, StatusCompleted,
		fmt.Sprintf("Extracted %d vocabulary items", len(items)), items)
}

// noteRepair records that a stage needed the repair pass.
func (r *runner) noteRepair(stage string, outcome repair.Outcome, err error) {
	if !outcome.Repaired {
		return
	}
	if err == nil {
		r.warn(stage, "model output was malformed and has been repaired")
		return
	}
	r.log.Debug("repair did not help", "stage", stage, "first_error", outcome.FirstError)
}
