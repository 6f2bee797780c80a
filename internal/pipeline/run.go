// Package pipeline orchestrates one analysis run: four model-backed stages
// in two independent branches, merged into a single AnalysisBundle.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/novel-lexicon/internal/highlight"
	"github.com/jonathan/novel-lexicon/internal/llm"
	"github.com/jonathan/novel-lexicon/internal/logger"
	"github.com/jonathan/novel-lexicon/internal/pipeline/stages"
	"github.com/jonathan/novel-lexicon/internal/repair"
	"github.com/jonathan/novel-lexicon/internal/types"
	"github.com/jonathan/novel-lexicon/internal/validation"
)

// Defaults applied to zero-valued RunOptions fields.
const (
	DefaultSummarySentences = 5
	DefaultSentenceCount    = 10
	DefaultVocabularyCount  = 15
)

// Progress statuses.
const (
	StatusStarted   = "started"
	StatusCompleted = "completed"
	StatusFallback  = "fallback"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Stage    string `json:"stage"`
	Category string `json:"category"`
	Status   string `json:"status"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs. Calls are
// serialized; the callback is never invoked concurrently.
type ProgressCallback func(event ProgressEvent)

// RunOptions holds configuration for running the pipeline
type RunOptions struct {
	Title             string
	CredentialPresent bool
	WebResearch       bool
	Elaborate         bool
	SummarySentences  int
	SentenceCount     int
	VocabularyCount   int
	Marker            highlight.Marker
	Sequential        bool
	Logger            *logger.Logger
	OnProgress        ProgressCallback
}

// InputError reports a run that was rejected before any model call.
type InputError struct {
	Field   string
	Message string
	Cause   error
}

func (e *InputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid input: %s: %s: %v", e.Field, e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Message)
}

func (e *InputError) Unwrap() error {
	return e.Cause
}

func (o RunOptions) withDefaults() RunOptions {
	if o.SummarySentences <= 0 {
		o.SummarySentences = DefaultSummarySentences
	}
	if o.SentenceCount <= 0 {
		o.SentenceCount = DefaultSentenceCount
	}
	if o.VocabularyCount <= 0 {
		o.VocabularyCount = DefaultVocabularyCount
	}
	if o.Marker.Open == "" && o.Marker.Close == "" {
		o.Marker = highlight.DefaultMarker
	}
	if o.Logger == nil {
		o.Logger = logger.Nop()
	}
	return o
}

// checkInput validates the title and credential and returns the cleaned title.
func checkInput(opts RunOptions) (string, error) {
	if strings.TrimSpace(opts.Title) == "" {
		return "", &InputError{Field: "title", Message: "is required"}
	}
	if !opts.CredentialPresent {
		return "", &InputError{Field: "credential", Message: "an API key is required"}
	}
	title, err := validation.CheckTitle(opts.Title)
	if err != nil {
		return "", &InputError{Field: "title", Message: "rejected", Cause: err}
	}
	return title, nil
}

// runner holds the state of one Run. Stage methods write to the bundle
// only through record, which takes mu.
type runner struct {
	completer llm.Completer
	fixer     *repair.Fixer
	opts      RunOptions
	log       *logger.Logger
	title     string

	mu            sync.Mutex
	bundle        *types.AnalysisBundle
	done          map[string]bool
	sentencesText string

	emitMu sync.Mutex
}

// Run executes every stage for opts.Title and returns the assembled
// bundle. Stage failures are recorded in the bundle; Run itself fails only
// for rejected input or a canceled context.
func Run(ctx context.Context, completer llm.Completer, opts RunOptions) (*types.AnalysisBundle, error) {
	title, err := checkInput(opts)
	if err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	runID := uuid.New().String()
	r := &runner{
		completer: completer,
		fixer:     repair.NewFixer(completer),
		opts:      opts,
		log:       opts.Logger.With("run_id", runID, "title", title),
		title:     title,
		done:      make(map[string]bool),
		bundle: &types.AnalysisBundle{
			RunID:      runID,
			Title:      title,
			Difficulty: []types.DifficultyAspect{},
			Sentences:  []string{},
			Vocabulary: []types.VocabularyItem{},
			StartedAt:  time.Now().UTC(),
		},
	}

	validation.LogInjectionWarning(r.log, validation.InspectTitle(title), "title")
	r.log.Info("analysis started",
		"web_research", opts.WebResearch,
		"sequential", opts.Sequential)

	overview := func(ctx context.Context) error {
		r.runSummary(ctx)
		r.runDifficulty(ctx)
		return ctx.Err()
	}
	language := func(ctx context.Context) error {
		r.runSentences(ctx)
		r.runVocabulary(ctx)
		return ctx.Err()
	}

	if opts.Sequential {
		if err := overview(ctx); err != nil {
			return nil, fmt.Errorf("analysis canceled: %w", err)
		}
		if err := language(ctx); err != nil {
			return nil, fmt.Errorf("analysis canceled: %w", err)
		}
	} else {
		g, gCtx := errgroup.WithContext(ctx)
		g.Go(func() error { return overview(gCtx) })
		g.Go(func() error { return language(gCtx) })
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("analysis canceled: %w", err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.bundle.CompletedAt = time.Now().UTC()

	r.log.Info("analysis finished",
		"stage_errors", len(r.bundle.StageErrors),
		"warnings", len(r.bundle.Warnings),
		"vocabulary", len(r.bundle.Vocabulary),
		"elapsed", r.bundle.CompletedAt.Sub(r.bundle.StartedAt).String())
	return r.bundle, nil
}

// record applies fn to the bundle under the lock.
func (r *runner) record(fn func(b *types.AnalysisBundle)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.bundle)
}

func (r *runner) markDone(stage string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done[stage] = true
}

func (r *runner) completed(stage string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done[stage]
}

// emit calls the progress callback if configured
func (r *runner) emit(stage, status, message string, content any) {
	if r.opts.OnProgress == nil {
		return
	}
	def, _ := stages.Get(stage)

	r.emitMu.Lock()
	defer r.emitMu.Unlock()
	r.opts.OnProgress(ProgressEvent{
		Stage:    stage,
		Category: def.Category,
		Status:   status,
		Message:  message,
		RunID:    r.bundle.RunID,
		Content:  content,
	})
}

// fail records a terminal stage failure.
func (r *runner) fail(stage, message string) {
	r.log.Warn("stage failed", "stage", stage, "error", message)
	r.record(func(b *types.AnalysisBundle) {
		b.StageErrors = append(b.StageErrors, types.StageError{Stage: stage, Message: message})
	})
	r.emit(stage, StatusFailed, message, nil)
}

// failCompletion records a failed completion. The stage error keeps the
// error kind; the progress message carries the textual rendering users see.
func (r *runner) failCompletion(stage string, result llm.CompletionResult) {
	message := result.Err.Error()
	r.log.Warn("stage failed", "stage", stage, "error", message)
	r.record(func(b *types.AnalysisBundle) {
		b.StageErrors = append(b.StageErrors, types.StageError{Stage: stage, Message: message})
	})
	r.emit(stage, StatusFailed, result.String(), nil)
}

// warn records a recoverable problem.
func (r *runner) warn(stage, message string) {
	r.log.Warn("stage warning", "stage", stage, "warning", message)
	r.record(func(b *types.AnalysisBundle) {
		b.Warnings = append(b.Warnings, stage+": "+message)
	})
}
