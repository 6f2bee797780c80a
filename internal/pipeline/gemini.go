package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/novel-lexicon/internal/config"
	"github.com/jonathan/novel-lexicon/internal/highlight"
	"github.com/jonathan/novel-lexicon/internal/llm"
	"github.com/jonathan/novel-lexicon/internal/logger"
	"github.com/jonathan/novel-lexicon/internal/research"
)

// NewGeminiCompleter builds the production completer from cfg. apiKey
// overrides cfg.Gemini.APIKey when non-empty. Web research is wired only
// when a search engine is configured; otherwise web-augmented calls fail
// and the difficulty stage falls back to model knowledge.
func NewGeminiCompleter(ctx context.Context, cfg *config.Config, apiKey string, log *logger.Logger) (*llm.CompletionClient, error) {
	if log == nil {
		log = logger.Nop()
	}
	if strings.TrimSpace(apiKey) == "" {
		apiKey = cfg.Gemini.APIKey
	}

	llmConfig := llm.DefaultGeminiConfig().WithModel(llm.TierStandard, cfg.Gemini.Model)
	llmConfig.Temperature = cfg.Gemini.Temperature

	client, err := llm.NewClient(ctx, llmConfig, apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	opts := llm.CompletionOptions{
		Tier:   llm.TierStandard,
		Delay:  cfg.Analysis.CallDelay,
		Logger: log,
	}

	if cfg.HasSearch() {
		researcher, err := research.NewResearcher(ctx, cfg.Search.APIKey, cfg.Search.EngineID, research.Options{
			MaxResults:      cfg.Search.MaxResults,
			FetchPages:      cfg.Search.FetchPages,
			MaxContextChars: cfg.Search.MaxContextChars,
			UseBrowser:      cfg.Search.UseBrowser,
			FetchTimeout:    cfg.Search.FetchTimeout,
		}, log)
		if err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to create researcher: %w", err)
		}
		opts.Searcher = researcher
	} else {
		log.Debug("web research not configured")
	}

	return llm.NewCompletionClient(client, opts), nil
}

// OptionsFromConfig returns RunOptions seeded from the analysis settings.
// Title and credential presence are left to the caller.
func OptionsFromConfig(cfg *config.Config) RunOptions {
	return RunOptions{
		WebResearch:      cfg.Analysis.WebResearch,
		Elaborate:        cfg.Analysis.Elaborate,
		SummarySentences: cfg.Analysis.SummarySentences,
		SentenceCount:    cfg.Analysis.SentenceCount,
		VocabularyCount:  cfg.Analysis.VocabularyCount,
		Marker:           highlight.MarkerByName(cfg.Analysis.Marker),
		Sequential:       cfg.Analysis.Sequential,
	}
}
