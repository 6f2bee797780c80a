package research

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/jonathan/novel-lexicon/internal/fetch"
	"github.com/jonathan/novel-lexicon/internal/logger"
	"github.com/jonathan/novel-lexicon/internal/validation"
)

const contentLabel = "web search results"

// Researcher searches Google Programmable Search and turns the results into
// prompt context. It implements llm.WebSearcher.
type Researcher struct {
	svc  *customsearch.Service
	cx   string
	opts Options
	log  *logger.Logger
}

// NewResearcher creates a new Researcher instance. Extra client options are
// appended after the API key.
func NewResearcher(ctx context.Context, apiKey, cx string, opts Options, log *logger.Logger, clientOpts ...option.ClientOption) (*Researcher, error) {
	if strings.TrimSpace(apiKey) == "" || strings.TrimSpace(cx) == "" {
		return nil, fmt.Errorf("search API key and engine ID are required")
	}
	if log == nil {
		log = logger.Nop()
	}

	svc, err := customsearch.NewService(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, clientOpts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create customsearch service: %w", err)
	}
	return &Researcher{
		svc:  svc,
		cx:   cx,
		opts: opts.withDefaults(),
		log:  log,
	}, nil
}

// Search returns filtered, prioritized results for query.
func (r *Researcher) Search(ctx context.Context, query string) ([]Source, error) {
	resp, err := r.svc.Cse.List().Cx(r.cx).Q(query).Num(int64(r.opts.MaxResults)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	sources := make([]Source, 0, len(resp.Items))
	for _, item := range resp.Items {
		sources = append(sources, Source{
			Title:   strings.TrimSpace(item.Title),
			URL:     item.Link,
			Snippet: strings.TrimSpace(item.Snippet),
		})
	}
	return FilterSources(sources, r.opts.MaxPerDomain), nil
}

// Gather searches for query, fetches excerpts from the best pages and
// returns the quoted context. No results yields an empty string.
func (r *Researcher) Gather(ctx context.Context, query string) (string, error) {
	sources, err := r.Search(ctx, query)
	if err != nil {
		return "", err
	}
	if len(sources) == 0 {
		r.log.Info("web search returned no results", "query", query)
		return "", nil
	}

	for i := 0; i < len(sources) && i < r.opts.FetchPages; i++ {
		excerpt, err := fetch.Page(ctx, sources[i].URL, fetch.PageOptions{
			Fetch: &fetch.Options{
				Timeout:      r.opts.FetchTimeout,
				UserAgent:    fetch.DefaultUserAgent,
				MaxBodyBytes: fetch.DefaultMaxBodyBytes,
			},
			Selectors:  fetch.ReviewPageSelectors(),
			UseBrowser: r.opts.UseBrowser,
			Logger:     r.log,
		})
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			r.log.Debug("skipping page", "url", sources[i].URL, "error", err.Error())
			continue
		}
		validation.LogInjectionWarning(r.log, validation.CheckBasicHeuristics(excerpt), sources[i].URL)
		sources[i].Excerpt = excerpt
	}

	r.log.Debug("gathered web context", "query", query, "sources", len(sources))
	return FormatContext(sources, r.opts.MaxContextChars), nil
}

// FormatContext renders sources as quoted external content no longer than
// maxChars runes, excluding the quote delimiters.
func FormatContext(sources []Source, maxChars int) string {
	var sb strings.Builder
	for i, s := range sources {
		var block strings.Builder
		fmt.Fprintf(&block, "Source %d: %s (%s)\n", i+1, s.Title, s.URL)
		if s.Snippet != "" {
			block.WriteString(s.Snippet)
			block.WriteString("\n")
		}
		if s.Excerpt != "" {
			block.WriteString("Excerpt: ")
			block.WriteString(s.Excerpt)
			block.WriteString("\n")
		}
		block.WriteString("\n")
		sb.WriteString(validation.StripInjectionAttempts(block.String()))
	}

	text := truncateRunes(strings.TrimSpace(sb.String()), maxChars)
	if text == "" {
		return ""
	}
	return validation.QuoteExternalContentWithLabel(text, contentLabel)
}

func truncateRunes(s string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:maxChars]))
}
