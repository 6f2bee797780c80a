package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/jonathan/novel-lexicon/internal/logger"
)

// ErrorSentinel prefixes the textual rendering of a failed completion.
const ErrorSentinel = "❌ Error: "

// maxSearchQueryLen bounds, in runes, the query derived from a prompt when
// none is given.
const maxSearchQueryLen = 200

// ErrorKind classifies why a completion failed.
type ErrorKind string

// Completion failure kinds.
const (
	ErrorKindTransport ErrorKind = "transport"
	ErrorKindAuth      ErrorKind = "auth"
	ErrorKindQuota     ErrorKind = "quota"
	ErrorKindBlocked   ErrorKind = "blocked"
	ErrorKindEmpty     ErrorKind = "empty"
	ErrorKindWebSearch ErrorKind = "web_search"
	ErrorKindCanceled  ErrorKind = "canceled"
	ErrorKindInvalid   ErrorKind = "invalid_request"
)

// CompletionRequest is a single call to the text-generation service.
type CompletionRequest struct {
	Prompt       string
	WebAugmented bool
	// SearchQuery overrides the query used for web augmentation.
	SearchQuery string
	// ExpectJSON asks the model for an application/json response.
	ExpectJSON bool
	// Tier overrides the client's default tier when set.
	Tier ModelTier
}

// CompletionError describes a failed completion.
type CompletionError struct {
	Kind    ErrorKind
	Message string
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// CompletionResult is either generated text or a CompletionError, never both.
type CompletionResult struct {
	Text string
	Err  *CompletionError
}

// Success wraps generated text.
func Success(text string) CompletionResult {
	return CompletionResult{Text: text}
}

// Failure builds a failed result.
func Failure(kind ErrorKind, message string) CompletionResult {
	return CompletionResult{Err: &CompletionError{Kind: kind, Message: message}}
}

// OK reports whether the completion produced text.
func (r CompletionResult) OK() bool {
	return r.Err == nil
}

// String renders the result for plain-text consumers: the text itself, or
// the error sentinel followed by the failure message.
func (r CompletionResult) String() string {
	if r.Err != nil {
		return ErrorSentinel + r.Err.Message
	}
	return r.Text
}

// Completer issues completions. Implementations never return Go errors;
// failures travel inside the result.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) CompletionResult
}

// WebSearcher gathers web context for web-augmented completions. The
// returned text is prepended to the prompt as-is.
type WebSearcher interface {
	Gather(ctx context.Context, query string) (string, error)
}

// CompletionOptions configures a CompletionClient.
type CompletionOptions struct {
	// Tier is the default model tier for requests that do not set one.
	Tier ModelTier
	// Delay is slept before every remote call.
	Delay time.Duration
	// Searcher enables web-augmented requests. Nil disables them.
	Searcher WebSearcher
	Logger   *logger.Logger
}

// CompletionClient adapts a Client to the Completer contract. It keeps no
// per-call state and is safe for concurrent use.
type CompletionClient struct {
	client   Client
	tier     ModelTier
	delay    time.Duration
	searcher WebSearcher
	log      *logger.Logger
}

// NewCompletionClient wraps client.
func NewCompletionClient(client Client, opts CompletionOptions) *CompletionClient {
	if opts.Tier == "" {
		opts.Tier = TierStandard
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &CompletionClient{
		client:   client,
		tier:     opts.Tier,
		delay:    opts.Delay,
		searcher: opts.Searcher,
		log:      opts.Logger,
	}
}

// Complete performs one completion.
func (c *CompletionClient) Complete(ctx context.Context, req CompletionRequest) CompletionResult {
	if strings.TrimSpace(req.Prompt) == "" {
		return Failure(ErrorKindInvalid, "prompt is empty")
	}

	tier := req.Tier
	if tier == "" {
		tier = c.tier
	}

	if err := c.wait(ctx); err != nil {
		return Failure(ErrorKindCanceled, err.Error())
	}

	prompt := req.Prompt
	if req.WebAugmented {
		webContext, failed := c.gather(ctx, req)
		if failed != nil {
			c.log.Warn("web augmentation failed", "kind", failed.Kind, "error", failed.Message)
			return CompletionResult{Err: failed}
		}
		prompt = webContext + "\n\n" + prompt
	}

	start := time.Now()
	var (
		text string
		err  error
	)
	if req.ExpectJSON {
		text, err = c.client.GenerateJSON(ctx, prompt, tier)
	} else {
		text, err = c.client.GenerateContent(ctx, prompt, tier)
	}
	if err != nil {
		kind := Classify(err)
		c.log.Warn("completion failed",
			"model", c.client.GetModel(tier),
			"kind", kind,
			"error", err.Error(),
			"elapsed", time.Since(start).String())
		return Failure(kind, err.Error())
	}

	if strings.TrimSpace(text) == "" {
		return Failure(ErrorKindEmpty, "model returned no text")
	}

	c.log.Debug("completion succeeded",
		"model", c.client.GetModel(tier),
		"web_augmented", req.WebAugmented,
		"chars", len(text),
		"elapsed", time.Since(start).String())
	return Success(text)
}

func (c *CompletionClient) gather(ctx context.Context, req CompletionRequest) (string, *CompletionError) {
	if c.searcher == nil {
		return "", &CompletionError{Kind: ErrorKindWebSearch, Message: "web search is not configured"}
	}

	query := req.SearchQuery
	if query == "" {
		query = deriveQuery(req.Prompt)
	}

	webContext, err := c.searcher.Gather(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			return "", &CompletionError{Kind: ErrorKindCanceled, Message: err.Error()}
		}
		return "", &CompletionError{Kind: ErrorKindWebSearch, Message: err.Error()}
	}
	if strings.TrimSpace(webContext) == "" {
		return "", &CompletionError{Kind: ErrorKindWebSearch, Message: "web search returned no results"}
	}
	return webContext, nil
}

// wait sleeps for the configured delay or until ctx is done.
func (c *CompletionClient) wait(ctx context.Context) error {
	if c.delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(c.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// deriveQuery uses the first non-blank line of the prompt.
func deriveQuery(prompt string) string {
	for _, line := range strings.Split(prompt, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if utf8.RuneCountInString(line) > maxSearchQueryLen {
			line = strings.TrimSpace(string([]rune(line)[:maxSearchQueryLen]))
		}
		return line
	}
	return ""
}

// Classify maps a provider error onto an ErrorKind.
func Classify(err error) ErrorKind {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ErrorKindCanceled
	}

	if errors.Is(err, ErrEmptyResponse) {
		return ErrorKindEmpty
	}

	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return ErrorKindBlocked
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return ErrorKindAuth
		case http.StatusTooManyRequests:
			return ErrorKindQuota
		}
		return ErrorKindTransport
	}

	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.Unauthenticated, codes.PermissionDenied:
			return ErrorKindAuth
		case codes.ResourceExhausted:
			return ErrorKindQuota
		case codes.Canceled, codes.DeadlineExceeded:
			return ErrorKindCanceled
		}
	}

	return ErrorKindTransport
}

// Close releases the underlying client.
func (c *CompletionClient) Close() error {
	return c.client.Close()
}
