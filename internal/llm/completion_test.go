package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// fakeClient records prompts and replays a fixed answer.
type fakeClient struct {
	mu      sync.Mutex
	prompts []string
	json    []bool
	tiers   []ModelTier
	text    string
	err     error
}

func (f *fakeClient) record(prompt string, tier ModelTier, asJSON bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	f.tiers = append(f.tiers, tier)
	f.json = append(f.json, asJSON)
}

func (f *fakeClient) GenerateContent(_ context.Context, prompt string, tier ModelTier) (string, error) {
	f.record(prompt, tier, false)
	return f.text, f.err
}

func (f *fakeClient) GenerateJSON(_ context.Context, prompt string, tier ModelTier) (string, error) {
	f.record(prompt, tier, true)
	return f.text, f.err
}

func (f *fakeClient) GetModel(tier ModelTier) string { return DefaultConfig().GetModel(tier) }

func (f *fakeClient) Close() error { return nil }

type fakeSearcher struct {
	query   string
	context string
	err     error
}

func (s *fakeSearcher) Gather(_ context.Context, query string) (string, error) {
	s.query = query
	return s.context, s.err
}

func TestComplete_Success(t *testing.T) {
	client := &fakeClient{text: "A quiet novel about a provincial town."}
	c := NewCompletionClient(client, CompletionOptions{})

	result := c.Complete(context.Background(), CompletionRequest{Prompt: "Summarize Middlemarch."})

	require.True(t, result.OK())
	assert.Equal(t, "A quiet novel about a provincial town.", result.Text)
	assert.Equal(t, result.Text, result.String())
	assert.Equal(t, []ModelTier{TierStandard}, client.tiers)
	assert.Equal(t, []bool{false}, client.json)
}

func TestComplete_ExpectJSONAndTierOverride(t *testing.T) {
	client := &fakeClient{text: "[]"}
	c := NewCompletionClient(client, CompletionOptions{})

	result := c.Complete(context.Background(), CompletionRequest{Prompt: "fix", ExpectJSON: true, Tier: TierLite})

	require.True(t, result.OK())
	assert.Equal(t, []bool{true}, client.json)
	assert.Equal(t, []ModelTier{TierLite}, client.tiers)
}

func TestComplete_FailureBecomesTaggedResult(t *testing.T) {
	client := &fakeClient{err: errors.New("dial tcp: connection refused")}
	c := NewCompletionClient(client, CompletionOptions{})

	result := c.Complete(context.Background(), CompletionRequest{Prompt: "Summarize Emma."})

	require.False(t, result.OK())
	assert.Equal(t, ErrorKindTransport, result.Err.Kind)
	assert.Empty(t, result.Text)
	assert.True(t, strings.HasPrefix(result.String(), ErrorSentinel))
	assert.Contains(t, result.String(), "connection refused")
}

func TestComplete_BlankTextIsEmptyError(t *testing.T) {
	c := NewCompletionClient(&fakeClient{text: "  \n"}, CompletionOptions{})

	result := c.Complete(context.Background(), CompletionRequest{Prompt: "p"})

	require.False(t, result.OK())
	assert.Equal(t, ErrorKindEmpty, result.Err.Kind)
}

func TestComplete_EmptyPromptMakesNoCall(t *testing.T) {
	client := &fakeClient{text: "x"}
	c := NewCompletionClient(client, CompletionOptions{})

	result := c.Complete(context.Background(), CompletionRequest{Prompt: "   "})

	require.False(t, result.OK())
	assert.Equal(t, ErrorKindInvalid, result.Err.Kind)
	assert.Empty(t, client.prompts)
}

func TestComplete_DelayHonorsCancellation(t *testing.T) {
	client := &fakeClient{text: "x"}
	c := NewCompletionClient(client, CompletionOptions{Delay: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := c.Complete(ctx, CompletionRequest{Prompt: "p"})

	require.False(t, result.OK())
	assert.Equal(t, ErrorKindCanceled, result.Err.Kind)
	assert.Empty(t, client.prompts)
}

func TestComplete_DelayIsApplied(t *testing.T) {
	c := NewCompletionClient(&fakeClient{text: "x"}, CompletionOptions{Delay: 20 * time.Millisecond})

	start := time.Now()
	result := c.Complete(context.Background(), CompletionRequest{Prompt: "p"})

	require.True(t, result.OK())
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestComplete_WebAugmentedWithoutSearcher(t *testing.T) {
	client := &fakeClient{text: "x"}
	c := NewCompletionClient(client, CompletionOptions{})

	result := c.Complete(context.Background(), CompletionRequest{Prompt: "p", WebAugmented: true})

	require.False(t, result.OK())
	assert.Equal(t, ErrorKindWebSearch, result.Err.Kind)
	assert.Empty(t, client.prompts)
}

func TestComplete_WebAugmentedPrependsContext(t *testing.T) {
	client := &fakeClient{text: "Readers find the prose dense."}
	searcher := &fakeSearcher{context: "[BEGIN QUOTED WEB RESULTS]\nreview\n[END QUOTED WEB RESULTS]"}
	c := NewCompletionClient(client, CompletionOptions{Searcher: searcher})

	result := c.Complete(context.Background(), CompletionRequest{
		Prompt:       "What do readers say about Ulysses?",
		WebAugmented: true,
		SearchQuery:  "Ulysses reading difficulty",
	})

	require.True(t, result.OK())
	assert.Equal(t, "Ulysses reading difficulty", searcher.query)
	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "QUOTED WEB RESULTS")
	assert.Contains(t, client.prompts[0], "What do readers say about Ulysses?")
}

func TestComplete_WebAugmentedEmptyResults(t *testing.T) {
	searcher := &fakeSearcher{context: " "}
	c := NewCompletionClient(&fakeClient{text: "x"}, CompletionOptions{Searcher: searcher})

	result := c.Complete(context.Background(), CompletionRequest{Prompt: "\n  Dracula opinions\nmore", WebAugmented: true})

	require.False(t, result.OK())
	assert.Equal(t, ErrorKindWebSearch, result.Err.Kind)
	assert.Equal(t, "Dracula opinions", searcher.query)
}

func TestComplete_WebAugmentedSearchError(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("quota")}
	c := NewCompletionClient(&fakeClient{text: "x"}, CompletionOptions{Searcher: searcher})

	result := c.Complete(context.Background(), CompletionRequest{Prompt: "p", WebAugmented: true})

	require.False(t, result.OK())
	assert.Equal(t, ErrorKindWebSearch, result.Err.Kind)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, ""},
		{"canceled", fmt.Errorf("wrap: %w", context.Canceled), ErrorKindCanceled},
		{"deadline", context.DeadlineExceeded, ErrorKindCanceled},
		{"empty response", fmt.Errorf("failed to generate content: %w", ErrEmptyResponse), ErrorKindEmpty},
		{"blocked", fmt.Errorf("failed to generate content: %w", &genai.BlockedError{}), ErrorKindBlocked},
		{"http 401", &googleapi.Error{Code: http.StatusUnauthorized}, ErrorKindAuth},
		{"http 403", fmt.Errorf("x: %w", &googleapi.Error{Code: http.StatusForbidden}), ErrorKindAuth},
		{"http 429", &googleapi.Error{Code: http.StatusTooManyRequests}, ErrorKindQuota},
		{"http 500", &googleapi.Error{Code: http.StatusInternalServerError}, ErrorKindTransport},
		{"grpc unauthenticated", status.Error(codes.Unauthenticated, "bad key"), ErrorKindAuth},
		{"grpc exhausted", status.Error(codes.ResourceExhausted, "slow down"), ErrorKindQuota},
		{"plain", errors.New("EOF"), ErrorKindTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestCompletionResult_String(t *testing.T) {
	assert.Equal(t, "ok", Success("ok").String())
	assert.Equal(t, "❌ Error: boom", Failure(ErrorKindQuota, "boom").String())
	assert.Equal(t, "quota: boom", Failure(ErrorKindQuota, "boom").Err.Error())
}

func TestDeriveQuery(t *testing.T) {
	assert.Equal(t, "Reviews of Emma", deriveQuery("\n  Reviews of Emma  \nmore text"))
	assert.Empty(t, deriveQuery(" \n\t"))

	long := deriveQuery(strings.Repeat("é", maxSearchQueryLen+50))
	assert.True(t, utf8.ValidString(long))
	assert.Equal(t, maxSearchQueryLen, utf8.RuneCountInString(long))
}
