// Package research gathers reader opinions about a novel from the web for
// web-augmented completions.
package research

import (
	"strings"
	"time"
)

// Source is one search result kept for the research context.
type Source struct {
	Title    string  `json:"title"`
	URL      string  `json:"url"`
	Snippet  string  `json:"snippet"`
	Excerpt  string  `json:"excerpt,omitempty"`
	Priority float64 `json:"priority"` // 0.0-1.0, higher = more relevant
}

// Options configures a Researcher.
type Options struct {
	// MaxResults is the number of search results requested (1-10).
	MaxResults int
	// FetchPages is how many of the best results are fetched for an excerpt.
	FetchPages int
	// MaxContextChars bounds the text handed to the model.
	MaxContextChars int
	// MaxPerDomain limits how many results one site may contribute.
	MaxPerDomain int
	UseBrowser   bool
	FetchTimeout time.Duration
}

// DefaultOptions returns the settings used by the CLI and server.
func DefaultOptions() Options {
	return Options{
		MaxResults:      8,
		FetchPages:      2,
		MaxContextChars: 8000,
		MaxPerDomain:    2,
		FetchTimeout:    15 * time.Second,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.MaxResults <= 0 || o.MaxResults > 10 {
		o.MaxResults = def.MaxResults
	}
	if o.FetchPages < 0 {
		o.FetchPages = 0
	}
	if o.MaxContextChars <= 0 {
		o.MaxContextChars = def.MaxContextChars
	}
	if o.MaxPerDomain <= 0 {
		o.MaxPerDomain = def.MaxPerDomain
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = def.FetchTimeout
	}
	return o
}

// HighValuePatterns returns URL patterns that indicate pages with reader
// opinions about difficulty.
func HighValuePatterns() map[string]float64 {
	return map[string]float64{
		"goodreads.com":  1.0,
		"review":         0.9,
		"reddit.com":     0.8,
		"storygraph":     0.8,
		"forum":          0.7,
		"difficult":      0.7,
		"reading-level":  0.7,
		"study-guide":    0.6,
		"sparknotes.com": 0.6,
		"wikipedia.org":  0.5,
	}
}

// scoreURL returns the highest matching pattern weight, or 0.3.
func scoreURL(rawURL string) float64 {
	lower := strings.ToLower(rawURL)
	best := 0.3
	for pattern, weight := range HighValuePatterns() {
		if strings.Contains(lower, pattern) && weight > best {
			best = weight
		}
	}
	return best
}
