// Package config loads the application configuration from an optional
// YAML or JSON file and the environment.
package config

import (
	"strings"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Gemini   GeminiConfig   `yaml:"gemini"   json:"gemini"`
	Search   SearchConfig   `yaml:"search"   json:"search"`
	Analysis AnalysisConfig `yaml:"analysis" json:"analysis"`
	Server   ServerConfig   `yaml:"server"   json:"server"`
	Log      LogConfig      `yaml:"log"      json:"log"`
}

// GeminiConfig holds model access settings.
type GeminiConfig struct {
	APIKey      string  `yaml:"api_key"     json:"api_key"     env:"GEMINI_API_KEY"`
	Model       string  `yaml:"model"       json:"model"       env:"GEMINI_MODEL"       env-default:"gemini-2.5-flash" validate:"required"`
	Temperature float32 `yaml:"temperature" json:"temperature" env:"GEMINI_TEMPERATURE" env-default:"0.2"              validate:"gte=0,lte=2"`
}

// SearchConfig holds Google Programmable Search settings for web research.
type SearchConfig struct {
	APIKey          string        `yaml:"api_key"           json:"api_key"           env:"GOOGLE_SEARCH_API_KEY"`
	EngineID        string        `yaml:"engine_id"         json:"engine_id"         env:"GOOGLE_SEARCH_CX"`
	MaxResults      int           `yaml:"max_results"       json:"max_results"       env:"LEXICON_SEARCH_RESULTS"    env-default:"8"    validate:"min=1,max=10"`
	FetchPages      int           `yaml:"fetch_pages"       json:"fetch_pages"       env:"LEXICON_FETCH_PAGES"       env-default:"2"    validate:"min=0,max=5"`
	MaxContextChars int           `yaml:"max_context_chars" json:"max_context_chars" env:"LEXICON_MAX_CONTEXT_CHARS" env-default:"8000" validate:"min=500,max=50000"`
	UseBrowser      bool          `yaml:"use_browser"       json:"use_browser"       env:"LEXICON_USE_BROWSER"`
	FetchTimeout    time.Duration `yaml:"fetch_timeout"     json:"fetch_timeout"     env:"LEXICON_FETCH_TIMEOUT"     env-default:"15s"`
}

// AnalysisConfig holds pipeline settings. WebResearch defaults to true in
// Load; it has no env-default because cleanenv would also apply it over an
// explicit false read from the file.
type AnalysisConfig struct {
	WebResearch      bool          `yaml:"web_research"      json:"web_research"      env:"LEXICON_WEB_RESEARCH"`
	CallDelay        time.Duration `yaml:"call_delay"        json:"call_delay"        env:"LEXICON_CALL_DELAY"        env-default:"1s"   validate:"gte=0"`
	SummarySentences int           `yaml:"summary_sentences" json:"summary_sentences" env:"LEXICON_SUMMARY_SENTENCES" env-default:"5"    validate:"min=1,max=20"`
	SentenceCount    int           `yaml:"sentence_count"    json:"sentence_count"    env:"LEXICON_SENTENCE_COUNT"    env-default:"10"   validate:"min=1,max=30"`
	VocabularyCount  int           `yaml:"vocabulary_count"  json:"vocabulary_count"  env:"LEXICON_VOCABULARY_COUNT"  env-default:"15"   validate:"min=1,max=50"`
	Elaborate        bool          `yaml:"elaborate"         json:"elaborate"         env:"LEXICON_ELABORATE"`
	Sequential       bool          `yaml:"sequential"        json:"sequential"        env:"LEXICON_SEQUENTIAL"`
	Marker           string        `yaml:"marker"            json:"marker"            env:"LEXICON_MARKER"            env-default:"html" validate:"oneof=html markdown md ansi terminal"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"             json:"port"             env:"PORT"                    env-default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     json:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    json:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"5m"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"30s"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Mode string `yaml:"mode" json:"mode" env:"LOG_MODE" env-default:"dev" validate:"oneof=dev prod"`
}

// HasGeminiKey reports whether a model credential is configured.
func (c *Config) HasGeminiKey() bool {
	return strings.TrimSpace(c.Gemini.APIKey) != ""
}

// HasSearch reports whether web research can run.
func (c *Config) HasSearch() bool {
	return strings.TrimSpace(c.Search.APIKey) != "" && strings.TrimSpace(c.Search.EngineID) != ""
}
