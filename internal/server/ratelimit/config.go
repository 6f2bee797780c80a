package ratelimit

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// envConfig mirrors the RATE_LIMIT_* environment variables.
type envConfig struct {
	Enabled         bool          `env:"RATE_LIMIT_ENABLED"          env-default:"true"`
	DefaultLimit    int           `env:"RATE_LIMIT_DEFAULT_LIMIT"    env-default:"600"`
	DefaultWindow   time.Duration `env:"RATE_LIMIT_DEFAULT_WINDOW"   env-default:"1m"`
	AnalyzeLimit    int           `env:"RATE_LIMIT_ANALYZE_LIMIT"    env-default:"20"`
	AnalyzeWindow   time.Duration `env:"RATE_LIMIT_ANALYZE_WINDOW"   env-default:"1h"`
	AnalyzeBurst    int           `env:"RATE_LIMIT_ANALYZE_BURST"    env-default:"3"`
	CleanupInterval time.Duration `env:"RATE_LIMIT_CLEANUP_INTERVAL" env-default:"5m"`
	BucketTTL       time.Duration `env:"RATE_LIMIT_BUCKET_TTL"       env-default:"1h"`
	Whitelist       string        `env:"RATE_LIMIT_WHITELIST"`
	Blacklist       string        `env:"RATE_LIMIT_BLACKLIST"`
}

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() (*Config, error) {
	var env envConfig
	if err := cleanenv.ReadEnv(&env); err != nil {
		return nil, fmt.Errorf("ratelimit: read env: %w", err)
	}

	if !env.Enabled {
		return &Config{Enabled: false}, nil
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    env.DefaultLimit,
		DefaultWindow:   env.DefaultWindow,
		CleanupInterval: env.CleanupInterval,
		BucketTTL:       env.BucketTTL,
		Whitelist:       parseIPList(env.Whitelist),
		Blacklist:       parseIPList(env.Blacklist),
		EndpointConfigs: AnalyzeEndpointConfigs(env.AnalyzeLimit, env.AnalyzeWindow, env.AnalyzeBurst),
	}, nil
}

// AnalyzeEndpointConfigs returns the limits for the endpoints that run the
// pipeline. Every analysis costs several model calls, so they share the
// strictest tier. Reads fall through to the default limit.
func AnalyzeEndpointConfigs(limit int, window time.Duration, burst int) []EndpointConfig {
	return []EndpointConfig{
		{Path: "/analyze", Method: http.MethodPost, Limit: limit, Window: window, Burst: burst},
		{Path: "/analyze/", Method: http.MethodPost, Limit: limit, Window: window, Burst: burst},
	}
}

// DefaultEndpointConfigs returns the endpoint configurations used when
// nothing is set in the environment.
func DefaultEndpointConfigs() []EndpointConfig {
	return AnalyzeEndpointConfigs(20, time.Hour, 3)
}

// parseIPList parses a comma-separated list of IP addresses into a map.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}
	return result
}
