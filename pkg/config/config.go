package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const (
	ProviderDataForSEO = "dataforseo"
	ProviderMock       = "mock"

	RateLimitMemory   = "memory"
	RateLimitRedis    = "redis"
	RateLimitDisabled = "disabled"

	UnreachableDead     = "dead"
	UnreachableSeparate = "separate"
)

// Config holds the application configuration.
type Config struct {
	ServerPort     string `mapstructure:"SERVER_PORT"`
	LogLevel       string `mapstructure:"LOG_LEVEL"`
	DebugResponses bool   `mapstructure:"DEBUG_RESPONSES"`

	BacklinkProvider   string        `mapstructure:"BACKLINK_PROVIDER"`
	DataForSEOLogin    string        `mapstructure:"DATAFORSEO_LOGIN"`
	DataForSEOPassword string        `mapstructure:"DATAFORSEO_PASSWORD"`
	DataForSEOBaseURL  string        `mapstructure:"DATAFORSEO_BASE_URL"`
	BacklinkLimit      int           `mapstructure:"BACKLINK_LIMIT"`
	ProviderTimeout    time.Duration `mapstructure:"PROVIDER_TIMEOUT"`

	MaxChecks       int `mapstructure:"MAX_CHECKS"`
	MaxResults      int `mapstructure:"MAX_RESULTS"`
	MaxTopReferrers int `mapstructure:"MAX_TOP_REFERRERS"`

	ProbeBatchSize       int           `mapstructure:"PROBE_BATCH_SIZE"`
	ProbeTimeout         time.Duration `mapstructure:"PROBE_TIMEOUT"`
	ProbeUserAgent       string        `mapstructure:"PROBE_USER_AGENT"`
	// ProbeRatePerSecond paces all probes with a burst of max(1, int(rate)); 0 disables pacing.
	ProbeRatePerSecond   float64       `mapstructure:"PROBE_RATE_PER_SECOND"`
	ProbeBrowserFallback bool          `mapstructure:"PROBE_BROWSER_FALLBACK"`
	UnreachablePolicy    string        `mapstructure:"UNREACHABLE_POLICY"`
	ScanDeadline         time.Duration `mapstructure:"SCAN_DEADLINE"`

	RateLimitBackend string `mapstructure:"RATE_LIMIT_BACKEND"`
	RedisAddr        string `mapstructure:"REDIS_ADDR"`
	RedisPassword    string `mapstructure:"REDIS_PASSWORD"`
	RedisDB          int    `mapstructure:"REDIS_DB"`

	PostgresURL string `mapstructure:"POSTGRES_URL"`
}

var defaults = map[string]any{
	"SERVER_PORT":            "8080",
	"LOG_LEVEL":              "info",
	"DEBUG_RESPONSES":        false,
	"BACKLINK_PROVIDER":      ProviderDataForSEO,
	"DATAFORSEO_LOGIN":       "",
	"DATAFORSEO_PASSWORD":    "",
	"DATAFORSEO_BASE_URL":    "https://api.dataforseo.com",
	"BACKLINK_LIMIT":         1000,
	"PROVIDER_TIMEOUT":       "30s",
	"MAX_CHECKS":             100,
	"MAX_RESULTS":            1000,
	"MAX_TOP_REFERRERS":      10,
	"PROBE_BATCH_SIZE":       10,
	"PROBE_TIMEOUT":          "6s",
	"PROBE_USER_AGENT":       "BacklinkReclaimBot/1.0 (+dead-page check)",
	"PROBE_RATE_PER_SECOND":  0.0,
	"PROBE_BROWSER_FALLBACK": false,
	"UNREACHABLE_POLICY":     UnreachableDead,
	"SCAN_DEADLINE":          "55s",
	"RATE_LIMIT_BACKEND":     RateLimitMemory,
	"REDIS_ADDR":             "",
	"REDIS_PASSWORD":         "",
	"REDIS_DB":               0,
	"POSTGRES_URL":           "",
}

// Load reads configuration from an optional .env file and environment variables.
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit env-file path. A missing file is not an error.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Production configuration comes purely from the environment.
	_ = v.ReadInConfig()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects option values the service cannot run with.
func (c *Config) Validate() error {
	switch c.BacklinkProvider {
	case ProviderDataForSEO, ProviderMock:
	default:
		return fmt.Errorf("unknown BACKLINK_PROVIDER %q", c.BacklinkProvider)
	}
	switch c.RateLimitBackend {
	case RateLimitMemory, RateLimitDisabled:
	case RateLimitRedis:
		if c.RedisAddr == "" {
			return errors.New("RATE_LIMIT_BACKEND=redis requires REDIS_ADDR")
		}
	default:
		return fmt.Errorf("unknown RATE_LIMIT_BACKEND %q", c.RateLimitBackend)
	}
	switch c.UnreachablePolicy {
	case UnreachableDead, UnreachableSeparate:
	default:
		return fmt.Errorf("unknown UNREACHABLE_POLICY %q", c.UnreachablePolicy)
	}
	if c.MaxChecks <= 0 || c.MaxResults <= 0 || c.ProbeBatchSize <= 0 || c.BacklinkLimit <= 0 || c.MaxTopReferrers <= 0 {
		return errors.New("MAX_CHECKS, MAX_RESULTS, MAX_TOP_REFERRERS, PROBE_BATCH_SIZE and BACKLINK_LIMIT must be positive")
	}
	if c.ProbeTimeout <= 0 || c.ScanDeadline <= 0 {
		return errors.New("PROBE_TIMEOUT and SCAN_DEADLINE must be positive")
	}
	return nil
}

// HasProviderCredentials reports whether the DataForSEO credential pair is set.
func (c *Config) HasProviderCredentials() bool {
	return c.DataForSEOLogin != "" && c.DataForSEOPassword != ""
}
