// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// the HTTP server, catalog client, matching weights, and cache settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Intent Model Configuration
	ModelServiceURL string        // External classifier service base URL (empty = keyword fallback)
	ModelTimeout    time.Duration // Timeout for one inference call
	IntentThreshold float64       // Predictions at or below this probability are discarded

	// Catalog Configuration
	CatalogBaseURL    string        // Course catalog API base URL
	CatalogTimeout    time.Duration // Timeout per endpoint attempt
	CatalogMaxRetries int           // Retries per endpoint before moving down the fallback chain

	// Matching weights. Empirical values carried over from the original
	// ranking behavior; tunable, not load-bearing correctness constants.
	TitleWeight       int // Points for a query term found in the course title
	DescriptionWeight int // Points for a query term found in the description
	TechTitleBonus    int // Extra points when a known technology keyword hits the title

	// Cache Configuration
	CacheTTL time.Duration // Per-user catalog cache TTL (default: 300s)
	DataDir  string        // Data directory for the SQLite catalog snapshot

	// Dedup Configuration
	ResponseHistorySize int // Rolling window of remembered responses per (user, tag)

	// Suggestions
	SuggestTopN int // Max BM25 suggestions attached to a "not found" reply (0 = disabled)

	// Rate Limits (Token Bucket Algorithm)
	UserRateLimitBurst        float64 // Maximum burst tokens per user
	UserRateLimitRefillPerSec float64 // Tokens refilled per second

	// Metrics Authentication
	MetricsUsername string // Username for /metrics endpoint Basic Auth
	MetricsPassword string // Password for /metrics endpoint Basic Auth (empty = no auth)

	// Observability
	BetterstackToken    string // Better Stack log shipping token (empty = disabled)
	BetterstackEndpoint string // Better Stack ingesting endpoint override
	SentryToken         string // Better Stack Errors token (empty = Sentry disabled)
	SentryHost          string // Better Stack Errors ingesting host
	Environment         string // Deployment environment (e.g., "production")
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv("PORT", "5001"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 30*time.Second),

		ModelServiceURL: getEnv("MODEL_SERVICE_URL", ""),
		ModelTimeout:    getDurationEnv("MODEL_TIMEOUT", ModelInference),
		IntentThreshold: getFloatEnv("INTENT_THRESHOLD", 0.25),

		CatalogBaseURL:    getEnv("CATALOG_BASE_URL", "http://localhost:5000"),
		CatalogTimeout:    getDurationEnv("CATALOG_TIMEOUT", CatalogRequest),
		CatalogMaxRetries: getIntEnv("CATALOG_MAX_RETRIES", 2),

		TitleWeight:       getIntEnv("MATCH_TITLE_WEIGHT", 10),
		DescriptionWeight: getIntEnv("MATCH_DESCRIPTION_WEIGHT", 5),
		TechTitleBonus:    getIntEnv("MATCH_TECH_TITLE_BONUS", 20),

		CacheTTL: getDurationEnv("CACHE_TTL", 300*time.Second),
		DataDir:  getEnv("DATA_DIR", "./data"),

		ResponseHistorySize: getIntEnv("RESPONSE_HISTORY_SIZE", 5),

		SuggestTopN: getIntEnv("SUGGEST_TOP_N", 3),

		UserRateLimitBurst:        getFloatEnv("USER_RATE_LIMIT_BURST", 15.0),
		UserRateLimitRefillPerSec: getFloatEnv("USER_RATE_LIMIT_REFILL_PER_SEC", 0.5),

		MetricsUsername: getEnv("METRICS_USERNAME", "prometheus"),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),

		BetterstackToken:    getEnv("BETTERSTACK_TOKEN", ""),
		BetterstackEndpoint: getEnv("BETTERSTACK_ENDPOINT", ""),
		SentryToken:         getEnv("SENTRY_TOKEN", ""),
		SentryHost:          getEnv("SENTRY_HOST", "errors.betterstack.com"),
		Environment:         getEnv("ENVIRONMENT", "development"),
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if c.CatalogBaseURL == "" {
		errs = append(errs, errors.New("CATALOG_BASE_URL is required"))
	}
	if c.IntentThreshold < 0 || c.IntentThreshold >= 1 {
		errs = append(errs, fmt.Errorf("INTENT_THRESHOLD must be in [0,1), got %v", c.IntentThreshold))
	}
	if c.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("CACHE_TTL must be positive, got %v", c.CacheTTL))
	}
	if c.CatalogTimeout <= 0 {
		errs = append(errs, fmt.Errorf("CATALOG_TIMEOUT must be positive, got %v", c.CatalogTimeout))
	}
	if c.CatalogMaxRetries < 0 {
		errs = append(errs, fmt.Errorf("CATALOG_MAX_RETRIES cannot be negative, got %d", c.CatalogMaxRetries))
	}
	if c.TitleWeight <= 0 || c.DescriptionWeight <= 0 || c.TechTitleBonus < 0 {
		errs = append(errs, errors.New("matching weights must be positive (tech bonus may be zero)"))
	}
	if c.ResponseHistorySize <= 0 {
		errs = append(errs, fmt.Errorf("RESPONSE_HISTORY_SIZE must be positive, got %d", c.ResponseHistorySize))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("DATA_DIR is required"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// SQLitePath returns the full path to the catalog snapshot database file
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "snapshot.db")
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
