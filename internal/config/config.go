// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// Marketplace REST backend
	BackendURL     string
	BackendToken   string
	BackendTimeout time.Duration
	ImageBaseURL   string // prefix for relative image paths; defaults to BackendURL

	// List screens
	PageSize       int
	SearchDebounce time.Duration
	ScreenIdleTTL  time.Duration

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// Logging
	LogLevel      string
	LogFile       string // empty disables the rotated file sink
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int

	// Tracing; an empty endpoint disables export.
	OTLPEndpoint   string
	OTelSampleRate float64

	// Requests per minute per client IP on mutating routes.
	RateLimitPerMinute int
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if a value cannot be
// parsed, or if critical values are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		BackendURL:   envOrDefault("BACKEND_API_URL", "http://localhost:4000/api"),
		BackendToken: os.Getenv("BACKEND_API_TOKEN"),
		ImageBaseURL: os.Getenv("IMAGE_BASE_URL"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "hsadmin"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "hsadmin"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		LogLevel: envOrDefault("LOG_LEVEL", "info"),
		LogFile:  os.Getenv("LOG_FILE"),

		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}
	if cfg.ImageBaseURL == "" {
		cfg.ImageBaseURL = cfg.BackendURL
	}

	var err error
	if cfg.BackendTimeout, err = envDuration("BACKEND_TIMEOUT", 20*time.Second); err != nil {
		return nil, err
	}
	if cfg.SearchDebounce, err = envDuration("SEARCH_DEBOUNCE", 500*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.ScreenIdleTTL, err = envDuration("SCREEN_IDLE_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.PageSize, err = envInt("LIST_PAGE_SIZE", 10); err != nil {
		return nil, err
	}
	if cfg.LogMaxSizeMB, err = envInt("LOG_MAX_SIZE_MB", 100); err != nil {
		return nil, err
	}
	if cfg.LogMaxBackups, err = envInt("LOG_MAX_BACKUPS", 5); err != nil {
		return nil, err
	}
	if cfg.LogMaxAgeDays, err = envInt("LOG_MAX_AGE_DAYS", 30); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerMinute, err = envInt("RATE_LIMIT_PER_MINUTE", 120); err != nil {
		return nil, err
	}
	if cfg.OTelSampleRate, err = envFloat("OTEL_SAMPLE_RATE", 1.0); err != nil {
		return nil, err
	}

	if cfg.PageSize < 1 {
		return nil, fmt.Errorf("LIST_PAGE_SIZE must be positive, got %d", cfg.PageSize)
	}
	if cfg.OTelSampleRate < 0 || cfg.OTelSampleRate > 1 {
		return nil, fmt.Errorf("OTEL_SAMPLE_RATE must be between 0 and 1, got %g", cfg.OTelSampleRate)
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if os.Getenv("BACKEND_API_URL") == "" {
			return nil, fmt.Errorf("BACKEND_API_URL must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}
