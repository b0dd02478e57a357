// Package config reads the bankbridge server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/bankbridge/pkg/logging"
	"github.com/Sternrassler/bankbridge/pkg/tracing"
)

// Defaults.
const (
	DefaultPort          = "8080"
	DefaultLogLevel      = "info"
	DefaultUserAgent     = "bankbridge/1.0.0"
	DefaultRemoteTimeout = 10 * time.Second
)

// Config holds the server settings.
type Config struct {
	Port                 string
	LogLevel             string
	LogPretty            bool
	StaticBanksPath      string
	RemoteCatalogPath    string
	RedisURL             string
	SnapshotRedisKey     string
	RemoteTimeout        time.Duration
	RemoteMaxConcurrency int
	UserAgent            string
	TracingExporter      string

	// problems collects values that could not be parsed and fell back to defaults.
	problems []error
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	cfg := Config{
		Port:              getEnv("PORT", DefaultPort),
		LogLevel:          getEnv("LOG_LEVEL", DefaultLogLevel),
		StaticBanksPath:   getEnv("STATIC_BANKS_PATH", ""),
		RemoteCatalogPath: getEnv("REMOTE_CATALOG_PATH", ""),
		RedisURL:          getEnv("REDIS_URL", ""),
		SnapshotRedisKey:  getEnv("SNAPSHOT_REDIS_KEY", ""),
		UserAgent:         getEnv("USER_AGENT", DefaultUserAgent),
		TracingExporter:   getEnv("TRACING_EXPORTER", tracing.ExporterNone),
		RemoteTimeout:     DefaultRemoteTimeout,
	}

	if v := getEnv("LOG_PRETTY", ""); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			cfg.problems = append(cfg.problems, fmt.Errorf("LOG_PRETTY: %w", err))
		}
		cfg.LogPretty = b
	}

	if v := getEnv("REMOTE_TIMEOUT", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			cfg.problems = append(cfg.problems, fmt.Errorf("REMOTE_TIMEOUT: %w", err))
		} else {
			cfg.RemoteTimeout = d
		}
	}

	if v := getEnv("REMOTE_MAX_CONCURRENCY", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			cfg.problems = append(cfg.problems, fmt.Errorf("REMOTE_MAX_CONCURRENCY: %w", err))
		} else {
			cfg.RemoteMaxConcurrency = n
		}
	}

	return cfg
}

// Validate reports unparsable or out-of-range values.
func (c Config) Validate() error {
	errs := append([]error(nil), c.problems...)

	if _, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Errorf("PORT must be numeric, got %q", c.Port))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	if c.RemoteTimeout <= 0 {
		errs = append(errs, fmt.Errorf("REMOTE_TIMEOUT must be positive, got %s", c.RemoteTimeout))
	}
	if c.RemoteMaxConcurrency < 0 {
		errs = append(errs, fmt.Errorf("REMOTE_MAX_CONCURRENCY must be >= 0, got %d", c.RemoteMaxConcurrency))
	}
	if strings.TrimSpace(c.UserAgent) == "" {
		errs = append(errs, errors.New("USER_AGENT is required"))
	}
	if c.SnapshotRedisKey != "" && c.RedisURL == "" {
		errs = append(errs, errors.New("SNAPSHOT_REDIS_KEY requires REDIS_URL"))
	}
	switch strings.ToLower(c.TracingExporter) {
	case tracing.ExporterNone, tracing.ExporterStdout:
	default:
		errs = append(errs, fmt.Errorf("TRACING_EXPORTER: unknown exporter %q", c.TracingExporter))
	}

	return errors.Join(errs...)
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
