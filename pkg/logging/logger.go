// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"
)

// ServiceName is attached to every log line.
const ServiceName = "bankbridge"

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	logger := zerolog.New(output).With().
		Timestamp().
		Str("service", ServiceName).
		Logger()

	log.Logger = logger
	zerolog.DefaultContextLogger = &log.Logger

	return logger
}

// ParseLevel validates a textual level.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// parseLevel converts LogLevel to zerolog.Level.
func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Upstream request flow (address, status)
//   - Per-worker completion in the fetcher
//   - Assembled view counts per request
//
// Info: Normal operation events
//   - Completed HTTP requests
//   - Remote fetch summary (succeeded, degraded, failed)
//   - Snapshot loaded
//   - Server startup/shutdown
//
// Warn: Conditions that don't prevent operation
//   - A remote bank source dropped (non-200, transport failure, bad body)
//   - Readiness check failures
//
// Error: Error conditions requiring attention
//   - Remote aggregation interrupted
//   - Handler panics
//   - Snapshot load failures
//   - Configuration errors
//
// Context Fields:
//   - component: emitting subsystem (http, pipeline, upstream-client)
//   - request_id: X-Request-ID of the inbound request
//   - address: remote bank address
//   - outcome: fetch outcome (success, degraded, failed)
//   - status: HTTP status code
//   - duration: elapsed time
//   - error_class: upstream error classification (client, server, unexpected_status, network)
