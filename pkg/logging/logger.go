// Package logging provides structured logging for condition
// evaluation with JSON, console, and multi-destination output.
// Besides free-form entries, loggers accept one record per poll
// attempt and one per terminal outcome.
package logging

import (
	"fmt"
	"strings"
)

// Logger defines the interface for structured logging.
type Logger interface {
	// Info logs an informational message.
	Info(msg string, fields ...Field)

	// Warn logs a warning message.
	Warn(msg string, fields ...Field)

	// Error logs an error message.
	Error(msg string, fields ...Field)

	// Debug logs a debug-level message.
	Debug(msg string, fields ...Field)

	// WithFields returns a Logger with additional default
	// fields attached to every subsequent log entry.
	WithFields(fields ...Field) Logger

	// LogAttempt records a single poll attempt.
	LogAttempt(attempt AttemptLog)

	// LogOutcome records the terminal outcome of an assertion.
	LogOutcome(outcome OutcomeLog)

	// Close flushes any buffers and releases resources.
	Close() error
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value any
}

// AttemptLog captures one fetch-and-test cycle of the polling
// engine.
type AttemptLog struct {
	Timestamp   string `json:"timestamp"`
	AssertionID string `json:"assertion_id"`
	Subject     string `json:"subject"`
	Condition   string `json:"condition"`
	Attempt     int    `json:"attempt"`
	Matched     bool   `json:"matched"`
	Actual      string `json:"actual,omitempty"`
	Error       string `json:"error,omitempty"`
	ElapsedMs   int64  `json:"elapsed_ms"`
}

// OutcomeLog captures the terminal result of an assertion.
type OutcomeLog struct {
	Timestamp   string `json:"timestamp"`
	AssertionID string `json:"assertion_id"`
	Subject     string `json:"subject"`
	Condition   string `json:"condition"`
	Status      string `json:"status"`
	Attempts    int    `json:"attempts"`
	ElapsedMs   int64  `json:"elapsed_ms"`
	TimeoutMs   int64  `json:"timeout_ms"`
	Message     string `json:"message,omitempty"`
}

// LogLevel represents logging severity levels.
type LogLevel int

const (
	// LevelDebug is the most verbose level.
	LevelDebug LogLevel = iota
	// LevelInfo is the default level.
	LevelInfo
	// LevelWarn indicates potential issues.
	LevelWarn
	// LevelError indicates failures.
	LevelError
)

// String returns the string representation of a log level.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a level name such as "debug" or "WARN".
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level: %q", s)
	}
}
