package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// ANSI color codes.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorGray   = "\033[90m"
)

// ConsoleLogger provides colored console output.
type ConsoleLogger struct {
	mu      *sync.Mutex
	output  io.Writer
	verbose bool
	fields  map[string]any
}

// NewConsoleLogger creates a console logger writing to stdout.
// When verbose is true, debug messages and poll attempts are
// emitted.
func NewConsoleLogger(verbose bool) *ConsoleLogger {
	return NewConsoleWriterLogger(os.Stdout, verbose)
}

// NewConsoleWriterLogger creates a console logger writing to w.
func NewConsoleWriterLogger(w io.Writer, verbose bool) *ConsoleLogger {
	return &ConsoleLogger{
		mu:      &sync.Mutex{},
		output:  w,
		verbose: verbose,
		fields:  make(map[string]any),
	}
}

func (c *ConsoleLogger) log(
	level LogLevel, color, msg string, fields ...Field,
) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ts := time.Now().Format("15:04:05")
	levelStr := level.String()

	merged := make(map[string]any, len(c.fields)+len(fields))
	for k, v := range c.fields {
		merged[k] = v
	}
	for _, f := range fields {
		merged[f.Key] = f.Value
	}

	var fieldStr string
	if len(merged) > 0 {
		keys := make([]string, 0, len(merged))
		for k := range merged {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, merged[k]))
		}
		fieldStr = " " + colorGray +
			fmt.Sprintf("{%s}", strings.Join(parts, ", ")) +
			colorReset
	}

	fmt.Fprintf(
		c.output, "%s%s%s [%s%-5s%s] %s%s\n",
		colorGray, ts, colorReset,
		color, levelStr, colorReset,
		msg, fieldStr,
	)
}

// Info logs an informational message.
func (c *ConsoleLogger) Info(msg string, fields ...Field) {
	c.log(LevelInfo, colorBlue, msg, fields...)
}

// Warn logs a warning message.
func (c *ConsoleLogger) Warn(msg string, fields ...Field) {
	c.log(LevelWarn, colorYellow, msg, fields...)
}

// Error logs an error message.
func (c *ConsoleLogger) Error(msg string, fields ...Field) {
	c.log(LevelError, colorRed, msg, fields...)
}

// Debug logs a debug message only if verbose is enabled.
func (c *ConsoleLogger) Debug(msg string, fields ...Field) {
	if c.verbose {
		c.log(LevelDebug, colorGray, msg, fields...)
	}
}

// WithFields returns a new Logger with additional default
// fields.
func (c *ConsoleLogger) WithFields(
	fields ...Field,
) Logger {
	newFields := make(map[string]any)
	for k, v := range c.fields {
		newFields[k] = v
	}
	for _, f := range fields {
		newFields[f.Key] = f.Value
	}
	return &ConsoleLogger{
		mu:      c.mu,
		output:  c.output,
		verbose: c.verbose,
		fields:  newFields,
	}
}

// LogAttempt prints a poll attempt when verbose is enabled.
func (c *ConsoleLogger) LogAttempt(attempt AttemptLog) {
	if !c.verbose {
		return
	}
	fields := []Field{
		{Key: "assertion_id", Value: attempt.AssertionID},
		{Key: "attempt", Value: attempt.Attempt},
		{Key: "matched", Value: attempt.Matched},
		{Key: "elapsed_ms", Value: attempt.ElapsedMs},
	}
	if attempt.Error != "" {
		fields = append(fields, Field{Key: "error", Value: attempt.Error})
	}
	c.log(LevelDebug, colorGray,
		attempt.Subject+" "+attempt.Condition, fields...)
}

// LogOutcome prints the outcome in green or red.
func (c *ConsoleLogger) LogOutcome(outcome OutcomeLog) {
	fields := []Field{
		{Key: "assertion_id", Value: outcome.AssertionID},
		{Key: "status", Value: outcome.Status},
		{Key: "attempts", Value: outcome.Attempts},
		{Key: "elapsed_ms", Value: outcome.ElapsedMs},
	}
	msg := outcome.Subject + " " + outcome.Condition
	if outcome.Status == "passed" {
		c.log(LevelInfo, colorGreen, msg, fields...)
		return
	}
	c.log(LevelError, colorRed, msg, fields...)
}

// Close is a no-op for ConsoleLogger.
func (c *ConsoleLogger) Close() error {
	return nil
}
