package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// jsonMarshal is a variable for dependency injection in tests.
var jsonMarshal = json.Marshal

// LogEntry represents a single JSON log entry.
type LogEntry struct {
	Timestamp string         `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// LoggerConfig configures the JSONLogger.
type LoggerConfig struct {
	OutputPath string
	AttemptLog string
	OutcomeLog string
	Level      LogLevel
	Verbose    bool
	Fields     map[string]any
}

// JSONLogger implements Logger with JSON Lines output.
type JSONLogger struct {
	mu         *sync.Mutex
	output     io.Writer
	attemptLog io.Writer
	outcomeLog io.Writer
	level      LogLevel
	fields     map[string]any
	verbose    bool
	closed     *bool
}

// NewJSONLogger creates a new JSON logger. If OutputPath is
// empty, logs are written to stdout.
func NewJSONLogger(config LoggerConfig) (*JSONLogger, error) {
	closed := false
	logger := &JSONLogger{
		mu:      &sync.Mutex{},
		level:   config.Level,
		verbose: config.Verbose,
		fields:  config.Fields,
		closed:  &closed,
	}

	if logger.fields == nil {
		logger.fields = make(map[string]any)
	}

	if config.OutputPath != "" {
		file, err := openAppend(config.OutputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		logger.output = file
	} else {
		logger.output = os.Stdout
	}

	if config.AttemptLog != "" {
		file, err := openAppend(config.AttemptLog)
		if err != nil {
			return nil, fmt.Errorf("failed to open attempt log: %w", err)
		}
		logger.attemptLog = file
	}

	if config.OutcomeLog != "" {
		file, err := openAppend(config.OutcomeLog)
		if err != nil {
			return nil, fmt.Errorf("failed to open outcome log: %w", err)
		}
		logger.outcomeLog = file
	}

	return logger, nil
}

// NewJSONWriterLogger creates a JSON logger writing entries to
// w. It is mostly useful in tests.
func NewJSONWriterLogger(w io.Writer, level LogLevel) *JSONLogger {
	closed := false
	return &JSONLogger{
		mu:      &sync.Mutex{},
		output:  w,
		level:   level,
		verbose: level == LevelDebug,
		fields:  make(map[string]any),
		closed:  &closed,
	}
}

func openAppend(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

func (l *JSONLogger) log(
	level LogLevel, msg string, fields ...Field,
) {
	if level < l.level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if *l.closed {
		return
	}

	entry := LogEntry{
		Timestamp: time.Now().Format(time.RFC3339Nano),
		Level:     level.String(),
		Message:   msg,
		Fields:    make(map[string]any),
	}

	for k, v := range l.fields {
		entry.Fields[k] = v
	}
	for _, f := range fields {
		entry.Fields[f.Key] = f.Value
	}

	data, err := jsonMarshal(entry)
	if err != nil {
		return
	}

	fmt.Fprintln(l.output, string(data))
}

// Info logs an informational message.
func (l *JSONLogger) Info(msg string, fields ...Field) {
	l.log(LevelInfo, msg, fields...)
}

// Warn logs a warning message.
func (l *JSONLogger) Warn(msg string, fields ...Field) {
	l.log(LevelWarn, msg, fields...)
}

// Error logs an error message.
func (l *JSONLogger) Error(msg string, fields ...Field) {
	l.log(LevelError, msg, fields...)
}

// Debug logs a debug message only if verbose is enabled.
func (l *JSONLogger) Debug(msg string, fields ...Field) {
	if l.verbose {
		l.log(LevelDebug, msg, fields...)
	}
}

// WithFields returns a new Logger with additional default
// fields. The returned logger shares writers with its parent.
func (l *JSONLogger) WithFields(fields ...Field) Logger {
	newFields := make(map[string]any)
	for k, v := range l.fields {
		newFields[k] = v
	}
	for _, f := range fields {
		newFields[f.Key] = f.Value
	}

	return &JSONLogger{
		mu:         l.mu,
		output:     l.output,
		attemptLog: l.attemptLog,
		outcomeLog: l.outcomeLog,
		level:      l.level,
		verbose:    l.verbose,
		fields:     newFields,
		closed:     l.closed,
	}
}

func (l *JSONLogger) writeRecord(w io.Writer, record any) {
	if w == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if *l.closed {
		return
	}

	data, err := jsonMarshal(record)
	if err != nil {
		return
	}

	fmt.Fprintln(w, string(data))
}

// LogAttempt writes a poll attempt to the dedicated attempt
// log, if configured.
func (l *JSONLogger) LogAttempt(attempt AttemptLog) {
	if attempt.Timestamp == "" {
		attempt.Timestamp = time.Now().Format(time.RFC3339Nano)
	}
	l.writeRecord(l.attemptLog, attempt)
}

// LogOutcome writes an assertion outcome to the dedicated
// outcome log, if configured.
func (l *JSONLogger) LogOutcome(outcome OutcomeLog) {
	if outcome.Timestamp == "" {
		outcome.Timestamp = time.Now().Format(time.RFC3339Nano)
	}
	l.writeRecord(l.outcomeLog, outcome)
}

// Close flushes and closes all underlying writers.
func (l *JSONLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if *l.closed {
		return nil
	}
	*l.closed = true

	var errs []error

	if closer, ok := l.output.(io.Closer); ok &&
		l.output != os.Stdout {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if closer, ok := l.attemptLog.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if closer, ok := l.outcomeLog.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// SetupLogging creates a JSON logger writing into logsDir:
// conditions.log for entries, attempts.log and outcomes.log for
// the dedicated records.
func SetupLogging(
	logsDir string,
	verbose bool,
) (*JSONLogger, error) {
	config := LoggerConfig{
		OutputPath: filepath.Join(logsDir, "conditions.log"),
		AttemptLog: filepath.Join(logsDir, "attempts.log"),
		OutcomeLog: filepath.Join(logsDir, "outcomes.log"),
		Level:      LevelInfo,
		Verbose:    verbose,
	}

	if verbose {
		config.Level = LevelDebug
	}

	return NewJSONLogger(config)
}
