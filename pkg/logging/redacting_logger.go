package logging

import (
	"strings"

	"digital.vasic.conditions/pkg/env"
)

// RedactingLogger is a decorator that masks secrets before
// passing entries to the inner logger: registered secret
// strings anywhere in messages and values, URL credentials, and
// the values of fields with sensitive names such as "cookie".
type RedactingLogger struct {
	inner   Logger
	secrets []string
}

// NewRedactingLogger creates a logger that redacts the given
// secrets from all messages and string field values.
func NewRedactingLogger(
	inner Logger,
	secrets ...string,
) *RedactingLogger {
	return &RedactingLogger{
		inner:   inner,
		secrets: secrets,
	}
}

func (r *RedactingLogger) redact(msg string) string {
	result := msg
	for _, secret := range r.secrets {
		if secret != "" && len(secret) > 4 {
			result = strings.ReplaceAll(
				result, secret, redactValue(secret),
			)
		}
	}
	return result
}

// redactValue masks all but the first 4 characters.
func redactValue(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-4)
}

func (r *RedactingLogger) redactFields(
	fields []Field,
) []Field {
	result := make([]Field, len(fields))
	for i, f := range fields {
		str, ok := f.Value.(string)
		switch {
		case !ok:
			result[i] = f
		case env.IsSensitiveKey(f.Key):
			result[i] = Field{Key: f.Key, Value: env.RedactAPIKey(str)}
		case strings.Contains(str, "://"):
			result[i] = Field{Key: f.Key, Value: r.redact(env.RedactURL(str))}
		default:
			result[i] = Field{Key: f.Key, Value: r.redact(str)}
		}
	}
	return result
}

// Info logs a redacted informational message.
func (r *RedactingLogger) Info(
	msg string, fields ...Field,
) {
	r.inner.Info(r.redact(msg), r.redactFields(fields)...)
}

// Warn logs a redacted warning message.
func (r *RedactingLogger) Warn(
	msg string, fields ...Field,
) {
	r.inner.Warn(r.redact(msg), r.redactFields(fields)...)
}

// Error logs a redacted error message.
func (r *RedactingLogger) Error(
	msg string, fields ...Field,
) {
	r.inner.Error(r.redact(msg), r.redactFields(fields)...)
}

// Debug logs a redacted debug message.
func (r *RedactingLogger) Debug(
	msg string, fields ...Field,
) {
	r.inner.Debug(r.redact(msg), r.redactFields(fields)...)
}

// WithFields returns a RedactingLogger wrapping a new inner
// logger with the given fields applied.
func (r *RedactingLogger) WithFields(
	fields ...Field,
) Logger {
	return &RedactingLogger{
		inner: r.inner.WithFields(
			r.redactFields(fields)...,
		),
		secrets: r.secrets,
	}
}

// LogAttempt logs a poll attempt with redacted values.
func (r *RedactingLogger) LogAttempt(attempt AttemptLog) {
	attempt.Actual = r.redact(attempt.Actual)
	attempt.Error = r.redact(attempt.Error)
	attempt.Condition = r.redact(attempt.Condition)
	r.inner.LogAttempt(attempt)
}

// LogOutcome logs an outcome with a redacted message.
func (r *RedactingLogger) LogOutcome(outcome OutcomeLog) {
	outcome.Message = r.redact(outcome.Message)
	outcome.Condition = r.redact(outcome.Condition)
	r.inner.LogOutcome(outcome)
}

// Close closes the inner logger.
func (r *RedactingLogger) Close() error {
	return r.inner.Close()
}
