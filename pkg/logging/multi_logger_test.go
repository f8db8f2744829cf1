package logging

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMultiLogger_FansOut(t *testing.T) {
	var a, b bytes.Buffer
	logger := NewMultiLogger(
		NewJSONWriterLogger(&a, LevelInfo),
		NewConsoleWriterLogger(&b, false),
	)

	logger.Info("hello")
	logger.Warn("careful")
	logger.Error("broken")
	logger.Debug("hidden")

	for _, out := range []string{a.String(), b.String()} {
		assert.Contains(t, out, "hello")
		assert.Contains(t, out, "careful")
		assert.Contains(t, out, "broken")
		assert.NotContains(t, out, "hidden")
	}
}

func TestMultiLogger_WithFields(t *testing.T) {
	var a, b bytes.Buffer
	logger := NewMultiLogger(
		NewJSONWriterLogger(&a, LevelInfo),
		NewConsoleWriterLogger(&b, false),
	).WithFields(StringField("assertion_id", "x-1"))

	logger.Info("msg")
	assert.Contains(t, a.String(), `"assertion_id":"x-1"`)
	assert.Contains(t, b.String(), "assertion_id=x-1")
}

func TestMultiLogger_Records(t *testing.T) {
	first := new(mockLogger)
	second := new(mockLogger)
	attempt := AttemptLog{Attempt: 1}
	outcome := OutcomeLog{Status: "passed"}
	for _, m := range []*mockLogger{first, second} {
		m.On("LogAttempt", attempt).Once()
		m.On("LogOutcome", outcome).Once()
	}

	logger := NewMultiLogger(first, second)
	logger.LogAttempt(attempt)
	logger.LogOutcome(outcome)

	first.AssertExpectations(t)
	second.AssertExpectations(t)
}

func TestMultiLogger_CloseReturnsLastError(t *testing.T) {
	first := new(mockLogger)
	second := new(mockLogger)
	first.On("Close").Return(errors.New("first"))
	second.On("Close").Return(nil)

	err := NewMultiLogger(first, second).Close()
	assert.EqualError(t, err, "first")
	second.AssertCalled(t, "Close")
}
