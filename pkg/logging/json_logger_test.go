package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, data []byte) []map[string]any {
	t.Helper()
	var out []map[string]any
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		out = append(out, m)
	}
	return out
}

func TestJSONLogger_WritesEntries(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONWriterLogger(&buf, LevelInfo)

	logger.Info("started", StringField("subject", "webdriver"))
	logger.Warn("slow", IntField("attempt", 3))

	entries := decodeLines(t, buf.Bytes())
	require.Len(t, entries, 2)
	assert.Equal(t, "INFO", entries[0]["level"])
	assert.Equal(t, "started", entries[0]["message"])
	fields := entries[0]["fields"].(map[string]any)
	assert.Equal(t, "webdriver", fields["subject"])
	assert.Equal(t, "WARN", entries[1]["level"])
	assert.NotEmpty(t, entries[1]["timestamp"])
}

func TestJSONLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONWriterLogger(&buf, LevelWarn)

	logger.Debug("d")
	logger.Info("i")
	logger.Warn("w")
	logger.Error("e")

	entries := decodeLines(t, buf.Bytes())
	require.Len(t, entries, 2)
	assert.Equal(t, "w", entries[0]["message"])
	assert.Equal(t, "e", entries[1]["message"])
}

func TestJSONLogger_DebugRequiresVerbose(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONWriterLogger(&buf, LevelDebug)
	logger.Debug("poll")
	assert.Len(t, decodeLines(t, buf.Bytes()), 1)
}

func TestJSONLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	base := NewJSONWriterLogger(&buf, LevelInfo)
	child := base.WithFields(StringField("assertion_id", "a-1"))

	child.Info("checked", StringField("condition", "should have url"))
	base.Info("plain")

	entries := decodeLines(t, buf.Bytes())
	require.Len(t, entries, 2)
	fields := entries[0]["fields"].(map[string]any)
	assert.Equal(t, "a-1", fields["assertion_id"])
	assert.Equal(t, "should have url", fields["condition"])
	_, hasFields := entries[1]["fields"]
	assert.False(t, hasFields)
}

func TestJSONLogger_MarshalFailureIsSilent(t *testing.T) {
	orig := jsonMarshal
	jsonMarshal = func(any) ([]byte, error) {
		return nil, errors.New("marshal")
	}
	defer func() { jsonMarshal = orig }()

	var buf bytes.Buffer
	logger := NewJSONWriterLogger(&buf, LevelInfo)
	logger.Info("lost")
	assert.Empty(t, buf.String())
}

func TestSetupLogging_WritesDedicatedLogs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	logger, err := SetupLogging(dir, true)
	require.NoError(t, err)

	logger.Info("assertion started")
	logger.LogAttempt(AttemptLog{
		AssertionID: "a-1",
		Subject:     "webdriver",
		Condition:   "should have url https://example.com",
		Attempt:     1,
		Actual:      "about:blank",
	})
	logger.LogOutcome(OutcomeLog{
		AssertionID: "a-1",
		Subject:     "webdriver",
		Condition:   "should have url https://example.com",
		Status:      "failed",
		Attempts:    3,
		TimeoutMs:   10,
	})
	require.NoError(t, logger.Close())

	attempts, err := os.ReadFile(filepath.Join(dir, "attempts.log"))
	require.NoError(t, err)
	lines := decodeLines(t, attempts)
	require.Len(t, lines, 1)
	assert.Equal(t, "about:blank", lines[0]["actual"])
	assert.NotEmpty(t, lines[0]["timestamp"])

	outcomes, err := os.ReadFile(filepath.Join(dir, "outcomes.log"))
	require.NoError(t, err)
	lines = decodeLines(t, outcomes)
	require.Len(t, lines, 1)
	assert.Equal(t, "failed", lines[0]["status"])
	assert.Equal(t, float64(10), lines[0]["timeout_ms"])

	main, err := os.ReadFile(filepath.Join(dir, "conditions.log"))
	require.NoError(t, err)
	assert.Contains(t, string(main), "assertion started")
}

func TestJSONLogger_CloseIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewJSONLogger(LoggerConfig{
		OutputPath: filepath.Join(dir, "out.log"),
	})
	require.NoError(t, err)

	child := logger.WithFields(StringField("k", "v"))
	require.NoError(t, logger.Close())
	require.NoError(t, logger.Close())

	child.Info("after close")
	data, err := os.ReadFile(filepath.Join(dir, "out.log"))
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestJSONLogger_NoDedicatedLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONWriterLogger(&buf, LevelInfo)
	logger.LogAttempt(AttemptLog{Attempt: 1})
	logger.LogOutcome(OutcomeLog{Status: "passed"})
	assert.Empty(t, buf.String())
}

func TestNewJSONLogger_BadPath(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	_, err := NewJSONLogger(LoggerConfig{
		OutputPath: filepath.Join(file, "nested", "out.log"),
	})
	assert.Error(t, err)
}
