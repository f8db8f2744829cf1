package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.conditions/pkg/env"
	"digital.vasic.conditions/pkg/failure"
	"digital.vasic.conditions/pkg/logging"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 4*time.Second, cfg.Timeout)
	assert.Equal(t, 100*time.Millisecond, cfg.PollInterval)
	assert.True(t, cfg.Screenshots)
	assert.True(t, cfg.SavePageSource)
	assert.NoError(t, cfg.Validate())
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFile_YAML(t *testing.T) {
	path := writeFile(t, "conditions.yaml", `
timeout: 10s
poll_interval: 250ms
reports_dir: out/reports
screenshots: false
log_level: debug
monitor_addr: ":9090"
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, "out/reports", cfg.ReportsDir)
	assert.False(t, cfg.Screenshots)
	assert.True(t, cfg.SavePageSource, "missing keys keep defaults")
	assert.Equal(t, ":9090", cfg.MonitorAddr)
	assert.Equal(t, logging.LevelDebug, cfg.Level())
}

func TestLoadFile_JSON(t *testing.T) {
	path := writeFile(t, "conditions.json", `{"timeout": "1s", "verbose": true}`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, time.Second, cfg.Timeout)
	assert.True(t, cfg.Verbose)
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")

	path := writeFile(t, "bad.yaml", "timeout: [1, 2")
	_, err = LoadFile(path)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestApplyEnv(t *testing.T) {
	l := env.NewPrefixedLoader(EnvPrefix)
	dotenv := writeFile(t, ".env", `
CONDITIONS_TIMEOUT=10
CONDITIONS_POLL_INTERVAL=20ms
CONDITIONS_REPORTS_DIR=/tmp/reports
CONDITIONS_SCREENSHOTS=false
CONDITIONS_PAGE_SOURCE=false
CONDITIONS_VERBOSE=true
CONDITIONS_LOG_LEVEL=warn
CONDITIONS_MONITOR_ADDR=127.0.0.1:0
`)
	require.NoError(t, l.Load(dotenv))

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(l))

	assert.Equal(t, 10*time.Millisecond, cfg.Timeout)
	assert.Equal(t, 20*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, "/tmp/reports", cfg.ReportsDir)
	assert.False(t, cfg.Screenshots)
	assert.False(t, cfg.SavePageSource)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "127.0.0.1:0", cfg.MonitorAddr)
	assert.Equal(t, logging.LevelDebug, cfg.Level())
}

func TestApplyEnv_ParseErrors(t *testing.T) {
	for _, key := range []string{"TIMEOUT", "POLL_INTERVAL", "SCREENSHOTS", "PAGE_SOURCE", "VERBOSE"} {
		t.Run(key, func(t *testing.T) {
			l := env.NewPrefixedLoader(EnvPrefix)
			t.Setenv(EnvPrefix+key, "not-a-value")

			cfg := Default()
			assert.Error(t, cfg.ApplyEnv(l))
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		msg    string
	}{
		{"negative timeout", func(c *Config) { c.Timeout = -1 }, "negative timeout"},
		{"zero poll", func(c *Config) { c.PollInterval = 0 }, "poll interval must be positive"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "unknown log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.ErrorIs(t, err, failure.ErrConfiguration)
			assert.ErrorContains(t, err, tt.msg)
		})
	}

	cfg := Default()
	cfg.Timeout = 0
	assert.NoError(t, cfg.Validate(), "zero timeout means a single check")
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "c.yaml", "timeout: 2s\n")
	t.Setenv(EnvPrefix+"POLL_INTERVAL", "50ms")

	cfg, err := Load(path, env.NewPrefixedLoader(EnvPrefix))
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, 50*time.Millisecond, cfg.PollInterval)

	cfg, err = Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	t.Setenv(EnvPrefix+"POLL_INTERVAL", "0")
	_, err = Load("", env.NewPrefixedLoader(EnvPrefix))
	assert.ErrorIs(t, err, failure.ErrConfiguration)
}
