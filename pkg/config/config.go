// Package config holds the process-wide defaults of the
// assertion engine. Values come from Default, optionally
// overridden by a YAML file and then by CONDITIONS_* environment
// variables. A Config is read-only once evaluation starts.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"digital.vasic.conditions/pkg/env"
	"digital.vasic.conditions/pkg/failure"
	"digital.vasic.conditions/pkg/logging"
	"digital.vasic.conditions/pkg/wait"
)

// EnvPrefix is prepended to every environment override key.
const EnvPrefix = "CONDITIONS_"

// Config holds engine defaults.
type Config struct {
	// Timeout is used by assertions that do not pass their own.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`

	// PollInterval is the delay between poll attempts.
	PollInterval time.Duration `yaml:"poll_interval" json:"poll_interval"`

	// ReportsDir receives screenshots, page sources and reports.
	ReportsDir string `yaml:"reports_dir" json:"reports_dir"`

	// Screenshots enables screenshot capture on failure.
	Screenshots bool `yaml:"screenshots" json:"screenshots"`

	// SavePageSource enables page source capture on failure.
	SavePageSource bool `yaml:"save_page_source" json:"save_page_source"`

	// LogLevel is the minimum level of free-form log entries.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// Verbose enables per-attempt logging.
	Verbose bool `yaml:"verbose" json:"verbose"`

	// MonitorAddr is the listen address of the live monitor.
	// Empty disables it.
	MonitorAddr string `yaml:"monitor_addr" json:"monitor_addr"`
}

// Default returns the built-in configuration: a 4 second timeout
// polled every 100 milliseconds.
func Default() Config {
	return Config{
		Timeout:        wait.DefaultTimeout,
		PollInterval:   wait.DefaultPollInterval,
		ReportsDir:     "build/reports/tests",
		Screenshots:    true,
		SavePageSource: true,
		LogLevel:       "info",
	}
}

// LoadFile reads a YAML (or JSON) file on top of Default. Keys
// missing from the file keep their default values. Durations
// are written as strings such as "4s" or "250ms".
func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables looked up
// through l. Keys are given without the prefix; use
// env.NewPrefixedLoader(EnvPrefix) for CONDITIONS_TIMEOUT etc.
func (c *Config) ApplyEnv(l env.Loader) error {
	if d, ok, err := l.GetDuration("TIMEOUT"); err != nil {
		return err
	} else if ok {
		c.Timeout = d
	}
	if d, ok, err := l.GetDuration("POLL_INTERVAL"); err != nil {
		return err
	} else if ok {
		c.PollInterval = d
	}
	if v := l.Get("REPORTS_DIR"); v != "" {
		c.ReportsDir = v
	}
	if b, ok, err := l.GetBool("SCREENSHOTS"); err != nil {
		return err
	} else if ok {
		c.Screenshots = b
	}
	if b, ok, err := l.GetBool("PAGE_SOURCE"); err != nil {
		return err
	} else if ok {
		c.SavePageSource = b
	}
	if b, ok, err := l.GetBool("VERBOSE"); err != nil {
		return err
	} else if ok {
		c.Verbose = b
	}
	if v := l.Get("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := l.Get("MONITOR_ADDR"); v != "" {
		c.MonitorAddr = v
	}
	return nil
}

// Validate checks the configuration and returns a
// *failure.ConfigError describing the first problem found.
func (c Config) Validate() error {
	if c.Timeout < 0 {
		return failure.Configf("negative timeout: %v", c.Timeout)
	}
	if c.PollInterval <= 0 {
		return failure.Configf("poll interval must be positive: %v", c.PollInterval)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return failure.Configf("%v", err)
	}
	return nil
}

// Level returns the parsed log level, LevelInfo when invalid.
func (c Config) Level() logging.LogLevel {
	lvl, _ := logging.ParseLevel(c.LogLevel)
	if c.Verbose {
		return logging.LevelDebug
	}
	return lvl
}

// Load builds the effective configuration: defaults, then the
// file at path when path is not empty, then environment
// overrides. The result is validated.
func Load(path string, l env.Loader) (Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = LoadFile(path); err != nil {
			return cfg, err
		}
	}
	if l != nil {
		if err := cfg.ApplyEnv(l); err != nil {
			return cfg, err
		}
	}
	return cfg, cfg.Validate()
}
