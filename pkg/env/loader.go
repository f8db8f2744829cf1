// Package env loads configuration overrides from the process
// environment and optional .env files, and redacts secrets such
// as cookie values and URL credentials before they reach logs
// or failure messages.
package env

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Loader defines the interface for environment variable lookup.
type Loader interface {
	// Load reads variables from a .env file.
	Load(filepath string) error
	// Get retrieves a variable value; the OS environment wins
	// over values loaded from files.
	Get(key string) string
	// GetRequired retrieves a variable or returns an error.
	GetRequired(key string) (string, error)
	// GetWithDefault retrieves a variable with a fallback.
	GetWithDefault(key, defaultValue string) string
	// GetDuration parses a duration variable. Plain integers
	// are read as milliseconds.
	GetDuration(key string) (time.Duration, bool, error)
	// GetBool parses a boolean variable.
	GetBool(key string) (bool, bool, error)
	// Set sets a variable.
	Set(key, value string) error
	// All returns all loaded variables.
	All() map[string]string
}

// DefaultLoader implements Loader with .env file support and an
// optional key prefix.
type DefaultLoader struct {
	mu     sync.RWMutex
	vars   map[string]string
	loaded bool
	prefix string
}

// NewLoader creates a DefaultLoader without a key prefix.
func NewLoader() *DefaultLoader {
	return &DefaultLoader{
		vars: make(map[string]string),
	}
}

// NewPrefixedLoader creates a loader that prepends prefix to
// every key it looks up, e.g. "CONDITIONS_" + "TIMEOUT".
func NewPrefixedLoader(prefix string) *DefaultLoader {
	l := NewLoader()
	l.prefix = prefix
	return l
}

func (l *DefaultLoader) key(k string) string {
	if l.prefix == "" || strings.HasPrefix(k, l.prefix) {
		return k
	}
	return l.prefix + k
}

func (l *DefaultLoader) Load(filepath string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := os.Open(filepath)
	if err != nil {
		return fmt.Errorf("open env file %s: %w", filepath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		// Remove surrounding quotes
		value = strings.Trim(value, `"'`)
		l.vars[key] = value
	}

	l.loaded = true
	return scanner.Err()
}

func (l *DefaultLoader) Get(key string) string {
	key = l.key(key)
	// OS env takes precedence
	if v := os.Getenv(key); v != "" {
		return v
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.vars[key]
}

func (l *DefaultLoader) GetRequired(key string) (string, error) {
	v := l.Get(key)
	if v == "" {
		return "", fmt.Errorf("required environment variable %s is not set", l.key(key))
	}
	return v, nil
}

func (l *DefaultLoader) GetWithDefault(key, defaultValue string) string {
	if v := l.Get(key); v != "" {
		return v
	}
	return defaultValue
}

// GetDuration reads key as a duration ("250ms", "4s") or as a
// plain number of milliseconds. The second result reports
// whether the variable was set.
func (l *DefaultLoader) GetDuration(key string) (time.Duration, bool, error) {
	v := l.Get(key)
	if v == "" {
		return 0, false, nil
	}
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, true, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, true, fmt.Errorf("parse %s: %w", l.key(key), err)
	}
	return d, true, nil
}

// GetBool reads key as a boolean. The second result reports
// whether the variable was set.
func (l *DefaultLoader) GetBool(key string) (bool, bool, error) {
	v := l.Get(key)
	if v == "" {
		return false, false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, true, fmt.Errorf("parse %s: %w", l.key(key), err)
	}
	return b, true, nil
}

func (l *DefaultLoader) Set(key, value string) error {
	key = l.key(key)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.vars[key] = value
	return os.Setenv(key, value)
}

func (l *DefaultLoader) All() map[string]string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	result := make(map[string]string, len(l.vars))
	for k, v := range l.vars {
		result[k] = v
	}
	return result
}
