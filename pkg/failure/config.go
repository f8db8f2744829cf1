package failure

import "fmt"

// ConfigError reports an invalid condition or evaluation
// option. It is returned at construction time and never
// reaches the polling loop.
type ConfigError struct {
	Message string
}

// Configf formats a new ConfigError.
func Configf(format string, args ...any) *ConfigError {
	return &ConfigError{Message: fmt.Sprintf(format, args...)}
}

// Error returns the configuration problem.
func (e *ConfigError) Error() string {
	return e.Message
}

// Is matches ErrConfiguration.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfiguration
}
