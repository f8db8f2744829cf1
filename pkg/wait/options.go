package wait

import (
	"time"

	"digital.vasic.conditions/pkg/failure"
	"digital.vasic.conditions/pkg/logging"
)

const (
	// DefaultTimeout is used when the caller omits a timeout.
	DefaultTimeout = 4 * time.Second

	// DefaultPollInterval is the delay between attempts.
	DefaultPollInterval = 100 * time.Millisecond

	// MinPollInterval is the smallest delay between attempts.
	MinPollInterval = 10 * time.Millisecond
)

// Options controls a single evaluation.
type Options struct {
	// Timeout bounds the evaluation. Zero performs exactly one
	// fetch and test cycle.
	Timeout time.Duration

	// PollInterval is the delay between attempts. Values below
	// MinPollInterval are raised to it.
	PollInterval time.Duration

	// Logger receives one record per attempt. Nil disables
	// attempt logging.
	Logger logging.Logger

	// AssertionID correlates attempt records.
	AssertionID string

	// OnAttempt, when set, is called after every attempt.
	OnAttempt func(Attempt)
}

// DefaultOptions returns options with the default timeout and
// poll interval.
func DefaultOptions() Options {
	return Options{
		Timeout:      DefaultTimeout,
		PollInterval: DefaultPollInterval,
	}
}

func (o Options) validate() error {
	if o.Timeout < 0 {
		return failure.Configf("negative timeout: %v", o.Timeout)
	}
	if o.PollInterval <= 0 {
		return failure.Configf(
			"poll interval must be positive: %v", o.PollInterval,
		)
	}
	return nil
}

func (o Options) pollInterval() time.Duration {
	if o.PollInterval < MinPollInterval {
		return MinPollInterval
	}
	return o.PollInterval
}
