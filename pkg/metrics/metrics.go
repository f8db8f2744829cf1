// Package metrics records assertion outcomes, poll attempts and
// durations.
package metrics

import "time"

// AssertionMetrics defines the interface for recording
// assertion metrics.
type AssertionMetrics interface {
	// RecordAssertion records a finished assertion. Status is
	// "passed" or the failure kind name.
	RecordAssertion(subject, status string, duration time.Duration)
	// RecordAttempts adds the poll attempts of one assertion.
	RecordAttempts(subject string, attempts int)
	// IncrementActive marks an assertion as polling.
	IncrementActive()
	// DecrementActive marks a polling assertion as finished.
	DecrementActive()
}

// NoopMetrics is a no-op implementation of AssertionMetrics
// useful for testing or when metrics collection is disabled.
type NoopMetrics struct{}

func (NoopMetrics) RecordAssertion(_, _ string, _ time.Duration) {}
func (NoopMetrics) RecordAttempts(_ string, _ int)               {}
func (NoopMetrics) IncrementActive()                             {}
func (NoopMetrics) DecrementActive()                             {}
