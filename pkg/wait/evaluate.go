package wait

import (
	"context"
	"errors"
	"fmt"
	"time"

	"digital.vasic.conditions/pkg/condition"
	"digital.vasic.conditions/pkg/failure"
	"digital.vasic.conditions/pkg/logging"
)

// Reason tells why an evaluation stopped.
type Reason int

const (
	// ReasonMatched means the condition held.
	ReasonMatched Reason = iota + 1
	// ReasonTimeout means the deadline passed without a match.
	ReasonTimeout
	// ReasonFetchFailed means the source failed with a
	// structural lookup error or a non-lookup error.
	ReasonFetchFailed
	// ReasonCancelled means the context was done.
	ReasonCancelled
)

// String returns the reason name.
func (r Reason) String() string {
	switch r {
	case ReasonMatched:
		return "matched"
	case ReasonTimeout:
		return "timeout"
	case ReasonFetchFailed:
		return "fetch_failed"
	case ReasonCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ErrTimeout is returned when the condition did not hold before
// the deadline.
var ErrTimeout = errors.New("condition not satisfied before timeout")

// Attempt describes one fetch and test cycle.
type Attempt struct {
	Number  int
	Matched bool
	Err     error
	Elapsed time.Duration
}

// PollResult is the state left by an evaluation.
type PollResult[T any] struct {
	// Value is the last successfully fetched snapshot.
	Value T

	// Fetched reports whether any fetch succeeded.
	Fetched bool

	// Matched is the last test result.
	Matched bool

	// Attempts counts fetch and test cycles.
	Attempts int

	// Elapsed is the wall-clock time since loop entry.
	Elapsed time.Duration

	// Cause is the fetch error of the last attempt, nil when the
	// last fetch succeeded.
	Cause error

	// Reason tells why the loop stopped.
	Reason Reason
}

// Evaluate polls src until cond holds.
//
// It returns a nil error on a match. Otherwise the error is a
// *failure.ConfigError for invalid options, ErrTimeout when the
// deadline passed, the fetch error wrapped when the source failed
// for good, or an error matching failure.ErrCancelled and the
// context error when ctx is done. The result is always filled in
// so callers can build diagnostics from it.
func Evaluate[T any](
	ctx context.Context,
	src Source[T],
	cond condition.Condition[T],
	opts Options,
) (PollResult[T], error) {
	var res PollResult[T]
	if err := opts.validate(); err != nil {
		return res, err
	}
	poll := opts.pollInterval()

	start := time.Now()
	deadline := start.Add(opts.Timeout)

	for {
		if err := ctx.Err(); err != nil {
			return cancelled(res, start, err)
		}

		res.Attempts++
		v, err := src.Fetch(ctx)
		res.Elapsed = time.Since(start)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return cancelled(res, start, ctxErr)
			}
			res.Cause = err
			res.Matched = false
			record(opts, src, cond, res, "", err)
			if !retryable(err) {
				res.Reason = ReasonFetchFailed
				return res, fmt.Errorf("fetch %s: %w", src.Label(), err)
			}
		} else {
			res.Value = v
			res.Fetched = true
			res.Cause = nil
			res.Matched = cond.Test(v)
			record(opts, src, cond, res, cond.ActualValue(v), nil)
			if res.Matched {
				res.Reason = ReasonMatched
				return res, nil
			}
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			res.Elapsed = time.Since(start)
			res.Reason = ReasonTimeout
			return res, ErrTimeout
		}

		if err := sleep(ctx, min(poll, remaining)); err != nil {
			return cancelled(res, start, err)
		}
	}
}

func retryable(err error) bool {
	le, ok := failure.AsLookup(err)
	return ok && !le.Structural
}

func cancelled[T any](
	res PollResult[T], start time.Time, err error,
) (PollResult[T], error) {
	res.Elapsed = time.Since(start)
	res.Reason = ReasonCancelled
	return res, fmt.Errorf("%w: %w", failure.ErrCancelled, err)
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// record reports an attempt to the logger and the attempt hook.
func record[T any](
	opts Options,
	src Source[T],
	cond condition.Condition[T],
	res PollResult[T],
	actual string,
	err error,
) {
	if opts.OnAttempt != nil {
		opts.OnAttempt(Attempt{
			Number:  res.Attempts,
			Matched: res.Matched,
			Err:     err,
			Elapsed: res.Elapsed,
		})
	}
	if opts.Logger == nil {
		return
	}
	entry := logging.AttemptLog{
		AssertionID: opts.AssertionID,
		Subject:     src.Label(),
		Condition:   cond.Description(),
		Attempt:     res.Attempts,
		Matched:     res.Matched,
		Actual:      actual,
		ElapsedMs:   res.Elapsed.Milliseconds(),
	}
	if err != nil {
		entry.Error = err.Error()
	}
	opts.Logger.LogAttempt(entry)
}
