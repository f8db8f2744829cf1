package assertion

import (
	"context"
	"time"

	"github.com/google/uuid"

	"digital.vasic.conditions/pkg/condition"
	"digital.vasic.conditions/pkg/diagnostic"
	"digital.vasic.conditions/pkg/failure"
	"digital.vasic.conditions/pkg/logging"
	"digital.vasic.conditions/pkg/report"
	"digital.vasic.conditions/pkg/wait"
)

// Subject binds a value source to an engine.
type Subject[T any] struct {
	engine *Engine
	src    wait.Source[T]
}

// On returns the assertion subject for src.
func On[T any](e *Engine, src wait.Source[T]) *Subject[T] {
	return &Subject[T]{engine: e, src: src}
}

// ShouldHave waits up to the configured timeout for c to hold.
// It returns nil on success, a *failure.ConfigError for invalid
// input, or a *failure.Error describing the failure.
func (s *Subject[T]) ShouldHave(ctx context.Context, c condition.Condition[T]) error {
	return s.check(ctx, c, s.engine.cfg.Timeout, false)
}

// ShouldHaveWithin is ShouldHave with an explicit timeout.
func (s *Subject[T]) ShouldHaveWithin(
	ctx context.Context, c condition.Condition[T], timeout time.Duration,
) error {
	return s.check(ctx, c, timeout, false)
}

// ShouldNotHave waits up to the configured timeout for c to stop
// holding.
func (s *Subject[T]) ShouldNotHave(ctx context.Context, c condition.Condition[T]) error {
	return s.check(ctx, c, s.engine.cfg.Timeout, true)
}

// ShouldNotHaveWithin is ShouldNotHave with an explicit timeout.
func (s *Subject[T]) ShouldNotHaveWithin(
	ctx context.Context, c condition.Condition[T], timeout time.Duration,
) error {
	return s.check(ctx, c, timeout, true)
}

func (s *Subject[T]) check(
	ctx context.Context,
	c condition.Condition[T],
	timeout time.Duration,
	negate bool,
) error {
	if c == nil {
		return failure.Configf("no condition given")
	}
	if negate {
		c = condition.Not(c)
	}

	e := s.engine
	id := uuid.NewString()
	label := s.src.Label()
	desc := c.Description()
	started := time.Now()

	e.metrics.IncrementActive()
	defer e.metrics.DecrementActive()
	if e.events != nil {
		e.events.EmitStarted(id, label, desc)
	}

	res, err := wait.Evaluate(ctx, s.src, c, wait.Options{
		Timeout:      timeout,
		PollInterval: e.cfg.PollInterval,
		Logger:       e.logger,
		AssertionID:  id,
	})
	if failure.KindOf(err) == failure.KindConfiguration {
		return err
	}

	subject := label
	if res.Fetched {
		subject = condition.Subject(c, res.Value, label)
	}
	rec := report.Record{
		ID:        id,
		Subject:   subject,
		Condition: desc,
		Attempts:  res.Attempts,
		Duration:  time.Since(started),
		Timeout:   timeout,
		StartedAt: started,
	}

	if err == nil {
		rec.Status = report.StatusPassed
		e.finish(rec)
		return nil
	}

	fe := e.builder.Build(ctx, explain(ctx, label, c, res, timeout))
	rec.Status = report.StatusFailed
	rec.Subject = fe.Subject
	rec.Kind = fe.Kind.String()
	rec.Message = fe.Message
	rec.Screenshot = fe.Screenshot
	rec.PageSource = fe.PageSource
	e.finish(rec)
	return fe
}

// explain classifies a failed evaluation.
//
// A cancelled context wins over everything else. An evaluation
// whose last fetch failed reports the target as not found with
// the fetch error as cause. Otherwise the condition explains the
// last observed value.
func explain[T any](
	ctx context.Context,
	label string,
	c condition.Condition[T],
	res wait.PollResult[T],
	timeout time.Duration,
) diagnostic.Input {
	in := diagnostic.Input{
		Subject:   label,
		Condition: c.Description(),
		Expected:  c.ExpectedValue(),
		Timeout:   timeout,
		Elapsed:   res.Elapsed,
	}

	switch {
	case res.Reason == wait.ReasonCancelled:
		if res.Fetched {
			in.Subject = condition.Subject(c, res.Value, label)
		}
		in.Kind = failure.KindCancelled
		in.Summary = "Evaluation cancelled: " + in.Subject + " " + in.Condition
		in.Cause = ctx.Err()
	case res.Cause != nil:
		in.Kind = failure.KindTargetNotFound
		in.Summary = "Element not found {" + label + "}"
		in.Details = []string{"Expected: " + in.Condition}
		in.Cause = res.Cause
	default:
		in.Subject = condition.Subject(c, res.Value, label)
		m := condition.Explain(c, res.Value, in.Subject)
		in.Kind = m.Kind
		in.Summary = m.Summary
		in.Details = m.Details
		in.Actual = m.Actual
		if m.Expected != "" {
			in.Expected = m.Expected
		}
	}
	return in
}

// finish publishes the outcome of an assertion.
func (e *Engine) finish(rec report.Record) {
	status := rec.Status
	if rec.Kind != "" {
		status = rec.Kind
	}
	e.metrics.RecordAssertion(rec.Subject, status, rec.Duration)
	e.metrics.RecordAttempts(rec.Subject, rec.Attempts)

	if e.events != nil {
		if rec.Passed() {
			e.events.EmitPassed(rec.ID, rec.Subject, rec.Condition, rec.Attempts, rec.Duration)
		} else {
			e.events.EmitFailed(rec.ID, rec.Subject, rec.Condition,
				rec.Kind, rec.Message, rec.Attempts, rec.Duration)
		}
	}
	if e.recorder != nil {
		e.recorder.Add(rec)
	}

	e.logger.LogOutcome(logging.OutcomeLog{
		AssertionID: rec.ID,
		Subject:     rec.Subject,
		Condition:   rec.Condition,
		Status:      rec.Status,
		Attempts:    rec.Attempts,
		ElapsedMs:   rec.Duration.Milliseconds(),
		TimeoutMs:   rec.Timeout.Milliseconds(),
		Message:     rec.Message,
	})
}
