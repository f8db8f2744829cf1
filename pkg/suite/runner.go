package suite

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"digital.vasic.conditions/pkg/assertion"
	"digital.vasic.conditions/pkg/failure"
	"digital.vasic.conditions/pkg/logging"
)

// Status is the outcome of a check.
type Status string

// Check outcomes.
const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Result is the outcome of one check.
type Result struct {
	ID       ID            `json:"id"`
	Name     string        `json:"name"`
	Status   Status        `json:"status"`
	Kind     string        `json:"kind,omitempty"`
	Err      error         `json:"-"`
	Duration time.Duration `json:"duration"`
}

// Report is the outcome of a suite run, in dependency order.
type Report struct {
	Results []*Result `json:"results"`
}

func (r *Report) count(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

// Passed returns the number of passed checks.
func (r *Report) Passed() int { return r.count(StatusPassed) }

// Failed returns the number of failed checks.
func (r *Report) Failed() int { return r.count(StatusFailed) }

// Skipped returns the number of skipped checks.
func (r *Report) Skipped() int { return r.count(StatusSkipped) }

// OK reports whether every check passed.
func (r *Report) OK() bool {
	return r.Passed() == len(r.Results)
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithConcurrency limits the number of checks evaluated at once.
// Values below one mean one.
func WithConcurrency(n int) RunnerOption {
	return func(r *Runner) {
		r.concurrency = n
	}
}

// WithLogger sets the logger receiving one line per check.
func WithLogger(l logging.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = l
	}
}

// Runner evaluates suites with an assertion engine.
type Runner struct {
	engine      *assertion.Engine
	logger      logging.Logger
	concurrency int
}

// NewRunner creates a Runner evaluating checks one at a time.
func NewRunner(engine *assertion.Engine, opts ...RunnerOption) *Runner {
	r := &Runner{
		engine:      engine,
		logger:      logging.NullLogger{},
		concurrency: 1,
	}
	for _, o := range opts {
		o(r)
	}
	if r.concurrency < 1 {
		r.concurrency = 1
	}
	return r
}

// Run evaluates every check of s against t. Independent checks
// run concurrently up to the configured limit; a check is skipped
// when one of its dependencies did not pass. The error reports
// an unordered suite or a cancelled context; check failures are
// in the report.
func (r *Runner) Run(ctx context.Context, s *Suite, t Targets) (*Report, error) {
	ordered, err := s.Order()
	if err != nil {
		return nil, fmt.Errorf("order checks: %w", err)
	}

	checks := make(map[ID]check, len(ordered))
	for _, d := range ordered {
		c, err := d.compile()
		if err != nil {
			return nil, fmt.Errorf("check %s: %w", d.ID, err)
		}
		checks[d.ID] = c
	}

	results := make(map[ID]*Result, len(ordered))
	for _, level := range levels(ordered) {
		for i, res := range r.runLevel(ctx, level, checks, results, t) {
			results[level[i].ID] = res
		}
	}

	report := &Report{Results: make([]*Result, 0, len(ordered))}
	for _, d := range ordered {
		report.Results = append(report.Results, results[d.ID])
	}
	r.logger.Info("suite finished",
		logging.IntField("passed", report.Passed()),
		logging.IntField("failed", report.Failed()),
		logging.IntField("skipped", report.Skipped()),
	)
	return report, ctx.Err()
}

// runLevel evaluates mutually independent checks with a semaphore
// of r.concurrency slots. Results keep the order of defs.
func (r *Runner) runLevel(
	ctx context.Context,
	defs []*Definition,
	checks map[ID]check,
	done map[ID]*Result,
	t Targets,
) []*Result {
	out := make([]*Result, len(defs))
	sem := make(chan struct{}, r.concurrency)
	var wg sync.WaitGroup

	for i, d := range defs {
		if blocked := failedDependencies(d, done); len(blocked) > 0 {
			out[i] = &Result{
				ID:     d.ID,
				Name:   d.Name,
				Status: StatusSkipped,
				Err: fmt.Errorf("dependencies did not pass: %s",
					strings.Join(blocked, ", ")),
			}
			r.logger.Warn("check skipped",
				logging.StringField("check", string(d.ID)),
				logging.ErrorField(out[i].Err))
			continue
		}

		wg.Add(1)
		go func(idx int, d *Definition) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				out[idx] = &Result{ID: d.ID, Name: d.Name, Status: StatusFailed,
					Kind: failure.KindCancelled.String(), Err: ctx.Err()}
				return
			}
			out[idx] = r.execute(ctx, d, checks[d.ID], t)
		}(i, d)
	}
	wg.Wait()
	return out
}

func (r *Runner) execute(ctx context.Context, d *Definition, c check, t Targets) *Result {
	start := time.Now()
	err := c(ctx, r.engine, t)
	res := &Result{
		ID:       d.ID,
		Name:     d.Name,
		Status:   StatusPassed,
		Err:      err,
		Duration: time.Since(start),
	}
	if err == nil {
		r.logger.Info("check passed",
			logging.StringField("check", string(d.ID)),
			logging.DurationField("duration", res.Duration))
		return res
	}

	res.Status = StatusFailed
	if k := failure.KindOf(err); k != 0 {
		res.Kind = k.String()
	}
	r.logger.Error("check failed",
		logging.StringField("check", string(d.ID)),
		logging.StringField("kind", res.Kind),
		logging.ErrorField(err))
	return res
}

func failedDependencies(d *Definition, done map[ID]*Result) []string {
	var blocked []string
	for _, dep := range d.Dependencies {
		if res, ok := done[dep]; !ok || res.Status != StatusPassed {
			blocked = append(blocked, string(dep))
		}
	}
	return blocked
}
