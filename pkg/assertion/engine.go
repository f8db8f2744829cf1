// Package assertion exposes the ShouldHave and ShouldNotHave
// entry points. An Engine carries the process-wide defaults and
// the ambient collaborators (logger, metrics, event collector,
// report recorder, diagnostic context); a Subject binds a value
// source to an engine.
//
//	engine := assertion.NewEngine(assertion.WithConfig(cfg))
//	err := assertion.On(engine, browser).ShouldHave(ctx, webdriver.Title("Home"))
package assertion

import (
	"context"
	"errors"

	"digital.vasic.conditions/pkg/config"
	"digital.vasic.conditions/pkg/diagnostic"
	"digital.vasic.conditions/pkg/logging"
	"digital.vasic.conditions/pkg/metrics"
	"digital.vasic.conditions/pkg/monitor"
	"digital.vasic.conditions/pkg/report"
)

// ErrMonitorDisabled is returned by ServeMonitor when no monitor
// address is configured.
var ErrMonitorDisabled = errors.New("monitor address not configured")

// Engine evaluates assertions. It is safe for concurrent use:
// every assertion owns its own polling loop and the engine's
// configuration is read-only after construction.
type Engine struct {
	cfg      config.Config
	logger   logging.Logger
	metrics  metrics.AssertionMetrics
	events   *monitor.EventCollector
	recorder *report.Recorder
	env      diagnostic.Context
	capturer diagnostic.Capturer
	builder  *diagnostic.Builder
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig sets the engine defaults.
func WithConfig(cfg config.Config) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithLogger sets the logger receiving attempt and outcome
// records.
func WithLogger(l logging.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m metrics.AssertionMetrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithEventCollector publishes assertion events to c.
func WithEventCollector(c *monitor.EventCollector) Option {
	return func(e *Engine) {
		e.events = c
	}
}

// WithRecorder stores a report record for every assertion.
func WithRecorder(r *report.Recorder) Option {
	return func(e *Engine) {
		e.recorder = r
	}
}

// WithDiagnosticContext sets the source of screenshot and page
// source references used in failure messages.
func WithDiagnosticContext(c diagnostic.Context) Option {
	return func(e *Engine) {
		e.env = c
	}
}

// WithCapturer saves screenshots and page sources captured by c
// under the configured reports directory. It is ignored when a
// diagnostic context is set explicitly.
func WithCapturer(c diagnostic.Capturer) Option {
	return func(e *Engine) {
		e.capturer = c
	}
}

// NewEngine creates an Engine. Without options it uses
// config.Default, discards logs and metrics and renders failures
// without environment references.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		cfg:     config.Default(),
		logger:  logging.NullLogger{},
		metrics: metrics.NoopMetrics{},
	}
	for _, o := range opts {
		o(e)
	}
	if e.env == nil && e.capturer != nil {
		e.env = diagnostic.NewFileContext(
			e.cfg.ReportsDir, e.capturer,
			diagnostic.WithScreenshots(e.cfg.Screenshots),
			diagnostic.WithPageSource(e.cfg.SavePageSource),
			diagnostic.WithFileLogger(e.logger),
		)
	}
	e.builder = diagnostic.NewBuilder(e.env)
	return e
}

// Config returns the engine defaults.
func (e *Engine) Config() config.Config {
	return e.cfg
}

// Records returns the report records stored so far, or nil when
// no recorder is configured.
func (e *Engine) Records() []*report.Record {
	if e.recorder == nil {
		return nil
	}
	return e.recorder.Records()
}

// ServeMonitor serves live assertion events on the configured
// monitor address until ctx is done. The engine must have an
// event collector.
func (e *Engine) ServeMonitor(ctx context.Context) error {
	if e.cfg.MonitorAddr == "" {
		return ErrMonitorDisabled
	}
	if e.events == nil {
		return errors.New("monitor requires an event collector")
	}
	srv := monitor.NewServer(
		e.cfg.MonitorAddr, e.events, monitor.BuildDashboardData(e.events),
		monitor.WithServerLogger(e.logger),
	)
	return srv.Start(ctx)
}
