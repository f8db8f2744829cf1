// Command conditions runs check files against a page: a static
// HTML file, a page served over HTTP, or a page opened in Chrome.
//
//	conditions -checks checks/ -url https://app.example.com -page /inbox
//	conditions -checks inbox.yaml -file build/inbox.html
//	conditions -checks inbox.yaml -url http://localhost:8080 -chrome
//
// The exit status is 0 when every check passed, 1 when a check
// failed or was skipped, and 2 on usage or setup errors.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"digital.vasic.conditions/pkg/assertion"
	"digital.vasic.conditions/pkg/chrome"
	"digital.vasic.conditions/pkg/config"
	"digital.vasic.conditions/pkg/env"
	"digital.vasic.conditions/pkg/htmldoc"
	"digital.vasic.conditions/pkg/httpclient"
	"digital.vasic.conditions/pkg/logging"
	"digital.vasic.conditions/pkg/metrics"
	"digital.vasic.conditions/pkg/monitor"
	"digital.vasic.conditions/pkg/report"
	"digital.vasic.conditions/pkg/suite"
	"digital.vasic.conditions/pkg/wait"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

type options struct {
	configPath  string
	envFile     string
	checks      string
	file        string
	baseURL     string
	page        string
	useChrome   bool
	headless    bool
	concurrency int
	verbose     bool
	logDir      string
	saveReport  bool
	monitorAddr string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("conditions", flag.ContinueOnError)
	fs.SetOutput(stderr)

	o := &options{}
	fs.StringVar(&o.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&o.envFile, "env", "", ".env file with CONDITIONS_* overrides")
	fs.StringVar(&o.checks, "checks", "", "check file or directory of check files (required)")
	fs.StringVar(&o.file, "file", "", "static HTML file to check")
	fs.StringVar(&o.baseURL, "url", "", "base URL of the application to check")
	fs.StringVar(&o.page, "page", "/", "page path, relative to -url")
	fs.BoolVar(&o.useChrome, "chrome", false, "open the page in Chrome instead of fetching it over HTTP")
	fs.BoolVar(&o.headless, "headless", true, "run Chrome headless")
	fs.IntVar(&o.concurrency, "concurrency", 1, "number of checks evaluated at once")
	fs.BoolVar(&o.verbose, "verbose", false, "log every poll attempt")
	fs.StringVar(&o.logDir, "log-dir", "", "directory for JSON logs")
	fs.BoolVar(&o.saveReport, "report", false, "write summaries and history into the reports directory")
	fs.StringVar(&o.monitorAddr, "monitor", "", "serve live assertion events on this address")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	switch {
	case o.checks == "":
		return nil, errors.New("-checks is required")
	case o.file == "" && o.baseURL == "":
		return nil, errors.New("one of -file or -url is required")
	case o.file != "" && o.baseURL != "":
		return nil, errors.New("-file and -url are mutually exclusive")
	case o.useChrome && o.baseURL == "":
		return nil, errors.New("-chrome requires -url")
	}
	return o, nil
}

func loadConfig(o *options) (config.Config, error) {
	loader := env.NewPrefixedLoader(config.EnvPrefix)
	if o.envFile != "" {
		if err := loader.Load(o.envFile); err != nil {
			return config.Config{}, err
		}
	}
	cfg, err := config.Load(o.configPath, loader)
	if err != nil {
		return cfg, err
	}
	if o.verbose {
		cfg.Verbose = true
	}
	if o.monitorAddr != "" {
		cfg.MonitorAddr = o.monitorAddr
	}
	return cfg, nil
}

func newLogger(cfg config.Config, o *options, stderr io.Writer) (logging.Logger, error) {
	var inner logging.Logger = logging.NewConsoleWriterLogger(stderr, cfg.Verbose)
	if o.logDir != "" {
		jl, err := logging.SetupLogging(o.logDir, cfg.Verbose)
		if err != nil {
			return nil, fmt.Errorf("setup logging: %w", err)
		}
		inner = logging.NewMultiLogger(inner, jl)
	}
	return logging.NewRedactingLogger(inner), nil
}

func loadSuite(path string) (*suite.Suite, error) {
	s := suite.New()
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("checks: %w", err)
	}
	if info.IsDir() {
		err = s.LoadDir(path)
	} else {
		err = s.LoadFile(path)
	}
	if err != nil {
		return nil, err
	}
	if s.Count() == 0 {
		return nil, fmt.Errorf("no checks found in %s", path)
	}
	return s, nil
}

// setupTargets resolves the page to check. The returned cleanup
// function is never nil.
func setupTargets(
	ctx context.Context, o *options,
) (suite.Targets, assertion.Option, func(), error) {
	noop := func() {}

	if o.file != "" {
		doc, err := htmldoc.Open(o.file)
		if err != nil {
			return suite.Targets{}, nil, noop, err
		}
		return suite.Targets{
			Browser: doc.Browser(),
			Collection: func(sel string) wait.Source[[]string] {
				return doc.Collection(sel)
			},
		}, nil, noop, nil
	}

	client, err := httpclient.NewClient(o.baseURL)
	if err != nil {
		return suite.Targets{}, nil, noop, err
	}

	if o.useChrome {
		target, err := client.Resolve(o.page)
		if err != nil {
			return suite.Targets{}, nil, noop, err
		}
		tab, cancel := chrome.Launch(o.headless)
		if err := tab.Navigate(ctx, target); err != nil {
			cancel()
			return suite.Targets{}, nil, noop, err
		}
		return suite.Targets{
			Browser:    tab.State(),
			Collection: tab.Collection,
		}, assertion.WithCapturer(tab), cancel, nil
	}

	page := htmldoc.NewLive(client, o.page)
	return suite.Targets{
		Browser: page.Browser(),
		Collection: func(sel string) wait.Source[[]string] {
			return page.Collection(sel)
		},
	}, nil, noop, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	o, err := parseFlags(args, stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(stderr, "error:", err)
		}
		return exitUsage
	}

	cfg, err := loadConfig(o)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return exitUsage
	}

	logger, err := newLogger(cfg, o, stderr)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return exitUsage
	}
	defer func() { _ = logger.Close() }()

	s, err := loadSuite(o.checks)
	if err != nil {
		logger.Error("failed to load checks", logging.ErrorField(err))
		return exitUsage
	}

	targets, capture, cleanup, err := setupTargets(ctx, o)
	defer cleanup()
	if err != nil {
		logger.Error("failed to open page", logging.ErrorField(err))
		return exitUsage
	}

	m := metrics.NewMemoryMetrics()
	events := monitor.NewEventCollector()
	recorder := report.NewRecorder()
	engineOpts := []assertion.Option{
		assertion.WithConfig(cfg),
		assertion.WithLogger(logger),
		assertion.WithMetrics(m),
		assertion.WithEventCollector(events),
		assertion.WithRecorder(recorder),
	}
	if capture != nil {
		engineOpts = append(engineOpts, capture)
	}
	engine := assertion.NewEngine(engineOpts...)

	if cfg.MonitorAddr != "" {
		monCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			if err := engine.ServeMonitor(monCtx); err != nil {
				logger.Warn("monitor stopped", logging.ErrorField(err))
			}
		}()
		logger.Info("monitor listening", logging.StringField("addr", cfg.MonitorAddr))
	}

	rep, err := suite.NewRunner(engine,
		suite.WithConcurrency(o.concurrency),
		suite.WithLogger(logger),
	).Run(ctx, s, targets)
	if err != nil && rep == nil {
		logger.Error("failed to run checks", logging.ErrorField(err))
		return exitUsage
	}

	printReport(stdout, rep)

	stats := events.Stats()
	current, peak := m.Active()
	logger.Info("assertions finished",
		logging.IntField("total", stats.Total),
		logging.IntField("passed", stats.Passed),
		logging.IntField("failed", stats.Failed),
		logging.IntField("attempts", stats.Attempts),
		logging.IntField("active", current),
		logging.IntField("peak_active", peak),
	)

	if o.saveReport {
		if err := saveReports(cfg.ReportsDir, recorder.Records()); err != nil {
			logger.Error("failed to save reports", logging.ErrorField(err))
			return exitUsage
		}
		logger.Info("reports saved", logging.StringField("dir", cfg.ReportsDir))
	}

	if err != nil || !rep.OK() {
		return exitFailed
	}
	return exitOK
}

func printReport(w io.Writer, rep *suite.Report) {
	for _, res := range rep.Results {
		label := string(res.ID)
		if res.Name != "" {
			label += " (" + res.Name + ")"
		}
		switch res.Status {
		case suite.StatusPassed:
			fmt.Fprintf(w, "PASS %s %s\n", label, res.Duration.Round(time.Millisecond))
		case suite.StatusSkipped:
			fmt.Fprintf(w, "SKIP %s: %v\n", label, res.Err)
		default:
			fmt.Fprintf(w, "FAIL %s\n", label)
			fmt.Fprintf(w, "%s\n", indent(res.Err.Error()))
		}
	}
	fmt.Fprintf(w, "\n%d passed, %d failed, %d skipped\n",
		rep.Passed(), rep.Failed(), rep.Skipped())
}

func indent(s string) string {
	return "    " + strings.ReplaceAll(s, "\n", "\n    ")
}

// saveReports writes the Markdown and JSON summaries, an HTML
// summary and appends every record to the history log.
func saveReports(dir string, records []*report.Record) error {
	summary := report.BuildSummary(records)
	if err := report.SaveSummary(summary, dir); err != nil {
		return err
	}

	html, err := report.NewHTMLReporter().GenerateSummary(records)
	if err != nil {
		return fmt.Errorf("render HTML summary: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "summary.html"), html, 0o644); err != nil {
		return fmt.Errorf("write HTML summary: %w", err)
	}

	history := filepath.Join(dir, "history.jsonl")
	for _, rec := range records {
		if err := report.AppendToHistory(history, rec); err != nil {
			return err
		}
	}
	return nil
}
