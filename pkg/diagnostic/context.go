package diagnostic

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"digital.vasic.conditions/pkg/logging"
)

// Context supplies environment references for a failure
// message. It is consulted only when an assertion fails.
type Context interface {
	// Screenshot returns a reference to a screenshot of the
	// current page, or false when none is available.
	Screenshot(ctx context.Context) (string, bool)

	// PageSource returns a reference to the saved page source,
	// or false when none is available.
	PageSource(ctx context.Context) (string, bool)
}

// NoContext supplies no references.
type NoContext struct{}

// Screenshot returns false.
func (NoContext) Screenshot(context.Context) (string, bool) { return "", false }

// PageSource returns false.
func (NoContext) PageSource(context.Context) (string, bool) { return "", false }

// Capturer grabs raw environment artefacts from a live target.
type Capturer interface {
	CaptureScreenshot(ctx context.Context) ([]byte, error)
	CapturePageSource(ctx context.Context) (string, error)
}

// FileContext saves captured artefacts under a reports directory
// and returns file references to them.
type FileContext struct {
	dir         string
	capturer    Capturer
	logger      logging.Logger
	screenshots bool
	pageSource  bool
	seq         atomic.Int64
}

// FileOption configures a FileContext.
type FileOption func(*FileContext)

// WithScreenshots enables or disables screenshot capture.
func WithScreenshots(enabled bool) FileOption {
	return func(c *FileContext) {
		c.screenshots = enabled
	}
}

// WithPageSource enables or disables page source capture.
func WithPageSource(enabled bool) FileOption {
	return func(c *FileContext) {
		c.pageSource = enabled
	}
}

// WithFileLogger sets the logger for capture failures.
func WithFileLogger(l logging.Logger) FileOption {
	return func(c *FileContext) {
		c.logger = l
	}
}

// NewFileContext creates a FileContext writing into dir. Both
// captures are enabled by default.
func NewFileContext(
	dir string, capturer Capturer, opts ...FileOption,
) *FileContext {
	c := &FileContext{
		dir:         dir,
		capturer:    capturer,
		logger:      logging.NullLogger{},
		screenshots: true,
		pageSource:  true,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Screenshot captures and saves a PNG screenshot.
func (c *FileContext) Screenshot(ctx context.Context) (string, bool) {
	if !c.screenshots {
		return "", false
	}
	data, err := c.capturer.CaptureScreenshot(ctx)
	if err != nil || len(data) == 0 {
		c.failed("screenshot", err)
		return "", false
	}
	return c.save(c.nextName()+".png", data)
}

// PageSource captures and saves the page HTML.
func (c *FileContext) PageSource(ctx context.Context) (string, bool) {
	if !c.pageSource {
		return "", false
	}
	html, err := c.capturer.CapturePageSource(ctx)
	if err != nil {
		c.failed("page source", err)
		return "", false
	}
	return c.save(c.nextName()+".html", []byte(html))
}

// nextName returns a unique base name: the current time in
// milliseconds and a per-context sequence number.
func (c *FileContext) nextName() string {
	return fmt.Sprintf("%d.%d", time.Now().UnixMilli(), c.seq.Add(1))
}

func (c *FileContext) save(name string, data []byte) (string, bool) {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		c.failed("reports dir", err)
		return "", false
	}
	path := filepath.Join(c.dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		c.failed(name, err)
		return "", false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return "file://" + filepath.ToSlash(abs), true
}

func (c *FileContext) failed(what string, err error) {
	if err == nil {
		err = errors.New("empty capture")
	}
	c.logger.Warn("diagnostic capture failed",
		logging.StringField("artifact", what),
		logging.ErrorField(err),
	)
}
