// Package chrome reads snapshots from a live Chrome tab driven by
// chromedp: the browser state, the texts of CSS-selected
// collections, and screenshots and page sources for failure
// diagnostics.
package chrome

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"

	"digital.vasic.conditions/pkg/diagnostic"
	"digital.vasic.conditions/pkg/wait"
	"digital.vasic.conditions/pkg/webdriver"
)

// Tab is a Chrome tab. Its context is the chromedp context
// returned by chromedp.NewContext; every fetch runs in it and is
// also stopped when the evaluation context is done.
type Tab struct {
	ctx context.Context
}

// NewTab wraps a chromedp tab context.
func NewTab(ctx context.Context) *Tab {
	return &Tab{ctx: ctx}
}

// Launch starts a Chrome process and opens a tab. The returned
// cancel function closes the tab and stops the browser.
func Launch(headless bool, opts ...chromedp.ExecAllocatorOption) (*Tab, context.CancelFunc) {
	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if !headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	allocOpts = append(allocOpts, opts...)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	return NewTab(tabCtx), func() {
		tabCancel()
		allocCancel()
	}
}

// Navigate loads url in the tab.
func (t *Tab) Navigate(ctx context.Context, url string) error {
	if err := t.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

// run executes actions in the tab context, aborting when ctx is
// done.
func (t *Tab) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(t.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

// State returns a source of browser states.
func (t *Tab) State() wait.Source[webdriver.State] {
	return wait.FromFunc("webdriver", t.fetchState)
}

func (t *Tab) fetchState(ctx context.Context) (webdriver.State, error) {
	var (
		s       webdriver.State
		targets []*target.Info
		cookies []*network.Cookie
	)
	err := t.run(ctx,
		chromedp.Location(&s.URL),
		chromedp.Title(&s.Title),
		chromedp.Evaluate(`document.URL`, &s.FrameURL),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			targets, err = target.GetTargets().Do(ctx)
			if err != nil {
				return fmt.Errorf("get targets: %w", err)
			}
			cookies, err = network.GetCookies().Do(ctx)
			if err != nil {
				return fmt.Errorf("get cookies: %w", err)
			}
			return nil
		}),
	)
	if err != nil {
		return webdriver.State{}, fmt.Errorf("read browser state: %w", err)
	}
	s.Windows = countPages(targets)
	s.Cookies = convertCookies(cookies)
	return s, nil
}

// countPages counts the page targets, i.e. open windows and tabs.
func countPages(targets []*target.Info) int {
	n := 0
	for _, t := range targets {
		if t.Type == "page" {
			n++
		}
	}
	return n
}

func convertCookies(in []*network.Cookie) []webdriver.Cookie {
	out := make([]webdriver.Cookie, 0, len(in))
	for _, c := range in {
		wc := webdriver.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
		}
		// Session cookies carry -1.
		if c.Expires > 0 {
			sec, frac := math.Modf(c.Expires)
			wc.Expires = time.Unix(int64(sec), int64(frac*1e9)).UTC()
		}
		out = append(out, wc)
	}
	return out
}

// Diagnostics returns a diagnostic context saving screenshots and
// page sources of the tab under dir.
func (t *Tab) Diagnostics(dir string, opts ...diagnostic.FileOption) *diagnostic.FileContext {
	return diagnostic.NewFileContext(dir, t, opts...)
}
