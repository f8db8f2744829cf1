package htmldoc

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/PuerkitoBio/goquery"

	"digital.vasic.conditions/pkg/failure"
	"digital.vasic.conditions/pkg/httpclient"
	"digital.vasic.conditions/pkg/wait"
	"digital.vasic.conditions/pkg/webdriver"
)

// Live is a page served over HTTP. Every snapshot fetches and
// parses the page again, so lookups that fail now may succeed
// on a later attempt.
type Live struct {
	client *httpclient.Client
	path   string
}

// NewLive returns the page at path, fetched with client.
func NewLive(client *httpclient.Client, path string) *Live {
	return &Live{client: client, path: path}
}

// Load fetches and parses the page once. A non-2xx response is a
// transient not-found lookup error.
func (l *Live) Load(ctx context.Context) (*Document, error) {
	page, err := l.client.Get(ctx, l.path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", l.path, err)
	}
	if !page.OK() {
		return nil, &failure.LookupError{
			Kind:   failure.LookupNotFound,
			Target: l.path,
			Err: fmt.Errorf("HTTP %d %s",
				page.StatusCode, http.StatusText(page.StatusCode)),
		}
	}
	return Parse(bytes.NewReader(page.Body), page.URL)
}

// Collection selects every element of the current page matching
// the CSS selector sel.
func (l *Live) Collection(sel string) *Elements {
	return newCollection(l, sel)
}

func (l *Live) selection(ctx context.Context) (*goquery.Selection, bool, error) {
	doc, err := l.Load(ctx)
	if err != nil {
		return nil, false, err
	}
	return doc.doc.Selection, false, nil
}

// Browser returns a source of browser states for the page. The
// cookies are those the client holds for its base URL.
func (l *Live) Browser() wait.Source[webdriver.State] {
	return wait.FromFunc("webdriver", func(ctx context.Context) (webdriver.State, error) {
		doc, err := l.Load(ctx)
		if err != nil {
			return webdriver.State{}, err
		}
		return doc.Browser(jarCookies(l.client.Cookies())...).Fetch(ctx)
	})
}

func jarCookies(in []*http.Cookie) []webdriver.Cookie {
	out := make([]webdriver.Cookie, 0, len(in))
	for _, c := range in {
		out = append(out, webdriver.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HTTPOnly: c.HttpOnly,
		})
	}
	return out
}
