// Package htmldoc serves snapshots of a parsed HTML document as
// value sources: collection texts selected by CSS selectors and a
// browser state built from the document head.
//
// A parsed document never changes, so every lookup error it
// reports is structural and ends an evaluation at once.
package htmldoc

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"digital.vasic.conditions/pkg/condition"
	"digital.vasic.conditions/pkg/wait"
	"digital.vasic.conditions/pkg/webdriver"
)

// Document is a parsed HTML page.
type Document struct {
	doc *goquery.Document
	url string
}

// Parse reads an HTML document from r. pageURL is reported as the
// document address and may be empty.
func Parse(r io.Reader, pageURL string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	if pageURL != "" {
		u, err := url.Parse(pageURL)
		if err != nil {
			return nil, fmt.Errorf("invalid page URL %q: %w", pageURL, err)
		}
		doc.Url = u
	}
	return &Document{doc: doc, url: pageURL}, nil
}

// ParseString parses an HTML document held in memory.
func ParseString(html, pageURL string) (*Document, error) {
	return Parse(strings.NewReader(html), pageURL)
}

// Open parses the HTML file at path. Its address is the file URL
// of the absolute path.
func Open(path string) (*Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	f, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return Parse(f, "file://"+filepath.ToSlash(abs))
}

// URL returns the document address.
func (d *Document) URL() string {
	return d.url
}

// Title returns the normalised text of the first title element.
func (d *Document) Title() string {
	return condition.Normalize(d.doc.Find("title").First().Text())
}

// HTML renders the whole document.
func (d *Document) HTML() (string, error) {
	return goquery.OuterHtml(d.doc.Selection)
}

// Collection selects every element of the document matching the
// CSS selector sel. An invalid selector fails on fetch.
func (d *Document) Collection(sel string) *Elements {
	return newCollection(d, sel)
}

func (d *Document) selection(context.Context) (*goquery.Selection, bool, error) {
	return d.doc.Selection, true, nil
}

// Browser returns a source of browser states for a single window
// showing the document with the given cookies.
func (d *Document) Browser(cookies ...webdriver.Cookie) wait.Source[webdriver.State] {
	return &browser{doc: d, cookies: cookies}
}

type browser struct {
	doc     *Document
	cookies []webdriver.Cookie
}

func (b *browser) Fetch(context.Context) (webdriver.State, error) {
	return webdriver.State{
		URL:      b.doc.url,
		FrameURL: b.doc.url,
		Title:    b.doc.Title(),
		Windows:  1,
		Cookies:  append([]webdriver.Cookie(nil), b.cookies...),
	}, nil
}

func (b *browser) Label() string {
	return "webdriver"
}
