// Package httpclient fetches HTML pages for live document
// sources. A Client keeps a cookie jar so that a session started
// by a login request is visible to later page fetches and to
// cookie conditions.
package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds a single page request.
const DefaultTimeout = 30 * time.Second

// maxBodySize caps the page body read into memory.
const maxBodySize = 16 << 20

// ClientOption configures a Client via functional options.
type ClientOption func(*Client)

// Client requests pages relative to a base URL.
type Client struct {
	baseURL    *url.URL
	token      string
	headers    http.Header
	httpClient *http.Client
}

// Page is a fetched document.
type Page struct {
	// URL is the final address after redirects.
	URL string

	// StatusCode is the HTTP status of the final response.
	StatusCode int

	// Body is the response body.
	Body []byte
}

// OK reports whether the page was served with a 2xx status.
func (p *Page) OK() bool {
	return p.StatusCode >= 200 && p.StatusCode < 300
}

// NewClient creates a client resolving paths against baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host required", baseURL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	c := &Client{
		baseURL: u,
		headers: make(http.Header),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Jar:     jar,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithBearerToken sends token in the Authorization header.
func WithBearerToken(token string) ClientOption {
	return func(c *Client) { c.token = token }
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) ClientOption {
	return func(c *Client) { c.headers.Add(key, value) }
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Resolve returns the absolute URL of path. Absolute URLs are
// returned unchanged.
func (c *Client) Resolve(path string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", path, err)
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}
	base := *c.baseURL
	if !strings.HasPrefix(ref.Path, "/") {
		base.Path += "/"
	}
	return base.ResolveReference(ref).String(), nil
}

// Get fetches the page at path. Non-2xx responses are returned
// without error; check Page.OK.
func (c *Client) Get(ctx context.Context, path string) (*Page, error) {
	target, err := c.Resolve(path)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	return c.do(req)
}

// PostForm submits form values to path, typically a login form.
// Cookies set by the response are kept for later requests.
func (c *Client) PostForm(ctx context.Context, path string, values url.Values) (*Page, error) {
	target, err := c.Resolve(path)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, target, strings.NewReader(values.Encode()),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*Page, error) {
	for k, vs := range c.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return &Page{
		URL:        resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Body:       data,
	}, nil
}

// Cookies returns the cookies the jar would send to the base URL.
func (c *Client) Cookies() []*http.Cookie {
	return c.httpClient.Jar.Cookies(c.baseURL)
}

// Token returns the bearer token.
func (c *Client) Token() string {
	return c.token
}

// SetToken sets the bearer token, e.g. when obtained externally.
func (c *Client) SetToken(token string) {
	c.token = token
}
