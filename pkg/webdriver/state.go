// Package webdriver provides conditions over a browser-level
// snapshot: the current URL and frame URL, the page title, the
// number of open windows and the cookie jar.
package webdriver

import (
	"fmt"
	"strings"
	"time"
)

// Cookie is a browser cookie as seen in a snapshot.
type Cookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Domain   string    `json:"domain,omitempty"`
	Path     string    `json:"path,omitempty"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HTTPOnly bool      `json:"http_only,omitempty"`
}

// String renders the cookie in Set-Cookie style.
func (c Cookie) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s=%s", c.Name, c.Value)
	if c.Path != "" {
		fmt.Fprintf(&b, "; path=%s", c.Path)
	}
	if c.Domain != "" {
		fmt.Fprintf(&b, "; domain=%s", c.Domain)
	}
	if !c.Expires.IsZero() {
		fmt.Fprintf(&b, "; expires=%s", c.Expires.UTC().Format(time.RFC1123))
	}
	if c.Secure {
		b.WriteString("; secure")
	}
	if c.HTTPOnly {
		b.WriteString("; httponly")
	}
	return b.String()
}

// State is a snapshot of the browser taken by a value source.
type State struct {
	// URL is the address of the top-level document.
	URL string `json:"url"`

	// FrameURL is the address of the currently selected frame.
	// It equals URL when no frame is selected.
	FrameURL string `json:"frame_url"`

	// Title is the title of the top-level document.
	Title string `json:"title"`

	// Windows is the number of open windows or tabs.
	Windows int `json:"windows"`

	// Cookies holds the cookies visible to the current page.
	Cookies []Cookie `json:"cookies,omitempty"`
}

// Cookie returns the first cookie with the given name.
func (s State) Cookie(name string) (Cookie, bool) {
	for _, c := range s.Cookies {
		if c.Name == name {
			return c, true
		}
	}
	return Cookie{}, false
}
