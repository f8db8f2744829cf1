package webdriver

import (
	"fmt"
	"strconv"
	"strings"

	"digital.vasic.conditions/pkg/condition"
	"digital.vasic.conditions/pkg/env"
	"digital.vasic.conditions/pkg/failure"
)

const (
	subjectDriver = "webdriver"
	subjectFrame  = "current frame"
	subjectPage   = "Page"
)

func pageURL(s State) string  { return s.URL }
func frameURL(s State) string { return s.FrameURL }

func stringCondition(
	subject, name, expected string,
	get func(State) string,
	match func(actual, expected string) bool,
) condition.Func[State] {
	return condition.Func[State]{
		Desc:      "should have " + name + " " + expected,
		NegDesc:   "should not have " + name + " " + expected,
		Subject:   subject,
		Expected:  expected,
		Predicate: func(s State) bool { return match(get(s), expected) },
		Actual:    get,
	}
}

func equals(actual, expected string) bool { return actual == expected }

// URL matches when the page URL equals url.
func URL(url string) condition.Func[State] {
	return stringCondition(subjectDriver, "url", url, pageURL, equals)
}

// URLStartingWith matches when the page URL starts with prefix.
func URLStartingWith(prefix string) condition.Func[State] {
	return stringCondition(
		subjectDriver, "url starting with", prefix, pageURL, strings.HasPrefix,
	)
}

// URLContaining matches when the page URL contains fragment.
func URLContaining(fragment string) condition.Func[State] {
	return stringCondition(
		subjectDriver, "url containing", fragment, pageURL, strings.Contains,
	)
}

// CurrentFrameURL matches when the current frame URL equals url.
func CurrentFrameURL(url string) condition.Func[State] {
	return stringCondition(subjectFrame, "url", url, frameURL, equals)
}

// CurrentFrameURLStartingWith matches when the current frame URL
// starts with prefix.
func CurrentFrameURLStartingWith(prefix string) condition.Func[State] {
	return stringCondition(
		subjectFrame, "url starting with", prefix, frameURL, strings.HasPrefix,
	)
}

// CurrentFrameURLContaining matches when the current frame URL
// contains fragment.
func CurrentFrameURLContaining(fragment string) condition.Func[State] {
	return stringCondition(
		subjectFrame, "url containing", fragment, frameURL, strings.Contains,
	)
}

// Title matches when the page title equals title.
func Title(title string) condition.Func[State] {
	return stringCondition(
		subjectPage, "title", title,
		func(s State) string { return s.Title }, equals,
	)
}

// NumberOfWindows matches when exactly n windows are open.
func NumberOfWindows(n int) (condition.Func[State], error) {
	if n < 0 {
		return condition.Func[State]{}, failure.Configf(
			"invalid number of windows: %d", n,
		)
	}
	return condition.Func[State]{
		Desc:      fmt.Sprintf("should have %d window(s)", n),
		NegDesc:   fmt.Sprintf("should not have %d window(s)", n),
		Subject:   subjectDriver,
		Expected:  strconv.Itoa(n),
		Predicate: func(s State) bool { return s.Windows == n },
		Actual:    func(s State) string { return strconv.Itoa(s.Windows) },
	}, nil
}

// CookieNamed matches when a cookie with the given name exists.
func CookieNamed(name string) (condition.Func[State], error) {
	if name == "" {
		return condition.Func[State]{}, failure.Configf("No cookie name given")
	}
	return cookieCondition(
		fmt.Sprintf("cookie with name %q", name),
		name,
		func(c Cookie) bool { return c.Name == name },
	), nil
}

// CookieWithValue matches when a cookie with the given name
// and value exists.
func CookieWithValue(name, value string) (condition.Func[State], error) {
	if name == "" {
		return condition.Func[State]{}, failure.Configf("No cookie name given")
	}
	return cookieCondition(
		fmt.Sprintf("cookie with name %q and value %q", name, value),
		name+"="+value,
		func(c Cookie) bool { return c.Name == name && c.Value == value },
	), nil
}

// CookieEqual matches when a cookie with the same name, value
// and path exists. The domain is compared only when the
// expected cookie sets one.
func CookieEqual(expected Cookie) (condition.Func[State], error) {
	if expected.Name == "" {
		return condition.Func[State]{}, failure.Configf("No cookie name given")
	}
	return cookieCondition(
		"cookie "+expected.String(),
		expected.String(),
		func(c Cookie) bool {
			return c.Name == expected.Name &&
				c.Value == expected.Value &&
				c.Path == expected.Path &&
				(expected.Domain == "" || c.Domain == expected.Domain)
		},
	), nil
}

func cookieCondition(
	what, expected string, match func(Cookie) bool,
) condition.Func[State] {
	return condition.Func[State]{
		Desc:     "should have " + what,
		NegDesc:  "should not have " + what,
		Subject:  subjectDriver,
		Expected: expected,
		Predicate: func(s State) bool {
			for _, c := range s.Cookies {
				if match(c) {
					return true
				}
			}
			return false
		},
		Actual: AvailableCookies,
	}
}

// AvailableCookies renders the cookie jar of s with redacted
// values, e.g. "Available cookies: [session_id=ab**********yz]".
func AvailableCookies(s State) string {
	parts := make([]string, len(s.Cookies))
	for i, c := range s.Cookies {
		parts[i] = c.Name + "=" + env.RedactAPIKey(c.Value)
	}
	return "Available cookies: [" + strings.Join(parts, ", ") + "]"
}
