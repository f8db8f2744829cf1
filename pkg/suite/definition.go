// Package suite runs declarative checks loaded from JSON or YAML
// files. A check names a target (the browser or a CSS selector),
// a condition with its expected values and, optionally, the
// checks it depends on. Checks run in dependency order; checks
// whose dependencies did not pass are skipped.
package suite

import (
	"context"
	"fmt"
	"time"

	"digital.vasic.conditions/pkg/assertion"
	"digital.vasic.conditions/pkg/collection"
	"digital.vasic.conditions/pkg/condition"
	"digital.vasic.conditions/pkg/wait"
	"digital.vasic.conditions/pkg/webdriver"
)

// ID identifies a check within a suite.
type ID string

// TargetBrowser is the target of browser-level conditions.
const TargetBrowser = "browser"

// Definition describes one check.
type Definition struct {
	ID   ID     `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`

	// Target is TargetBrowser or a CSS selector.
	Target string `json:"target" yaml:"target"`

	// Condition names the condition, e.g. "title" or "texts".
	Condition string `json:"condition" yaml:"condition"`

	Value  string   `json:"value,omitempty" yaml:"value,omitempty"`
	Values []string `json:"values,omitempty" yaml:"values,omitempty"`
	Count  int      `json:"count,omitempty" yaml:"count,omitempty"`

	// Negate turns the check into ShouldNotHave.
	Negate bool `json:"negate,omitempty" yaml:"negate,omitempty"`

	// Timeout overrides the engine timeout, e.g. "2s".
	Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	Dependencies []ID `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// Targets resolves check targets to value sources.
type Targets struct {
	Browser    wait.Source[webdriver.State]
	Collection func(sel string) wait.Source[[]string]
}

// check evaluates a compiled definition.
type check func(ctx context.Context, e *assertion.Engine, t Targets) error

type (
	browserBuilder    func(d *Definition) (condition.Condition[webdriver.State], error)
	collectionBuilder func(d *Definition) (condition.Condition[[]string], error)
)

// scalar adapts a string-valued browser condition factory.
func scalar(f func(string) condition.Func[webdriver.State]) browserBuilder {
	return func(d *Definition) (condition.Condition[webdriver.State], error) {
		return f(d.Value), nil
	}
}

var browserConditions = map[string]browserBuilder{
	"title":                   scalar(webdriver.Title),
	"url":                     scalar(webdriver.URL),
	"url_starting_with":       scalar(webdriver.URLStartingWith),
	"url_containing":          scalar(webdriver.URLContaining),
	"frame_url":               scalar(webdriver.CurrentFrameURL),
	"frame_url_starting_with": scalar(webdriver.CurrentFrameURLStartingWith),
	"frame_url_containing":    scalar(webdriver.CurrentFrameURLContaining),
	"windows": func(d *Definition) (condition.Condition[webdriver.State], error) {
		return webdriver.NumberOfWindows(d.Count)
	},
	"cookie": func(d *Definition) (condition.Condition[webdriver.State], error) {
		return webdriver.CookieNamed(d.Value)
	},
	"cookie_value": func(d *Definition) (condition.Condition[webdriver.State], error) {
		if len(d.Values) != 2 {
			return nil, fmt.Errorf("cookie_value needs values [name, value]")
		}
		return webdriver.CookieWithValue(d.Values[0], d.Values[1])
	},
}

var collectionConditions = map[string]collectionBuilder{
	"texts": func(d *Definition) (condition.Condition[[]string], error) {
		return asCondition(collection.TextsList(d.Values))
	},
	"exact_texts": func(d *Definition) (condition.Condition[[]string], error) {
		return asCondition(collection.ExactTexts(d.Values...))
	},
	"size": func(d *Definition) (condition.Condition[[]string], error) {
		return asCondition(collection.Size(d.Count))
	},
	"size_greater_than": func(d *Definition) (condition.Condition[[]string], error) {
		return asCondition(collection.SizeGreaterThan(d.Count))
	},
	"empty": func(*Definition) (condition.Condition[[]string], error) {
		return collection.Empty(), nil
	},
}

// asCondition avoids wrapping a nil pointer in a non-nil interface.
func asCondition[C condition.Condition[[]string]](c C, err error) (condition.Condition[[]string], error) {
	if err != nil {
		return nil, err
	}
	return c, nil
}

// compile validates d and returns the check it describes.
func (d *Definition) compile() (check, error) {
	var timeout time.Duration
	if d.Timeout != "" {
		t, err := time.ParseDuration(d.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", d.Timeout, err)
		}
		if t < 0 {
			return nil, fmt.Errorf("negative timeout %q", d.Timeout)
		}
		timeout = t
	}

	if d.Target == "" || d.Target == TargetBrowser {
		build, ok := browserConditions[d.Condition]
		if !ok {
			return nil, fmt.Errorf("unknown browser condition %q", d.Condition)
		}
		c, err := build(d)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context, e *assertion.Engine, t Targets) error {
			if t.Browser == nil {
				return fmt.Errorf("no browser target")
			}
			return evaluate(ctx, assertion.On(e, t.Browser), c, d.Negate, d.Timeout != "", timeout)
		}, nil
	}

	build, ok := collectionConditions[d.Condition]
	if !ok {
		return nil, fmt.Errorf("unknown collection condition %q", d.Condition)
	}
	c, err := build(d)
	if err != nil {
		return nil, err
	}
	sel := d.Target
	return func(ctx context.Context, e *assertion.Engine, t Targets) error {
		if t.Collection == nil {
			return fmt.Errorf("no collection target")
		}
		return evaluate(ctx, assertion.On(e, t.Collection(sel)), c, d.Negate, d.Timeout != "", timeout)
	}, nil
}

func evaluate[T any](
	ctx context.Context,
	s *assertion.Subject[T],
	c condition.Condition[T],
	negate, explicit bool,
	timeout time.Duration,
) error {
	switch {
	case negate && explicit:
		return s.ShouldNotHaveWithin(ctx, c, timeout)
	case negate:
		return s.ShouldNotHave(ctx, c)
	case explicit:
		return s.ShouldHaveWithin(ctx, c, timeout)
	default:
		return s.ShouldHave(ctx, c)
	}
}
