package chrome

import (
	"context"
	"errors"
	"fmt"

	"github.com/chromedp/chromedp"

	"digital.vasic.conditions/pkg/condition"
	"digital.vasic.conditions/pkg/failure"
	"digital.vasic.conditions/pkg/wait"
)

// textsScript returns the rendered texts of every element matching
// a selector, or the selector syntax error.
const textsScript = `(() => {
  try {
    return {texts: Array.from(document.querySelectorAll(%q), e => e.innerText ?? e.textContent ?? "")};
  } catch (e) {
    return {error: String(e && e.message || e)};
  }
})()`

type textsResult struct {
	Texts []string `json:"texts"`
	Error string   `json:"error"`
}

// Collection returns a source of the texts of the elements
// matching the CSS selector sel. An invalid selector is a
// structural lookup error; driver failures end the evaluation.
func (t *Tab) Collection(sel string) wait.Source[[]string] {
	return wait.FromFunc(sel, func(ctx context.Context) ([]string, error) {
		var res textsResult
		if err := t.run(ctx, chromedp.Evaluate(fmt.Sprintf(textsScript, sel), &res)); err != nil {
			return nil, fmt.Errorf("query %s: %w", sel, err)
		}
		return res.texts(sel)
	})
}

func (r textsResult) texts(sel string) ([]string, error) {
	if r.Error != "" {
		return nil, failure.InvalidSelector(sel, errors.New(r.Error))
	}
	out := make([]string, len(r.Texts))
	for i, s := range r.Texts {
		out[i] = condition.Normalize(s)
	}
	return out, nil
}
