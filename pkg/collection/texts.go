// Package collection provides conditions over an ordered
// collection of element texts. Every condition tests a whole
// snapshot at once so that the size check and the positional
// comparison always see the same fetch.
package collection

import (
	"fmt"
	"strings"

	"digital.vasic.conditions/pkg/condition"
	"digital.vasic.conditions/pkg/failure"
)

// errNoTexts is the construction error for an empty expectation.
const errNoTexts = "No expected texts given"

// TextsCondition matches a collection whose element texts
// correspond, position by position, to the expected texts.
//
// Both sides are normalised (trimmed, whitespace collapsed) and
// compared case-insensitively. By default an expected text only
// has to occur as a substring of the actual text; exact
// conditions require equality.
type TextsCondition struct {
	expected []string
	exact    bool
}

var (
	_ condition.Condition[[]string] = (*TextsCondition)(nil)
	_ condition.Explainer[[]string] = (*TextsCondition)(nil)
)

// Texts builds a substring-matching texts condition. It returns
// a configuration error when no texts are given.
func Texts(expected ...string) (*TextsCondition, error) {
	return newTexts(expected, false)
}

// TextsList is Texts for a pre-built list.
func TextsList(expected []string) (*TextsCondition, error) {
	return newTexts(expected, false)
}

// ExactTexts builds a texts condition requiring each normalised
// actual text to equal the expected one, ignoring case.
func ExactTexts(expected ...string) (*TextsCondition, error) {
	return newTexts(expected, true)
}

// MustTexts is like Texts but panics on a configuration error.
func MustTexts(expected ...string) *TextsCondition {
	c, err := Texts(expected...)
	if err != nil {
		panic(err)
	}
	return c
}

func newTexts(expected []string, exact bool) (*TextsCondition, error) {
	if len(expected) == 0 {
		return nil, failure.Configf(errNoTexts)
	}
	return &TextsCondition{
		expected: append([]string(nil), expected...),
		exact:    exact,
	}, nil
}

// Expected returns a copy of the expected texts.
func (c *TextsCondition) Expected() []string {
	return append([]string(nil), c.expected...)
}

func (c *TextsCondition) name() string {
	if c.exact {
		return "exact texts"
	}
	return "texts"
}

// Description returns "should have texts [...]".
func (c *TextsCondition) Description() string {
	return "should have " + c.name() + " " + c.ExpectedValue()
}

// NegativeDescription returns "should not have texts [...]".
func (c *TextsCondition) NegativeDescription() string {
	return "should not have " + c.name() + " " + c.ExpectedValue()
}

// Test reports whether the sizes agree and every position
// matches.
func (c *TextsCondition) Test(actual []string) bool {
	if len(actual) != len(c.expected) {
		return false
	}
	return c.firstMismatch(actual) < 0
}

// firstMismatch returns the lowest index whose text does not
// match, or -1. The caller guarantees equal lengths.
func (c *TextsCondition) firstMismatch(actual []string) int {
	for i, e := range c.expected {
		if !c.match(actual[i], e) {
			return i
		}
	}
	return -1
}

func (c *TextsCondition) match(actual, expected string) bool {
	if c.exact {
		return condition.EqualFold(actual, expected)
	}
	return condition.ContainsFold(actual, expected)
}

// ActualValue renders the actual texts as a list.
func (c *TextsCondition) ActualValue(actual []string) string {
	return formatList(actual)
}

// ExpectedValue renders the expected texts as a list.
func (c *TextsCondition) ExpectedValue() string {
	return formatList(c.expected)
}

// Describe leaves the subject to the source label.
func (c *TextsCondition) Describe(_ []string) string { return "" }

// Explain classifies a failed snapshot. An empty collection is
// reported as not found, then a size mismatch takes precedence
// over the first diverging position.
func (c *TextsCondition) Explain(
	actual []string, subject string,
) (condition.Mismatch, bool) {
	actualList := formatList(actual)
	expectedList := formatList(c.expected)

	if len(actual) == 0 {
		return condition.Mismatch{
			Kind:     failure.KindTargetNotFound,
			Summary:  fmt.Sprintf("Element not found {%s}", subject),
			Details:  []string{"Expected: " + c.name() + " " + expectedList},
			Actual:   actualList,
			Expected: expectedList,
		}, true
	}

	if len(actual) != len(c.expected) {
		return condition.Mismatch{
			Kind:     failure.KindListSizeMismatch,
			Summary:  sizeSummary("=", len(c.expected), len(actual), subject),
			Details:  []string{"Actual: " + actualList, "Expected: " + expectedList},
			Actual:   actualList,
			Expected: expectedList,
		}, true
	}

	i := c.firstMismatch(actual)
	if i < 0 {
		return condition.Mismatch{}, false
	}

	return condition.Mismatch{
		Kind: failure.KindTextsMismatch,
		Summary: fmt.Sprintf(
			"Text #%d mismatch (expected: %q, actual: %q)",
			i, c.expected[i], actual[i],
		),
		Details: []string{
			"Actual: " + actualList,
			"Expected: " + expectedList,
			"Collection: " + subject,
		},
		Actual:   actualList,
		Expected: expectedList,
	}, true
}

func formatList(items []string) string {
	return "[" + strings.Join(items, ", ") + "]"
}

func sizeSummary(op string, expected, actual int, subject string) string {
	return fmt.Sprintf(
		"List size mismatch: expected: %s %d, actual: %d, collection: %s",
		op, expected, actual, subject,
	)
}
