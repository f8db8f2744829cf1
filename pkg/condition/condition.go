// Package condition defines the predicate abstraction evaluated
// by the polling engine. A Condition tests an immutable snapshot
// of some target (a browser state, a list of element texts) and
// describes itself for diagnostics. Variants are plain values:
// scalar conditions live in the webdriver package, collection
// conditions in the collection package, and user-defined ones
// are built from closures with Func.
package condition

import (
	"strings"

	"digital.vasic.conditions/pkg/failure"
)

// Condition is a pure predicate over a snapshot of type T.
//
// Test must be idempotent and free of side effects: the engine
// calls it once per poll attempt against a fresh snapshot.
// ActualValue, ExpectedValue and Describe are used only to
// render diagnostics and never influence the match decision.
type Condition[T any] interface {
	// Description is the positive form, e.g. "should have url X".
	Description() string

	// NegativeDescription is the negated form, e.g.
	// "should not have url X".
	NegativeDescription() string

	// Test reports whether the snapshot satisfies the condition.
	Test(v T) bool

	// ActualValue renders the relevant part of the snapshot.
	ActualValue(v T) string

	// ExpectedValue renders what the condition expects.
	ExpectedValue() string

	// Describe names the subject of the check ("webdriver",
	// "Page"). An empty result means the source label is used.
	Describe(v T) string
}

// Mismatch explains why a snapshot failed a condition. It is
// turned into a terminal failure by the diagnostic builder.
type Mismatch struct {
	// Kind classifies the failure.
	Kind failure.Kind

	// Summary is the leading line of the failure message.
	Summary string

	// Details are the lines following the summary.
	Details []string

	// Actual is the rendered actual value.
	Actual string

	// Expected is the rendered expected value.
	Expected string
}

// Explainer is implemented by conditions that classify their own
// mismatches, such as collection conditions distinguishing size
// and text mismatches.
type Explainer[T any] interface {
	Explain(v T, subject string) (Mismatch, bool)
}

// Subject returns the subject named by the condition for v, or
// fallback when the condition leaves it empty.
func Subject[T any](c Condition[T], v T, fallback string) string {
	if s := c.Describe(v); s != "" {
		return s
	}
	return fallback
}

// Explain returns the mismatch for a snapshot that failed c.
// Conditions implementing Explainer are consulted first; the
// rest get the scalar layout "<subject> <description>" followed
// by an "Actual value" line.
func Explain[T any](c Condition[T], v T, subject string) Mismatch {
	if ex, ok := c.(Explainer[T]); ok {
		if m, ok := ex.Explain(v, subject); ok {
			return m
		}
	}

	kind := failure.KindConditionNotMet
	if IsNegated(c) {
		kind = failure.KindConditionMet
	}

	actual := c.ActualValue(v)
	return Mismatch{
		Kind:     kind,
		Summary:  strings.TrimSpace(subject + " " + c.Description()),
		Details:  []string{"Actual value: " + actual},
		Actual:   actual,
		Expected: c.ExpectedValue(),
	}
}

// NegateDescription derives a negative description from a
// positive one: "should have x" becomes "should not have x".
func NegateDescription(desc string) string {
	if rest, ok := strings.CutPrefix(desc, "should "); ok {
		return "should not " + rest
	}
	return "not " + desc
}

// Must returns c or panics when err is not nil. It wraps
// constructors that validate their input.
func Must[T any](c Condition[T], err error) Condition[T] {
	if err != nil {
		panic(err)
	}
	return c
}
