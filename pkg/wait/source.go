// Package wait implements the polling evaluator: it fetches a
// fresh snapshot from a Source, tests it against a condition and
// repeats until the condition holds, the timeout elapses, the
// source fails for good, or the context is cancelled.
package wait

import "context"

// Source produces the current snapshot of an externally mutating
// target, such as the browser state or the texts of a collection.
//
// Fetch returns a *failure.LookupError when the target cannot be
// resolved right now. Lookup errors that are not structural are
// retried; any other error ends the evaluation.
type Source[T any] interface {
	// Fetch returns the current snapshot.
	Fetch(ctx context.Context) (T, error)

	// Label names the target in diagnostics, e.g. a selector.
	Label() string
}

// SourceFunc adapts a fetch function to the Source interface.
type SourceFunc[T any] struct {
	Name string
	Fn   func(ctx context.Context) (T, error)
}

// FromFunc returns a Source labelled name that calls fn.
func FromFunc[T any](
	name string, fn func(ctx context.Context) (T, error),
) SourceFunc[T] {
	return SourceFunc[T]{Name: name, Fn: fn}
}

// Fetch calls the wrapped function.
func (s SourceFunc[T]) Fetch(ctx context.Context) (T, error) {
	return s.Fn(ctx)
}

// Label returns the source name.
func (s SourceFunc[T]) Label() string {
	return s.Name
}

type static[T any] struct {
	label string
	value T
}

// Static returns a Source that always yields v.
func Static[T any](label string, v T) Source[T] {
	return static[T]{label: label, value: v}
}

func (s static[T]) Fetch(context.Context) (T, error) {
	return s.value, nil
}

func (s static[T]) Label() string {
	return s.label
}
