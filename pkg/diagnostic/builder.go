// Package diagnostic renders terminal assertion failures into
// self-contained messages with actual and expected values,
// environment references and the configured timeout.
package diagnostic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"digital.vasic.conditions/pkg/failure"
)

// Input is everything known about a failed evaluation.
type Input struct {
	Kind      failure.Kind
	Summary   string
	Details   []string
	Subject   string
	Condition string
	Actual    string
	Expected  string
	Timeout   time.Duration
	Elapsed   time.Duration
	Cause     error
}

// Builder turns an Input into a *failure.Error.
type Builder struct {
	env Context
}

// NewBuilder creates a Builder consulting env for screenshot and
// page source references. A nil env supplies none.
func NewBuilder(env Context) *Builder {
	if env == nil {
		env = NoContext{}
	}
	return &Builder{env: env}
}

// Build renders the failure. The message has this layout, with
// optional lines left out when empty:
//
//	<summary>
//	<details>
//	Screenshot: <ref>
//	Page source: <ref>
//	Timeout: <N> ms.
//	Caused by: <cause>
//
// Cancelled evaluations skip the environment references since
// the context they would be captured with is done.
func (b *Builder) Build(ctx context.Context, in Input) *failure.Error {
	fe := &failure.Error{
		Kind:      in.Kind,
		Subject:   in.Subject,
		Condition: in.Condition,
		Actual:    in.Actual,
		Expected:  in.Expected,
		Timeout:   in.Timeout,
		Elapsed:   in.Elapsed,
		Cause:     in.Cause,
	}
	if in.Kind != failure.KindCancelled {
		if ref, ok := b.env.Screenshot(ctx); ok {
			fe.Screenshot = ref
		}
		if ref, ok := b.env.PageSource(ctx); ok {
			fe.PageSource = ref
		}
	}
	fe.Message = Render(in, fe.Screenshot, fe.PageSource)
	return fe
}

// Render produces the failure message for in with the given
// environment references.
func Render(in Input, screenshot, pageSource string) string {
	lines := make([]string, 0, len(in.Details)+5)
	lines = append(lines, in.Summary)
	for _, d := range in.Details {
		if d != "" {
			lines = append(lines, d)
		}
	}
	if screenshot != "" {
		lines = append(lines, "Screenshot: "+screenshot)
	}
	if pageSource != "" {
		lines = append(lines, "Page source: "+pageSource)
	}
	lines = append(lines,
		fmt.Sprintf("Timeout: %d ms.", in.Timeout.Milliseconds()))
	if in.Cause != nil {
		lines = append(lines, "Caused by: "+in.Cause.Error())
	}
	return strings.Join(lines, "\n")
}
