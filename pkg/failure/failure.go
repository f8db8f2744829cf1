// Package failure defines the error taxonomy produced by condition
// evaluation: configuration errors raised at construction time,
// lookup errors reported by value sources, and the terminal
// assertion failures returned by the polling engine.
package failure

import (
	"errors"
	"time"
)

// Kind classifies a terminal assertion failure.
type Kind int

const (
	// KindConfiguration marks an invalid condition or option.
	KindConfiguration Kind = iota + 1
	// KindTargetNotFound marks a source that never resolved.
	KindTargetNotFound
	// KindConditionNotMet marks a positive assertion that timed
	// out.
	KindConditionNotMet
	// KindConditionMet marks a negative assertion whose inner
	// condition held until the timeout.
	KindConditionMet
	// KindListSizeMismatch marks a collection with the wrong
	// number of elements.
	KindListSizeMismatch
	// KindTextsMismatch marks a collection whose texts diverge
	// at some position.
	KindTextsMismatch
	// KindCancelled marks an evaluation interrupted by its
	// context.
	KindCancelled
)

// Sentinel errors matched by errors.Is against *Error and
// *ConfigError values of the corresponding kind.
var (
	ErrConfiguration    = errors.New("configuration error")
	ErrTargetNotFound   = errors.New("element not found")
	ErrConditionNotMet  = errors.New("condition not met")
	ErrConditionMet     = errors.New("condition met")
	ErrListSizeMismatch = errors.New("list size mismatch")
	ErrTextsMismatch    = errors.New("texts mismatch")
	ErrCancelled        = errors.New("evaluation cancelled")
)

// String returns the name of the failure kind.
func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "ConfigurationError"
	case KindTargetNotFound:
		return "ElementNotFound"
	case KindConditionNotMet:
		return "ConditionNotMet"
	case KindConditionMet:
		return "ConditionMet"
	case KindListSizeMismatch:
		return "ListSizeMismatch"
	case KindTextsMismatch:
		return "TextsMismatch"
	case KindCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Sentinel returns the sentinel error for the kind, or nil for
// an unknown kind.
func (k Kind) Sentinel() error {
	switch k {
	case KindConfiguration:
		return ErrConfiguration
	case KindTargetNotFound:
		return ErrTargetNotFound
	case KindConditionNotMet:
		return ErrConditionNotMet
	case KindConditionMet:
		return ErrConditionMet
	case KindListSizeMismatch:
		return ErrListSizeMismatch
	case KindTextsMismatch:
		return ErrTextsMismatch
	case KindCancelled:
		return ErrCancelled
	default:
		return nil
	}
}

// Error is a terminal assertion failure. Its message is
// self-contained: it carries the summary, actual and expected
// values, environment references and the configured timeout.
type Error struct {
	// Kind classifies the failure.
	Kind Kind `json:"kind"`

	// Message is the fully rendered diagnostic text.
	Message string `json:"message"`

	// Subject names what was checked ("webdriver", ".element").
	Subject string `json:"subject"`

	// Condition is the description of the evaluated condition.
	Condition string `json:"condition"`

	// Actual is the last observed value, rendered for humans.
	Actual string `json:"actual,omitempty"`

	// Expected is the expected value, rendered for humans.
	Expected string `json:"expected,omitempty"`

	// Timeout is the configured timeout of the evaluation.
	Timeout time.Duration `json:"timeout"`

	// Elapsed is the wall-clock time spent polling.
	Elapsed time.Duration `json:"elapsed"`

	// Screenshot references a screenshot taken on failure.
	Screenshot string `json:"screenshot,omitempty"`

	// PageSource references the page source saved on failure.
	PageSource string `json:"page_source,omitempty"`

	// Cause is the underlying error, typically a lookup error.
	Cause error `json:"-"`
}

// Error returns the rendered diagnostic message.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the cause of the failure.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the sentinel of this failure's
// kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.Sentinel()
	return s != nil && target == s
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// KindOf returns the failure kind carried by err, or zero when
// err is neither an *Error nor a *ConfigError.
func KindOf(err error) Kind {
	if fe, ok := As(err); ok {
		return fe.Kind
	}
	var ce *ConfigError
	if errors.As(err, &ce) {
		return KindConfiguration
	}
	return 0
}
