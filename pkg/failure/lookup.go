package failure

import (
	"errors"
	"fmt"
)

// LookupKind classifies why a value source could not resolve
// its target.
type LookupKind int

const (
	// LookupNotFound means no element matched.
	LookupNotFound LookupKind = iota + 1
	// LookupIndexOutOfRange means an indexed element does not
	// exist in its parent collection.
	LookupIndexOutOfRange
	// LookupStale means a previously resolved element is gone.
	LookupStale
	// LookupInvalidSelector means the selector cannot be
	// evaluated at all.
	LookupInvalidSelector
)

// String returns the name of the lookup kind.
func (k LookupKind) String() string {
	switch k {
	case LookupNotFound:
		return "not_found"
	case LookupIndexOutOfRange:
		return "index_out_of_range"
	case LookupStale:
		return "stale"
	case LookupInvalidSelector:
		return "invalid_selector"
	default:
		return "unknown"
	}
}

// LookupError is returned by value sources that cannot resolve
// their target. Structural errors cannot be fixed by waiting
// and end the polling loop at once; the others are retried
// until the timeout.
type LookupError struct {
	Kind       LookupKind
	Target     string
	Index      int
	Size       int
	Structural bool
	Err        error
}

// NotFound builds a not-found lookup error for target.
func NotFound(target string, structural bool) *LookupError {
	return &LookupError{
		Kind:       LookupNotFound,
		Target:     target,
		Structural: structural,
	}
}

// IndexOutOfRange builds a lookup error for element index of a
// collection holding size elements.
func IndexOutOfRange(
	target string, index, size int, structural bool,
) *LookupError {
	return &LookupError{
		Kind:       LookupIndexOutOfRange,
		Target:     target,
		Index:      index,
		Size:       size,
		Structural: structural,
	}
}

// InvalidSelector builds a structural lookup error for a
// selector that cannot be parsed.
func InvalidSelector(target string, err error) *LookupError {
	return &LookupError{
		Kind:       LookupInvalidSelector,
		Target:     target,
		Structural: true,
		Err:        err,
	}
}

// Error describes the failed lookup.
func (e *LookupError) Error() string {
	var msg string
	switch e.Kind {
	case LookupNotFound:
		msg = fmt.Sprintf("no such element: {%s}", e.Target)
	case LookupIndexOutOfRange:
		msg = fmt.Sprintf(
			"index out of range [%d] with length %d: {%s}",
			e.Index, e.Size, e.Target,
		)
	case LookupStale:
		msg = fmt.Sprintf("stale element reference: {%s}", e.Target)
	case LookupInvalidSelector:
		msg = fmt.Sprintf("invalid selector: {%s}", e.Target)
	default:
		msg = fmt.Sprintf("lookup failed: {%s}", e.Target)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying driver error, if any.
func (e *LookupError) Unwrap() error {
	return e.Err
}

// AsLookup extracts a *LookupError from err's chain.
func AsLookup(err error) (*LookupError, bool) {
	var le *LookupError
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}

// IsStructural reports whether err carries a lookup error that
// waiting cannot resolve.
func IsStructural(err error) bool {
	le, ok := AsLookup(err)
	return ok && le.Structural
}
