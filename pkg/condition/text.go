package condition

import (
	"strings"

	"golang.org/x/text/cases"
)

// Normalize trims s and collapses every run of whitespace,
// including tabs, line breaks and non-breaking spaces, into a
// single space.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// folder is stateless and safe for concurrent use.
var folder = cases.Fold()

func fold(s string) string {
	return folder.String(s)
}

// ContainsFold reports whether expected occurs in actual, both
// normalised, ignoring case.
func ContainsFold(actual, expected string) bool {
	return strings.Contains(
		fold(Normalize(actual)), fold(Normalize(expected)),
	)
}

// EqualFold reports whether actual and expected are equal after
// normalisation, ignoring case.
func EqualFold(actual, expected string) bool {
	return fold(Normalize(actual)) == fold(Normalize(expected))
}
