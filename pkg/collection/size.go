package collection

import (
	"fmt"
	"strconv"

	"digital.vasic.conditions/pkg/condition"
	"digital.vasic.conditions/pkg/failure"
)

// SizeCondition compares the number of elements in a collection
// with an expected bound.
type SizeCondition struct {
	op   string
	n    int
	desc string
}

var (
	_ condition.Condition[[]string] = (*SizeCondition)(nil)
	_ condition.Explainer[[]string] = (*SizeCondition)(nil)
)

// Size matches a collection of exactly n elements.
func Size(n int) (*SizeCondition, error) {
	if n < 0 {
		return nil, failure.Configf("invalid collection size: %d", n)
	}
	return &SizeCondition{op: "=", n: n, desc: fmt.Sprintf("size %d", n)}, nil
}

// SizeGreaterThan matches a collection of more than n elements.
func SizeGreaterThan(n int) (*SizeCondition, error) {
	if n < 0 {
		return nil, failure.Configf("invalid collection size: %d", n)
	}
	return &SizeCondition{op: ">", n: n, desc: fmt.Sprintf("size > %d", n)}, nil
}

// Empty matches a collection without elements.
func Empty() *SizeCondition {
	return &SizeCondition{op: "=", n: 0, desc: "size 0"}
}

// Description returns "should have size N".
func (c *SizeCondition) Description() string {
	return "should have " + c.desc
}

// NegativeDescription returns "should not have size N".
func (c *SizeCondition) NegativeDescription() string {
	return "should not have " + c.desc
}

// Test compares len(actual) with the bound.
func (c *SizeCondition) Test(actual []string) bool {
	if c.op == ">" {
		return len(actual) > c.n
	}
	return len(actual) == c.n
}

// ActualValue renders the element count.
func (c *SizeCondition) ActualValue(actual []string) string {
	return strconv.Itoa(len(actual))
}

// ExpectedValue renders the bound, e.g. "> 3".
func (c *SizeCondition) ExpectedValue() string {
	if c.op == ">" {
		return "> " + strconv.Itoa(c.n)
	}
	return strconv.Itoa(c.n)
}

// Describe leaves the subject to the source label.
func (c *SizeCondition) Describe(_ []string) string { return "" }

// Explain reports a size mismatch with the element dump.
func (c *SizeCondition) Explain(
	actual []string, subject string,
) (condition.Mismatch, bool) {
	if c.Test(actual) {
		return condition.Mismatch{}, false
	}
	return condition.Mismatch{
		Kind:     failure.KindListSizeMismatch,
		Summary:  sizeSummary(c.op, c.n, len(actual), subject),
		Details:  []string{"Elements: " + formatList(actual)},
		Actual:   c.ActualValue(actual),
		Expected: c.ExpectedValue(),
	}, true
}
