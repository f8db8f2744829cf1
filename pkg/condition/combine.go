package condition

import "strings"

type composite[T any] struct {
	conds []Condition[T]
	all   bool
}

// And holds when every condition holds. Evaluation stops at the
// first condition that fails.
func And[T any](conds ...Condition[T]) Condition[T] {
	return &composite[T]{conds: conds, all: true}
}

// Or holds when at least one condition holds.
func Or[T any](conds ...Condition[T]) Condition[T] {
	return &composite[T]{conds: conds}
}

func (c *composite[T]) joiner() string {
	if c.all {
		return " and "
	}
	return " or "
}

func (c *composite[T]) join(f func(Condition[T]) string) string {
	parts := make([]string, len(c.conds))
	for i, cond := range c.conds {
		parts[i] = f(cond)
	}
	return strings.Join(parts, c.joiner())
}

func (c *composite[T]) Description() string {
	return c.join(func(cond Condition[T]) string {
		return cond.Description()
	})
}

func (c *composite[T]) NegativeDescription() string {
	return "not (" + c.Description() + ")"
}

func (c *composite[T]) Test(v T) bool {
	for _, cond := range c.conds {
		if cond.Test(v) != c.all {
			return !c.all
		}
	}
	return c.all
}

func (c *composite[T]) ActualValue(v T) string {
	return c.join(func(cond Condition[T]) string {
		return cond.ActualValue(v)
	})
}

func (c *composite[T]) ExpectedValue() string {
	return c.join(func(cond Condition[T]) string {
		return cond.ExpectedValue()
	})
}

func (c *composite[T]) Describe(v T) string {
	for _, cond := range c.conds {
		if s := cond.Describe(v); s != "" {
			return s
		}
	}
	return ""
}
