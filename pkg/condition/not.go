package condition

// negated inverts the match test of its inner condition while
// presenting the inner condition's negative description.
type negated[T any] struct {
	inner Condition[T]
}

// Not returns a condition that holds exactly when c does not.
// Negating a negated condition returns the original.
func Not[T any](c Condition[T]) Condition[T] {
	if n, ok := c.(*negated[T]); ok {
		return n.inner
	}
	return &negated[T]{inner: c}
}

// IsNegated reports whether c was produced by Not.
func IsNegated[T any](c Condition[T]) bool {
	_, ok := c.(*negated[T])
	return ok
}

func (n *negated[T]) Description() string {
	return n.inner.NegativeDescription()
}

func (n *negated[T]) NegativeDescription() string {
	return n.inner.Description()
}

func (n *negated[T]) Test(v T) bool {
	return !n.inner.Test(v)
}

func (n *negated[T]) ActualValue(v T) string {
	return n.inner.ActualValue(v)
}

func (n *negated[T]) ExpectedValue() string {
	return n.inner.ExpectedValue()
}

func (n *negated[T]) Describe(v T) string {
	return n.inner.Describe(v)
}
