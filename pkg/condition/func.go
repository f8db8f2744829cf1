package condition

// Func is a Condition assembled from closures. It is how callers
// define their own conditions inline.
//
//	hasSession := condition.Func[webdriver.State]{
//		Desc:     "should have a cookie with name 'session_id'",
//		Expected: "session_id",
//		Subject:  "webdriver",
//		Predicate: func(s webdriver.State) bool {
//			_, ok := s.Cookie("session_id")
//			return ok
//		},
//	}
type Func[T any] struct {
	// Desc is the positive description.
	Desc string

	// NegDesc is the negative description. When empty it is
	// derived from Desc with NegateDescription.
	NegDesc string

	// Subject is returned by Describe.
	Subject string

	// Expected is returned by ExpectedValue.
	Expected string

	// Predicate implements Test. A nil predicate never matches.
	Predicate func(v T) bool

	// Actual implements ActualValue. When nil the actual value
	// is rendered as an empty string.
	Actual func(v T) string
}

var _ Condition[any] = Func[any]{}

// Description returns Desc.
func (f Func[T]) Description() string { return f.Desc }

// NegativeDescription returns NegDesc or a derived form.
func (f Func[T]) NegativeDescription() string {
	if f.NegDesc != "" {
		return f.NegDesc
	}
	return NegateDescription(f.Desc)
}

// Test applies Predicate.
func (f Func[T]) Test(v T) bool {
	if f.Predicate == nil {
		return false
	}
	return f.Predicate(v)
}

// ActualValue applies Actual.
func (f Func[T]) ActualValue(v T) string {
	if f.Actual == nil {
		return ""
	}
	return f.Actual(v)
}

// ExpectedValue returns Expected.
func (f Func[T]) ExpectedValue() string { return f.Expected }

// Describe returns Subject.
func (f Func[T]) Describe(_ T) string { return f.Subject }
