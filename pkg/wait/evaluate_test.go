package wait

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.conditions/pkg/condition"
	"digital.vasic.conditions/pkg/failure"
	"digital.vasic.conditions/pkg/logging"
)

// sequence yields the scripted steps in order and repeats the
// last one.
type sequence struct {
	mu    sync.Mutex
	steps []step
	calls int
}

type step struct {
	value string
	err   error
}

func (s *sequence) Fetch(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	if i >= len(s.steps) {
		i = len(s.steps) - 1
	}
	s.calls++
	return s.steps[i].value, s.steps[i].err
}

func (s *sequence) Label() string { return "#target" }

func equals(want string) condition.Func[string] {
	return condition.Func[string]{
		Desc:      "should be " + want,
		Expected:  want,
		Predicate: func(v string) bool { return v == want },
		Actual:    func(v string) string { return v },
	}
}

func fast(timeout time.Duration) Options {
	return Options{Timeout: timeout, PollInterval: MinPollInterval}
}

func TestEvaluate_MatchesImmediately(t *testing.T) {
	res, err := Evaluate(context.Background(),
		Static("title", "Home"), equals("Home"), fast(time.Second))

	require.NoError(t, err)
	assert.Equal(t, ReasonMatched, res.Reason)
	assert.Equal(t, 1, res.Attempts)
	assert.True(t, res.Matched)
	assert.True(t, res.Fetched)
	assert.Equal(t, "Home", res.Value)
	assert.Less(t, res.Elapsed, 500*time.Millisecond)
}

func TestEvaluate_MatchesAfterMutation(t *testing.T) {
	src := &sequence{steps: []step{
		{value: "loading"}, {value: "loading"}, {value: "Home"},
	}}

	res, err := Evaluate(context.Background(), src, equals("Home"), fast(2*time.Second))

	require.NoError(t, err)
	assert.Equal(t, 3, res.Attempts)
}

func TestEvaluate_TimeoutBounds(t *testing.T) {
	timeout := 60 * time.Millisecond
	poll := 20 * time.Millisecond

	start := time.Now()
	res, err := Evaluate(context.Background(),
		Static("title", "Other"), equals("Home"),
		Options{Timeout: timeout, PollInterval: poll})
	elapsed := time.Since(start)

	require.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, ReasonTimeout, res.Reason)
	assert.GreaterOrEqual(t, elapsed, timeout)
	assert.Less(t, elapsed, timeout+poll+100*time.Millisecond)
	assert.Equal(t, "Other", res.Value)
	assert.False(t, res.Matched)
	assert.Greater(t, res.Attempts, 1)
}

func TestEvaluate_ZeroTimeoutSingleCycle(t *testing.T) {
	src := &sequence{steps: []step{{value: "a"}, {value: "Home"}}}

	res, err := Evaluate(context.Background(), src, equals("Home"), fast(0))

	require.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, 1, src.calls)
}

func TestEvaluate_TransientLookupRecovers(t *testing.T) {
	src := &sequence{steps: []step{
		{err: failure.NotFound("#target", false)},
		{err: failure.IndexOutOfRange("#target", 1, 0, false)},
		{value: "Home"},
	}}

	res, err := Evaluate(context.Background(), src, equals("Home"), fast(2*time.Second))

	require.NoError(t, err)
	assert.Equal(t, 3, res.Attempts)
	assert.Nil(t, res.Cause)
}

func TestEvaluate_TransientLookupUntilTimeout(t *testing.T) {
	src := &sequence{steps: []step{{err: failure.NotFound("#target", false)}}}

	res, err := Evaluate(context.Background(), src, equals("Home"), fast(30*time.Millisecond))

	require.ErrorIs(t, err, ErrTimeout)
	assert.False(t, res.Fetched)
	le, ok := failure.AsLookup(res.Cause)
	require.True(t, ok)
	assert.Equal(t, failure.LookupNotFound, le.Kind)
}

func TestEvaluate_StructuralLookupFailsFast(t *testing.T) {
	src := &sequence{steps: []step{
		{err: failure.IndexOutOfRange("#target", 5, 2, true)},
	}}

	start := time.Now()
	res, err := Evaluate(context.Background(), src, equals("Home"), fast(5*time.Second))

	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, ReasonFetchFailed, res.Reason)
	assert.Equal(t, 1, res.Attempts)
	le, ok := failure.AsLookup(err)
	require.True(t, ok)
	assert.Equal(t, failure.LookupIndexOutOfRange, le.Kind)
}

func TestEvaluate_UnknownFetchErrorFailsFast(t *testing.T) {
	boom := errors.New("driver crashed")
	src := &sequence{steps: []step{{err: boom}}}

	res, err := Evaluate(context.Background(), src, equals("Home"), fast(5*time.Second))

	require.ErrorIs(t, err, boom)
	assert.Equal(t, ReasonFetchFailed, res.Reason)
	assert.Contains(t, err.Error(), "fetch #target")
}

func TestEvaluate_CancelledDuringSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(30*time.Millisecond, cancel)

	start := time.Now()
	res, err := Evaluate(ctx, Static("title", "Other"), equals("Home"),
		Options{Timeout: 5 * time.Second, PollInterval: time.Second})

	require.ErrorIs(t, err, failure.ErrCancelled)
	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrTimeout)
	assert.Equal(t, ReasonCancelled, res.Reason)
	assert.Less(t, time.Since(start), time.Second)
}

func TestEvaluate_AlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Evaluate(ctx, Static("title", "Home"), equals("Home"), fast(time.Second))

	require.ErrorIs(t, err, failure.ErrCancelled)
	assert.Equal(t, 0, res.Attempts)
}

func TestEvaluate_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"negative timeout", Options{Timeout: -time.Second, PollInterval: time.Millisecond}},
		{"zero poll", Options{Timeout: time.Second}},
		{"negative poll", Options{Timeout: time.Second, PollInterval: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &sequence{steps: []step{{value: "Home"}}}
			_, err := Evaluate(context.Background(), src, equals("Home"), tt.opts)
			require.ErrorIs(t, err, failure.ErrConfiguration)
			assert.Equal(t, 0, src.calls)
		})
	}
}

func TestEvaluate_NegatedCondition(t *testing.T) {
	src := &sequence{steps: []step{{value: "Home"}, {value: "Away"}}}

	res, err := Evaluate(context.Background(), src,
		condition.Not[string](equals("Home")), fast(time.Second))

	require.NoError(t, err)
	assert.Equal(t, "Away", res.Value)
}

func TestEvaluate_LogsAttempts(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewConsoleWriterLogger(&buf, true)
	var attempts []Attempt

	src := &sequence{steps: []step{
		{err: failure.NotFound("#target", false)}, {value: "Home"},
	}}
	opts := fast(time.Second)
	opts.Logger = logger
	opts.AssertionID = "a-1"
	opts.OnAttempt = func(a Attempt) { attempts = append(attempts, a) }

	_, err := Evaluate(context.Background(), src, equals("Home"), opts)

	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Error(t, attempts[0].Err)
	assert.True(t, attempts[1].Matched)
	assert.Contains(t, buf.String(), "#target should be Home")
	assert.Contains(t, buf.String(), "assertion_id=a-1")
}

func TestOptions_PollIntervalClamp(t *testing.T) {
	assert.Equal(t, MinPollInterval, Options{PollInterval: time.Nanosecond}.pollInterval())
	assert.Equal(t, time.Second, Options{PollInterval: time.Second}.pollInterval())
	assert.Equal(t, DefaultTimeout, DefaultOptions().Timeout)
}

func TestReason_String(t *testing.T) {
	assert.Equal(t, "matched", ReasonMatched.String())
	assert.Equal(t, "timeout", ReasonTimeout.String())
	assert.Equal(t, "fetch_failed", ReasonFetchFailed.String())
	assert.Equal(t, "cancelled", ReasonCancelled.String())
	assert.Equal(t, "unknown", Reason(0).String())
}

func TestFromFunc(t *testing.T) {
	src := FromFunc("fn", func(context.Context) (int, error) { return 7, nil })
	v, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, "fn", src.Label())
}
