package assertion

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.conditions/pkg/collection"
	"digital.vasic.conditions/pkg/condition"
	"digital.vasic.conditions/pkg/config"
	"digital.vasic.conditions/pkg/failure"
	"digital.vasic.conditions/pkg/logging"
	"digital.vasic.conditions/pkg/metrics"
	"digital.vasic.conditions/pkg/monitor"
	"digital.vasic.conditions/pkg/report"
	"digital.vasic.conditions/pkg/wait"
	"digital.vasic.conditions/pkg/webdriver"
)

func fastEngine(opts ...Option) *Engine {
	cfg := config.Default()
	cfg.Timeout = 50 * time.Millisecond
	cfg.PollInterval = 10 * time.Millisecond
	return NewEngine(append([]Option{WithConfig(cfg)}, opts...)...)
}

// states yields browser states in order and repeats the last.
type states struct {
	mu    sync.Mutex
	items []webdriver.State
	calls int
}

func (s *states) Fetch(context.Context) (webdriver.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := min(s.calls, len(s.items)-1)
	s.calls++
	return s.items[i], nil
}

func (s *states) Label() string { return "webdriver" }

func texts(label string, items ...string) wait.Source[[]string] {
	return wait.Static(label, items)
}

func TestShouldHave_TextsMismatchReportsFirstDivergence(t *testing.T) {
	e := fastEngine()
	cond := collection.MustTexts("Three", "Two", "One")

	err := On(e, texts(".item", "One", "Two", "Three")).ShouldHaveWithin(
		context.Background(), cond, 10*time.Millisecond)

	require.ErrorIs(t, err, failure.ErrTextsMismatch)
	fe, ok := failure.As(err)
	require.True(t, ok)
	assert.Equal(t, strings.Join([]string{
		`Text #0 mismatch (expected: "Three", actual: "One")`,
		"Actual: [One, Two, Three]",
		"Expected: [Three, Two, One]",
		"Collection: .item",
		"Timeout: 10 ms.",
	}, "\n"), fe.Message)
}

func TestShouldHave_ListSizeMismatch(t *testing.T) {
	e := fastEngine()
	cond := collection.MustTexts("One", "Two", "Three", "Four")

	err := On(e, texts(".item", "One", "Two", "Three")).ShouldHave(context.Background(), cond)

	require.ErrorIs(t, err, failure.ErrListSizeMismatch)
	assert.Contains(t, err.Error(),
		"List size mismatch: expected: = 4, actual: 3, collection: .item")
	assert.Contains(t, err.Error(), "Timeout: 50 ms.")
}

func TestTexts_EmptyListIsConfigurationError(t *testing.T) {
	_, err := collection.TextsList(nil)
	require.ErrorIs(t, err, failure.ErrConfiguration)
	assert.EqualError(t, err, "No expected texts given")
}

func TestShouldHave_IndexOutOfRangeIsTargetNotFound(t *testing.T) {
	e := fastEngine()
	src := wait.FromFunc(".item[1]", func(context.Context) ([]string, error) {
		return nil, failure.IndexOutOfRange(".item[1]", 1, 0, true)
	})

	start := time.Now()
	err := On(e, src).ShouldHaveWithin(context.Background(),
		collection.MustTexts("One"), 5*time.Second)

	assert.Less(t, time.Since(start), time.Second, "structural errors fail fast")
	require.ErrorIs(t, err, failure.ErrTargetNotFound)
	assert.NotErrorIs(t, err, wait.ErrTimeout)
	le, ok := failure.AsLookup(err)
	require.True(t, ok)
	assert.Equal(t, failure.LookupIndexOutOfRange, le.Kind)

	lines := strings.Split(err.Error(), "\n")
	assert.Equal(t, "Element not found {.item[1]}", lines[0])
	assert.Equal(t, "Expected: should have texts [One]", lines[1])
	assert.Equal(t, "Timeout: 5000 ms.", lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "Caused by: index out of range"))
}

func TestShouldHave_TitleNeverMatches(t *testing.T) {
	e := fastEngine()
	src := &states{items: []webdriver.State{{Title: "Loading"}, {Title: "Other"}}}

	start := time.Now()
	err := On[webdriver.State](e, src).ShouldHaveWithin(
		context.Background(), webdriver.Title("X"), 10*time.Millisecond)

	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
	require.ErrorIs(t, err, failure.ErrConditionNotMet)
	fe, _ := failure.As(err)
	assert.Equal(t, "Page should have title X\nActual value: Other\nTimeout: 10 ms.", fe.Message)
	assert.Equal(t, "Page", fe.Subject)
	assert.Equal(t, "Other", fe.Actual)
	assert.Equal(t, "X", fe.Expected)
}

func TestShouldHave_URLBecomesAvailable(t *testing.T) {
	e := fastEngine()
	src := &states{items: []webdriver.State{
		{URL: "about:blank"}, {URL: "about:blank"}, {URL: "https://example.com/"},
	}}

	err := On[webdriver.State](e, src).ShouldHaveWithin(context.Background(),
		webdriver.URL("https://example.com/"), time.Second)

	require.NoError(t, err)
	assert.Equal(t, 3, src.calls)
}

func TestShouldHave_URLMessage(t *testing.T) {
	e := fastEngine()
	src := wait.Static("browser", webdriver.State{URL: "https://example.com/login"})

	err := On(e, src).ShouldHaveWithin(context.Background(),
		webdriver.URLStartingWith("https://example.com/home"), 0)

	require.ErrorIs(t, err, failure.ErrConditionNotMet)
	assert.Equal(t,
		"webdriver should have url starting with https://example.com/home\n"+
			"Actual value: https://example.com/login\nTimeout: 0 ms.",
		err.Error())
}

func TestShouldNotHave(t *testing.T) {
	e := fastEngine()
	src := wait.Static("browser", webdriver.State{Title: "Home"})

	err := On(e, src).ShouldNotHave(context.Background(), webdriver.Title("Home"))
	require.ErrorIs(t, err, failure.ErrConditionMet)
	assert.True(t, strings.HasPrefix(err.Error(), "Page should not have title Home\nActual value: Home"))

	require.NoError(t, On(e, src).ShouldNotHaveWithin(
		context.Background(), webdriver.Title("Away"), 0))
}

func TestShouldNotHave_Texts(t *testing.T) {
	e := fastEngine()
	err := On(e, texts(".item", "One")).ShouldNotHave(
		context.Background(), collection.MustTexts("one"))

	require.ErrorIs(t, err, failure.ErrConditionMet)
	assert.True(t, strings.HasPrefix(err.Error(), ".item should not have texts [one]"))
}

func TestShouldHave_TransientNotFoundUntilTimeout(t *testing.T) {
	e := fastEngine()
	src := wait.FromFunc("#menu", func(context.Context) ([]string, error) {
		return nil, failure.NotFound("#menu", false)
	})

	err := On(e, src).ShouldHave(context.Background(), collection.MustTexts("File"))

	require.ErrorIs(t, err, failure.ErrTargetNotFound)
	assert.Contains(t, err.Error(), "Caused by: no such element: {#menu}")
}

func TestShouldHave_EmptyCollection(t *testing.T) {
	e := fastEngine()
	err := On(e, texts(".missing")).ShouldHaveWithin(
		context.Background(), collection.MustTexts("One"), 0)

	require.ErrorIs(t, err, failure.ErrTargetNotFound)
	assert.True(t, strings.HasPrefix(err.Error(), "Element not found {.missing}"))
}

func TestShouldHave_Cancelled(t *testing.T) {
	e := fastEngine()
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	err := On(e, wait.Static("browser", webdriver.State{})).ShouldHaveWithin(
		ctx, webdriver.Title("X"), 10*time.Second)

	require.ErrorIs(t, err, failure.ErrCancelled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, failure.ErrConditionNotMet)
	assert.True(t, strings.HasPrefix(err.Error(), "Evaluation cancelled: Page should have title X"))
}

func TestShouldHave_ConfigurationErrors(t *testing.T) {
	e := fastEngine()
	src := wait.Static("browser", webdriver.State{})

	err := On(e, src).ShouldHave(context.Background(), nil)
	require.ErrorIs(t, err, failure.ErrConfiguration)

	err = On(e, src).ShouldHaveWithin(context.Background(), webdriver.Title("X"), -time.Second)
	require.ErrorIs(t, err, failure.ErrConfiguration)
	_, isFailure := failure.As(err)
	assert.False(t, isFailure)
}

func TestShouldHave_CustomCondition(t *testing.T) {
	e := fastEngine()
	src := wait.Static("browser", webdriver.State{Cookies: []webdriver.Cookie{{Name: "session_id", Value: "abc"}}})
	hasSession := condition.Func[webdriver.State]{
		Desc:    "should have a session cookie",
		Subject: "webdriver",
		Predicate: func(s webdriver.State) bool {
			_, ok := s.Cookie("session_id")
			return ok
		},
	}

	require.NoError(t, On(e, src).ShouldHave(context.Background(), hasSession))
	require.Error(t, On(e, src).ShouldNotHaveWithin(context.Background(), hasSession, 0))
}

func TestEngine_PublishesOutcomes(t *testing.T) {
	m := metrics.NewMemoryMetrics()
	events := monitor.NewEventCollector()
	recorder := report.NewRecorder()
	var logs bytes.Buffer
	logger := logging.NewConsoleWriterLogger(&logs, false)

	e := fastEngine(WithMetrics(m), WithEventCollector(events),
		WithRecorder(recorder), WithLogger(logger))
	src := wait.Static("browser", webdriver.State{Title: "Home"})

	require.NoError(t, On(e, src).ShouldHave(context.Background(), webdriver.Title("Home")))
	require.Error(t, On(e, src).ShouldHaveWithin(context.Background(), webdriver.Title("X"), 0))

	assert.Equal(t, 1, m.OutcomeCount("Page", "passed"))
	assert.Equal(t, 1, m.OutcomeCount("Page", "ConditionNotMet"))
	assert.Equal(t, 2, m.Attempts("Page"))
	current, peak := m.Active()
	assert.Equal(t, 0, current)
	assert.Equal(t, 1, peak)

	stats := events.Stats()
	assert.Equal(t, 1, stats.Passed)
	assert.Equal(t, 1, stats.Failed)
	assert.Len(t, events.Events(), 4)

	recs := e.Records()
	require.Len(t, recs, 2)
	assert.True(t, recs[0].Passed())
	assert.Equal(t, "ConditionNotMet", recs[1].Kind)
	assert.Contains(t, recs[1].Message, "Page should have title X")
	assert.NotEqual(t, recs[0].ID, recs[1].ID)

	assert.Contains(t, logs.String(), "status=passed")
	assert.Contains(t, logs.String(), "status=failed")
}

type fakeCapturer struct{}

func (fakeCapturer) CaptureScreenshot(context.Context) ([]byte, error) {
	return []byte("png"), nil
}

func (fakeCapturer) CapturePageSource(context.Context) (string, error) {
	return "", errors.New("detached")
}

func TestEngine_CapturerAddsScreenshot(t *testing.T) {
	cfg := config.Default()
	cfg.ReportsDir = t.TempDir()
	e := NewEngine(WithConfig(cfg), WithCapturer(fakeCapturer{}))

	err := On(e, wait.Static("browser", webdriver.State{Title: "A"})).ShouldHaveWithin(
		context.Background(), webdriver.Title("B"), 0)

	fe, ok := failure.As(err)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(fe.Screenshot, "file://"+cfg.ReportsDir))
	assert.Empty(t, fe.PageSource)
	assert.Contains(t, fe.Message, "\nScreenshot: file://")
	assert.NotContains(t, fe.Message, "Page source:")
}

func TestEngine_ConcurrentAssertions(t *testing.T) {
	m := metrics.NewMemoryMetrics()
	e := fastEngine(WithMetrics(m))
	src := wait.Static("browser", webdriver.State{Title: "Home"})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, On(e, src).ShouldHave(context.Background(), webdriver.Title("Home")))
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, m.OutcomeCount("Page", "passed"))
}

func TestEngine_ServeMonitor(t *testing.T) {
	e := NewEngine()
	assert.ErrorIs(t, e.ServeMonitor(context.Background()), ErrMonitorDisabled)

	cfg := config.Default()
	cfg.MonitorAddr = "127.0.0.1:0"
	assert.Error(t, NewEngine(WithConfig(cfg)).ServeMonitor(context.Background()))

	e = NewEngine(WithConfig(cfg), WithEventCollector(monitor.NewEventCollector()))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.ServeMonitor(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not stop")
	}
}

func TestEngine_Defaults(t *testing.T) {
	e := NewEngine()
	assert.Equal(t, config.Default(), e.Config())
	assert.Nil(t, e.Records())
}
