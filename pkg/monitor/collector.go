package monitor

import (
	"sync"
	"time"
)

// EventCollector captures assertion events and timing data.
type EventCollector struct {
	mu       sync.RWMutex
	events   []AssertionEvent
	handlers []func(AssertionEvent)
	stats    CollectorStats
}

// CollectorStats holds aggregate statistics.
type CollectorStats struct {
	Total     int           `json:"total"`
	Passed    int           `json:"passed"`
	Failed    int           `json:"failed"`
	Cancelled int           `json:"cancelled"`
	Attempts  int           `json:"attempts"`
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration"`
}

// NewEventCollector creates a new event collector.
func NewEventCollector() *EventCollector {
	return &EventCollector{
		events: make([]AssertionEvent, 0, 64),
		stats:  CollectorStats{StartTime: time.Now()},
	}
}

// OnEvent registers a handler to be called for each event.
func (c *EventCollector) OnEvent(handler func(AssertionEvent)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, handler)
}

// Emit records an event and notifies all handlers.
func (c *EventCollector) Emit(event AssertionEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	c.mu.Lock()
	c.events = append(c.events, event)
	switch event.Type {
	case EventPassed:
		c.stats.Total++
		c.stats.Passed++
	case EventFailed:
		c.stats.Total++
		c.stats.Failed++
	case EventCancelled:
		c.stats.Total++
		c.stats.Cancelled++
	}
	c.stats.Attempts += event.Attempts
	c.stats.Duration = time.Since(c.stats.StartTime)
	handlers := make([]func(AssertionEvent), len(c.handlers))
	copy(handlers, c.handlers)
	c.mu.Unlock()

	for _, h := range handlers {
		h(event)
	}
}

// EmitStarted emits an assertion started event.
func (c *EventCollector) EmitStarted(id, subject, cond string) {
	c.Emit(AssertionEvent{
		Type:        EventStarted,
		AssertionID: id,
		Subject:     subject,
		Condition:   cond,
	})
}

// EmitPassed emits an assertion passed event.
func (c *EventCollector) EmitPassed(
	id, subject, cond string, attempts int, duration time.Duration,
) {
	c.Emit(AssertionEvent{
		Type:        EventPassed,
		AssertionID: id,
		Subject:     subject,
		Condition:   cond,
		Attempts:    attempts,
		Duration:    duration,
	})
}

// EmitFailed emits an assertion failed event. Cancelled
// evaluations are reported with EventCancelled.
func (c *EventCollector) EmitFailed(
	id, subject, cond, kind, msg string,
	attempts int, duration time.Duration,
) {
	typ := EventFailed
	if kind == "Cancelled" {
		typ = EventCancelled
	}
	c.Emit(AssertionEvent{
		Type:        typ,
		AssertionID: id,
		Subject:     subject,
		Condition:   cond,
		Kind:        kind,
		Message:     msg,
		Attempts:    attempts,
		Duration:    duration,
	})
}

// Events returns a copy of all collected events.
func (c *EventCollector) Events() []AssertionEvent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]AssertionEvent, len(c.events))
	copy(result, c.events)
	return result
}

// Stats returns the current aggregate statistics.
func (c *EventCollector) Stats() CollectorStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.stats
	s.Duration = time.Since(s.StartTime)
	return s
}

// Reset clears all collected events and statistics.
func (c *EventCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = c.events[:0]
	c.stats = CollectorStats{StartTime: time.Now()}
}
