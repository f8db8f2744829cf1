// Package monitor collects assertion lifecycle events and serves
// them live to dashboards over WebSocket and Server-Sent Events.
package monitor

import "time"

// EventType represents the type of assertion event.
type EventType string

const (
	EventStarted   EventType = "started"
	EventPassed    EventType = "passed"
	EventFailed    EventType = "failed"
	EventCancelled EventType = "cancelled"
)

// AssertionEvent represents a lifecycle event of one assertion.
type AssertionEvent struct {
	Type        EventType     `json:"type"`
	AssertionID string        `json:"assertion_id"`
	Subject     string        `json:"subject"`
	Condition   string        `json:"condition"`
	Kind        string        `json:"kind,omitempty"`
	Message     string        `json:"message,omitempty"`
	Attempts    int           `json:"attempts,omitempty"`
	Duration    time.Duration `json:"duration,omitempty"`
	Timestamp   time.Time     `json:"timestamp"`
}
