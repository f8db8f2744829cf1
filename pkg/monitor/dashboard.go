package monitor

import (
	"sync"
	"time"
)

// DashboardData provides a real-time snapshot of assertion
// state.
type DashboardData struct {
	mu         sync.RWMutex
	RunID      string                    `json:"run_id"`
	StartTime  time.Time                 `json:"start_time"`
	Status     string                    `json:"status"`
	Assertions map[string]AssertionState `json:"assertions"`
	Summary    DashboardSummary          `json:"summary"`
}

// AssertionState is the latest known state of one assertion.
type AssertionState struct {
	ID        string        `json:"id"`
	Subject   string        `json:"subject"`
	Condition string        `json:"condition"`
	Status    string        `json:"status"`
	Kind      string        `json:"kind,omitempty"`
	Attempts  int           `json:"attempts,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
	Message   string        `json:"message,omitempty"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// DashboardSummary holds aggregate stats for the dashboard.
type DashboardSummary struct {
	Total     int     `json:"total"`
	Passed    int     `json:"passed"`
	Failed    int     `json:"failed"`
	Cancelled int     `json:"cancelled"`
	Polling   int     `json:"polling"`
	PassRate  float64 `json:"pass_rate"`
	Elapsed   string  `json:"elapsed"`
}

// NewDashboardData creates a new dashboard data instance.
func NewDashboardData(runID string) *DashboardData {
	return &DashboardData{
		RunID:      runID,
		StartTime:  time.Now(),
		Status:     "running",
		Assertions: make(map[string]AssertionState),
	}
}

// UpdateFromEvent updates dashboard state from an event.
func (d *DashboardData) UpdateFromEvent(event AssertionEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	state, exists := d.Assertions[event.AssertionID]
	if !exists {
		state = AssertionState{
			ID:        event.AssertionID,
			Subject:   event.Subject,
			Condition: event.Condition,
		}
	}

	switch event.Type {
	case EventStarted:
		state.Status = "polling"
	case EventPassed:
		state.Status = "passed"
	case EventFailed:
		state.Status = "failed"
		state.Kind = event.Kind
		state.Message = event.Message
	case EventCancelled:
		state.Status = "cancelled"
		state.Kind = event.Kind
	}
	if event.Attempts > 0 {
		state.Attempts = event.Attempts
	}
	if event.Duration > 0 {
		state.Duration = event.Duration
	}
	state.UpdatedAt = event.Timestamp

	d.Assertions[event.AssertionID] = state
	d.recalcSummary()
}

func (d *DashboardData) recalcSummary() {
	s := DashboardSummary{}
	for _, a := range d.Assertions {
		s.Total++
		switch a.Status {
		case "passed":
			s.Passed++
		case "failed":
			s.Failed++
		case "cancelled":
			s.Cancelled++
		default:
			s.Polling++
		}
	}
	if completed := s.Passed + s.Failed; completed > 0 {
		s.PassRate = float64(s.Passed) / float64(completed) * 100
	}
	s.Elapsed = time.Since(d.StartTime).Round(time.Millisecond).String()
	d.Summary = s
}

// Snapshot returns a copy of the current dashboard state.
func (d *DashboardData) Snapshot() *DashboardData {
	d.mu.RLock()
	defer d.mu.RUnlock()
	snap := &DashboardData{
		RunID:      d.RunID,
		StartTime:  d.StartTime,
		Status:     d.Status,
		Summary:    d.Summary,
		Assertions: make(map[string]AssertionState, len(d.Assertions)),
	}
	for k, v := range d.Assertions {
		snap.Assertions[k] = v
	}
	return snap
}

// SetStatus sets the overall run status.
func (d *DashboardData) SetStatus(status string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Status = status
}

// BuildDashboardData creates a DashboardData snapshot from an
// EventCollector by replaying all collected events.
func BuildDashboardData(
	collector *EventCollector,
) *DashboardData {
	data := NewDashboardData("snapshot")
	for _, event := range collector.Events() {
		data.UpdateFromEvent(event)
	}
	return data
}
