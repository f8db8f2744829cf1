package report

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status values of a Record.
const (
	StatusPassed = "passed"
	StatusFailed = "failed"
)

// Record is the persisted outcome of one assertion.
type Record struct {
	ID         string        `json:"id"`
	Subject    string        `json:"subject"`
	Condition  string        `json:"condition"`
	Status     string        `json:"status"`
	Kind       string        `json:"kind,omitempty"`
	Message    string        `json:"message,omitempty"`
	Attempts   int           `json:"attempts"`
	Duration   time.Duration `json:"duration"`
	Timeout    time.Duration `json:"timeout"`
	Screenshot string        `json:"screenshot,omitempty"`
	PageSource string        `json:"page_source,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
}

// Passed reports whether the assertion succeeded.
func (r *Record) Passed() bool {
	return r.Status == StatusPassed
}

// Recorder accumulates records in memory. It is safe for
// concurrent use.
type Recorder struct {
	mu      sync.Mutex
	records []*Record
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Add stores a copy of rec, assigning an ID when it has none.
func (r *Recorder) Add(rec Record) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, &rec)
}

// Records returns the stored records in insertion order.
func (r *Recorder) Records() []*Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Record, len(r.records))
	copy(out, r.records)
	return out
}
