package metrics

import (
	"sort"
	"sync"
	"time"
)

// MemoryMetrics implements AssertionMetrics with counters and
// duration samples kept in memory. Export to a monitoring
// system is left to the host application.
type MemoryMetrics struct {
	mu         sync.Mutex
	outcomes   map[string]int
	attempts   map[string]int
	durations  map[string][]time.Duration
	total      int
	active     int
	peakActive int
}

// NewMemoryMetrics creates a new MemoryMetrics instance.
func NewMemoryMetrics() *MemoryMetrics {
	return &MemoryMetrics{
		outcomes:  make(map[string]int),
		attempts:  make(map[string]int),
		durations: make(map[string][]time.Duration),
	}
}

func (m *MemoryMetrics) RecordAssertion(subject, status string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[subject+":"+status]++
	m.durations[subject] = append(m.durations[subject], duration)
	m.total++
}

func (m *MemoryMetrics) RecordAttempts(subject string, attempts int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts[subject] += attempts
}

func (m *MemoryMetrics) IncrementActive() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active++
	if m.active > m.peakActive {
		m.peakActive = m.active
	}
}

func (m *MemoryMetrics) DecrementActive() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active > 0 {
		m.active--
	}
}

// OutcomeCount returns the count for a subject+status pair.
func (m *MemoryMetrics) OutcomeCount(subject, status string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.outcomes[subject+":"+status]
}

// Attempts returns the total poll attempts for a subject.
func (m *MemoryMetrics) Attempts(subject string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts[subject]
}

// Total returns the number of recorded assertions.
func (m *MemoryMetrics) Total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.total
}

// Active returns the number of assertions currently polling and
// the highest number seen at once.
func (m *MemoryMetrics) Active() (current, peak int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active, m.peakActive
}

// Percentile returns the p-th percentile (0-100) of recorded
// durations for a subject, or zero when nothing was recorded.
func (m *MemoryMetrics) Percentile(subject string, p float64) time.Duration {
	m.mu.Lock()
	samples := append([]time.Duration(nil), m.durations[subject]...)
	m.mu.Unlock()

	if len(samples) == 0 {
		return 0
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	idx := int(p / 100 * float64(len(samples)-1))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(samples) {
		idx = len(samples) - 1
	}
	return samples[idx]
}
