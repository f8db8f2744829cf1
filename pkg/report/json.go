package report

import (
	"encoding/json"
	"io"
	"time"
)

// JSONReporter generates JSON reports from assertion records.
type JSONReporter struct {
	pretty bool
}

// NewJSONReporter creates a new JSON reporter. When pretty is
// true, output is indented for readability.
func NewJSONReporter(pretty bool) *JSONReporter {
	return &JSONReporter{pretty: pretty}
}

// GenerateReport creates a JSON report for a single record.
func (r *JSONReporter) GenerateReport(rec *Record) ([]byte, error) {
	return r.marshal(rec)
}

// jsonSummary is the JSON structure for a summary.
type jsonSummary struct {
	GeneratedAt   time.Time     `json:"generated_at"`
	Total         int           `json:"total"`
	Passed        int           `json:"passed"`
	Failed        int           `json:"failed"`
	TotalAttempts int           `json:"total_attempts"`
	TotalDuration time.Duration `json:"total_duration"`
	Records       []*Record     `json:"records"`
}

// GenerateSummary creates a JSON summary of all records.
func (r *JSONReporter) GenerateSummary(records []*Record) ([]byte, error) {
	summary := jsonSummary{
		GeneratedAt: time.Now(),
		Total:       len(records),
		Records:     records,
	}
	for _, rec := range records {
		if rec.Passed() {
			summary.Passed++
		} else {
			summary.Failed++
		}
		summary.TotalAttempts += rec.Attempts
		summary.TotalDuration += rec.Duration
	}
	return r.marshal(summary)
}

// WriteReport writes a JSON report to the specified writer.
func (r *JSONReporter) WriteReport(w io.Writer, rec *Record) error {
	data, err := r.GenerateReport(rec)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func (r *JSONReporter) marshal(v any) ([]byte, error) {
	if r.pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
