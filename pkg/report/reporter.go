// Package report renders assertion records as JSON, Markdown and
// HTML, and keeps a JSON Lines history of past runs.
package report

import "io"

// Reporter defines the interface for generating assertion
// reports.
type Reporter interface {
	// GenerateReport creates a report for a single record.
	GenerateReport(rec *Record) ([]byte, error)

	// GenerateSummary creates a summary of all records.
	GenerateSummary(records []*Record) ([]byte, error)

	// WriteReport writes a report to the specified writer.
	WriteReport(w io.Writer, rec *Record) error
}
