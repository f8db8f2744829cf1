package report

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"
	"time"
)

// HTMLReporter generates HTML reports from assertion records.
type HTMLReporter struct{}

// NewHTMLReporter creates a new HTML reporter.
func NewHTMLReporter() *HTMLReporter {
	return &HTMLReporter{}
}

// GenerateReport creates an HTML report for a single record.
func (r *HTMLReporter) GenerateReport(rec *Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.WriteReport(&buf, rec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteReport writes an HTML report to the specified writer.
func (r *HTMLReporter) WriteReport(w io.Writer, rec *Record) error {
	title := rec.Subject + " " + rec.Condition
	r.writeHeader(w, title)
	fmt.Fprintf(w, "<h1>%s</h1>\n", html.EscapeString(title))
	fmt.Fprintf(w, "<p><strong>Assertion ID:</strong> %s</p>\n",
		html.EscapeString(rec.ID))
	r.writeRecordTable(w, rec)
	r.writeFooter(w)
	return nil
}

func statusClass(rec *Record) string {
	if rec.Passed() {
		return "status-passed"
	}
	return "status-failed"
}

func (r *HTMLReporter) writeRecordTable(w io.Writer, rec *Record) {
	fmt.Fprintln(w, "<table>")
	fmt.Fprintln(w, "<tr><th>Field</th><th>Value</th></tr>")
	fmt.Fprintf(w,
		"<tr><td>Status</td><td class=\"%s\"><strong>%s</strong></td></tr>\n",
		statusClass(rec), strings.ToUpper(rec.Status))
	if rec.Kind != "" {
		fmt.Fprintf(w, "<tr><td>Kind</td><td>%s</td></tr>\n",
			html.EscapeString(rec.Kind))
	}
	fmt.Fprintf(w, "<tr><td>Started</td><td>%s</td></tr>\n",
		rec.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "<tr><td>Duration</td><td>%v</td></tr>\n", rec.Duration)
	fmt.Fprintf(w, "<tr><td>Timeout</td><td>%v</td></tr>\n", rec.Timeout)
	fmt.Fprintf(w, "<tr><td>Attempts</td><td>%d</td></tr>\n", rec.Attempts)
	if rec.Screenshot != "" {
		fmt.Fprintf(w,
			"<tr><td>Screenshot</td><td><a href=\"%s\">%s</a></td></tr>\n",
			html.EscapeString(rec.Screenshot), html.EscapeString(rec.Screenshot))
	}
	if rec.PageSource != "" {
		fmt.Fprintf(w,
			"<tr><td>Page source</td><td><a href=\"%s\">%s</a></td></tr>\n",
			html.EscapeString(rec.PageSource), html.EscapeString(rec.PageSource))
	}
	fmt.Fprintln(w, "</table>")
	if rec.Message != "" {
		fmt.Fprintf(w, "<pre>%s</pre>\n", html.EscapeString(rec.Message))
	}
}

// GenerateSummary creates an HTML summary of all records.
func (r *HTMLReporter) GenerateSummary(records []*Record) ([]byte, error) {
	var buf bytes.Buffer
	summary := BuildSummary(records)

	r.writeHeader(&buf, "Assertion Summary")
	fmt.Fprintln(&buf, "<h1>Assertion Summary</h1>")
	fmt.Fprintf(&buf, "<p><strong>Generated:</strong> %s</p>\n",
		summary.GeneratedAt.Format(time.RFC3339))

	fmt.Fprintln(&buf, "<h2>Overview</h2>")
	fmt.Fprintln(&buf, "<table>")
	fmt.Fprintln(&buf,
		"<tr><th>Subject</th><th>Condition</th><th>Status</th>"+
			"<th>Attempts</th><th>Duration</th></tr>")
	for _, rec := range records {
		fmt.Fprintf(&buf,
			"<tr><td>%s</td><td>%s</td><td class=\"%s\">%s</td>"+
				"<td>%d</td><td>%v</td></tr>\n",
			html.EscapeString(rec.Subject),
			html.EscapeString(rec.Condition),
			statusClass(rec), strings.ToUpper(rec.Status),
			rec.Attempts, rec.Duration)
	}
	fmt.Fprintln(&buf, "</table>")

	fmt.Fprintln(&buf, "<h2>Statistics</h2>")
	fmt.Fprintln(&buf, "<table>")
	fmt.Fprintln(&buf, "<tr><th>Metric</th><th>Value</th></tr>")
	fmt.Fprintf(&buf, "<tr><td>Total</td><td>%d</td></tr>\n", summary.Total)
	fmt.Fprintf(&buf, "<tr><td>Passed</td><td>%d</td></tr>\n", summary.Passed)
	fmt.Fprintf(&buf, "<tr><td>Failed</td><td>%d</td></tr>\n", summary.Failed)
	fmt.Fprintf(&buf, "<tr><td>Pass Rate</td><td>%.0f%%</td></tr>\n",
		summary.PassRate*100)
	fmt.Fprintln(&buf, "</table>")

	if len(summary.Failures) > 0 {
		fmt.Fprintln(&buf, "<h2>Failures</h2>")
		for _, f := range summary.Failures {
			fmt.Fprintf(&buf, "<h3>%s</h3>\n",
				html.EscapeString(f.Subject+" "+f.Condition))
			fmt.Fprintf(&buf, "<pre>%s</pre>\n", html.EscapeString(f.Message))
		}
	}

	r.writeFooter(&buf)
	return buf.Bytes(), nil
}

func (r *HTMLReporter) writeHeader(w io.Writer, title string) {
	fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
<style>
body {
  font-family: -apple-system, BlinkMacSystemFont,
    "Segoe UI", Roboto, sans-serif;
  max-width: 960px;
  margin: 0 auto;
  padding: 20px;
  color: #333;
  background: #f9f9f9;
}
h1 { color: #2c3e50; border-bottom: 2px solid #3498db; padding-bottom: 10px; }
h2 { color: #2c3e50; margin-top: 30px; }
table { border-collapse: collapse; width: 100%%; margin: 10px 0; background: #fff; }
th, td { border: 1px solid #ddd; padding: 8px 12px; text-align: left; }
th { background: #3498db; color: #fff; }
.status-passed { color: #27ae60; font-weight: bold; }
.status-failed { color: #e74c3c; font-weight: bold; }
pre { background: #ecf0f1; padding: 10px; white-space: pre-wrap; }
footer { margin-top: 40px; border-top: 1px solid #ddd; color: #7f8c8d; }
</style>
</head>
<body>
`, html.EscapeString(title))
}

func (r *HTMLReporter) writeFooter(w io.Writer) {
	fmt.Fprintln(w, "<footer>")
	fmt.Fprintln(w, "<p>Generated by digital.vasic.conditions</p>")
	fmt.Fprintln(w, "</footer>")
	fmt.Fprintln(w, "</body>")
	fmt.Fprintln(w, "</html>")
}
