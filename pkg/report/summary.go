package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Summary aggregates the records of a run.
type Summary struct {
	ID            string           `json:"id"`
	GeneratedAt   time.Time        `json:"generated_at"`
	Total         int              `json:"total"`
	Passed        int              `json:"passed"`
	Failed        int              `json:"failed"`
	PassRate      float64          `json:"pass_rate"`
	TotalAttempts int              `json:"total_attempts"`
	TotalDuration time.Duration    `json:"total_duration"`
	ByKind        map[string]int   `json:"by_kind"`
	Subjects      []SubjectSummary `json:"subjects"`
	Failures      []*Record        `json:"failures"`
}

// SubjectSummary aggregates the records of one subject.
type SubjectSummary struct {
	Subject  string        `json:"subject"`
	Passed   int           `json:"passed"`
	Total    int           `json:"total"`
	Attempts int           `json:"attempts"`
	Duration time.Duration `json:"duration"`
}

// BuildSummary creates a summary from records.
func BuildSummary(records []*Record) *Summary {
	now := time.Now()
	summary := &Summary{
		ID:          "summary_" + now.Format("20060102_150405"),
		GeneratedAt: now,
		ByKind:      make(map[string]int),
		Failures:    make([]*Record, 0),
	}

	subjects := make(map[string]*SubjectSummary)
	for _, r := range records {
		summary.Total++
		summary.TotalAttempts += r.Attempts
		summary.TotalDuration += r.Duration

		s, ok := subjects[r.Subject]
		if !ok {
			s = &SubjectSummary{Subject: r.Subject}
			subjects[r.Subject] = s
		}
		s.Total++
		s.Attempts += r.Attempts
		s.Duration += r.Duration

		if r.Passed() {
			summary.Passed++
			s.Passed++
			continue
		}
		summary.Failed++
		summary.ByKind[r.Kind]++
		summary.Failures = append(summary.Failures, r)
	}

	for _, s := range subjects {
		summary.Subjects = append(summary.Subjects, *s)
	}
	sort.Slice(summary.Subjects, func(i, j int) bool {
		return summary.Subjects[i].Subject < summary.Subjects[j].Subject
	})

	if summary.Total > 0 {
		summary.PassRate = float64(summary.Passed) / float64(summary.Total)
	}
	return summary
}

// SaveSummary saves the summary to both JSON and Markdown files
// in the given output directory, and points latest_summary.*
// symlinks at them.
func SaveSummary(summary *Summary, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	ts := summary.GeneratedAt.Format("20060102_150405")

	jsonPath := filepath.Join(outputDir, fmt.Sprintf("summary_%s.json", ts))
	jsonData, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := os.WriteFile(jsonPath, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write JSON summary: %w", err)
	}

	mdPath := filepath.Join(outputDir, fmt.Sprintf("summary_%s.md", ts))
	if err := os.WriteFile(mdPath, []byte(GenerateMarkdown(summary)), 0644); err != nil {
		return fmt.Errorf("failed to write Markdown summary: %w", err)
	}

	latestJSON := filepath.Join(outputDir, "latest_summary.json")
	latestMD := filepath.Join(outputDir, "latest_summary.md")

	_ = os.Remove(latestJSON)
	_ = os.Remove(latestMD)
	_ = os.Symlink(filepath.Base(jsonPath), latestJSON)
	_ = os.Symlink(filepath.Base(mdPath), latestMD)

	return nil
}

// GenerateMarkdown renders a summary as Markdown.
func GenerateMarkdown(summary *Summary) string {
	var sb strings.Builder

	sb.WriteString("# Assertion Summary\n\n")
	fmt.Fprintf(&sb, "**Summary ID:** %s\n\n", summary.ID)
	fmt.Fprintf(&sb, "**Generated:** %s\n\n",
		summary.GeneratedAt.Format(time.RFC3339))

	sb.WriteString("## Subjects\n\n")
	sb.WriteString("| Subject | Passed | Attempts | Duration |\n")
	sb.WriteString("|---------|--------|----------|----------|\n")
	for _, s := range summary.Subjects {
		fmt.Fprintf(&sb, "| %s | %d/%d | %d | %v |\n",
			escapeCell(s.Subject), s.Passed, s.Total, s.Attempts, s.Duration)
	}

	sb.WriteString("\n## Statistics\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	fmt.Fprintf(&sb, "| Total Assertions | %d |\n", summary.Total)
	fmt.Fprintf(&sb, "| Passed | %d |\n", summary.Passed)
	fmt.Fprintf(&sb, "| Failed | %d |\n", summary.Failed)
	fmt.Fprintf(&sb, "| Pass Rate | %.0f%% |\n", summary.PassRate*100)
	fmt.Fprintf(&sb, "| Poll Attempts | %d |\n", summary.TotalAttempts)
	fmt.Fprintf(&sb, "| Total Duration | %v |\n", summary.TotalDuration)

	if len(summary.Failures) > 0 {
		sb.WriteString("\n## Failures\n")
		for _, f := range summary.Failures {
			fmt.Fprintf(&sb, "\n### %s %s (%s)\n\n",
				f.Subject, f.Condition, f.Kind)
			sb.WriteString("```\n")
			sb.WriteString(f.Message)
			sb.WriteString("\n```\n")
		}
	}

	return sb.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
