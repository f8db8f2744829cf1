package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// HistoricalEntry represents a single assertion in the
// historical log.
type HistoricalEntry struct {
	Timestamp time.Time `json:"timestamp"`
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	Condition string    `json:"condition"`
	Status    string    `json:"status"`
	Kind      string    `json:"kind,omitempty"`
	Attempts  int       `json:"attempts"`
	Duration  string    `json:"duration"`
}

// AppendToHistory adds an entry to the historical log stored
// at historyPath. Each entry is a single JSON line.
func AppendToHistory(historyPath string, rec *Record) error {
	entry := HistoricalEntry{
		Timestamp: rec.StartedAt,
		ID:        rec.ID,
		Subject:   rec.Subject,
		Condition: rec.Condition,
		Status:    rec.Status,
		Kind:      rec.Kind,
		Attempts:  rec.Attempts,
		Duration:  rec.Duration.String(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal history entry: %w", err)
	}

	file, err := os.OpenFile(
		historyPath,
		os.O_CREATE|os.O_APPEND|os.O_WRONLY,
		0644,
	)
	if err != nil {
		return fmt.Errorf("failed to open history file: %w", err)
	}
	defer func() { _ = file.Close() }()

	_, err = fmt.Fprintln(file, string(data))
	return err
}

// ReadHistory reads all entries from a history file.
func ReadHistory(historyPath string) ([]HistoricalEntry, error) {
	file, err := os.Open(historyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var entries []HistoricalEntry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var e HistoricalEntry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			return entries, fmt.Errorf("failed to parse history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, scanner.Err()
}
