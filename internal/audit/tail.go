package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Filter selects entries from an audit log. Zero fields match everything.
type Filter struct {
	TraceID string
	Tool    string
	From    time.Time
	To      time.Time
	// Last keeps only the final N matching entries when positive.
	Last int
}

// Summary counts outcomes across the selected entries.
type Summary struct {
	Total          int            `json:"total"`
	OK             int            `json:"ok"`
	Errors         int            `json:"errors"`
	ByErrorKind    map[string]int `json:"by_error_kind"`
	ByTool         map[string]int `json:"by_tool"`
	FirstTimestamp string         `json:"first_timestamp,omitempty"`
	LastTimestamp  string         `json:"last_timestamp,omitempty"`
}

// TailResult holds the selected entries and their summary.
type TailResult struct {
	Entries []Entry `json:"entries"`
	Summary Summary `json:"summary"`
}

// Tail reads the log and returns entries matching the filter in file order.
// Malformed lines are skipped; Verify is the tool for integrity.
func Tail(path string, filter Filter) (*TailResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		if filter.match(entry) {
			entries = append(entries, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}

	if filter.Last > 0 && len(entries) > filter.Last {
		entries = entries[len(entries)-filter.Last:]
	}

	result := &TailResult{
		Entries: make([]Entry, 0, len(entries)),
		Summary: Summary{ByErrorKind: map[string]int{}, ByTool: map[string]int{}},
	}
	for _, e := range entries {
		result.Entries = append(result.Entries, e)
		result.Summary.add(e)
	}
	return result, nil
}

func (f Filter) match(e Entry) bool {
	if f.TraceID != "" && e.TraceID != f.TraceID {
		return false
	}
	if f.Tool != "" && e.Tool != f.Tool {
		return false
	}
	if f.From.IsZero() && f.To.IsZero() {
		return true
	}
	ts, err := time.Parse(TimestampFormat, e.Timestamp)
	if err != nil {
		return false
	}
	if !f.From.IsZero() && ts.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && ts.After(f.To) {
		return false
	}
	return true
}

func (s *Summary) add(e Entry) {
	s.Total++
	if e.Outcome == OutcomeError {
		s.Errors++
		s.ByErrorKind[e.ErrorKind]++
	} else {
		s.OK++
	}
	s.ByTool[e.Tool]++
	if s.FirstTimestamp == "" {
		s.FirstTimestamp = e.Timestamp
	}
	s.LastTimestamp = e.Timestamp
}
