package audit

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

const separator = "──────────────────────────────────────────────────────────────────"

// FormatTimeline renders a TailResult as a text timeline.
func FormatTimeline(result *TailResult) string {
	if len(result.Entries) == 0 {
		return "No entries found.\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Audit: %s to %s UTC\n",
		formatDateTime(result.Summary.FirstTimestamp), formatDateTime(result.Summary.LastTimestamp))
	b.WriteString(separator + "\n")

	for _, e := range result.Entries {
		outcome := strings.ToUpper(e.Outcome)
		if e.Outcome == OutcomeError {
			outcome = e.ErrorKind
			if e.ErrorField != "" {
				outcome += "(" + e.ErrorField + ")"
			}
		}
		fmt.Fprintf(&b, "%-10s %-14s %-34s %-32s %5dms\n",
			formatTimeOnly(e.Timestamp), truncate(e.TraceID, 14), truncate(e.Tool, 34), truncate(outcome, 32), e.ElapsedMS)
	}

	b.WriteString(separator + "\n")
	b.WriteString(formatSummary(result.Summary))
	return b.String()
}

// FormatJSON renders a TailResult as indented JSON.
func FormatJSON(result *TailResult) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal audit entries: %w", err)
	}
	return string(data), nil
}

func formatDateTime(ts string) string {
	t, err := time.Parse(TimestampFormat, ts)
	if err != nil {
		return ts
	}
	return t.Format("2006-01-02 15:04:05")
}

func formatTimeOnly(ts string) string {
	t, err := time.Parse(TimestampFormat, ts)
	if err != nil {
		return ts
	}
	return t.Format("15:04:05")
}

func formatSummary(s Summary) string {
	line := fmt.Sprintf("Summary: %d calls, %d ok, %d errors", s.Total, s.OK, s.Errors)
	if len(s.ByErrorKind) == 0 {
		return line + "\n"
	}
	kinds := make([]string, 0, len(s.ByErrorKind))
	for k := range s.ByErrorKind {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = fmt.Sprintf("%d %s", s.ByErrorKind[k], k)
	}
	return fmt.Sprintf("%s (%s)\n", line, strings.Join(parts, ", "))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
