package policydiff

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FormatText renders the diff result as human-readable text.
func FormatText(r *DiffResult) string {
	if !r.HasChanges {
		return fmt.Sprintf("Config diff: %s -> %s\n\nNo changes detected.\n", r.OldPath, r.NewPath)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Config diff: %s -> %s\n", r.OldPath, r.NewPath)

	weights := filterChanges(r.Changes, "scoring.weights.")
	topLevel := filterTopLevel(r.Changes)

	if len(topLevel) > 0 {
		b.WriteString("\n")
		for _, c := range topLevel {
			name := strings.TrimPrefix(c.Field, "scoring.")
			fmt.Fprintf(&b, "  %-24s %s -> %s", name+":", c.Old, c.New)
			if c.Comment != "" {
				fmt.Fprintf(&b, "  (%s)", c.Comment)
			}
			b.WriteString("\n")
		}
	}

	if len(weights) > 0 {
		b.WriteString("\n  Weights:\n")
		for _, c := range weights {
			name := strings.TrimPrefix(c.Field, "scoring.weights.")
			fmt.Fprintf(&b, "    %-22s %s -> %s", name+":", c.Old, c.New)
			if c.Comment != "" {
				fmt.Fprintf(&b, "  (%s)", c.Comment)
			}
			b.WriteString("\n")
		}
	}

	if len(r.Impact) > 0 {
		b.WriteString("\n  Outcome changes:\n")
		for _, i := range r.Impact {
			fmt.Fprintf(&b, "    ~ %s / %s: %s -> %s\n", i.Scenario, i.Case, i.OldOutcome, i.NewOutcome)
		}
	}

	return b.String()
}

// FormatJSON renders the diff result as JSON.
func FormatJSON(r *DiffResult) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal diff result: %w", err)
	}
	return string(data), nil
}

func filterChanges(changes []Change, prefix string) []Change {
	var out []Change
	for _, c := range changes {
		if strings.HasPrefix(c.Field, prefix) {
			out = append(out, c)
		}
	}
	return out
}

func filterTopLevel(changes []Change) []Change {
	var out []Change
	for _, c := range changes {
		if !strings.HasPrefix(c.Field, "scoring.weights.") {
			out = append(out, c)
		}
	}
	return out
}
