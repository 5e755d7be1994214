package underwrite

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ppiankov/creditwatch/internal/policy"
)

// FormatText renders an assessment as a human-readable report.
func FormatText(a Assessment) string {
	var b strings.Builder

	b.WriteString("Credit risk assessment\n\n")

	ms := metrics(&a)
	if len(ms) > 0 {
		b.WriteString("Metrics:\n")
		for _, m := range ms {
			fmt.Fprintf(&b, "  %-22s %-10s %s\n", m.name, m.category, m.detail)
		}
		b.WriteString("\n")
	}

	if a.EMI != nil {
		fmt.Fprintf(&b, "Proposed EMI: %.2f (total payment %.2f, total interest %.2f)\n\n",
			a.EMI.EMI, a.EMI.TotalPayment, a.EMI.TotalInterest)
	}

	if a.Profile != nil {
		fmt.Fprintf(&b, "Profile: %s (%d/%d risk points)\n  %s\n\n",
			a.Profile.Category, a.Profile.RiskPoints, a.Profile.MaxRiskPoints, a.Profile.Recommendation)
	}

	if a.Composite != nil {
		c := a.Composite
		fmt.Fprintf(&b, "Composite score: %.2f  grade %s  %s\n", c.TotalScore, c.Grade, c.Category)
		if len(c.Excluded) > 0 {
			names := make([]string, len(c.Excluded))
			for i, e := range c.Excluded {
				names[i] = string(e)
			}
			fmt.Fprintf(&b, "  scored over %d of %d weight points (no input: %s)\n",
				c.WeightUsed, policy.WeightTotal, strings.Join(names, ", "))
		}
		fmt.Fprintf(&b, "Decision: %s\n  %s\n\n", c.Decision, c.Recommendation)
	} else {
		fmt.Fprintf(&b, "Overall risk: %s\n\n", a.Category)
	}

	if len(a.Observations) > 0 {
		b.WriteString("Key observations:\n")
		for _, o := range a.Observations {
			fmt.Fprintf(&b, "  - %s\n", o)
		}
		b.WriteString("\n")
	}

	if len(a.Skipped) > 0 {
		b.WriteString("Skipped:\n")
		for _, s := range a.Skipped {
			fmt.Fprintf(&b, "  - %s\n", s)
		}
	}

	return b.String()
}

// FormatJSON renders an assessment as indented JSON.
func FormatJSON(a Assessment) (string, error) {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal assessment: %w", err)
	}
	return string(data), nil
}
