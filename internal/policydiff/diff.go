// Package policydiff compares two scoring configurations and previews how
// the change moves applicant outcomes.
package policydiff

import (
	"fmt"

	"github.com/ppiankov/creditwatch/internal/model"
	"github.com/ppiankov/creditwatch/internal/policy"
	"github.com/ppiankov/creditwatch/internal/scenario"
	"github.com/ppiankov/creditwatch/internal/score"
	"github.com/ppiankov/creditwatch/internal/underwrite"
)

// Change represents a scalar field change.
type Change struct {
	Field   string `json:"field"`
	Old     string `json:"old"`
	New     string `json:"new"`
	Comment string `json:"comment,omitempty"`
}

// CaseImpact is one scenario case whose outcome differs between configs.
type CaseImpact struct {
	Scenario    string  `json:"scenario"`
	Case        string  `json:"case"`
	OldOutcome  string  `json:"old_outcome"`
	NewOutcome  string  `json:"new_outcome"`
	OldScore    float64 `json:"old_score,omitempty"`
	NewScore    float64 `json:"new_score,omitempty"`
	GradeChange bool    `json:"grade_change"`
}

// DiffResult holds the comparison of two configs.
type DiffResult struct {
	OldPath    string       `json:"old_path"`
	NewPath    string       `json:"new_path"`
	Changes    []Change     `json:"changes"`
	Impact     []CaseImpact `json:"impact,omitempty"`
	HasChanges bool         `json:"has_changes"`
}

// Diff compares two configs and returns the differences.
func Diff(old, new *policy.Config) *DiffResult {
	r := &DiffResult{}

	if old.Scoring.MissingComponents != new.Scoring.MissingComponents {
		comment := "looser"
		if new.Scoring.MissingComponents == policy.MissingReject {
			comment = "stricter"
		}
		r.Changes = append(r.Changes, Change{
			Field:   "scoring.missing_components",
			Old:     string(old.Scoring.MissingComponents),
			New:     string(new.Scoring.MissingComponents),
			Comment: comment,
		})
	}

	oldW, newW := old.Scoring.Weights.Map(), new.Scoring.Weights.Map()
	for _, c := range model.Components {
		diffWeight(r, c, oldW[c], newW[c])
	}

	r.HasChanges = len(r.Changes) > 0
	return r
}

func diffWeight(r *DiffResult, c model.Component, old, new int) {
	if old == new {
		return
	}
	comment := "heavier"
	switch {
	case new == 0:
		comment = "disabled"
	case old == 0:
		comment = "enabled"
	case new < old:
		comment = "lighter"
	}
	r.Changes = append(r.Changes, Change{
		Field:   "scoring.weights." + string(c),
		Old:     fmt.Sprintf("%d", old),
		New:     fmt.Sprintf("%d", new),
		Comment: comment,
	})
}

// Impact assesses every scenario case under both configs and returns the
// cases whose outcome differs.
func Impact(old, new *policy.Config, scenarios []*scenario.Scenario) ([]CaseImpact, error) {
	oldScorer, err := score.FromConfig(old)
	if err != nil {
		return nil, fmt.Errorf("old config: %w", err)
	}
	newScorer, err := score.FromConfig(new)
	if err != nil {
		return nil, fmt.Errorf("new config: %w", err)
	}

	var out []CaseImpact
	for _, s := range scenarios {
		for i, c := range s.Cases {
			name := c.Name
			if name == "" {
				name = fmt.Sprintf("case %d", i+1)
			}
			before := outcomeOf(c.Applicant, oldScorer)
			after := outcomeOf(c.Applicant, newScorer)
			if before.label == after.label {
				continue
			}
			out = append(out, CaseImpact{
				Scenario:    s.Name,
				Case:        name,
				OldOutcome:  before.label,
				NewOutcome:  after.label,
				OldScore:    before.score,
				NewScore:    after.score,
				GradeChange: before.grade != after.grade,
			})
		}
	}
	return out, nil
}

type outcome struct {
	label string
	grade string
	score float64
}

func outcomeOf(a underwrite.Applicant, s *score.Scorer) outcome {
	res, err := underwrite.Assess(a, s)
	if err != nil {
		if me, ok := model.AsError(err); ok {
			return outcome{label: "error=" + string(me.Kind)}
		}
		return outcome{label: "error"}
	}
	if res.Composite == nil {
		return outcome{label: "unscored"}
	}
	return outcome{
		label: fmt.Sprintf("%s %s", res.Composite.Grade, res.Decision),
		grade: res.Composite.Grade,
		score: res.Composite.TotalScore,
	}
}

// LoadAndDiff loads both configs and diffs them. With impact, the builtin
// scenario suites are assessed under each config.
func LoadAndDiff(oldPath, newPath string, impact bool) (*DiffResult, error) {
	oldCfg, err := policy.LoadConfig(oldPath)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", oldPath, err)
	}
	newCfg, err := policy.LoadConfig(newPath)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", newPath, err)
	}

	r := Diff(oldCfg, newCfg)
	r.OldPath = oldPath
	r.NewPath = newPath

	if impact && r.HasChanges {
		var suites []*scenario.Scenario
		for _, name := range scenario.Builtin() {
			s, err := scenario.LoadBuiltin(name)
			if err != nil {
				return nil, err
			}
			// The suite's own policy override would mask the config change.
			s.MissingComponents = ""
			suites = append(suites, s)
		}
		if r.Impact, err = Impact(oldCfg, newCfg, suites); err != nil {
			return nil, err
		}
	}
	return r, nil
}
