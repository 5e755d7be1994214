package scenario

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/creditwatch/internal/model"
	"github.com/ppiankov/creditwatch/internal/policy"
	"github.com/ppiankov/creditwatch/internal/score"
	"github.com/ppiankov/creditwatch/internal/underwrite"
)

// Run assesses every case with the given scorer. Cases are independent.
// A scenario-level missing_components override that is not a known policy
// fails the whole scenario.
func Run(s *Scenario, scorer *score.Scorer) *RunResult {
	result := &RunResult{
		Name:  s.Name,
		Total: len(s.Cases),
		Cases: []CaseResult{},
	}

	if s.MissingComponents != "" {
		var err error
		scorer, err = score.New(scorer.Weights(), policy.MissingPolicy(s.MissingComponents))
		if err != nil {
			result.Error = err.Error()
			result.Failed = result.Total
			return result
		}
	}

	for i, c := range s.Cases {
		a, err := underwrite.Assess(c.Applicant, scorer)
		cr := CaseResult{
			Index:    i + 1,
			Name:     c.Name,
			Expected: c.Expect.String(),
			Actual:   actual(c.Expect, a, err),
		}
		if err == nil && a.Composite != nil {
			cr.Score = a.Composite.TotalScore
		}

		if c.Expect.matches(a, err) {
			cr.Passed = true
			result.Passed++
		} else {
			result.Failed++
		}
		result.Cases = append(result.Cases, cr)
	}

	return result
}

func (e Expect) matches(a underwrite.Assessment, err error) bool {
	if e.Error != "" || err != nil {
		me, ok := model.AsError(err)
		return ok && string(me.Kind) == strings.ToLower(e.Error)
	}
	if e.Grade != "" && (a.Composite == nil || !strings.EqualFold(a.Composite.Grade, e.Grade)) {
		return false
	}
	if e.Category != "" && !strings.EqualFold(string(a.Category), e.Category) {
		return false
	}
	if e.Decision != "" && !strings.EqualFold(string(a.Decision), e.Decision) {
		return false
	}
	return true
}

// String renders the expectation in the same shape as actual.
func (e Expect) String() string {
	if e.Error != "" {
		return "error=" + strings.ToLower(e.Error)
	}
	var parts []string
	if e.Grade != "" {
		parts = append(parts, "grade="+strings.ToUpper(e.Grade))
	}
	if e.Category != "" {
		parts = append(parts, "category="+strings.ToUpper(e.Category))
	}
	if e.Decision != "" {
		parts = append(parts, "decision="+strings.ToUpper(e.Decision))
	}
	return strings.Join(parts, " ")
}

func actual(e Expect, a underwrite.Assessment, err error) string {
	if err != nil {
		if me, ok := model.AsError(err); ok {
			return "error=" + string(me.Kind)
		}
		return "error=" + err.Error()
	}
	if e.Error != "" {
		return "no error"
	}
	grade := "-"
	if a.Composite != nil {
		grade = a.Composite.Grade
	}
	var parts []string
	if e.Grade != "" {
		parts = append(parts, "grade="+grade)
	}
	if e.Category != "" {
		parts = append(parts, "category="+string(a.Category))
	}
	if e.Decision != "" {
		parts = append(parts, "decision="+string(a.Decision))
	}
	return strings.Join(parts, " ")
}

// Parse decodes a scenario document. Unknown keys are rejected.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadAndRun loads a scenario file and the scoring config, then runs.
func LoadAndRun(path, configPath string) (*RunResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}

	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	cfg, err := policy.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	scorer, err := score.FromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("build scorer: %w", err)
	}

	result := Run(s, scorer)
	result.File = path
	return result, nil
}
