package scenario

import "github.com/ppiankov/creditwatch/internal/underwrite"

// Expect is the asserted outcome of one case. Empty fields are not checked.
// Error names an error kind and excludes the other fields.
type Expect struct {
	Grade    string `yaml:"grade,omitempty" json:"grade,omitempty"`
	Category string `yaml:"category,omitempty" json:"category,omitempty"`
	Decision string `yaml:"decision,omitempty" json:"decision,omitempty"`
	Error    string `yaml:"error,omitempty" json:"error,omitempty"`
}

// Case is one applicant and its expected assessment.
type Case struct {
	Name      string               `yaml:"name"`
	Applicant underwrite.Applicant `yaml:"applicant"`
	Expect    Expect               `yaml:"expect"`
}

// Scenario is a named collection of underwriting cases. MissingComponents
// overrides the configured missing-component policy for every case.
type Scenario struct {
	Name              string `yaml:"name"`
	MissingComponents string `yaml:"missing_components,omitempty"`
	Cases             []Case `yaml:"cases"`
}

// CaseResult is the outcome of assessing one case.
type CaseResult struct {
	Index    int     `json:"index"`
	Name     string  `json:"name"`
	Passed   bool    `json:"passed"`
	Expected string  `json:"expected"`
	Actual   string  `json:"actual"`
	Score    float64 `json:"score,omitempty"`
}

// RunResult is the outcome of running all cases in one scenario.
type RunResult struct {
	File   string       `json:"file"`
	Name   string       `json:"name"`
	Total  int          `json:"total"`
	Passed int          `json:"passed"`
	Failed int          `json:"failed"`
	Error  string       `json:"error,omitempty"`
	Cases  []CaseResult `json:"cases"`
}
