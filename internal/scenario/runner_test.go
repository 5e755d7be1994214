package scenario

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/creditwatch/internal/score"
	"github.com/ppiankov/creditwatch/internal/underwrite"
)

func f(v float64) *float64 { return &v }
func i(v int) *int         { return &v }

func homeLoan() underwrite.Applicant {
	return underwrite.Applicant{
		MonthlyIncome:      f(75000),
		ExistingEMIs:       f(15000),
		LoanAmount:         f(2000000),
		PropertyValue:      f(3000000),
		AnnualInterestRate: f(9),
		TenureMonths:       i(240),
		CreditScore:        i(720),
	}
}

func writeScenario(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// noConfig points at a file that does not exist so defaults apply.
func noConfig(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.yaml")
}

func TestAllCasesPass(t *testing.T) {
	s := &Scenario{
		Name: "home loan",
		Cases: []Case{
			{Name: "reference", Applicant: homeLoan(), Expect: Expect{Grade: "C", Category: "MEDIUM", Decision: "CONDITIONAL_APPROVE"}},
		},
	}

	result := Run(s, score.Default())
	if result.Failed != 0 {
		t.Errorf("expected 0 failures, got %d: %+v", result.Failed, result.Cases)
	}
	if result.Passed != 1 {
		t.Errorf("expected 1 passed, got %d", result.Passed)
	}
	if result.Cases[0].Score < 60.2 || result.Cases[0].Score > 60.3 {
		t.Errorf("expected score near 60.23, got %f", result.Cases[0].Score)
	}
}

func TestExpectationsAreCaseInsensitive(t *testing.T) {
	s := &Scenario{
		Cases: []Case{
			{Applicant: homeLoan(), Expect: Expect{Grade: "c", Decision: "conditional_approve"}},
		},
	}

	if result := Run(s, score.Default()); result.Passed != 1 {
		t.Errorf("expected case to pass, got %+v", result.Cases)
	}
}

func TestFailedAssertionDetected(t *testing.T) {
	s := &Scenario{
		Name: "wrong expectation",
		Cases: []Case{
			{Name: "home loan", Applicant: homeLoan(), Expect: Expect{Decision: "APPROVE"}},
		},
	}

	result := Run(s, score.Default())
	if result.Failed != 1 {
		t.Errorf("expected 1 failure, got %d", result.Failed)
	}
	c := result.Cases[0]
	if c.Expected != "decision=APPROVE" {
		t.Errorf("expected rendering: %q", c.Expected)
	}
	if c.Actual != "decision=CONDITIONAL_APPROVE" {
		t.Errorf("actual rendering: %q", c.Actual)
	}
}

func TestErrorExpectation(t *testing.T) {
	bad := homeLoan()
	bad.PropertyValue = f(0)

	s := &Scenario{
		Cases: []Case{
			{Name: "zero property", Applicant: bad, Expect: Expect{Error: "division_by_zero"}},
			{Name: "unexpected success", Applicant: homeLoan(), Expect: Expect{Error: "invalid_value"}},
			{Name: "unexpected error", Applicant: bad, Expect: Expect{Grade: "C"}},
		},
	}

	result := Run(s, score.Default())
	if result.Passed != 1 || result.Failed != 2 {
		t.Fatalf("expected 1 passed and 2 failed, got %d/%d", result.Passed, result.Failed)
	}
	if result.Cases[1].Actual != "no error" {
		t.Errorf("unexpected success rendering: %q", result.Cases[1].Actual)
	}
	if result.Cases[2].Actual != "error=division_by_zero" {
		t.Errorf("unexpected error rendering: %q", result.Cases[2].Actual)
	}
}

func TestMissingComponentsOverride(t *testing.T) {
	s := &Scenario{
		MissingComponents: "reject",
		Cases: []Case{
			{Applicant: homeLoan(), Expect: Expect{Error: "missing_input"}},
		},
	}
	if result := Run(s, score.Default()); result.Passed != 1 {
		t.Errorf("expected reject policy to fail scoring, got %+v", result.Cases)
	}

	s.MissingComponents = "guess"
	result := Run(s, score.Default())
	if result.Error == "" {
		t.Error("expected unknown policy to fail the scenario")
	}
	if result.Failed != 1 {
		t.Errorf("expected every case failed, got %d", result.Failed)
	}
}

func TestLoadAndRunFromFile(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "home.yaml", `
name: "home loans"
cases:
  - name: reference
    applicant:
      monthly_income: 75000
      existing_emis: 15000
      loan_amount: 2000000
      property_value: 3000000
      annual_interest_rate: 9
      tenure_months: 240
      credit_score: 720
    expect:
      grade: C
      decision: CONDITIONAL_APPROVE
`)

	result, err := LoadAndRun(path, noConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	if result.File != path {
		t.Errorf("expected file %s, got %s", path, result.File)
	}
	if result.Name != "home loans" {
		t.Errorf("expected name 'home loans', got %q", result.Name)
	}
	if result.Passed != 1 {
		t.Errorf("expected 1 passed, got %+v", result.Cases)
	}
}

func TestLoadAndRunUsesConfigWeights(t *testing.T) {
	dir := t.TempDir()
	cfg := writeScenario(t, dir, "config.yaml", `
scoring:
  missing_components: reject
`)
	path := writeScenario(t, dir, "home.yaml", `
name: strict
cases:
  - applicant:
      monthly_income: 75000
      existing_emis: 15000
      credit_score: 720
    expect:
      error: missing_input
`)

	result, err := LoadAndRun(path, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if result.Passed != 1 {
		t.Errorf("expected reject policy from config, got %+v", result.Cases)
	}
}

func TestInvalidScenarioYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "bad.yaml", `{{{invalid yaml`)

	if _, err := LoadAndRun(path, noConfig(t)); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestUnknownApplicantFieldRejected(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "typo.yaml", `
name: typo
cases:
  - applicant:
      monthly_incme: 75000
    expect:
      grade: C
`)

	_, err := LoadAndRun(path, noConfig(t))
	if err == nil || !strings.Contains(err.Error(), "monthly_incme") {
		t.Errorf("expected unknown field error, got %v", err)
	}
}

func TestEmptyCasesList(t *testing.T) {
	result := Run(&Scenario{Name: "empty", Cases: []Case{}}, score.Default())
	if result.Total != 0 || result.Passed != 0 || result.Failed != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}

func TestMultipleScenariosViaGlob(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.yaml", "b.yaml"} {
		writeScenario(t, dir, name, `
name: "`+name+`"
cases:
  - applicant:
      credit_score: 850
    expect:
      grade: A
`)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}

	totalPassed := 0
	for _, m := range matches {
		r, err := LoadAndRun(m, noConfig(t))
		if err != nil {
			t.Fatal(err)
		}
		totalPassed += r.Passed
	}
	if totalPassed != 2 {
		t.Errorf("expected 2 total passed across scenarios, got %d", totalPassed)
	}
}

func TestBuiltinSuitesPassWithDefaults(t *testing.T) {
	names := Builtin()
	if len(names) != 2 {
		t.Fatalf("expected 2 builtin suites, got %v", names)
	}

	results, err := RunBuiltin(score.Default())
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range results {
		if r.Failed != 0 {
			t.Errorf("%s: %s", r.File, FormatText([]*RunResult{r}))
		}
	}
}

func TestLoadBuiltinUnknown(t *testing.T) {
	if _, err := LoadBuiltin("nope"); err == nil {
		t.Error("expected error for unknown suite")
	}
}

func TestFormatText(t *testing.T) {
	results := []*RunResult{
		{Name: "ok", Total: 1, Passed: 1},
		{Name: "bad", Total: 1, Failed: 1, Cases: []CaseResult{
			{Index: 1, Name: "home loan", Expected: "grade=A", Actual: "grade=C"},
		}},
	}

	out := FormatText(results)
	for _, want := range []string{
		"Checking 2 scenario files...",
		"PASS  ok (1/1)",
		"FAIL  bad (0/1)",
		"expected grade=A, got grade=C",
		"1 of 2 cases passed. 1 of 2 scenarios failed.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
