package policydiff

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/creditwatch/internal/policy"
	"github.com/ppiankov/creditwatch/internal/scenario"
	"github.com/ppiankov/creditwatch/internal/underwrite"
)

func f(v float64) *float64 { return &v }
func i(v int) *int         { return &v }

// ltvHeavy moves weight from credit score and utilization onto LTV.
func ltvHeavy() *policy.Config {
	cfg := policy.DefaultConfig()
	cfg.Scoring.Weights.CreditScore = 10
	cfg.Scoring.Weights.LTV = 40
	cfg.Scoring.Weights.CreditUtilization = 0
	return cfg
}

func findChange(t *testing.T, r *DiffResult, field string) Change {
	t.Helper()
	for _, c := range r.Changes {
		if c.Field == field {
			return c
		}
	}
	t.Fatalf("change %s not found in %+v", field, r.Changes)
	return Change{}
}

func TestIdenticalConfigsNoChanges(t *testing.T) {
	r := Diff(policy.DefaultConfig(), policy.DefaultConfig())
	if r.HasChanges {
		t.Errorf("expected no changes, got %+v", r.Changes)
	}
}

func TestWeightChangesDetected(t *testing.T) {
	r := Diff(policy.DefaultConfig(), ltvHeavy())
	if !r.HasChanges {
		t.Fatal("expected changes")
	}
	if len(r.Changes) != 3 {
		t.Errorf("expected 3 changes, got %d", len(r.Changes))
	}

	c := findChange(t, r, "scoring.weights.credit_score")
	if c.Old != "25" || c.New != "10" || c.Comment != "lighter" {
		t.Errorf("credit_score: %+v", c)
	}
	c = findChange(t, r, "scoring.weights.ltv")
	if c.Old != "15" || c.New != "40" || c.Comment != "heavier" {
		t.Errorf("ltv: %+v", c)
	}
	c = findChange(t, r, "scoring.weights.credit_utilization")
	if c.Comment != "disabled" {
		t.Errorf("credit_utilization: %+v", c)
	}

	back := Diff(ltvHeavy(), policy.DefaultConfig())
	if c := findChange(t, back, "scoring.weights.credit_utilization"); c.Comment != "enabled" {
		t.Errorf("expected enabled, got %+v", c)
	}
}

func TestMissingPolicyChange(t *testing.T) {
	strict := policy.DefaultConfig()
	strict.Scoring.MissingComponents = policy.MissingReject

	c := findChange(t, Diff(policy.DefaultConfig(), strict), "scoring.missing_components")
	if c.Comment != "stricter" {
		t.Errorf("expected stricter, got %q", c.Comment)
	}
	c = findChange(t, Diff(strict, policy.DefaultConfig()), "scoring.missing_components")
	if c.Comment != "looser" {
		t.Errorf("expected looser, got %q", c.Comment)
	}
}

func TestImpactReportsMovedOutcomes(t *testing.T) {
	home := underwrite.Applicant{
		MonthlyIncome:      f(75000),
		ExistingEMIs:       f(15000),
		LoanAmount:         f(2000000),
		PropertyValue:      f(3000000),
		AnnualInterestRate: f(9),
		TenureMonths:       i(240),
		CreditScore:        i(720),
	}
	unchanged := underwrite.Applicant{CreditScore: i(300), PaymentHistory: "default"}

	s := &scenario.Scenario{
		Name: "home",
		Cases: []scenario.Case{
			{Name: "home loan", Applicant: home},
			{Applicant: unchanged},
		},
	}

	impact, err := Impact(policy.DefaultConfig(), ltvHeavy(), []*scenario.Scenario{s})
	if err != nil {
		t.Fatal(err)
	}
	if len(impact) != 1 {
		t.Fatalf("expected 1 moved case, got %+v", impact)
	}
	got := impact[0]
	if got.Case != "home loan" || got.OldOutcome != "C CONDITIONAL_APPROVE" || got.NewOutcome != "D REVIEW" {
		t.Errorf("unexpected impact: %+v", got)
	}
	if !got.GradeChange {
		t.Error("expected grade change")
	}
	if got.NewScore >= got.OldScore {
		t.Errorf("expected score to drop: %.2f -> %.2f", got.OldScore, got.NewScore)
	}
}

func TestImpactReportsNewErrors(t *testing.T) {
	strict := policy.DefaultConfig()
	strict.Scoring.MissingComponents = policy.MissingReject

	s := &scenario.Scenario{Cases: []scenario.Case{{Applicant: underwrite.Applicant{CreditScore: i(720)}}}}
	impact, err := Impact(policy.DefaultConfig(), strict, []*scenario.Scenario{s})
	if err != nil {
		t.Fatal(err)
	}
	if len(impact) != 1 || impact[0].NewOutcome != "error=missing_input" || impact[0].Case != "case 1" {
		t.Errorf("unexpected impact: %+v", impact)
	}
}

func TestLoadAndDiffWithImpact(t *testing.T) {
	dir := t.TempDir()
	newPath := filepath.Join(dir, "new.yaml")
	content := `
scoring:
  weights:
    credit_score: 10
    ltv: 40
    credit_utilization: 0
`
	if err := os.WriteFile(newPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := LoadAndDiff(filepath.Join(dir, "absent.yaml"), newPath, true)
	if err != nil {
		t.Fatal(err)
	}
	if !r.HasChanges || len(r.Impact) == 0 {
		t.Fatalf("expected changes and impact, got %+v", r)
	}

	out := FormatText(r)
	for _, want := range []string{"Weights:", "ltv:", "15 -> 40  (heavier)", "Outcome changes:", "salaried home loan"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestLoadAndDiffInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("scoring:\n  weights:\n    dti: 99\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadAndDiff(filepath.Join(dir, "absent.yaml"), bad, false); err == nil {
		t.Error("expected error for invalid config")
	}
}

func TestFormatNoChanges(t *testing.T) {
	out := FormatText(&DiffResult{OldPath: "a.yaml", NewPath: "b.yaml"})
	if !strings.Contains(out, "No changes detected.") {
		t.Errorf("unexpected output: %s", out)
	}
}
