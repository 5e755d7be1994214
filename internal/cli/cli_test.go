package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ppiankov/creditwatch/internal/model"
	"github.com/ppiankov/creditwatch/internal/policy"
)

// testCommand returns a bare command whose output is captured.
func testCommand(stdin string) (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader(stdin))
	return cmd, &out
}

func useConfig(t *testing.T, path string) {
	t.Helper()
	prev := configPath
	configPath = path
	t.Cleanup(func() { configPath = prev })
}

func TestInitConfigWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	useConfig(t, path)
	initForce = false

	cmd, out := testCommand("")
	if err := runInitConfig(cmd, nil); err != nil {
		t.Fatalf("runInitConfig failed: %v", err)
	}
	if !strings.Contains(out.String(), "Created "+path) {
		t.Errorf("unexpected output: %s", out.String())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config not created: %v", err)
	}
	if _, err := policy.ParseConfig(data); err != nil {
		t.Errorf("written config does not parse: %v", err)
	}
}

func TestInitConfigNoOverwriteWithoutForce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	sentinel := "# sentinel content\n"
	if err := os.WriteFile(path, []byte(sentinel), 0o644); err != nil {
		t.Fatal(err)
	}
	useConfig(t, path)

	initForce = false
	cmd, out := testCommand("")
	if err := runInitConfig(cmd, nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "already exists") {
		t.Errorf("expected already-exists notice, got %s", out.String())
	}
	data, _ := os.ReadFile(path)
	if string(data) != sentinel {
		t.Error("config overwritten without --force")
	}

	initForce = true
	defer func() { initForce = false }()
	if err := runInitConfig(cmd, nil); err != nil {
		t.Fatal(err)
	}
	data, _ = os.ReadFile(path)
	if string(data) == sentinel {
		t.Error("config not overwritten with --force")
	}
}

func TestConfigValidateRejectsBadWeights(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("scoring:\n  weights:\n    credit_score: 90\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	useConfig(t, path)

	cmd, _ := testCommand("")
	err := configValidateCmd.RunE(cmd, nil)
	if !errors.Is(err, model.ErrConfiguration) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestConfigShowPrintsHash(t *testing.T) {
	useConfig(t, filepath.Join(t.TempDir(), "absent.yaml"))

	cmd, out := testCommand("")
	if err := configShowCmd.RunE(cmd, nil); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"# hash: sha256:", "credit_score: 25", "missing_components: renormalize"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestConfigureLogger(t *testing.T) {
	l := logrus.New()

	t.Setenv(LogLevelEnv, "debug")
	if err := configureLogger(l, "", "json"); err != nil {
		t.Fatal(err)
	}
	if l.GetLevel() != logrus.DebugLevel {
		t.Errorf("expected level from env, got %s", l.GetLevel())
	}
	if _, ok := l.Formatter.(*logrus.JSONFormatter); !ok {
		t.Errorf("expected JSON formatter, got %T", l.Formatter)
	}

	if err := configureLogger(l, "warn", "text"); err != nil {
		t.Fatal(err)
	}
	if l.GetLevel() != logrus.WarnLevel {
		t.Errorf("flag should win over env, got %s", l.GetLevel())
	}

	if err := configureLogger(l, "loud", "text"); err == nil {
		t.Error("expected error for unknown level")
	}
	if err := configureLogger(l, "info", "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestCalcLocalFromFlag(t *testing.T) {
	useConfig(t, filepath.Join(t.TempDir(), "absent.yaml"))
	calcRemote = ""
	calcInput = `{"loan_amount":2000000,"property_value":3000000}`
	defer func() { calcInput = "" }()

	cmd, out := testCommand("")
	if err := runCalc(cmd, []string{"compute_loan_to_value_ratio"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), `"percentage": 66.67`) {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestCalcLocalFromStdin(t *testing.T) {
	useConfig(t, filepath.Join(t.TempDir(), "absent.yaml"))
	calcRemote = ""
	calcInput = ""

	cmd, out := testCommand(`{"monthly_income":0,"total_monthly_debt":100}`)
	err := runCalc(cmd, []string{"compute_debt_to_income_ratio"})
	if !errors.Is(err, model.ErrDivisionByZero) {
		t.Fatalf("expected division by zero, got %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("expected no output on error, got %s", out.String())
	}
}

func TestAssessFromYAML(t *testing.T) {
	dir := t.TempDir()
	useConfig(t, filepath.Join(dir, "absent.yaml"))
	path := filepath.Join(dir, "applicant.yaml")
	applicant := `
monthly_income: 75000
existing_emis: 15000
loan_amount: 2000000
property_value: 3000000
annual_interest_rate: 9
tenure_months: 240
credit_score: 720
`
	if err := os.WriteFile(path, []byte(applicant), 0o644); err != nil {
		t.Fatal(err)
	}

	assessFile = path
	assessFormat = "json"
	defer func() { assessFile, assessFormat = "", "text" }()

	cmd, out := testCommand("")
	if err := runAssess(cmd, nil); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"grade": "C"`, `"CONDITIONAL_APPROVE"`, `"total_score": 60.23`} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %s:\n%s", want, out.String())
		}
	}
}

func TestLoadApplicantRejectsUnknownField(t *testing.T) {
	_, err := loadApplicant("-", strings.NewReader("monthly_incme: 5\n"))
	if err == nil {
		t.Fatal("expected error for misspelled field")
	}
}

func TestCheckBuiltin(t *testing.T) {
	useConfig(t, filepath.Join(t.TempDir(), "absent.yaml"))
	checkBuiltin = true
	checkScenario = ""
	defer func() { checkBuiltin = false }()

	results, err := checkResults()
	if err != nil {
		t.Fatal(err)
	}
	if len(results) == 0 {
		t.Fatal("expected builtin results")
	}
	if failed(results) {
		t.Errorf("builtin suites failed with default config")
	}
}

func TestCheckNeedsSource(t *testing.T) {
	checkBuiltin = false
	checkScenario = ""
	if _, err := checkResults(); err == nil {
		t.Error("expected error without --scenario or --builtin")
	}
}

func TestParseTimeFlag(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	got, err := parseTimeFlag("2h", now)
	if err != nil || !got.Equal(now.Add(-2*time.Hour)) {
		t.Errorf("duration: got %v, %v", got, err)
	}
	got, err = parseTimeFlag("2026-03-01T10:00:00Z", now)
	if err != nil || got.Hour() != 10 {
		t.Errorf("rfc3339: got %v, %v", got, err)
	}
	if got, _ := parseTimeFlag("", now); !got.IsZero() {
		t.Errorf("empty should be zero, got %v", got)
	}
	if _, err := parseTimeFlag("yesterday", now); err == nil {
		t.Error("expected error for unparseable time")
	}
}
