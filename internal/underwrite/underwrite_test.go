package underwrite

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/creditwatch/internal/model"
	"github.com/ppiankov/creditwatch/internal/policy"
	"github.com/ppiankov/creditwatch/internal/score"
)

func f(v float64) *float64 { return &v }
func i(v int) *int         { return &v }

// homeLoan is the reference salaried home-loan applicant.
func homeLoan() Applicant {
	return Applicant{
		MonthlyIncome:      f(75000),
		ExistingEMIs:       f(15000),
		LoanAmount:         f(2000000),
		PropertyValue:      f(3000000),
		AnnualInterestRate: f(9),
		TenureMonths:       i(240),
		CreditScore:        i(720),
	}
}

func TestAssessHomeLoanEndToEnd(t *testing.T) {
	a, err := Assess(homeLoan(), score.Default())
	require.NoError(t, err)

	require.NotNil(t, a.DTI)
	assert.InDelta(t, 20.0, a.DTI.Percentage, 1e-9)
	assert.Equal(t, model.RiskLow, a.DTI.Category)

	require.NotNil(t, a.LTV)
	assert.InDelta(t, 66.67, a.LTV.Percentage, 0.005)
	assert.Equal(t, model.RiskLow, a.LTV.Category)

	require.NotNil(t, a.CreditScore)
	assert.Equal(t, "GOOD", a.CreditScore.Rating)

	require.NotNil(t, a.EMI)
	assert.InDelta(t, 17994.52, a.EMI.EMI, 0.01)

	require.NotNil(t, a.FOIR)
	assert.InDelta(t, 43.99, a.FOIR.Percentage, 0.01)
	assert.InDelta(t, a.EMI.EMI, a.FOIR.TotalObligations-15000, 1e-6, "derived EMI feeds FOIR")

	require.NotNil(t, a.Composite)
	assert.Contains(t, []model.RiskCategory{model.RiskLow, model.RiskMedium}, a.Composite.Category)
	assert.InDelta(t, 60.23, a.Composite.TotalScore, 0.01)
	assert.Equal(t, "C", a.Composite.Grade)
	assert.Equal(t, score.ConditionalApprove, a.Decision)
	assert.Equal(t, 60, a.Composite.WeightUsed)
	assert.Equal(t, a.Composite.Category, a.Category)

	assert.Nil(t, a.Profile, "profile needs employment and payment history")
	assert.Nil(t, a.DSCR)
	assert.Empty(t, a.Observations)

	skipped := strings.Join(a.Skipped, "\n")
	for _, name := range []string{
		"compute_credit_utilization_ratio",
		"compute_dscr",
		"compute_collateral_coverage_ratio",
		"assess_employment_stability",
		"assess_payment_history",
		"classify_risk_category",
	} {
		assert.Contains(t, skipped, name)
	}
}

func fullApplicant() Applicant {
	a := homeLoan()
	a.CreditUsed = f(20000)
	a.CreditLimit = f(100000)
	a.EmploymentType = "Salaried"
	a.YearsInCurrentJob = f(5)
	a.TotalWorkExperience = f(10)
	a.JobChangesLast5Years = i(1)
	a.PaymentHistory = "no_defaults"
	a.CollateralValue = f(3000000)
	return a
}

func TestAssessFullApplicant(t *testing.T) {
	a, err := Assess(fullApplicant(), score.Default())
	require.NoError(t, err)

	require.NotNil(t, a.Employment)
	assert.Equal(t, 95.0, a.Employment.Score)
	require.NotNil(t, a.PaymentHistory)
	assert.Equal(t, 95.0, a.PaymentHistory.Score)
	assert.Nil(t, a.PaymentRecord)
	require.NotNil(t, a.CollateralCoverage)
	assert.Equal(t, 1.5, a.CollateralCoverage.Value)

	require.NotNil(t, a.Profile)
	assert.Equal(t, model.RiskLow, a.Profile.Category)
	assert.Equal(t, 0, a.Profile.RiskPoints)

	require.NotNil(t, a.Composite)
	assert.Equal(t, 100, a.Composite.WeightUsed)
	assert.Empty(t, a.Composite.Excluded)
	assert.Equal(t, []string{"compute_dscr: missing net_operating_income, annual_debt_service"}, a.Skipped)
}

func TestAssessPrefersPaymentRecord(t *testing.T) {
	in := fullApplicant()
	in.PaymentRecord = &PaymentRecord{TotalAccounts: 3, OnTime: 40, Late90Plus: 2, Defaults: 2}

	a, err := Assess(in, score.Default())
	require.NoError(t, err)
	require.NotNil(t, a.PaymentRecord)
	assert.Equal(t, a.PaymentRecord.Score, a.PaymentHistory.Score)
	assert.Equal(t, model.RiskHigh, a.PaymentHistory.Category)

	require.NotEmpty(t, a.Observations)
	assert.Contains(t, a.Observations[0], "Payment history is HIGH risk")
}

func TestAssessUsesSuppliedEMI(t *testing.T) {
	in := homeLoan()
	in.ProposedEMI = f(5000)
	a, err := Assess(in, score.Default())
	require.NoError(t, err)
	assert.Equal(t, 20000.0, a.FOIR.TotalObligations)
	require.NotNil(t, a.EMI, "EMI is still reported from the loan terms")
}

func TestAssessAbortsOnCalculatorError(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Applicant)
		kind   error
		field  string
	}{
		{"credit score out of range", func(a *Applicant) { a.CreditScore = i(950) }, model.ErrInvalidValue, "credit_score"},
		{"zero property value", func(a *Applicant) { a.PropertyValue = f(0) }, model.ErrDivisionByZero, "property_value"},
		{"negative income", func(a *Applicant) { a.MonthlyIncome = f(-1) }, model.ErrInvalidValue, "monthly_income"},
		{"unknown employment", func(a *Applicant) {
			a.EmploymentType = "contractor"
			a.YearsInCurrentJob = f(1)
			a.TotalWorkExperience = f(1)
		}, model.ErrInvalidValue, "employment_type"},
		{"unknown payment history", func(a *Applicant) { a.PaymentHistory = "mostly fine" }, model.ErrInvalidValue, "payment_history"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := homeLoan()
			tt.mutate(&in)
			_, err := Assess(in, score.Default())
			require.ErrorIs(t, err, tt.kind)
			e, ok := model.AsError(err)
			require.True(t, ok)
			assert.Equal(t, tt.field, e.Field)
		})
	}
}

func TestAssessRejectPolicyNeedsEveryComponent(t *testing.T) {
	s, err := score.New(policy.DefaultConfig().Scoring.Weights.Map(), policy.MissingReject)
	require.NoError(t, err)

	_, err = Assess(homeLoan(), s)
	assert.ErrorIs(t, err, model.ErrMissingInput)

	_, err = Assess(fullApplicant(), s)
	assert.NoError(t, err)
}

func TestAssessWithoutScoredComponentsFails(t *testing.T) {
	strict, err := score.New(policy.DefaultConfig().Scoring.Weights.Map(), policy.MissingReject)
	require.NoError(t, err)

	dscrOnly := Applicant{NetOperatingIncome: f(1500000), AnnualDebtService: f(1000000)}
	tests := []struct {
		name   string
		a      Applicant
		scorer *score.Scorer
	}{
		{"empty renormalize", Applicant{}, score.Default()},
		{"empty reject", Applicant{}, strict},
		{"dscr only renormalize", dscrOnly, score.Default()},
		{"dscr only reject", dscrOnly, strict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Assess(tt.a, tt.scorer)
			require.ErrorIs(t, err, model.ErrMissingInput)
			assert.Empty(t, a.Category)
			assert.Nil(t, a.Composite)
		})
	}
}

func TestAssessCategoryComesFromComposite(t *testing.T) {
	a, err := Assess(Applicant{CreditScore: i(580)}, score.Default())
	require.NoError(t, err)
	require.NotNil(t, a.Composite)
	assert.Equal(t, a.Composite.Category, a.Category)
}

func TestApplicantFromYAML(t *testing.T) {
	doc := `
monthly_income: 75000
existing_emis: 15000
loan_amount: 2000000
property_value: 3000000
annual_interest_rate: 9
tenure_months: 240
credit_score: 720
payment_record:
  total_accounts: 4
  on_time_payments: 48
`
	var in Applicant
	require.NoError(t, yaml.Unmarshal([]byte(doc), &in))
	require.NotNil(t, in.TenureMonths)
	assert.Equal(t, 240, *in.TenureMonths)
	require.NotNil(t, in.PaymentRecord)
	assert.Equal(t, 48, in.PaymentRecord.OnTime)

	a, err := Assess(in, score.Default())
	require.NoError(t, err)
	assert.Equal(t, 100.0, a.PaymentHistory.Score)
}

func TestFormatText(t *testing.T) {
	a, err := Assess(fullApplicant(), score.Default())
	require.NoError(t, err)
	out := FormatText(a)
	for _, want := range []string{"Credit risk assessment", "DTI", "Composite score", "Decision:", "Profile: LOW", "Skipped:"} {
		assert.Contains(t, out, want)
	}

	a, err = Assess(homeLoan(), score.Default())
	require.NoError(t, err)
	assert.Contains(t, FormatText(a), "scored over 60 of 100 weight points")
}

func TestFormatJSON(t *testing.T) {
	a, err := Assess(homeLoan(), score.Default())
	require.NoError(t, err)
	out, err := FormatJSON(a)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "MEDIUM", decoded["risk_category"])
	assert.Equal(t, "CONDITIONAL_APPROVE", decoded["decision"])
	assert.NotContains(t, decoded, "dscr")
}
