// Package underwrite runs every applicable calculator over a structured
// applicant and assembles the results into one report with a composite
// score and recommendation.
package underwrite

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/creditwatch/internal/assess"
	"github.com/ppiankov/creditwatch/internal/model"
	"github.com/ppiankov/creditwatch/internal/ratio"
	"github.com/ppiankov/creditwatch/internal/score"
)

// Assessment is the full underwriting report for one applicant.
type Assessment struct {
	DTI                *model.RatioResult         `json:"dti,omitempty"`
	LTV                *model.RatioResult         `json:"ltv,omitempty"`
	CreditUtilization  *model.RatioResult         `json:"credit_utilization,omitempty"`
	EMI                *ratio.EMIResult           `json:"emi,omitempty"`
	FOIR               *ratio.FOIRResult          `json:"foir,omitempty"`
	DSCR               *ratio.DSCRResult          `json:"dscr,omitempty"`
	CollateralCoverage *ratio.CollateralResult    `json:"collateral_coverage,omitempty"`
	CreditScore        *assess.CreditScoreResult  `json:"credit_score,omitempty"`
	Employment         *assess.EmploymentResult   `json:"employment_stability,omitempty"`
	PaymentHistory     *assess.Assessment         `json:"payment_history,omitempty"`
	PaymentRecord      *assess.PaymentScoreResult `json:"payment_record,omitempty"`

	Profile   *score.Profile `json:"profile,omitempty"`
	Composite *score.Result  `json:"composite,omitempty"`

	// Category is always the composite category; an assessment without a
	// composite is an error, never a default.
	Category       model.RiskCategory `json:"risk_category"`
	Decision       score.Decision     `json:"decision,omitempty"`
	Recommendation string             `json:"recommendation,omitempty"`
	Observations   []string           `json:"observations"`
	Skipped        []string           `json:"skipped"`
}

// step is one calculator in an assessment run.
type step struct {
	name string
	// needs returns the names of absent inputs; empty means runnable.
	needs func(a *Applicant) []string
	run   func(a *Applicant, out *Assessment) error
}

// Assess runs each calculator whose inputs are present and skips the rest.
// Any calculator error aborts the whole assessment, as does a composite the
// scorer's missing-component policy refuses: an applicant with no scored
// component fails with missing_input under either policy.
func Assess(a Applicant, s *score.Scorer) (Assessment, error) {
	out := Assessment{Observations: []string{}, Skipped: []string{}}

	for _, st := range steps {
		if missing := st.needs(&a); len(missing) > 0 {
			out.Skipped = append(out.Skipped, fmt.Sprintf("%s: missing %s", st.name, strings.Join(missing, ", ")))
			continue
		}
		if err := st.run(&a, &out); err != nil {
			return Assessment{}, err
		}
	}

	if err := profile(&out); err != nil {
		return Assessment{}, err
	}
	if err := composite(&out, s); err != nil {
		return Assessment{}, err
	}

	out.Observations = observations(&out)
	out.Category = out.Composite.Category
	return out, nil
}

var steps = []step{
	{
		name:  "compute_debt_to_income_ratio",
		needs: func(a *Applicant) []string { return absent(input{"monthly_income", a.MonthlyIncome}, input{"total_monthly_debt", a.dtiDebt()}) },
		run: func(a *Applicant, out *Assessment) error {
			r, err := ratio.DebtToIncome(ratio.DTIInput{MonthlyIncome: *a.MonthlyIncome, TotalMonthlyDebt: *a.dtiDebt()})
			out.DTI = &r
			return err
		},
	},
	{
		name:  "compute_loan_to_value_ratio",
		needs: func(a *Applicant) []string { return absent(input{"loan_amount", a.LoanAmount}, input{"property_value", a.PropertyValue}) },
		run: func(a *Applicant, out *Assessment) error {
			r, err := ratio.LoanToValue(ratio.LTVInput{LoanAmount: *a.LoanAmount, PropertyValue: *a.PropertyValue})
			out.LTV = &r
			return err
		},
	},
	{
		name:  "compute_credit_utilization_ratio",
		needs: func(a *Applicant) []string { return absent(input{"credit_used", a.CreditUsed}, input{"credit_limit", a.CreditLimit}) },
		run: func(a *Applicant, out *Assessment) error {
			r, err := ratio.CreditUtilization(ratio.UtilizationInput{CreditUsed: *a.CreditUsed, CreditLimit: *a.CreditLimit})
			out.CreditUtilization = &r
			return err
		},
	},
	{
		name: "compute_emi",
		needs: func(a *Applicant) []string {
			m := absent(input{"loan_amount", a.LoanAmount}, input{"annual_interest_rate", a.AnnualInterestRate})
			if a.TenureMonths == nil {
				m = append(m, "tenure_months")
			}
			return m
		},
		run: func(a *Applicant, out *Assessment) error {
			r, err := ratio.EMI(ratio.EMIInput{Principal: *a.LoanAmount, AnnualInterestRate: *a.AnnualInterestRate, TenureMonths: *a.TenureMonths})
			out.EMI = &r
			return err
		},
	},
	{
		name: "compute_foir",
		needs: func(a *Applicant) []string {
			m := absent(input{"monthly_income", a.MonthlyIncome}, input{"existing_emis", a.ExistingEMIs})
			if a.ProposedEMI == nil && (a.LoanAmount == nil || a.AnnualInterestRate == nil || a.TenureMonths == nil) {
				m = append(m, "proposed_emi")
			}
			return m
		},
		run: func(a *Applicant, out *Assessment) error {
			in := ratio.FOIRInput{MonthlyIncome: *a.MonthlyIncome, ExistingEMIs: *a.ExistingEMIs}
			switch {
			case a.ProposedEMI != nil:
				in.ProposedEMI = *a.ProposedEMI
			case out.EMI != nil:
				in.ProposedEMI = out.EMI.EMI
			}
			if a.OtherObligations != nil {
				in.OtherObligations = *a.OtherObligations
			}
			r, err := ratio.FOIR(in)
			out.FOIR = &r
			return err
		},
	},
	{
		name:  "compute_dscr",
		needs: func(a *Applicant) []string { return absent(input{"net_operating_income", a.NetOperatingIncome}, input{"annual_debt_service", a.AnnualDebtService}) },
		run: func(a *Applicant, out *Assessment) error {
			r, err := ratio.DSCR(ratio.DSCRInput{NetOperatingIncome: *a.NetOperatingIncome, TotalDebtService: *a.AnnualDebtService})
			out.DSCR = &r
			return err
		},
	},
	{
		name:  "compute_collateral_coverage_ratio",
		needs: func(a *Applicant) []string { return absent(input{"collateral_value", a.CollateralValue}, input{"loan_amount", a.LoanAmount}) },
		run: func(a *Applicant, out *Assessment) error {
			in := ratio.CollateralInput{CollateralValue: *a.CollateralValue, LoanAmount: *a.LoanAmount}
			if a.LiquidationDiscount != nil {
				in.LiquidationDiscount = *a.LiquidationDiscount
			}
			r, err := ratio.CollateralCoverage(in)
			out.CollateralCoverage = &r
			return err
		},
	},
	{
		name: "assess_credit_score",
		needs: func(a *Applicant) []string {
			if a.CreditScore == nil {
				return []string{"credit_score"}
			}
			return nil
		},
		run: func(a *Applicant, out *Assessment) error {
			r, err := assess.CreditScore(*a.CreditScore)
			out.CreditScore = &r
			return err
		},
	},
	{
		name: "assess_employment_stability",
		needs: func(a *Applicant) []string {
			var m []string
			if a.EmploymentType == "" {
				m = append(m, "employment_type")
			}
			return append(m, absent(input{"years_in_current_job", a.YearsInCurrentJob}, input{"total_work_experience", a.TotalWorkExperience})...)
		},
		run: func(a *Applicant, out *Assessment) error {
			t, err := a.employmentType()
			if err != nil {
				return err
			}
			in := assess.EmploymentInput{Type: t, YearsInCurrentJob: *a.YearsInCurrentJob, TotalWorkExperience: *a.TotalWorkExperience}
			if a.JobChangesLast5Years != nil {
				in.JobChangesLast5Years = *a.JobChangesLast5Years
			}
			r, err := assess.EmploymentStability(in)
			out.Employment = &r
			return err
		},
	},
	{
		name: "assess_payment_history",
		needs: func(a *Applicant) []string {
			if a.PaymentRecord == nil && a.PaymentHistory == "" {
				return []string{"payment_record or payment_history"}
			}
			return nil
		},
		run: func(a *Applicant, out *Assessment) error {
			if a.PaymentRecord != nil {
				r, err := assess.PaymentHistoryScore(a.PaymentRecord.counts())
				if err != nil {
					return err
				}
				out.PaymentRecord = &r
				out.PaymentHistory = &r.Assessment
				return nil
			}
			h, ok := model.ParsePaymentHistory(a.PaymentHistory)
			if !ok {
				return model.Invalid("payment_history", "unknown payment history %q", a.PaymentHistory)
			}
			r, err := assess.PaymentHistoryFromCategory(h)
			out.PaymentHistory = &r
			return err
		},
	},
}

// profile runs the multi-factor classification when all five factors exist.
func profile(out *Assessment) error {
	if out.DTI == nil || out.LTV == nil || out.CreditScore == nil || out.Employment == nil || out.PaymentHistory == nil {
		out.Skipped = append(out.Skipped, "classify_risk_category: needs dti, ltv, credit_score, employment_stability and payment_history")
		return nil
	}
	p, err := score.ClassifyProfile(score.ProfileFactors{
		DTIPercentage:            out.DTI.Percentage,
		LTVPercentage:            out.LTV.Percentage,
		CreditScore:              out.CreditScore.Score,
		EmploymentStabilityScore: out.Employment.Score,
		PaymentHistoryScore:      out.PaymentHistory.Score,
	})
	if err != nil {
		return err
	}
	out.Profile = &p
	return nil
}

// composite scores whatever components the run produced. The scorer
// decides whether the set is enough.
func composite(out *Assessment, s *score.Scorer) error {
	r, err := s.Score(ComponentInputs(out))
	if err != nil {
		return err
	}
	out.Composite = &r
	out.Decision = r.Decision
	out.Recommendation = r.Recommendation
	return nil
}

// ComponentInputs maps the metrics of an assessment onto composite
// components.
func ComponentInputs(out *Assessment) map[model.Component]float64 {
	in := map[model.Component]float64{}
	if out.CreditScore != nil {
		in[model.CompCreditScore] = float64(out.CreditScore.Score)
	}
	if out.PaymentHistory != nil {
		in[model.CompPaymentHistory] = out.PaymentHistory.Score
	}
	if out.DTI != nil {
		in[model.CompDTI] = out.DTI.Percentage
	}
	if out.LTV != nil {
		in[model.CompLTV] = out.LTV.Percentage
	}
	if out.Employment != nil {
		in[model.CompEmploymentStability] = out.Employment.Score
	}
	if out.CreditUtilization != nil {
		in[model.CompCreditUtilization] = out.CreditUtilization.Percentage
	}
	if out.FOIR != nil {
		in[model.CompFOIR] = out.FOIR.Percentage
	}
	return in
}

type metric struct {
	name     string
	category model.RiskCategory
	detail   string
}

func metrics(out *Assessment) []metric {
	var ms []metric
	pct := func(name string, r *model.RatioResult) {
		if r != nil {
			ms = append(ms, metric{name, r.Category, fmt.Sprintf("%.2f%% (%s)", r.Percentage, r.Label)})
		}
	}
	pct("DTI", out.DTI)
	pct("LTV", out.LTV)
	pct("Credit utilization", out.CreditUtilization)
	if out.FOIR != nil {
		pct("FOIR", &out.FOIR.RatioResult)
	}
	if out.DSCR != nil {
		ms = append(ms, metric{"DSCR", out.DSCR.Category, fmt.Sprintf("%.2fx (%s)", out.DSCR.Value, out.DSCR.Label)})
	}
	if out.CollateralCoverage != nil {
		c := out.CollateralCoverage
		ms = append(ms, metric{"Collateral coverage", c.Category, fmt.Sprintf("%.2fx (%s)", c.Value, c.Label)})
	}
	if out.CreditScore != nil {
		ms = append(ms, metric{"Credit score", out.CreditScore.Category, fmt.Sprintf("%d (%s)", out.CreditScore.Score, out.CreditScore.Rating)})
	}
	if out.Employment != nil {
		ms = append(ms, metric{"Employment stability", out.Employment.Category, fmt.Sprintf("%.2f (%s)", out.Employment.Score, out.Employment.Label)})
	}
	if out.PaymentHistory != nil {
		ms = append(ms, metric{"Payment history", out.PaymentHistory.Category, fmt.Sprintf("%.2f (%s)", out.PaymentHistory.Score, out.PaymentHistory.Label)})
	}
	return ms
}

// observations lists every metric in a HIGH or worse band, riskiest first.
func observations(out *Assessment) []string {
	ms := metrics(out)
	sort.SliceStable(ms, func(i, j int) bool { return ms[i].category.Worse(ms[j].category) })
	obs := []string{}
	for _, m := range ms {
		if m.category.Worse(model.RiskMedium) {
			obs = append(obs, fmt.Sprintf("%s is %s risk: %s", m.name, m.category, m.detail))
		}
	}
	return obs
}

type input struct {
	name string
	v    *float64
}

// absent returns the names of inputs that were not supplied.
func absent(ins ...input) []string {
	var m []string
	for _, in := range ins {
		if in.v == nil {
			m = append(m, in.name)
		}
	}
	return m
}
