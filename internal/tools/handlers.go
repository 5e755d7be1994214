package tools

import (
	"context"

	"github.com/ppiankov/creditwatch/internal/assess"
	"github.com/ppiankov/creditwatch/internal/band"
	"github.com/ppiankov/creditwatch/internal/model"
	"github.com/ppiankov/creditwatch/internal/ratio"
	"github.com/ppiankov/creditwatch/internal/score"
	"github.com/ppiankov/creditwatch/internal/underwrite"
)

// Tool names.
const (
	NameDTI               = "compute_debt_to_income_ratio"
	NameLTV               = "compute_loan_to_value_ratio"
	NameCreditUtilization = "compute_credit_utilization_ratio"
	NameFOIR              = "compute_foir"
	NameEMI               = "compute_emi"
	NameDSCR              = "compute_dscr"
	NameCollateral        = "compute_collateral_coverage_ratio"
	NameEmployment        = "assess_employment_stability"
	NamePaymentScore      = "compute_payment_history_score"
	NamePaymentHistory    = "assess_payment_history"
	NameCreditScore       = "assess_credit_score"
	NameClassifyRatio     = "classify_ratio"
	NameClassifyProfile   = "classify_risk_category"
	NameTotalRiskScore    = "compute_total_risk_score"
	NameAssessApplicant   = "assess_applicant"
)

// DTIRequest is the input to compute_debt_to_income_ratio.
type DTIRequest struct {
	MonthlyIncome    *float64 `json:"monthly_income" jsonschema:"gross monthly income"`
	TotalMonthlyDebt *float64 `json:"total_monthly_debt" jsonschema:"sum of monthly debt payments"`
}

// LTVRequest is the input to compute_loan_to_value_ratio.
type LTVRequest struct {
	LoanAmount    *float64 `json:"loan_amount" jsonschema:"requested loan amount"`
	PropertyValue *float64 `json:"property_value" jsonschema:"appraised property value"`
}

// UtilizationRequest is the input to compute_credit_utilization_ratio.
type UtilizationRequest struct {
	CreditUsed  *float64 `json:"credit_used" jsonschema:"outstanding revolving balance"`
	CreditLimit *float64 `json:"credit_limit" jsonschema:"total revolving credit limit"`
}

// FOIRRequest is the input to compute_foir. Other obligations default to zero.
type FOIRRequest struct {
	MonthlyIncome    *float64 `json:"monthly_income" jsonschema:"gross monthly income"`
	ExistingEMIs     *float64 `json:"existing_emis" jsonschema:"installments on existing loans"`
	ProposedEMI      *float64 `json:"proposed_emi" jsonschema:"installment of the requested loan"`
	OtherObligations *float64 `json:"other_obligations,omitempty" jsonschema:"rent and other fixed monthly obligations"`
}

// EMIRequest is the input to compute_emi.
type EMIRequest struct {
	Principal          *float64 `json:"principal" jsonschema:"loan principal"`
	AnnualInterestRate *float64 `json:"annual_interest_rate" jsonschema:"annual rate in percent, e.g. 9 for 9%"`
	TenureMonths       *int     `json:"tenure_months" jsonschema:"loan tenure in months"`
}

// DSCRRequest is the input to compute_dscr. Both figures are annual.
type DSCRRequest struct {
	NetOperatingIncome *float64 `json:"net_operating_income" jsonschema:"annual net operating income"`
	TotalDebtService   *float64 `json:"total_debt_service" jsonschema:"annual principal and interest due"`
}

// CollateralRequest is the input to compute_collateral_coverage_ratio.
type CollateralRequest struct {
	CollateralValue     *float64 `json:"collateral_value" jsonschema:"market value of pledged collateral"`
	LoanAmount          *float64 `json:"loan_amount" jsonschema:"loan amount secured"`
	LiquidationDiscount *float64 `json:"liquidation_discount,omitempty" jsonschema:"forced-sale haircut as a fraction in [0, 1)"`
}

// EmploymentRequest is the input to assess_employment_stability.
type EmploymentRequest struct {
	EmploymentType       string   `json:"employment_type" jsonschema:"salaried, business_owner, self_employed, freelancer, retired or unemployed"`
	YearsInCurrentJob    *float64 `json:"years_in_current_job" jsonschema:"years with the current employer or business"`
	TotalWorkExperience  *float64 `json:"total_work_experience" jsonschema:"total years of work experience"`
	JobChangesLast5Years *int     `json:"job_changes_last_5_years,omitempty" jsonschema:"job changes in the last five years"`
}

// PaymentScoreRequest is the repayment record scored by compute_payment_history_score.
type PaymentScoreRequest struct {
	TotalAccounts *int `json:"total_accounts" jsonschema:"number of credit accounts"`
	OnTime        *int `json:"on_time_payments" jsonschema:"payments made on time"`
	Late30        *int `json:"late_payments_30_days,omitempty" jsonschema:"payments 30-59 days late"`
	Late60        *int `json:"late_payments_60_days,omitempty" jsonschema:"payments 60-89 days late"`
	Late90Plus    *int `json:"late_payments_90_plus_days,omitempty" jsonschema:"payments 90 or more days late"`
	Defaults      *int `json:"defaults,omitempty" jsonschema:"accounts in default"`
}

// PaymentHistoryRequest is the input to assess_payment_history.
type PaymentHistoryRequest struct {
	PaymentHistory string `json:"payment_history" jsonschema:"no_defaults, occasional_late, frequent_late or default"`
}

// CreditScoreRequest is the input to assess_credit_score.
type CreditScoreRequest struct {
	CreditScore *int `json:"credit_score" jsonschema:"bureau score, 300 to 900"`
}

// ClassifyRatioRequest names a band table and the value to place in it.
type ClassifyRatioRequest struct {
	Kind  string   `json:"kind" jsonschema:"band table name, e.g. dti, ltv, foir, dscr"`
	Value *float64 `json:"value" jsonschema:"value to classify, in the table's unit"`
}

// ClassifyRatioResponse is the band a value falls in.
type ClassifyRatioResponse struct {
	Kind      string             `json:"kind"`
	Value     float64            `json:"value"`
	Category  model.RiskCategory `json:"risk_category"`
	Label     string             `json:"label"`
	Note      string             `json:"note"`
	Rationale string             `json:"rationale"`
}

// ProfileRequest is the input to classify_risk_category. Every field is required.
type ProfileRequest struct {
	DTIPercentage            *float64 `json:"dti_percentage" jsonschema:"debt-to-income in percent"`
	LTVPercentage            *float64 `json:"ltv_percentage" jsonschema:"loan-to-value in percent"`
	CreditScore              *int     `json:"credit_score" jsonschema:"bureau score, 300 to 900"`
	EmploymentStabilityScore *float64 `json:"employment_stability_score" jsonschema:"employment stability score, 0 to 100"`
	PaymentHistoryScore      *float64 `json:"payment_history_score" jsonschema:"payment history score, 0 to 100"`
}

// TotalRiskRequest carries the composite components. Any subset may be
// supplied; how absent components are treated is a configuration choice.
type TotalRiskRequest struct {
	CreditScore              *int     `json:"credit_score,omitempty" jsonschema:"bureau score, 300 to 900"`
	PaymentHistoryScore      *float64 `json:"payment_history_score,omitempty" jsonschema:"payment history score, 0 to 100"`
	DTIPercentage            *float64 `json:"dti_percentage,omitempty" jsonschema:"debt-to-income in percent"`
	LTVPercentage            *float64 `json:"ltv_percentage,omitempty" jsonschema:"loan-to-value in percent"`
	EmploymentStabilityScore *float64 `json:"employment_stability_score,omitempty" jsonschema:"employment stability score, 0 to 100"`
	CreditUtilization        *float64 `json:"credit_utilization_percentage,omitempty" jsonschema:"revolving utilization in percent"`
	FOIRPercentage           *float64 `json:"foir_percentage,omitempty" jsonschema:"fixed obligations to income in percent"`
}

func (r TotalRiskRequest) components() map[model.Component]float64 {
	out := make(map[model.Component]float64, len(model.Components))
	if r.CreditScore != nil {
		out[model.CompCreditScore] = float64(*r.CreditScore)
	}
	for _, c := range []struct {
		comp model.Component
		v    *float64
	}{
		{model.CompPaymentHistory, r.PaymentHistoryScore},
		{model.CompDTI, r.DTIPercentage},
		{model.CompLTV, r.LTVPercentage},
		{model.CompEmploymentStability, r.EmploymentStabilityScore},
		{model.CompCreditUtilization, r.CreditUtilization},
		{model.CompFOIR, r.FOIRPercentage},
	} {
		if c.v != nil {
			out[c.comp] = *c.v
		}
	}
	return out
}

func (r *Registry) build() []Tool {
	return []Tool{
		newTool(NameDTI, "Debt-to-income ratio: total monthly debt as a percentage of monthly income.",
			func(_ context.Context, in DTIRequest) (model.RatioResult, error) {
				var req required
				q := ratio.DTIInput{
					MonthlyIncome:    req.num("monthly_income", in.MonthlyIncome),
					TotalMonthlyDebt: req.num("total_monthly_debt", in.TotalMonthlyDebt),
				}
				if req.err != nil {
					return model.RatioResult{}, req.err
				}
				res, err := ratio.DebtToIncome(q)
				return roundRatio(res), err
			}),

		newTool(NameLTV, "Loan-to-value ratio: loan amount as a percentage of property value.",
			func(_ context.Context, in LTVRequest) (model.RatioResult, error) {
				var req required
				q := ratio.LTVInput{
					LoanAmount:    req.num("loan_amount", in.LoanAmount),
					PropertyValue: req.num("property_value", in.PropertyValue),
				}
				if req.err != nil {
					return model.RatioResult{}, req.err
				}
				res, err := ratio.LoanToValue(q)
				return roundRatio(res), err
			}),

		newTool(NameCreditUtilization, "Credit utilization: revolving balance as a percentage of the credit limit.",
			func(_ context.Context, in UtilizationRequest) (model.RatioResult, error) {
				var req required
				q := ratio.UtilizationInput{
					CreditUsed:  req.num("credit_used", in.CreditUsed),
					CreditLimit: req.num("credit_limit", in.CreditLimit),
				}
				if req.err != nil {
					return model.RatioResult{}, req.err
				}
				res, err := ratio.CreditUtilization(q)
				return roundRatio(res), err
			}),

		newTool(NameFOIR, "Fixed obligations to income ratio, including the proposed installment.",
			func(_ context.Context, in FOIRRequest) (ratio.FOIRResult, error) {
				var req required
				q := ratio.FOIRInput{
					MonthlyIncome:    req.num("monthly_income", in.MonthlyIncome),
					ExistingEMIs:     req.num("existing_emis", in.ExistingEMIs),
					ProposedEMI:      req.num("proposed_emi", in.ProposedEMI),
					OtherObligations: optional(in.OtherObligations),
				}
				if req.err != nil {
					return ratio.FOIRResult{}, req.err
				}
				res, err := ratio.FOIR(q)
				return roundFOIR(res), err
			}),

		newTool(NameEMI, "Equated monthly installment for an amortizing loan, with total payment and interest.",
			func(_ context.Context, in EMIRequest) (ratio.EMIResult, error) {
				var req required
				q := ratio.EMIInput{
					Principal:          req.num("principal", in.Principal),
					AnnualInterestRate: req.num("annual_interest_rate", in.AnnualInterestRate),
					TenureMonths:       req.integer("tenure_months", in.TenureMonths),
				}
				if req.err != nil {
					return ratio.EMIResult{}, req.err
				}
				res, err := ratio.EMI(q)
				return roundEMI(res), err
			}),

		newTool(NameDSCR, "Debt service coverage ratio: net operating income over total debt service.",
			func(_ context.Context, in DSCRRequest) (ratio.DSCRResult, error) {
				var req required
				q := ratio.DSCRInput{
					NetOperatingIncome: req.num("net_operating_income", in.NetOperatingIncome),
					TotalDebtService:   req.num("total_debt_service", in.TotalDebtService),
				}
				if req.err != nil {
					return ratio.DSCRResult{}, req.err
				}
				res, err := ratio.DSCR(q)
				return roundDSCR(res), err
			}),

		newTool(NameCollateral, "Collateral coverage: discounted collateral value over the loan amount.",
			func(_ context.Context, in CollateralRequest) (ratio.CollateralResult, error) {
				var req required
				q := ratio.CollateralInput{
					CollateralValue:     req.num("collateral_value", in.CollateralValue),
					LoanAmount:          req.num("loan_amount", in.LoanAmount),
					LiquidationDiscount: optional(in.LiquidationDiscount),
				}
				if req.err != nil {
					return ratio.CollateralResult{}, req.err
				}
				res, err := ratio.CollateralCoverage(q)
				return roundCollateral(res), err
			}),

		newTool(NameEmployment, "Employment stability score from employment type, tenure, experience and job changes.",
			func(_ context.Context, in EmploymentRequest) (assess.EmploymentResult, error) {
				var req required
				raw := req.str("employment_type", in.EmploymentType)
				years := req.num("years_in_current_job", in.YearsInCurrentJob)
				exp := req.num("total_work_experience", in.TotalWorkExperience)
				if req.err != nil {
					return assess.EmploymentResult{}, req.err
				}
				et, ok := model.ParseEmploymentType(raw)
				if !ok {
					return assess.EmploymentResult{}, model.Invalid("employment_type", "unknown employment type %q", raw)
				}
				res, err := assess.EmploymentStability(assess.EmploymentInput{
					Type:                 et,
					YearsInCurrentJob:    years,
					TotalWorkExperience:  exp,
					JobChangesLast5Years: optionalInt(in.JobChangesLast5Years),
				})
				return roundEmployment(res), err
			}),

		newTool(NamePaymentScore, "Payment history score from on-time, late and defaulted payment counts.",
			func(_ context.Context, in PaymentScoreRequest) (assess.PaymentScoreResult, error) {
				var req required
				c := assess.PaymentCounts{
					TotalAccounts: req.integer("total_accounts", in.TotalAccounts),
					OnTime:        req.integer("on_time_payments", in.OnTime),
					Late30:        optionalInt(in.Late30),
					Late60:        optionalInt(in.Late60),
					Late90Plus:    optionalInt(in.Late90Plus),
					Defaults:      optionalInt(in.Defaults),
				}
				if req.err != nil {
					return assess.PaymentScoreResult{}, req.err
				}
				res, err := assess.PaymentHistoryScore(c)
				return roundPaymentScore(res), err
			}),

		newTool(NamePaymentHistory, "Payment history score from a coarse repayment category.",
			func(_ context.Context, in PaymentHistoryRequest) (assess.Assessment, error) {
				var req required
				raw := req.str("payment_history", in.PaymentHistory)
				if req.err != nil {
					return assess.Assessment{}, req.err
				}
				h, ok := model.ParsePaymentHistory(raw)
				if !ok {
					return assess.Assessment{}, model.Invalid("payment_history", "unknown payment history %q", raw)
				}
				res, err := assess.PaymentHistoryFromCategory(h)
				return roundAssessment(res), err
			}),

		newTool(NameCreditScore, "Rate a bureau credit score (300 to 900).",
			func(_ context.Context, in CreditScoreRequest) (assess.CreditScoreResult, error) {
				var req required
				s := req.integer("credit_score", in.CreditScore)
				if req.err != nil {
					return assess.CreditScoreResult{}, req.err
				}
				return assess.CreditScore(s)
			}),

		newTool(NameClassifyRatio, "Classify a value through one of the named band tables.",
			func(_ context.Context, in ClassifyRatioRequest) (ClassifyRatioResponse, error) {
				var req required
				kind := req.str("kind", in.Kind)
				v := req.num("value", in.Value)
				if req.err != nil {
					return ClassifyRatioResponse{}, req.err
				}
				t, ok := band.Lookup(band.Kind(kind))
				if !ok {
					return ClassifyRatioResponse{}, model.Invalid("kind", "unknown kind %q", kind)
				}
				b, err := t.Classify(v)
				if err != nil {
					return ClassifyRatioResponse{}, err
				}
				return ClassifyRatioResponse{
					Kind:      kind,
					Value:     round(v, ratioPlaces),
					Category:  b.Category,
					Label:     b.Label,
					Note:      b.Note,
					Rationale: band.Rationale(t, v, b),
				}, nil
			}),

		newTool(NameClassifyProfile, "Multi-factor risk category from DTI, LTV, credit score, employment and payment history.",
			func(_ context.Context, in ProfileRequest) (score.Profile, error) {
				var req required
				f := score.ProfileFactors{
					DTIPercentage:            req.num("dti_percentage", in.DTIPercentage),
					LTVPercentage:            req.num("ltv_percentage", in.LTVPercentage),
					CreditScore:              req.integer("credit_score", in.CreditScore),
					EmploymentStabilityScore: req.num("employment_stability_score", in.EmploymentStabilityScore),
					PaymentHistoryScore:      req.num("payment_history_score", in.PaymentHistoryScore),
				}
				if req.err != nil {
					return score.Profile{}, req.err
				}
				res, err := score.ClassifyProfile(f)
				return roundProfile(res), err
			}),

		newTool(NameTotalRiskScore, "Weighted composite risk score with grade and underwriting decision.",
			func(_ context.Context, in TotalRiskRequest) (score.Result, error) {
				res, err := r.scorer.Score(in.components())
				if err != nil {
					return score.Result{}, err
				}
				return roundScore(res), nil
			}),

		newTool(NameAssessApplicant, "Run every applicable calculator over an applicant and combine the results.",
			func(_ context.Context, in underwrite.Applicant) (underwrite.Assessment, error) {
				res, err := underwrite.Assess(in, r.scorer)
				if err != nil {
					return underwrite.Assessment{}, err
				}
				return roundApplicant(res), nil
			}),
	}
}
