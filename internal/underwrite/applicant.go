package underwrite

import (
	"github.com/ppiankov/creditwatch/internal/assess"
	"github.com/ppiankov/creditwatch/internal/model"
)

// Applicant is the structured, already extracted profile of a loan
// applicant. Every field is optional; calculators whose inputs are absent
// are skipped.
type Applicant struct {
	MonthlyIncome    *float64 `json:"monthly_income,omitempty" yaml:"monthly_income,omitempty" jsonschema:"gross monthly income"`
	TotalMonthlyDebt *float64 `json:"total_monthly_debt,omitempty" yaml:"total_monthly_debt,omitempty" jsonschema:"all monthly debt payments; defaults to existing_emis for the DTI ratio"`
	ExistingEMIs     *float64 `json:"existing_emis,omitempty" yaml:"existing_emis,omitempty" jsonschema:"current monthly EMI payments"`
	OtherObligations *float64 `json:"other_obligations,omitempty" yaml:"other_obligations,omitempty" jsonschema:"other fixed monthly obligations such as rent or insurance"`

	LoanAmount         *float64 `json:"loan_amount,omitempty" yaml:"loan_amount,omitempty" jsonschema:"requested loan principal"`
	PropertyValue      *float64 `json:"property_value,omitempty" yaml:"property_value,omitempty" jsonschema:"appraised value of the financed property"`
	AnnualInterestRate *float64 `json:"annual_interest_rate,omitempty" yaml:"annual_interest_rate,omitempty" jsonschema:"annual interest rate in percent"`
	TenureMonths       *int     `json:"tenure_months,omitempty" yaml:"tenure_months,omitempty" jsonschema:"loan tenure in months"`
	ProposedEMI        *float64 `json:"proposed_emi,omitempty" yaml:"proposed_emi,omitempty" jsonschema:"installment of the requested loan; derived from loan terms when absent"`

	CreditScore *int     `json:"credit_score,omitempty" yaml:"credit_score,omitempty" jsonschema:"bureau score between 300 and 900"`
	CreditUsed  *float64 `json:"credit_used,omitempty" yaml:"credit_used,omitempty" jsonschema:"revolving credit balance"`
	CreditLimit *float64 `json:"credit_limit,omitempty" yaml:"credit_limit,omitempty" jsonschema:"total revolving credit limit"`

	EmploymentType       string   `json:"employment_type,omitempty" yaml:"employment_type,omitempty" jsonschema:"salaried, business_owner, self_employed, freelancer, retired or unemployed"`
	YearsInCurrentJob    *float64 `json:"years_in_current_job,omitempty" yaml:"years_in_current_job,omitempty" jsonschema:"years with the current employer or business"`
	TotalWorkExperience  *float64 `json:"total_work_experience,omitempty" yaml:"total_work_experience,omitempty" jsonschema:"total professional experience in years"`
	JobChangesLast5Years *int     `json:"job_changes_last_5_years,omitempty" yaml:"job_changes_last_5_years,omitempty" jsonschema:"job changes in the last five years"`

	PaymentHistory string         `json:"payment_history,omitempty" yaml:"payment_history,omitempty" jsonschema:"no_defaults, occasional_late, frequent_late or default"`
	PaymentRecord  *PaymentRecord `json:"payment_record,omitempty" yaml:"payment_record,omitempty" jsonschema:"detailed repayment counts; preferred over payment_history"`

	NetOperatingIncome *float64 `json:"net_operating_income,omitempty" yaml:"net_operating_income,omitempty" jsonschema:"annual net operating income of the business"`
	AnnualDebtService  *float64 `json:"annual_debt_service,omitempty" yaml:"annual_debt_service,omitempty" jsonschema:"annual principal and interest payments"`

	CollateralValue     *float64 `json:"collateral_value,omitempty" yaml:"collateral_value,omitempty" jsonschema:"appraised value of pledged collateral"`
	LiquidationDiscount *float64 `json:"liquidation_discount,omitempty" yaml:"liquidation_discount,omitempty" jsonschema:"expected forced-sale discount as a fraction in [0, 1)"`
}

// PaymentRecord is the applicant's repayment counts.
type PaymentRecord struct {
	TotalAccounts int `json:"total_accounts" yaml:"total_accounts" jsonschema:"number of credit accounts"`
	OnTime        int `json:"on_time_payments" yaml:"on_time_payments" jsonschema:"on-time payment records"`
	Late30        int `json:"late_payments_30_days,omitempty" yaml:"late_payments_30_days,omitempty" jsonschema:"payments 30 days late"`
	Late60        int `json:"late_payments_60_days,omitempty" yaml:"late_payments_60_days,omitempty" jsonschema:"payments 60 days late"`
	Late90Plus    int `json:"late_payments_90_plus_days,omitempty" yaml:"late_payments_90_plus_days,omitempty" jsonschema:"payments 90 or more days late"`
	Defaults      int `json:"defaults,omitempty" yaml:"defaults,omitempty" jsonschema:"defaulted accounts"`
}

func (p PaymentRecord) counts() assess.PaymentCounts {
	return assess.PaymentCounts{
		TotalAccounts: p.TotalAccounts,
		OnTime:        p.OnTime,
		Late30:        p.Late30,
		Late60:        p.Late60,
		Late90Plus:    p.Late90Plus,
		Defaults:      p.Defaults,
	}
}

// employmentType parses the applicant's employment category.
func (a *Applicant) employmentType() (model.EmploymentType, error) {
	t, ok := model.ParseEmploymentType(a.EmploymentType)
	if !ok {
		return "", model.Invalid("employment_type", "unknown employment type %q", a.EmploymentType)
	}
	return t, nil
}

// dtiDebt is the debt figure used for the DTI ratio.
func (a *Applicant) dtiDebt() *float64 {
	if a.TotalMonthlyDebt != nil {
		return a.TotalMonthlyDebt
	}
	return a.ExistingEMIs
}
