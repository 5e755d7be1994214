// Package ratio computes the standard lending ratios from already extracted
// applicant figures. Every function is pure: values are returned unrounded
// and each call builds a fresh result.
package ratio

import (
	"math"

	"github.com/ppiankov/creditwatch/internal/band"
	"github.com/ppiankov/creditwatch/internal/model"
)

// DTIInput holds the figures for a debt-to-income ratio.
type DTIInput struct {
	MonthlyIncome    float64
	TotalMonthlyDebt float64
}

// DebtToIncome returns total_monthly_debt / monthly_income as a percentage.
func DebtToIncome(in DTIInput) (model.RatioResult, error) {
	if err := model.CheckAmount("total_monthly_debt", in.TotalMonthlyDebt); err != nil {
		return model.RatioResult{}, err
	}
	if err := model.CheckDivisor("monthly_income", in.MonthlyIncome); err != nil {
		return model.RatioResult{}, err
	}
	return percentOf(band.DTITable, in.TotalMonthlyDebt, in.MonthlyIncome)
}

// LTVInput holds the figures for a loan-to-value ratio.
type LTVInput struct {
	LoanAmount    float64
	PropertyValue float64
}

// LoanToValue returns loan_amount / property_value as a percentage. The
// result may exceed 100.
func LoanToValue(in LTVInput) (model.RatioResult, error) {
	if err := model.CheckAmount("loan_amount", in.LoanAmount); err != nil {
		return model.RatioResult{}, err
	}
	if err := model.CheckDivisor("property_value", in.PropertyValue); err != nil {
		return model.RatioResult{}, err
	}
	return percentOf(band.LTVTable, in.LoanAmount, in.PropertyValue)
}

// UtilizationInput holds revolving credit figures.
type UtilizationInput struct {
	CreditUsed  float64
	CreditLimit float64
}

// CreditUtilization returns credit_used / credit_limit as a percentage.
func CreditUtilization(in UtilizationInput) (model.RatioResult, error) {
	if err := model.CheckAmount("credit_used", in.CreditUsed); err != nil {
		return model.RatioResult{}, err
	}
	if err := model.CheckDivisor("credit_limit", in.CreditLimit); err != nil {
		return model.RatioResult{}, err
	}
	return percentOf(band.CreditUtilizationTable, in.CreditUsed, in.CreditLimit)
}

// FOIRInput holds fixed monthly obligations against income.
type FOIRInput struct {
	MonthlyIncome    float64
	ExistingEMIs     float64
	ProposedEMI      float64
	OtherObligations float64
}

// FOIRResult extends the ratio with the obligation totals.
type FOIRResult struct {
	model.RatioResult
	TotalObligations float64 `json:"total_obligations"`
	RemainingIncome  float64 `json:"remaining_income"`
}

// FOIR returns fixed obligations as a percentage of monthly income.
func FOIR(in FOIRInput) (FOIRResult, error) {
	amounts := []struct {
		field string
		v     float64
	}{
		{"existing_emis", in.ExistingEMIs},
		{"proposed_emi", in.ProposedEMI},
		{"other_obligations", in.OtherObligations},
	}
	for _, a := range amounts {
		if err := model.CheckAmount(a.field, a.v); err != nil {
			return FOIRResult{}, err
		}
	}
	if err := model.CheckDivisor("monthly_income", in.MonthlyIncome); err != nil {
		return FOIRResult{}, err
	}

	total := in.ExistingEMIs + in.ProposedEMI + in.OtherObligations
	r, err := percentOf(band.FOIRTable, total, in.MonthlyIncome)
	if err != nil {
		return FOIRResult{}, err
	}
	return FOIRResult{
		RatioResult:      r,
		TotalObligations: total,
		RemainingIncome:  in.MonthlyIncome - total,
	}, nil
}

// EMIInput describes an amortizing loan.
type EMIInput struct {
	Principal          float64
	AnnualInterestRate float64 // percent, e.g. 9 for 9%
	TenureMonths       int
}

// EMIResult is the fixed monthly installment and the totals it implies.
type EMIResult struct {
	EMI                 float64 `json:"emi"`
	TotalPayment        float64 `json:"total_payment"`
	TotalInterest       float64 `json:"total_interest"`
	InterestToPrincipal float64 `json:"interest_to_principal_ratio"`
	MonthlyRatePercent  float64 `json:"monthly_interest_rate"`
}

// EMI computes P*r*(1+r)^n / ((1+r)^n - 1) with r the monthly rate.
// A zero rate degenerates to P/n. The growth term is evaluated as
// expm1(n*log1p(r)) so rates too small to move 1+r still tend to P/n.
func EMI(in EMIInput) (EMIResult, error) {
	if err := model.CheckFinite("principal", in.Principal); err != nil {
		return EMIResult{}, err
	}
	if in.Principal <= 0 {
		return EMIResult{}, model.Invalid("principal", "must be greater than zero (got %g)", in.Principal)
	}
	if err := model.CheckAmount("annual_interest_rate", in.AnnualInterestRate); err != nil {
		return EMIResult{}, err
	}
	if in.TenureMonths <= 0 {
		return EMIResult{}, model.Invalid("tenure_months", "must be at least 1 month (got %d)", in.TenureMonths)
	}

	n := float64(in.TenureMonths)
	r := in.AnnualInterestRate / 12 / 100

	var emi float64
	if r == 0 {
		emi = in.Principal / n
	} else {
		// P*r*(1+g)/g with g = (1+r)^n - 1, split so that an infinite g
		// leaves the interest-only limit P*r.
		g := math.Expm1(n * math.Log1p(r))
		emi = in.Principal*r + in.Principal*r/g
	}
	if math.IsInf(emi, 0) || math.IsNaN(emi) {
		return EMIResult{}, model.Invalid("annual_interest_rate", "installment overflows for rate %g over %d months", in.AnnualInterestRate, in.TenureMonths)
	}

	total := emi * n
	interest := total - in.Principal
	return EMIResult{
		EMI:                 emi,
		TotalPayment:        total,
		TotalInterest:       interest,
		InterestToPrincipal: interest / in.Principal,
		MonthlyRatePercent:  r * 100,
	}, nil
}

// DSCRInput holds annual business cash flow figures.
type DSCRInput struct {
	NetOperatingIncome float64
	TotalDebtService   float64
}

// DSCRResult extends the ratio with the surplus over debt service.
type DSCRResult struct {
	model.RatioResult
	ExcessIncome float64 `json:"excess_income"`
}

// DSCR returns net_operating_income / total_debt_service. Operating income
// may be negative for a loss-making business.
func DSCR(in DSCRInput) (DSCRResult, error) {
	if err := model.CheckFinite("net_operating_income", in.NetOperatingIncome); err != nil {
		return DSCRResult{}, err
	}
	if err := model.CheckDivisor("total_debt_service", in.TotalDebtService); err != nil {
		return DSCRResult{}, err
	}
	r, err := coverageOf(band.DSCRTable, in.NetOperatingIncome, in.TotalDebtService)
	if err != nil {
		return DSCRResult{}, err
	}
	return DSCRResult{
		RatioResult:  r,
		ExcessIncome: in.NetOperatingIncome - in.TotalDebtService,
	}, nil
}

// CollateralInput describes pledged security against a loan.
type CollateralInput struct {
	CollateralValue     float64
	LoanAmount          float64
	LiquidationDiscount float64 // fraction in [0, 1)
}

// CollateralResult extends the ratio with net collateral and shortfall.
type CollateralResult struct {
	model.RatioResult
	NetCollateralValue float64 `json:"net_collateral_value"`
	Shortfall          float64 `json:"shortfall"`
}

// CollateralCoverage returns collateral_value * (1 - discount) / loan_amount.
// With a zero discount this is collateral_value / loan_amount exactly.
func CollateralCoverage(in CollateralInput) (CollateralResult, error) {
	if err := model.CheckAmount("collateral_value", in.CollateralValue); err != nil {
		return CollateralResult{}, err
	}
	if err := model.CheckDivisor("loan_amount", in.LoanAmount); err != nil {
		return CollateralResult{}, err
	}
	if err := model.CheckFinite("liquidation_discount", in.LiquidationDiscount); err != nil {
		return CollateralResult{}, err
	}
	if in.LiquidationDiscount < 0 || in.LiquidationDiscount >= 1 {
		return CollateralResult{}, model.Invalid("liquidation_discount", "must be in [0, 1) (got %g)", in.LiquidationDiscount)
	}

	net := in.CollateralValue
	if in.LiquidationDiscount != 0 {
		net = in.CollateralValue * (1 - in.LiquidationDiscount)
	}
	r, err := coverageOf(band.CollateralCoverageTable, net, in.LoanAmount)
	if err != nil {
		return CollateralResult{}, err
	}
	var shortfall float64
	if net < in.LoanAmount {
		shortfall = in.LoanAmount - net
	}
	return CollateralResult{
		RatioResult:        r,
		NetCollateralValue: net,
		Shortfall:          shortfall,
	}, nil
}

// percentOf classifies num*100/den through a percent table. Scaling before
// dividing keeps exact cutoffs exact (35*100/100 is 35, 0.35*100 is not).
func percentOf(t band.Table, num, den float64) (model.RatioResult, error) {
	v := num / den
	pct := num * 100 / den
	b, err := t.Classify(pct)
	if err != nil {
		return model.RatioResult{}, err
	}
	return model.RatioResult{
		Kind:       string(t.Kind),
		Value:      v,
		Percentage: pct,
		Category:   b.Category,
		Label:      b.Label,
		Rationale:  band.Rationale(t, pct, b),
	}, nil
}

// coverageOf classifies the plain ratio num/den through a coverage table.
func coverageOf(t band.Table, num, den float64) (model.RatioResult, error) {
	v := num / den
	b, err := t.Classify(v)
	if err != nil {
		return model.RatioResult{}, err
	}
	return model.RatioResult{
		Kind:       string(t.Kind),
		Value:      v,
		Percentage: v * 100,
		Category:   b.Category,
		Label:      b.Label,
		Rationale:  band.Rationale(t, v, b),
	}, nil
}
