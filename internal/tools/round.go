package tools

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/ppiankov/creditwatch/internal/assess"
	"github.com/ppiankov/creditwatch/internal/model"
	"github.com/ppiankov/creditwatch/internal/ratio"
	"github.com/ppiankov/creditwatch/internal/score"
	"github.com/ppiankov/creditwatch/internal/underwrite"
)

// Presentation precision. Classification always happens on unrounded
// values; only the figures handed to callers are rounded.
const (
	ratioPlaces = 4
	moneyPlaces = 2
)

func round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func roundRatio(r model.RatioResult) model.RatioResult {
	r.Value = round(r.Value, ratioPlaces)
	r.Percentage = round(r.Percentage, moneyPlaces)
	return r
}

func roundFOIR(r ratio.FOIRResult) ratio.FOIRResult {
	r.RatioResult = roundRatio(r.RatioResult)
	r.TotalObligations = round(r.TotalObligations, moneyPlaces)
	r.RemainingIncome = round(r.RemainingIncome, moneyPlaces)
	return r
}

func roundEMI(r ratio.EMIResult) ratio.EMIResult {
	r.EMI = round(r.EMI, moneyPlaces)
	r.TotalPayment = round(r.TotalPayment, moneyPlaces)
	r.TotalInterest = round(r.TotalInterest, moneyPlaces)
	r.InterestToPrincipal = round(r.InterestToPrincipal, ratioPlaces)
	r.MonthlyRatePercent = round(r.MonthlyRatePercent, ratioPlaces)
	return r
}

func roundDSCR(r ratio.DSCRResult) ratio.DSCRResult {
	r.RatioResult = roundRatio(r.RatioResult)
	r.ExcessIncome = round(r.ExcessIncome, moneyPlaces)
	return r
}

func roundCollateral(r ratio.CollateralResult) ratio.CollateralResult {
	r.RatioResult = roundRatio(r.RatioResult)
	r.NetCollateralValue = round(r.NetCollateralValue, moneyPlaces)
	r.Shortfall = round(r.Shortfall, moneyPlaces)
	return r
}

func roundAssessment(a assess.Assessment) assess.Assessment {
	a.Score = round(a.Score, moneyPlaces)
	return a
}

func roundEmployment(r assess.EmploymentResult) assess.EmploymentResult {
	r.Assessment = roundAssessment(r.Assessment)
	r.Factors.EmploymentType = round(r.Factors.EmploymentType, moneyPlaces)
	r.Factors.Tenure = round(r.Factors.Tenure, moneyPlaces)
	r.Factors.Experience = round(r.Factors.Experience, moneyPlaces)
	r.Factors.Stability = round(r.Factors.Stability, moneyPlaces)
	return r
}

func roundPaymentScore(r assess.PaymentScoreResult) assess.PaymentScoreResult {
	r.Assessment = roundAssessment(r.Assessment)
	r.OnTimeRate = round(r.OnTimeRate, moneyPlaces)
	return r
}

func roundProfile(p score.Profile) score.Profile {
	fs := make([]score.FactorAssessment, len(p.Assessments))
	for i, f := range p.Assessments {
		f.Value = round(f.Value, moneyPlaces)
		fs[i] = f
	}
	p.Assessments = fs
	return p
}

func roundScore(r score.Result) score.Result {
	r.TotalScore = round(r.TotalScore, moneyPlaces)
	cs := make([]score.ComponentScore, len(r.Components))
	for i, c := range r.Components {
		c.Raw = round(c.Raw, moneyPlaces)
		c.SubScore = round(c.SubScore, moneyPlaces)
		c.Contribution = round(c.Contribution, moneyPlaces)
		cs[i] = c
	}
	r.Components = cs
	return r
}

// roundApplicant rounds every metric present in an assessment. Nested
// results are copied so the caller's assessment is left untouched.
func roundApplicant(a underwrite.Assessment) underwrite.Assessment {
	a.DTI = roundPtr(a.DTI, roundRatio)
	a.LTV = roundPtr(a.LTV, roundRatio)
	a.CreditUtilization = roundPtr(a.CreditUtilization, roundRatio)
	a.EMI = roundPtr(a.EMI, roundEMI)
	a.FOIR = roundPtr(a.FOIR, roundFOIR)
	a.DSCR = roundPtr(a.DSCR, roundDSCR)
	a.CollateralCoverage = roundPtr(a.CollateralCoverage, roundCollateral)
	a.Employment = roundPtr(a.Employment, roundEmployment)
	a.PaymentHistory = roundPtr(a.PaymentHistory, roundAssessment)
	a.PaymentRecord = roundPtr(a.PaymentRecord, roundPaymentScore)
	a.Profile = roundPtr(a.Profile, roundProfile)
	a.Composite = roundPtr(a.Composite, roundScore)
	return a
}

func roundPtr[T any](p *T, fn func(T) T) *T {
	if p == nil {
		return nil
	}
	v := fn(*p)
	return &v
}
