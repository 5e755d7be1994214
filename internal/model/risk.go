package model

import "fmt"

// RiskCategory is the discrete risk level attached to every classified metric.
type RiskCategory string

const (
	RiskLow      RiskCategory = "LOW"
	RiskMedium   RiskCategory = "MEDIUM"
	RiskHigh     RiskCategory = "HIGH"
	RiskVeryHigh RiskCategory = "VERY_HIGH"
)

// RiskRank maps a category to a comparable integer. Higher = riskier.
var RiskRank = map[RiskCategory]int{
	RiskLow:      0,
	RiskMedium:   1,
	RiskHigh:     2,
	RiskVeryHigh: 3,
}

// Worse reports whether c is strictly riskier than other.
func (c RiskCategory) Worse(other RiskCategory) bool {
	return RiskRank[c] > RiskRank[other]
}

// Points returns the risk points a factor in this category contributes
// to a profile classification: LOW=0, MEDIUM=1, HIGH and above=2.
func (c RiskCategory) Points() int {
	switch c {
	case RiskLow:
		return 0
	case RiskMedium:
		return 1
	default:
		return 2
	}
}

// RatioResult is the output of a band-classified calculator.
type RatioResult struct {
	Kind       string       `json:"kind"`
	Value      float64      `json:"ratio"`
	Percentage float64      `json:"percentage"`
	Category   RiskCategory `json:"risk_category"`
	Label      string       `json:"label"`
	Rationale  string       `json:"rationale"`
}

// Component names one input of the composite risk score.
type Component string

const (
	CompCreditScore         Component = "credit_score"
	CompPaymentHistory      Component = "payment_history"
	CompDTI                 Component = "dti"
	CompLTV                 Component = "ltv"
	CompEmploymentStability Component = "employment_stability"
	CompCreditUtilization   Component = "credit_utilization"
	CompFOIR                Component = "foir"
)

// Components lists every composite component in canonical order.
// Iteration over weights and inputs always follows this order.
var Components = []Component{
	CompCreditScore,
	CompPaymentHistory,
	CompDTI,
	CompLTV,
	CompEmploymentStability,
	CompCreditUtilization,
	CompFOIR,
}

// ParseComponent validates a component name.
func ParseComponent(s string) (Component, error) {
	for _, c := range Components {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown component %q", s)
}
