package model

import "strings"

// EmploymentType is the applicant's employment category.
type EmploymentType string

const (
	Salaried      EmploymentType = "salaried"
	BusinessOwner EmploymentType = "business_owner"
	SelfEmployed  EmploymentType = "self_employed"
	Freelancer    EmploymentType = "freelancer"
	Retired       EmploymentType = "retired"
	Unemployed    EmploymentType = "unemployed"
)

var employmentTypes = []EmploymentType{Salaried, BusinessOwner, SelfEmployed, Freelancer, Retired, Unemployed}

// ParseEmploymentType normalizes case and separators ("Self-Employed" → self_employed)
// and rejects anything outside the enumeration.
func ParseEmploymentType(s string) (EmploymentType, bool) {
	norm := normalizeEnum(s)
	for _, t := range employmentTypes {
		if string(t) == norm {
			return t, true
		}
	}
	return "", false
}

// PaymentHistory is the coarse repayment-behaviour category.
type PaymentHistory string

const (
	NoDefaults     PaymentHistory = "no_defaults"
	OccasionalLate PaymentHistory = "occasional_late"
	FrequentLate   PaymentHistory = "frequent_late"
	DefaultRecord  PaymentHistory = "default"
)

var paymentHistories = []PaymentHistory{NoDefaults, OccasionalLate, FrequentLate, DefaultRecord}

// ParsePaymentHistory normalizes and validates a payment-history category.
func ParsePaymentHistory(s string) (PaymentHistory, bool) {
	norm := normalizeEnum(s)
	for _, p := range paymentHistories {
		if string(p) == norm {
			return p, true
		}
	}
	return "", false
}

func normalizeEnum(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", "_")
	return strings.ReplaceAll(s, " ", "_")
}
