// Package assess turns qualitative applicant attributes (employment,
// repayment record, bureau score) into bounded numeric scores with a risk
// category.
package assess

import (
	"math"

	"github.com/ppiankov/creditwatch/internal/band"
	"github.com/ppiankov/creditwatch/internal/model"
)

// Score bounds shared by every assessor.
const (
	MinScore = 0
	MaxScore = 100
)

// MaxPaymentCount bounds each repayment count so the record total and
// penalty arithmetic stay far from int overflow.
const MaxPaymentCount = 1_000_000_000

// Credit bureau score range, inclusive.
const (
	MinCreditScore = 300
	MaxCreditScore = 900
)

var employmentBase = map[model.EmploymentType]float64{
	model.Salaried:      30,
	model.BusinessOwner: 25,
	model.SelfEmployed:  20,
	model.Retired:       20,
	model.Freelancer:    15,
	model.Unemployed:    0,
}

// stabilityPoints is indexed by job changes in the last five years; four
// or more changes earn nothing.
var stabilityPoints = []float64{20, 15, 10, 5}

var paymentCategoryScore = map[model.PaymentHistory]float64{
	model.NoDefaults:     95,
	model.OccasionalLate: 75,
	model.FrequentLate:   45,
	model.DefaultRecord:  10,
}

// Assessment is a bounded score with its band.
type Assessment struct {
	Score     float64            `json:"score"`
	Category  model.RiskCategory `json:"risk_category"`
	Label     string             `json:"label"`
	Rationale string             `json:"rationale"`
}

// EmploymentInput describes the applicant's work record.
type EmploymentInput struct {
	Type                 model.EmploymentType
	YearsInCurrentJob    float64
	TotalWorkExperience  float64
	JobChangesLast5Years int
}

// EmploymentFactors breaks the employment score into its parts.
type EmploymentFactors struct {
	EmploymentType float64 `json:"employment_type_score"`
	Tenure         float64 `json:"tenure_score"`
	Experience     float64 `json:"experience_score"`
	Stability      float64 `json:"stability_score"`
}

// EmploymentResult is an employment stability assessment.
type EmploymentResult struct {
	Assessment
	Factors EmploymentFactors `json:"factors"`
}

// EmploymentStability scores income reliability. For a fixed employment
// type the score never decreases as tenure grows.
func EmploymentStability(in EmploymentInput) (EmploymentResult, error) {
	base, ok := employmentBase[in.Type]
	if !ok {
		return EmploymentResult{}, model.Invalid("employment_type", "unknown employment type %q", in.Type)
	}
	if err := model.CheckAmount("years_in_current_job", in.YearsInCurrentJob); err != nil {
		return EmploymentResult{}, err
	}
	if err := model.CheckAmount("total_work_experience", in.TotalWorkExperience); err != nil {
		return EmploymentResult{}, err
	}
	if in.JobChangesLast5Years < 0 {
		return EmploymentResult{}, model.Invalid("job_changes_last_5_years", "cannot be negative (got %d)", in.JobChangesLast5Years)
	}

	f := EmploymentFactors{
		EmploymentType: base,
		Tenure:         math.Min(in.YearsInCurrentJob*6, 30),
		Experience:     math.Min(in.TotalWorkExperience*2, 20),
	}
	if in.JobChangesLast5Years < len(stabilityPoints) {
		f.Stability = stabilityPoints[in.JobChangesLast5Years]
	}

	total := math.Min(f.EmploymentType+f.Tenure+f.Experience+f.Stability, MaxScore)
	a, err := classify(band.EmploymentStabilityTable, total)
	if err != nil {
		return EmploymentResult{}, err
	}
	return EmploymentResult{Assessment: a, Factors: f}, nil
}

// PaymentHistoryFromCategory maps a coarse repayment category to its fixed
// score. Scores strictly decrease from no_defaults to default.
func PaymentHistoryFromCategory(h model.PaymentHistory) (Assessment, error) {
	s, ok := paymentCategoryScore[h]
	if !ok {
		return Assessment{}, model.Invalid("payment_history", "unknown payment history %q", h)
	}
	return classify(band.PaymentHistoryTable, s)
}

// PaymentCounts is a detailed repayment record.
type PaymentCounts struct {
	TotalAccounts int
	OnTime        int
	Late30        int
	Late60        int
	Late90Plus    int
	Defaults      int
}

// PaymentScoreResult is a payment history score derived from counts.
type PaymentScoreResult struct {
	Assessment
	OnTimeRate          float64 `json:"on_time_rate"`
	TotalPaymentRecords int     `json:"total_payment_records"`
	PenaltyPoints       int     `json:"penalty_points"`
}

// PaymentHistoryScore scores the on-time rate minus severity-weighted
// penalties for late payments and defaults, clamped to 0..100.
func PaymentHistoryScore(c PaymentCounts) (PaymentScoreResult, error) {
	if c.TotalAccounts < 1 {
		return PaymentScoreResult{}, model.Invalid("total_accounts", "must be at least 1 (got %d)", c.TotalAccounts)
	}
	counts := []struct {
		field string
		v     int
	}{
		{"on_time_payments", c.OnTime},
		{"late_payments_30_days", c.Late30},
		{"late_payments_60_days", c.Late60},
		{"late_payments_90_plus_days", c.Late90Plus},
		{"defaults", c.Defaults},
	}
	for _, n := range counts {
		if n.v < 0 {
			return PaymentScoreResult{}, model.Invalid(n.field, "cannot be negative (got %d)", n.v)
		}
		if n.v > MaxPaymentCount {
			return PaymentScoreResult{}, model.Invalid(n.field, "exceeds %d (got %d)", MaxPaymentCount, n.v)
		}
	}

	records := c.OnTime + c.Late30 + c.Late60 + c.Late90Plus
	if records == 0 {
		return PaymentScoreResult{}, model.ZeroDivisor("payment_records")
	}

	rate := float64(c.OnTime) * 100 / float64(records)
	penalty := 2*c.Late30 + 5*c.Late60 + 10*c.Late90Plus + 25*c.Defaults
	s := math.Max(MinScore, math.Min(MaxScore, rate-float64(penalty)))

	a, err := classify(band.PaymentHistoryTable, s)
	if err != nil {
		return PaymentScoreResult{}, err
	}
	return PaymentScoreResult{
		Assessment:          a,
		OnTimeRate:          rate,
		TotalPaymentRecords: records,
		PenaltyPoints:       penalty,
	}, nil
}

// CreditScoreResult is a rated bureau score.
type CreditScoreResult struct {
	Score          int                `json:"score"`
	Rating         string             `json:"rating"`
	Category       model.RiskCategory `json:"risk_category"`
	Recommendation string             `json:"recommendation"`
}

// CreditScore rates a bureau score. Scores outside 300..900 are rejected,
// never clamped.
func CreditScore(score int) (CreditScoreResult, error) {
	if score < MinCreditScore || score > MaxCreditScore {
		return CreditScoreResult{}, model.Invalid("credit_score", "must be between %d and %d (got %d)", MinCreditScore, MaxCreditScore, score)
	}
	b, err := band.CreditScoreTable.Classify(float64(score))
	if err != nil {
		return CreditScoreResult{}, err
	}
	return CreditScoreResult{
		Score:          score,
		Rating:         b.Label,
		Category:       b.Category,
		Recommendation: b.Note,
	}, nil
}

func classify(t band.Table, s float64) (Assessment, error) {
	b, err := t.Classify(s)
	if err != nil {
		return Assessment{}, err
	}
	return Assessment{
		Score:     s,
		Category:  b.Category,
		Label:     b.Label,
		Rationale: band.Rationale(t, s, b),
	}, nil
}
