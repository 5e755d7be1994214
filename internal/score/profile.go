package score

import (
	"github.com/ppiankov/creditwatch/internal/band"
	"github.com/ppiankov/creditwatch/internal/model"
)

// MaxRiskPoints is the worst possible profile: five factors at 2 points.
const MaxRiskPoints = 10

// ProfileFactors are the five inputs of a multi-factor profile.
type ProfileFactors struct {
	DTIPercentage            float64
	LTVPercentage            float64
	CreditScore              int
	EmploymentStabilityScore float64
	PaymentHistoryScore      float64
}

// FactorAssessment is one factor of a profile.
type FactorAssessment struct {
	Factor   string             `json:"factor"`
	Value    float64            `json:"value"`
	Status   string             `json:"status"`
	Category model.RiskCategory `json:"risk_category"`
	Points   int                `json:"points"`
}

// Profile is a points-based classification over several factors.
type Profile struct {
	Category       model.RiskCategory `json:"overall_category"`
	RiskPoints     int                `json:"total_risk_points"`
	MaxRiskPoints  int                `json:"max_risk_points"`
	Assessments    []FactorAssessment `json:"individual_assessments"`
	Recommendation string             `json:"recommendation"`
}

// ClassifyProfile classifies each factor through its own table, scores
// LOW as 0 points, MEDIUM as 1 and anything worse as 2, then classifies
// the point total.
func ClassifyProfile(f ProfileFactors) (Profile, error) {
	if err := model.CheckAmount("dti_percentage", f.DTIPercentage); err != nil {
		return Profile{}, err
	}
	if err := model.CheckAmount("ltv_percentage", f.LTVPercentage); err != nil {
		return Profile{}, err
	}
	if f.CreditScore < 300 || f.CreditScore > 900 {
		return Profile{}, model.Invalid("credit_score", "must be between 300 and 900 (got %d)", f.CreditScore)
	}
	for _, s := range []struct {
		field string
		v     float64
	}{
		{"employment_stability_score", f.EmploymentStabilityScore},
		{"payment_history_score", f.PaymentHistoryScore},
	} {
		if err := model.CheckFinite(s.field, s.v); err != nil {
			return Profile{}, err
		}
		if s.v < 0 || s.v > 100 {
			return Profile{}, model.Invalid(s.field, "must be between 0 and 100 (got %g)", s.v)
		}
	}

	factors := []struct {
		name  string
		table band.Table
		value float64
	}{
		{"dti", band.DTITable, f.DTIPercentage},
		{"ltv", band.LTVTable, f.LTVPercentage},
		{"credit_score", band.CreditScoreTable, float64(f.CreditScore)},
		{"employment", band.EmploymentStabilityTable, f.EmploymentStabilityScore},
		{"payment_history", band.PaymentHistoryTable, f.PaymentHistoryScore},
	}

	p := Profile{MaxRiskPoints: MaxRiskPoints}
	for _, fc := range factors {
		b, err := fc.table.Classify(fc.value)
		if err != nil {
			return Profile{}, err
		}
		pts := b.Category.Points()
		p.RiskPoints += pts
		p.Assessments = append(p.Assessments, FactorAssessment{
			Factor:   fc.name,
			Value:    fc.value,
			Status:   b.Label,
			Category: b.Category,
			Points:   pts,
		})
	}

	overall, err := band.RiskPointsTable.Classify(float64(p.RiskPoints))
	if err != nil {
		return Profile{}, err
	}
	p.Category = overall.Category
	p.Recommendation = overall.Note
	return p, nil
}
