package band

import (
	"fmt"
	"sort"

	"github.com/ppiankov/creditwatch/internal/model"
)

// Kind identifies a metric with its own band table.
type Kind string

const (
	DTI                 Kind = "dti"
	LTV                 Kind = "ltv"
	CreditUtilization   Kind = "credit_utilization"
	FOIR                Kind = "foir"
	DSCR                Kind = "dscr"
	CollateralCoverage  Kind = "collateral_coverage"
	CreditScore         Kind = "credit_score"
	EmploymentStability Kind = "employment_stability"
	PaymentHistory      Kind = "payment_history"
	CompositeScore      Kind = "composite_score"
	RiskPoints          Kind = "risk_points"
)

// Percent-based ratio tables. Value is the ratio expressed as a percentage.
var (
	DTITable = mustTable(Table{
		Kind:      DTI,
		Direction: HigherIsRiskier,
		Bands: []Band{
			{Bound: 35, Category: model.RiskLow, Label: "GOOD", Note: "Comfortable debt level"},
			{Bound: 50, Category: model.RiskMedium, Label: "MODERATE", Note: "Manageable but tight"},
		},
		Overflow: Band{Category: model.RiskHigh, Label: "POOR", Note: "May struggle with repayments"},
	})

	LTVTable = mustTable(Table{
		Kind:      LTV,
		Direction: HigherIsRiskier,
		Bands: []Band{
			{Bound: 80, Category: model.RiskLow, Label: "GOOD", Note: "Strong collateral coverage"},
			{Bound: 90, Category: model.RiskMedium, Label: "MODERATE", Note: "Acceptable with good credit"},
		},
		Overflow: Band{Category: model.RiskHigh, Label: "POOR", Note: "Limited equity cushion"},
	})

	CreditUtilizationTable = mustTable(Table{
		Kind:      CreditUtilization,
		Direction: HigherIsRiskier,
		Bands: []Band{
			{Bound: 30, Category: model.RiskLow, Label: "GOOD", Note: "Excellent credit management"},
			{Bound: 50, Category: model.RiskMedium, Label: "MODERATE", Note: "Acceptable utilization"},
		},
		Overflow: Band{Category: model.RiskHigh, Label: "POOR", Note: "Potential financial stress indicator"},
	})

	FOIRTable = mustTable(Table{
		Kind:      FOIR,
		Direction: HigherIsRiskier,
		Bands: []Band{
			{Bound: 40, Category: model.RiskLow, Label: "GOOD", Note: "Healthy disposable income"},
			{Bound: 55, Category: model.RiskMedium, Label: "MODERATE", Note: "Limited financial flexibility"},
		},
		Overflow: Band{Category: model.RiskHigh, Label: "POOR", Note: "High debt burden"},
	})
)

// Coverage tables. Value is the plain ratio (1.0 = exact coverage).
var (
	DSCRTable = mustTable(Table{
		Kind:      DSCR,
		Direction: LowerIsRiskier,
		Bands: []Band{
			{Bound: 1.5, Category: model.RiskLow, Label: "STRONG", Note: "Strong debt servicing capacity"},
			{Bound: 1.0, Category: model.RiskMedium, Label: "ADEQUATE", Note: "Adequate coverage"},
		},
		Overflow: Band{Category: model.RiskHigh, Label: "INSUFFICIENT", Note: "Insufficient income to cover debt"},
	})

	CollateralCoverageTable = mustTable(Table{
		Kind:      CollateralCoverage,
		Direction: LowerIsRiskier,
		Bands: []Band{
			{Bound: 1.5, Category: model.RiskLow, Label: "STRONG", Note: "Strong collateral protection"},
			{Bound: 1.0, Category: model.RiskMedium, Label: "ADEQUATE", Note: "Adequate coverage"},
		},
		Overflow: Band{Category: model.RiskHigh, Label: "UNDER_COLLATERALIZED", Note: "Under-collateralized"},
	})
)

// Score tables.
var (
	CreditScoreTable = mustTable(Table{
		Kind:      CreditScore,
		Direction: LowerIsRiskier,
		Bands: []Band{
			{Bound: 750, Category: model.RiskLow, Label: "EXCELLENT", Note: "Eligible for best rates and terms. High approval probability."},
			{Bound: 700, Category: model.RiskLow, Label: "GOOD", Note: "Favorable terms available. Standard processing."},
			{Bound: 650, Category: model.RiskMedium, Label: "FAIR", Note: "May qualify with higher interest rates. Additional documentation may help."},
			{Bound: 550, Category: model.RiskHigh, Label: "POOR", Note: "Limited options. Consider secured loans or co-applicant."},
		},
		Overflow: Band{Category: model.RiskHigh, Label: "VERY_POOR", Note: "High rejection probability. Recommend credit repair before applying."},
	})

	EmploymentStabilityTable = mustTable(Table{
		Kind:      EmploymentStability,
		Direction: LowerIsRiskier,
		Bands: []Band{
			{Bound: 85, Category: model.RiskLow, Label: "VERY_HIGH", Note: "Very stable income source"},
			{Bound: 70, Category: model.RiskLow, Label: "HIGH", Note: "Stable income source"},
			{Bound: 40, Category: model.RiskMedium, Label: "MODERATE", Note: "Some income uncertainty"},
		},
		Overflow: Band{Category: model.RiskHigh, Label: "LOW", Note: "Unstable or absent income source"},
	})

	PaymentHistoryTable = mustTable(Table{
		Kind:      PaymentHistory,
		Direction: LowerIsRiskier,
		Bands: []Band{
			{Bound: 80, Category: model.RiskLow, Label: "EXCELLENT", Note: "Consistent on-time repayment"},
			{Bound: 50, Category: model.RiskMedium, Label: "MODERATE", Note: "Some late payments on record"},
		},
		Overflow: Band{Category: model.RiskHigh, Label: "POOR", Note: "Serious delinquencies or defaults"},
	})

	CompositeScoreTable = mustTable(Table{
		Kind:      CompositeScore,
		Direction: LowerIsRiskier,
		Bands: []Band{
			{Bound: 85, Category: model.RiskLow, Label: "A", Note: "APPROVE - Excellent risk profile. Offer best available rates."},
			{Bound: 70, Category: model.RiskLow, Label: "B", Note: "APPROVE - Good risk profile. Standard terms apply."},
			{Bound: 55, Category: model.RiskMedium, Label: "C", Note: "CONDITIONAL APPROVE - Moderate risk. Consider risk-based pricing."},
			{Bound: 40, Category: model.RiskHigh, Label: "D", Note: "REVIEW - High risk. Requires senior approval and mitigation."},
		},
		Overflow: Band{Category: model.RiskVeryHigh, Label: "E", Note: "DECLINE - Very high risk. Does not meet underwriting criteria."},
	})

	RiskPointsTable = mustTable(Table{
		Kind:      RiskPoints,
		Direction: HigherIsRiskier,
		Bands: []Band{
			{Bound: 0, Category: model.RiskLow, Label: "LOW", Note: "Approve with standard terms. Strong credit profile."},
			{Bound: 2, Category: model.RiskMedium, Label: "MEDIUM", Note: "Approve with enhanced due diligence. Consider moderate rate adjustment."},
			{Bound: 5, Category: model.RiskHigh, Label: "HIGH", Note: "Additional mitigation required (collateral, guarantor). Higher risk pricing."},
		},
		Overflow: Band{Category: model.RiskVeryHigh, Label: "VERY_HIGH", Note: "Consider rejection or significant risk mitigation measures."},
	})
)

var tables = map[Kind]Table{
	DTI:                 DTITable,
	LTV:                 LTVTable,
	CreditUtilization:   CreditUtilizationTable,
	FOIR:                FOIRTable,
	DSCR:                DSCRTable,
	CollateralCoverage:  CollateralCoverageTable,
	CreditScore:         CreditScoreTable,
	EmploymentStability: EmploymentStabilityTable,
	PaymentHistory:      PaymentHistoryTable,
	CompositeScore:      CompositeScoreTable,
	RiskPoints:          RiskPointsTable,
}

// Lookup returns the table owned by kind.
func Lookup(kind Kind) (Table, bool) {
	t, ok := tables[kind]
	return t, ok
}

// Kinds returns all table kinds sorted by name.
func Kinds() []Kind {
	out := make([]Kind, 0, len(tables))
	for k := range tables {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Classify maps value to a band of the table owned by kind.
func Classify(kind Kind, value float64) (Band, error) {
	t, ok := tables[kind]
	if !ok {
		return Band{}, model.Invalid("ratio_kind", "unknown kind %q", kind)
	}
	return t.Classify(value)
}

// Rationale renders a one-line explanation of why value fell in b.
func Rationale(t Table, value float64, b Band) string {
	name := string(t.Kind)
	for i, cur := range t.Bands {
		if cur != b {
			continue
		}
		switch {
		case i == 0 && t.Direction == HigherIsRiskier:
			return fmt.Sprintf("%s %.2f <= %g: %s", name, value, cur.Bound, cur.Note)
		case i == 0:
			return fmt.Sprintf("%s %.2f >= %g: %s", name, value, cur.Bound, cur.Note)
		case t.Direction == HigherIsRiskier:
			return fmt.Sprintf("%s %.2f in (%g, %g]: %s", name, value, t.Bands[i-1].Bound, cur.Bound, cur.Note)
		default:
			return fmt.Sprintf("%s %.2f in [%g, %g): %s", name, value, cur.Bound, t.Bands[i-1].Bound, cur.Note)
		}
	}
	last := t.Bands[len(t.Bands)-1].Bound
	if t.Direction == LowerIsRiskier {
		return fmt.Sprintf("%s %.2f < %g: %s", name, value, last, t.Overflow.Note)
	}
	return fmt.Sprintf("%s %.2f > %g: %s", name, value, last, t.Overflow.Note)
}
