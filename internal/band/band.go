// Package band maps a numeric metric to a discrete risk category using
// ordered threshold tables. Every metric kind owns its own table.
//
// Boundary convention: a value exactly at a published cutoff always falls
// in the lower-risk band. For tables where higher values are riskier the
// bands are (prev, bound]; for tables where lower values are riskier they
// are [bound, prev).
package band

import (
	"fmt"
	"math"

	"github.com/ppiankov/creditwatch/internal/model"
)

// Direction tells which way risk grows along the value axis.
type Direction int

const (
	// HigherIsRiskier tables list ascending upper bounds. The first band
	// whose bound is >= value wins.
	HigherIsRiskier Direction = iota
	// LowerIsRiskier tables list descending lower bounds. The first band
	// whose bound is <= value wins.
	LowerIsRiskier
)

// Band is one contiguous interval of a table.
type Band struct {
	Bound    float64            `json:"bound"`
	Category model.RiskCategory `json:"risk_category"`
	Label    string             `json:"label"`
	Note     string             `json:"note"`
}

// Table is an ordered list of bands from least to most risky, plus the
// open-ended band that catches everything past the last bound.
type Table struct {
	Kind      Kind
	Direction Direction
	Bands     []Band
	Overflow  Band
}

// Classify returns the band containing v.
func (t Table) Classify(v float64) (Band, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Band{}, model.Invalid(string(t.Kind), "must be a finite number")
	}
	for _, b := range t.Bands {
		if t.Direction == HigherIsRiskier && v <= b.Bound {
			return b, nil
		}
		if t.Direction == LowerIsRiskier && v >= b.Bound {
			return b, nil
		}
	}
	return t.Overflow, nil
}

// Cutoffs returns the published bounds in table order.
func (t Table) Cutoffs() []float64 {
	out := make([]float64, len(t.Bands))
	for i, b := range t.Bands {
		out[i] = b.Bound
	}
	return out
}

// validate checks that bounds are strictly monotonic in the table's
// direction and that categories never get less risky along the table.
func (t Table) validate() error {
	if len(t.Bands) == 0 {
		return fmt.Errorf("band table %s: no bands", t.Kind)
	}
	prev := t.Bands[0]
	for _, b := range t.Bands[1:] {
		if t.Direction == HigherIsRiskier && b.Bound <= prev.Bound {
			return fmt.Errorf("band table %s: bound %g not above %g", t.Kind, b.Bound, prev.Bound)
		}
		if t.Direction == LowerIsRiskier && b.Bound >= prev.Bound {
			return fmt.Errorf("band table %s: bound %g not below %g", t.Kind, b.Bound, prev.Bound)
		}
		if prev.Category.Worse(b.Category) {
			return fmt.Errorf("band table %s: category %s after %s", t.Kind, b.Category, prev.Category)
		}
		prev = b
	}
	if prev.Category.Worse(t.Overflow.Category) {
		return fmt.Errorf("band table %s: overflow %s less risky than %s", t.Kind, t.Overflow.Category, prev.Category)
	}
	return nil
}

func mustTable(t Table) Table {
	if err := t.validate(); err != nil {
		panic(err)
	}
	return t
}
