// Package score combines normalized component sub-scores into a weighted
// composite with a grade, risk category and underwriting decision.
package score

import (
	"math"
	"sort"
	"strings"

	"github.com/ppiankov/creditwatch/internal/band"
	"github.com/ppiankov/creditwatch/internal/model"
	"github.com/ppiankov/creditwatch/internal/policy"
)

// Decision is the underwriting action implied by a composite grade.
type Decision string

const (
	Approve            Decision = "APPROVE"
	ConditionalApprove Decision = "CONDITIONAL_APPROVE"
	Review             Decision = "REVIEW"
	Decline            Decision = "DECLINE"
)

var gradeDecision = map[string]Decision{
	"A": Approve,
	"B": Approve,
	"C": ConditionalApprove,
	"D": Review,
	"E": Decline,
}

// ComponentScore is one component's contribution to a composite.
type ComponentScore struct {
	Component    model.Component `json:"component"`
	Raw          float64         `json:"raw"`
	SubScore     float64         `json:"score"`
	Weight       int             `json:"weight"`
	Contribution float64         `json:"contribution"`
}

// Result is a composite risk score.
type Result struct {
	TotalScore     float64            `json:"total_score"`
	Grade          string             `json:"grade"`
	Category       model.RiskCategory `json:"risk_category"`
	Decision       Decision           `json:"decision"`
	Recommendation string             `json:"underwriting_recommendation"`
	Components     []ComponentScore   `json:"component_scores"`
	Excluded       []model.Component  `json:"excluded_components,omitempty"`
	WeightUsed     int                `json:"weight_used"`
}

// Scorer computes composites for one validated weight set.
type Scorer struct {
	weights map[model.Component]int
	missing policy.MissingPolicy
}

// New validates weights and the missing-component policy. Requests never
// re-validate, so a bad weight set is caught here or not at all.
func New(weights map[model.Component]int, missing policy.MissingPolicy) (*Scorer, error) {
	if err := policy.ValidateWeights(weights); err != nil {
		return nil, err
	}
	if !missing.Valid() {
		return nil, model.ConfigError("unknown missing-component policy %q", missing)
	}
	w := make(map[model.Component]int, len(weights))
	for c, v := range weights {
		w[c] = v
	}
	return &Scorer{weights: w, missing: missing}, nil
}

// FromConfig builds a scorer from loaded configuration.
func FromConfig(cfg *policy.Config) (*Scorer, error) {
	return New(cfg.Scoring.Weights.Map(), cfg.Scoring.MissingComponents)
}

// Default returns a scorer with the built-in weights.
func Default() *Scorer {
	s, err := FromConfig(policy.DefaultConfig())
	if err != nil {
		panic(err)
	}
	return s
}

// Weights returns a copy of the weight set.
func (s *Scorer) Weights() map[model.Component]int {
	out := make(map[model.Component]int, len(s.weights))
	for c, v := range s.weights {
		out[c] = v
	}
	return out
}

// MissingPolicy returns the configured missing-component policy.
func (s *Scorer) MissingPolicy() policy.MissingPolicy {
	return s.missing
}

// Score normalizes each raw input to a 0..100 sub-score and returns the
// weighted mean over the present weighted components. Components with a
// zero weight are accepted and ignored.
func (s *Scorer) Score(inputs map[model.Component]float64) (Result, error) {
	known := 0
	for _, c := range model.Components {
		if _, ok := inputs[c]; ok {
			known++
		}
	}
	if known != len(inputs) {
		return Result{}, model.Invalid("component", "unknown component in %v", componentNames(inputs))
	}

	var (
		res      Result
		weighted float64
	)
	firstAbsent := model.Component("")
	for _, c := range model.Components {
		w := s.weights[c]
		raw, ok := inputs[c]
		if !ok {
			if w > 0 {
				if firstAbsent == "" {
					firstAbsent = c
				}
				res.Excluded = append(res.Excluded, c)
			}
			continue
		}
		sub, err := normalize(c, raw)
		if err != nil {
			return Result{}, err
		}
		if w == 0 {
			continue
		}
		weighted += sub * float64(w)
		res.WeightUsed += w
		res.Components = append(res.Components, ComponentScore{
			Component: c,
			Raw:       raw,
			SubScore:  sub,
			Weight:    w,
		})
	}

	if firstAbsent != "" && s.missing == policy.MissingReject {
		return Result{}, model.Missing(string(firstAbsent))
	}
	if res.WeightUsed == 0 {
		field := string(firstAbsent)
		if field == "" {
			field = "components"
		}
		return Result{}, model.Missing(field)
	}

	// Contributions are shares of the weight actually used, so they add
	// up to the total.
	for i := range res.Components {
		cs := &res.Components[i]
		cs.Contribution = cs.SubScore * float64(cs.Weight) / float64(res.WeightUsed)
	}
	res.TotalScore = clamp(weighted / float64(res.WeightUsed))
	b, err := band.CompositeScoreTable.Classify(res.TotalScore)
	if err != nil {
		return Result{}, err
	}
	res.Grade = b.Label
	res.Category = b.Category
	res.Decision = gradeDecision[b.Label]
	res.Recommendation = b.Note
	return res, nil
}

// normalize maps a raw component value to a 0..100 sub-score where higher
// is safer.
func normalize(c model.Component, raw float64) (float64, error) {
	field := string(c)
	if err := model.CheckFinite(field, raw); err != nil {
		return 0, err
	}
	switch c {
	case model.CompCreditScore:
		if raw < 300 || raw > 900 {
			return 0, model.Invalid(field, "must be between 300 and 900 (got %g)", raw)
		}
		return (raw - 300) / 600 * 100, nil
	case model.CompPaymentHistory, model.CompEmploymentStability:
		if raw < 0 || raw > 100 {
			return 0, model.Invalid(field, "must be between 0 and 100 (got %g)", raw)
		}
		return raw, nil
	}

	if raw < 0 {
		return 0, model.Invalid(field, "cannot be negative (got %g)", raw)
	}
	var slope float64
	switch c {
	case model.CompDTI, model.CompCreditUtilization:
		slope = 1.5
	case model.CompLTV:
		slope = 0.9
	case model.CompFOIR:
		slope = 1.3
	default:
		return 0, model.Invalid("component", "unknown component %q", c)
	}
	return math.Max(0, 100-raw*slope), nil
}

func componentNames(inputs map[model.Component]float64) []string {
	names := make([]string, 0, len(inputs))
	for c := range inputs {
		names = append(names, string(c))
	}
	sort.Strings(names)
	return names
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

// ParseDecision normalizes a decision name such as "conditional approve".
func ParseDecision(s string) (Decision, bool) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	for _, d := range []Decision{Approve, ConditionalApprove, Review, Decline} {
		if string(d) == norm {
			return d, true
		}
	}
	return "", false
}
