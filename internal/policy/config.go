package policy

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/creditwatch/internal/model"
)

// WeightTotal is the exact sum every composite weight set must reach.
const WeightTotal = 100

// MissingPolicy decides what the composite scorer does when a component
// has no input.
type MissingPolicy string

const (
	// MissingRenormalize scores over the components that are present,
	// dividing by their weight sum.
	MissingRenormalize MissingPolicy = "renormalize"
	// MissingReject fails with MissingInput naming the first absent component.
	MissingReject MissingPolicy = "reject"
)

// Valid reports whether p is a known policy.
func (p MissingPolicy) Valid() bool {
	return p == MissingRenormalize || p == MissingReject
}

// Weights are the composite score weights per component, in points out of
// WeightTotal.
type Weights struct {
	CreditScore         int `yaml:"credit_score"`
	PaymentHistory      int `yaml:"payment_history"`
	DTI                 int `yaml:"dti"`
	LTV                 int `yaml:"ltv"`
	EmploymentStability int `yaml:"employment_stability"`
	CreditUtilization   int `yaml:"credit_utilization"`
	FOIR                int `yaml:"foir"`
}

// Map returns the weights keyed by component.
func (w Weights) Map() map[model.Component]int {
	return map[model.Component]int{
		model.CompCreditScore:         w.CreditScore,
		model.CompPaymentHistory:      w.PaymentHistory,
		model.CompDTI:                 w.DTI,
		model.CompLTV:                 w.LTV,
		model.CompEmploymentStability: w.EmploymentStability,
		model.CompCreditUtilization:   w.CreditUtilization,
		model.CompFOIR:                w.FOIR,
	}
}

// Scoring configures the composite scorer.
type Scoring struct {
	Weights           Weights       `yaml:"weights"`
	MissingComponents MissingPolicy `yaml:"missing_components"`
}

// Config holds all configurable parameters.
type Config struct {
	Scoring Scoring `yaml:"scoring"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Scoring: Scoring{
			Weights: Weights{
				CreditScore:         25,
				PaymentHistory:      20,
				DTI:                 15,
				LTV:                 15,
				EmploymentStability: 10,
				CreditUtilization:   10,
				FOIR:                5,
			},
			MissingComponents: MissingRenormalize,
		},
	}
}

// Validate checks the configuration. Failures are ConfigurationError.
func (c *Config) Validate() error {
	if !c.Scoring.MissingComponents.Valid() {
		return model.ConfigError("scoring.missing_components: unknown policy %q (want %s or %s)",
			c.Scoring.MissingComponents, MissingRenormalize, MissingReject)
	}
	return ValidateWeights(c.Scoring.Weights.Map())
}

// ValidateWeights checks that every component is known, every weight is
// non-negative and the weights sum to exactly WeightTotal.
func ValidateWeights(weights map[model.Component]int) error {
	sum := 0
	for c, w := range weights {
		if _, err := model.ParseComponent(string(c)); err != nil {
			return model.ConfigError("weights: %v", err)
		}
		if w < 0 {
			return model.ConfigError("weights: %s is negative (%d)", c, w)
		}
		// Bounded per weight so the running sum cannot wrap.
		if w > WeightTotal {
			return model.ConfigError("weights: %s exceeds %d (%d)", c, WeightTotal, w)
		}
		sum += w
	}
	if sum != WeightTotal {
		return model.ConfigError("weights: sum is %d, must be %d", sum, WeightTotal)
	}
	return nil
}

// DefaultPath returns ~/.creditwatch/config.yaml, or "" when the home
// directory cannot be resolved.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".creditwatch", "config.yaml")
}

// LoadConfig loads configuration from a YAML file.
// Empty path falls back to ~/.creditwatch/config.yaml.
// Missing file returns defaults. Invalid YAML or an invalid weight set
// returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg, _, err := LoadConfigWithHash(path)
	return cfg, err
}

// LoadConfigWithHash loads configuration and returns its SHA-256 hash.
// The hash is computed over the raw YAML bytes on disk.
// When no file exists (defaults used), the hash is the SHA-256 of empty input.
func LoadConfigWithHash(path string) (*Config, string, error) {
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return DefaultConfig(), hashOf(nil), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), hashOf(nil), nil
		}
		return nil, "", fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, "", err
	}
	return cfg, hashOf(data), nil
}

// ParseConfig decodes YAML over the defaults and validates the result.
// Unknown keys are rejected so a misspelled weight cannot silently keep
// its default.
func ParseConfig(data []byte) (*Config, error) {
	// Start with defaults, YAML overwrites only specified fields
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Marshal renders the effective configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func hashOf(data []byte) string {
	h := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(h[:])
}

// DefaultConfigYAML returns a commented YAML string for init-config.
func DefaultConfigYAML() string {
	return `# creditwatch configuration
# Generated by: creditwatch init-config

scoring:
  # Composite score weights. Must be non-negative and sum to exactly 100.
  # A weight of 0 removes the component from the composite.
  weights:
    credit_score: 25
    payment_history: 20
    dti: 15
    ltv: 15
    employment_stability: 10
    credit_utilization: 10
    foir: 5

  # What to do when an applicant has no input for a weighted component:
  #   renormalize: score over present components, dividing by their weight sum
  #   reject: fail with missing_input naming the absent component
  missing_components: renormalize
`
}
