package model

import (
	"errors"
	"fmt"
	"math"
)

// ErrorKind classifies a calculation failure. Every kind is an input or
// configuration problem; none is transient, so retrying with the same
// input always fails the same way.
type ErrorKind string

const (
	KindMissingInput   ErrorKind = "missing_input"
	KindInvalidValue   ErrorKind = "invalid_value"
	KindDivisionByZero ErrorKind = "division_by_zero"
	KindConfiguration  ErrorKind = "configuration_error"
)

// Known reports whether k is one of the typed error kinds.
func (k ErrorKind) Known() bool {
	switch k {
	case KindMissingInput, KindInvalidValue, KindDivisionByZero, KindConfiguration:
		return true
	}
	return false
}

// Error is the typed failure returned by every calculator, assessor and scorer.
type Error struct {
	Kind   ErrorKind `json:"kind"`
	Field  string    `json:"field,omitempty"`
	Reason string    `json:"message,omitempty"`
}

func (e *Error) Error() string {
	switch {
	case e.Field != "" && e.Reason != "":
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Reason)
	case e.Field != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Field)
	case e.Reason != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
	default:
		return string(e.Kind)
	}
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrDivisionByZero)
// holds regardless of field.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrMissingInput   = &Error{Kind: KindMissingInput}
	ErrInvalidValue   = &Error{Kind: KindInvalidValue}
	ErrDivisionByZero = &Error{Kind: KindDivisionByZero}
	ErrConfiguration  = &Error{Kind: KindConfiguration}
)

// Missing reports a required field that was not supplied.
func Missing(field string) *Error {
	return &Error{Kind: KindMissingInput, Field: field, Reason: "required"}
}

// Invalid reports a field that violates its range or type invariant.
func Invalid(field, format string, args ...any) *Error {
	return &Error{Kind: KindInvalidValue, Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ZeroDivisor reports a zero denominator where the formula needs a nonzero one.
func ZeroDivisor(field string) *Error {
	return &Error{Kind: KindDivisionByZero, Field: field, Reason: "must be greater than zero"}
}

// ConfigError reports invalid static configuration.
func ConfigError(format string, args ...any) *Error {
	return &Error{Kind: KindConfiguration, Reason: fmt.Sprintf(format, args...)}
}

// AsError extracts the typed failure from err, if any.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CheckAmount validates a MonetaryAmount: finite and non-negative.
func CheckAmount(field string, v float64) error {
	if err := CheckFinite(field, v); err != nil {
		return err
	}
	if v < 0 {
		return Invalid(field, "cannot be negative (got %g)", v)
	}
	return nil
}

// CheckFinite rejects NaN and ±Inf.
func CheckFinite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Invalid(field, "must be a finite number")
	}
	return nil
}

// CheckDivisor validates a denominator: finite, non-negative and nonzero.
func CheckDivisor(field string, v float64) error {
	if err := CheckAmount(field, v); err != nil {
		return err
	}
	if v == 0 {
		return ZeroDivisor(field)
	}
	return nil
}
