// Package creditwatch provides the credit-risk calculators to Go programs
// in-process, or through a remote creditwatch gRPC server.
//
// Usage:
//
//	cw, err := creditwatch.New()
//	out, err := cw.Call(ctx, creditwatch.ToolEMI, map[string]any{
//	    "principal":            2000000,
//	    "annual_interest_rate": 9,
//	    "tenure_months":        240,
//	})
//	report, err := cw.Assess(ctx, applicant)
//
// Failures are *creditwatch.Error values; match kinds with errors.Is
// against ErrMissingInput, ErrInvalidValue and the other sentinels.
package creditwatch
