package creditwatch

import (
	"github.com/ppiankov/creditwatch/internal/model"
	"github.com/ppiankov/creditwatch/internal/tools"
	"github.com/ppiankov/creditwatch/internal/underwrite"
)

// Applicant is a loan applicant; every field is optional.
type Applicant = underwrite.Applicant

// PaymentRecord holds repayment counts for an applicant.
type PaymentRecord = underwrite.PaymentRecord

// Assessment is the combined report for one applicant.
type Assessment = underwrite.Assessment

// Error is a typed calculation failure.
type Error = model.Error

// ToolInfo describes an available calculator.
type ToolInfo = tools.Info

// Error kind sentinels for errors.Is.
var (
	ErrMissingInput   = model.ErrMissingInput
	ErrInvalidValue   = model.ErrInvalidValue
	ErrDivisionByZero = model.ErrDivisionByZero
	ErrConfiguration  = model.ErrConfiguration
	ErrUnknownTool    = tools.ErrUnknownTool
)

// Tool names.
const (
	ToolDTI               = tools.NameDTI
	ToolLTV               = tools.NameLTV
	ToolCreditUtilization = tools.NameCreditUtilization
	ToolFOIR              = tools.NameFOIR
	ToolEMI               = tools.NameEMI
	ToolDSCR              = tools.NameDSCR
	ToolCollateral        = tools.NameCollateral
	ToolEmployment        = tools.NameEmployment
	ToolPaymentScore      = tools.NamePaymentScore
	ToolPaymentHistory    = tools.NamePaymentHistory
	ToolCreditScore       = tools.NameCreditScore
	ToolClassifyRatio     = tools.NameClassifyRatio
	ToolClassifyProfile   = tools.NameClassifyProfile
	ToolTotalRiskScore    = tools.NameTotalRiskScore
	ToolAssessApplicant   = tools.NameAssessApplicant
)
