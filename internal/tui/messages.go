package tui

import (
	"github.com/rgehrsitz/taxcalc/internal/domain"
)

// Field identifies an editable input on the calculator form
type Field int

const (
	FieldGross Field = iota
	FieldCountry
	FieldRegion
	FieldDeductions
	fieldCount
)

func (f Field) String() string {
	switch f {
	case FieldGross:
		return "Gross Income"
	case FieldCountry:
		return "Country"
	case FieldRegion:
		return "Region"
	case FieldDeductions:
		return "Deductions"
	default:
		return "Unknown"
	}
}

// Message types for the Bubble Tea update cycle

// CalculationCompleteMsg carries the engine result for one form state
type CalculationCompleteMsg struct {
	Key    memoKey
	Result domain.TaxCalculationResult
	Err    error
}

// ErrorMsg displays an error to the user
type ErrorMsg struct {
	Err error
}
