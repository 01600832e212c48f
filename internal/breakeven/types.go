package breakeven

import (
	"github.com/rgehrsitz/taxcalc/internal/domain"
	"github.com/shopspring/decimal"
)

// SolveTarget names the quantity the solver drives toward the target amount
type SolveTarget string

const (
	TargetNetIncome SolveTarget = "net_income" // gross income that leaves this much after tax
	TargetTotalTax  SolveTarget = "total_tax"  // gross income that owes this much tax
)

// ParseSolveTarget accepts the target names plus the short forms "net" and "tax"
func ParseSolveTarget(s string) (SolveTarget, error) {
	switch s {
	case "", "net", string(TargetNetIncome):
		return TargetNetIncome, nil
	case "tax", string(TargetTotalTax):
		return TargetTotalTax, nil
	}
	return "", &SolveError{Operation: "parse_target", Message: "unsupported solve target: " + s}
}

// Request describes one gross-up search
type Request struct {
	CountryCode   string              `json:"country"`
	RegionCode    string              `json:"region,omitempty"`
	FilingStatus  domain.FilingStatus `json:"filingStatus"`
	Deductions    *decimal.Decimal    `json:"deductions,omitempty"` // nil applies the standard deduction
	Target        SolveTarget         `json:"target"`
	TargetAmount  decimal.Decimal     `json:"targetAmount"`
	MaxIterations int                 `json:"-"`
	Tolerance     decimal.Decimal     `json:"-"`
}

// Validate checks the request before any engine call
func (r Request) Validate() error {
	if r.CountryCode == "" {
		return &SolveError{Operation: "validate_request", Message: "country code is required"}
	}
	if r.TargetAmount.IsNegative() {
		return &SolveError{Operation: "validate_request", Message: "target amount cannot be negative"}
	}
	if r.Deductions != nil && r.Deductions.IsNegative() {
		return &SolveError{Operation: "validate_request", Message: "deductions cannot be negative"}
	}
	if r.Target != TargetNetIncome && r.Target != TargetTotalTax {
		return &SolveError{Operation: "validate_request", Message: "unsupported solve target: " + string(r.Target)}
	}
	return nil
}

// Result is the smallest gross income found that reaches the target, with the
// full calculation at that income
type Result struct {
	Request         Request                     `json:"request"`
	Success         bool                        `json:"success"`
	Iterations      int                         `json:"iterations"`
	ConvergenceInfo string                      `json:"convergenceInfo"`
	GrossIncome     decimal.Decimal             `json:"grossIncome"`
	Deductions      decimal.Decimal             `json:"deductions"`
	Calculation     domain.TaxCalculationResult `json:"calculation"`
}

// Achieved is the value of the solved quantity at the returned gross income
func (r *Result) Achieved() decimal.Decimal {
	if r.Request.Target == TargetTotalTax {
		return r.Calculation.TotalTax
	}
	return r.Calculation.NetIncome()
}

// SolverOptions configures the search
type SolverOptions struct {
	Tolerance     decimal.Decimal // width of the final gross income interval
	MaxIterations int             // bisection steps after the bracket is found
	MaxDoublings  int             // upper bound growth steps before giving up
}

// DefaultSolverOptions returns default solver configuration
func DefaultSolverOptions() SolverOptions {
	return SolverOptions{
		Tolerance:     decimal.NewFromFloat(0.01),
		MaxIterations: 200,
		MaxDoublings:  64,
	}
}

// SolveError represents errors from the gross-up solver
type SolveError struct {
	Operation string
	Message   string
	Cause     error
}

func (e *SolveError) Error() string {
	if e.Cause != nil {
		return e.Operation + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Operation + ": " + e.Message
}

func (e *SolveError) Unwrap() error {
	return e.Cause
}
