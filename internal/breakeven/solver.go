package breakeven

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/taxcalc/internal/calculation"
	"github.com/rgehrsitz/taxcalc/internal/domain"
	"github.com/shopspring/decimal"
)

var two = decimal.NewFromInt(2)

// Solver inverts the tax engine: it finds the gross income at which net income or
// total tax reaches a target. Both quantities are non-decreasing in gross income,
// which is what the bisection relies on.
type Solver struct {
	CalcEngine *calculation.Engine
	Options    SolverOptions
}

// NewSolver creates a new gross-up solver
func NewSolver(calcEngine *calculation.Engine, options SolverOptions) *Solver {
	return &Solver{
		CalcEngine: calcEngine,
		Options:    options,
	}
}

// NewDefaultSolver creates a solver with default options
func NewDefaultSolver(calcEngine *calculation.Engine) *Solver {
	return NewSolver(calcEngine, DefaultSolverOptions())
}

type probe struct {
	gross decimal.Decimal
	res   domain.TaxCalculationResult
}

// Solve runs the search. It first doubles an upper bound until the target is
// reached, then bisects until the interval is narrower than the tolerance.
// Cancellation is checked on every engine evaluation.
func (s *Solver) Solve(ctx context.Context, req Request) (*Result, error) {
	if req.Target == "" {
		req.Target = TargetNetIncome
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.MaxIterations == 0 {
		req.MaxIterations = s.Options.MaxIterations
	}
	if req.Tolerance.IsZero() {
		req.Tolerance = s.Options.Tolerance
	}
	maxDoublings := s.Options.MaxDoublings
	if maxDoublings == 0 {
		maxDoublings = DefaultSolverOptions().MaxDoublings
	}

	system, err := s.CalcEngine.Catalog.Lookup(req.CountryCode)
	if err != nil {
		return nil, &SolveError{Operation: "lookup", Message: "failed to resolve jurisdiction", Cause: err}
	}
	deductions := calculation.ResolveDeductions(system, req.FilingStatus, req.Deductions)

	iterations := 0
	evaluate := func(gross decimal.Decimal) (probe, error) {
		iterations++
		select {
		case <-ctx.Done():
			return probe{}, ctx.Err()
		default:
		}
		res, err := s.CalcEngine.Compute(domain.TaxCalculationInput{
			GrossIncome:  gross,
			FilingStatus: req.FilingStatus,
			Deductions:   deductions,
			CountryCode:  req.CountryCode,
			RegionCode:   req.RegionCode,
		})
		if err != nil {
			return probe{}, &SolveError{Operation: "evaluate", Message: "failed to calculate " + gross.String(), Cause: err}
		}
		return probe{gross: gross, res: res}, nil
	}
	reached := func(p probe) bool {
		if req.Target == TargetTotalTax {
			return p.res.TotalTax.GreaterThanOrEqual(req.TargetAmount)
		}
		return p.res.NetIncome().GreaterThanOrEqual(req.TargetAmount)
	}
	finish := func(p probe, success bool, info string) *Result {
		return &Result{
			Request:         req,
			Success:         success,
			Iterations:      iterations,
			ConvergenceInfo: info,
			GrossIncome:     p.gross,
			Deductions:      deductions,
			Calculation:     p.res,
		}
	}

	// Net income never exceeds gross, so the target itself is a lower bound.
	lowGross := decimal.Zero
	if req.Target == TargetNetIncome {
		lowGross = req.TargetAmount
	}
	lo, err := evaluate(lowGross)
	if err != nil {
		return nil, err
	}
	if reached(lo) {
		return finish(lo, true, "Target reached at lower bound"), nil
	}

	hiGross := decimal.Max(lowGross.Mul(two), req.TargetAmount, decimal.NewFromInt(1))
	hi, err := evaluate(hiGross)
	if err != nil {
		return nil, err
	}
	for doublings := 1; !reached(hi); doublings++ {
		if doublings >= maxDoublings {
			return nil, &SolveError{
				Operation: "bracket_search",
				Message:   fmt.Sprintf("target %s %s not reachable below gross income %s", req.Target, req.TargetAmount, hi.gross),
			}
		}
		lo = hi
		if hi, err = evaluate(hi.gross.Mul(two)); err != nil {
			return nil, err
		}
	}

	for step := 0; step < req.MaxIterations; step++ {
		if hi.gross.Sub(lo.gross).LessThanOrEqual(req.Tolerance) {
			return finish(hi, true, fmt.Sprintf("Converged within %s", req.Tolerance)), nil
		}
		mid, err := evaluate(lo.gross.Add(hi.gross).Div(two))
		if err != nil {
			return nil, err
		}
		if reached(mid) {
			hi = mid
		} else {
			lo = mid
		}
	}

	return finish(hi, false, fmt.Sprintf("Max iterations (%d) reached", req.MaxIterations)), nil
}
