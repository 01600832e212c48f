package compare

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/taxcalc/internal/calculation"
	"github.com/rgehrsitz/taxcalc/internal/domain"
	"github.com/rgehrsitz/taxcalc/internal/entitlement"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// CompareEngine runs one income through several jurisdictions
type CompareEngine struct {
	CalcEngine        *calculation.Engine
	MetricsCalculator *MetricsCalculator
}

// NewCompareEngine creates a new comparison engine
func NewCompareEngine(calcEngine *calculation.Engine) *CompareEngine {
	return &CompareEngine{
		CalcEngine:        calcEngine,
		MetricsCalculator: NewMetricsCalculator(),
	}
}

// CompareOptions configures comparison behavior
type CompareOptions struct {
	Base         Target
	Alternatives []Target
	GrossIncome  decimal.Decimal
	FilingStatus domain.FilingStatus
	Deductions   *decimal.Decimal   // nil applies each jurisdiction's standard deduction
	Filter       entitlement.Filter // nil allows every jurisdiction
	Concurrency  int                // 0 means one goroutine per target
}

// Compare computes the base and every alternative concurrently. The first failing
// target cancels the rest and its error is returned.
func (ce *CompareEngine) Compare(ctx context.Context, options CompareOptions) (*ComparisonSet, error) {
	if options.GrossIncome.IsNegative() {
		return nil, fmt.Errorf("gross income cannot be negative")
	}
	if options.Deductions != nil && options.Deductions.IsNegative() {
		return nil, fmt.Errorf("deductions cannot be negative")
	}

	targets := append([]Target{options.Base}, options.Alternatives...)
	for _, t := range targets {
		if err := entitlement.Check(options.Filter, t.Country); err != nil {
			return nil, err
		}
	}

	results := make([]ComparisonResult, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	if options.Concurrency > 0 {
		g.SetLimit(options.Concurrency)
	}
	for i, t := range targets {
		i, t := i, t
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := ce.compute(t, options)
			if err != nil {
				return fmt.Errorf("failed to calculate %s: %w", t, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	base := results[0]
	alternatives := make([]ComparisonResult, 0, len(results)-1)
	for _, r := range results[1:] {
		alternatives = append(alternatives, ce.MetricsCalculator.CalculateComparison(r, base))
	}

	compSet := &ComparisonSet{
		GrossIncome:        options.GrossIncome,
		FilingStatus:       options.FilingStatus,
		BaseResult:         &base,
		AlternativeResults: alternatives,
	}
	compSet.Recommendations = GenerateRecommendations(compSet)

	return compSet, nil
}

func (ce *CompareEngine) compute(t Target, options CompareOptions) (ComparisonResult, error) {
	system, err := ce.CalcEngine.Catalog.Lookup(t.Country)
	if err != nil {
		return ComparisonResult{}, err
	}
	deductions := calculation.ResolveDeductions(system, options.FilingStatus, options.Deductions)
	res, err := ce.CalcEngine.Compute(domain.TaxCalculationInput{
		GrossIncome:  options.GrossIncome,
		FilingStatus: options.FilingStatus,
		Deductions:   deductions,
		CountryCode:  t.Country,
		RegionCode:   t.Region,
	})
	if err != nil {
		return ComparisonResult{}, err
	}
	return ce.MetricsCalculator.CalculateMetrics(t, system, deductions, res), nil
}
