package calculation

import (
	"github.com/rgehrsitz/taxcalc/internal/domain"
	"github.com/shopspring/decimal"
)

// Catalog resolves a country code to its tax system
type Catalog interface {
	Lookup(countryCode string) (domain.TaxSystem, error)
}

// Engine orchestrates a tax computation against an injected catalog. It keeps no
// per-call state, so one Engine may serve any number of goroutines.
type Engine struct {
	Catalog Catalog
	Logger  Logger
}

// NewEngine creates an engine reading from the given catalog
func NewEngine(c Catalog) *Engine {
	return &Engine{Catalog: c, Logger: NopLogger{}}
}

// SetLogger sets the engine logger; nil installs a no-op logger
func (e *Engine) SetLogger(l Logger) {
	if l == nil {
		e.Logger = NopLogger{}
		return
	}
	e.Logger = l
}

func (e *Engine) logger() Logger {
	if e.Logger == nil {
		return NopLogger{}
	}
	return e.Logger
}

// Compute derives taxable income, national and regional tax, and the marginal and
// effective rates for one input. It returns *domain.UnknownJurisdictionError when the
// country is not in the catalog. Inputs are not validated: negative amounts must be
// rejected by the caller.
func (e *Engine) Compute(input domain.TaxCalculationInput) (domain.TaxCalculationResult, error) {
	system, err := e.Catalog.Lookup(input.CountryCode)
	if err != nil {
		e.logger().Warnf("lookup %q failed: %v", input.CountryCode, err)
		return domain.TaxCalculationResult{}, err
	}

	taxable := TaxableIncome(input.GrossIncome, input.Deductions)
	national := Integrate(system.PrimaryTaxType.Brackets, taxable)
	regional := ResolveRegional(system.RegionalTax, input.RegionCode, taxable)
	total := national.Tax.Add(regional)

	effective := decimal.Zero
	if input.GrossIncome.IsPositive() {
		effective = total.Div(input.GrossIncome).Mul(hundred)
	}

	e.logger().Debugf("%s/%s: taxable=%s national=%s regional=%s marginal=%s%%",
		system.CountryCode, input.RegionCode, taxable, national.Tax, regional, national.MarginalRatePercent)

	return domain.TaxCalculationResult{
		TaxableIncome:        taxable,
		NationalTax:          national.Tax,
		RegionalTax:          regional,
		TotalTax:             total,
		MarginalRatePercent:  national.MarginalRatePercent,
		EffectiveRatePercent: effective,
		GrossIncome:          input.GrossIncome,
		CountryCode:          system.CountryCode,
		RegionCode:           input.RegionCode,
		CurrencyCode:         system.CurrencyCode,
	}, nil
}

// TaxableIncome is gross income minus deductions, floored at zero
func TaxableIncome(gross, deductions decimal.Decimal) decimal.Decimal {
	taxable := gross.Sub(deductions)
	if taxable.IsNegative() {
		return decimal.Zero
	}
	return taxable
}
