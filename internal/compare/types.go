package compare

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/taxcalc/internal/domain"
	"github.com/rgehrsitz/taxcalc/internal/output"
	"github.com/shopspring/decimal"
)

// Target names a jurisdiction: a country and an optional region
type Target struct {
	Country string `json:"country"`
	Region  string `json:"region,omitempty"`
}

// ParseTarget reads "us" or "us/ca" style target strings
func ParseTarget(s string) (Target, error) {
	s = strings.TrimSpace(s)
	country, region, _ := strings.Cut(s, "/")
	country = strings.TrimSpace(country)
	if country == "" {
		return Target{}, fmt.Errorf("invalid jurisdiction %q: missing country code", s)
	}
	return Target{Country: strings.ToLower(country), Region: strings.ToLower(strings.TrimSpace(region))}, nil
}

func (t Target) String() string {
	if t.Region == "" {
		return t.Country
	}
	return t.Country + "/" + t.Region
}

// ComparisonResult is one jurisdiction's outcome for the compared income
type ComparisonResult struct {
	Name         string `json:"name"`
	Target       Target `json:"target"`
	Jurisdiction string `json:"jurisdiction"`
	Currency     string `json:"currency"`

	Deductions           decimal.Decimal `json:"deductions"`
	TaxableIncome        decimal.Decimal `json:"taxableIncome"`
	TotalTax             decimal.Decimal `json:"totalTax"`
	NetIncome            decimal.Decimal `json:"netIncome"`
	MarginalRatePercent  decimal.Decimal `json:"marginalRatePercent"`
	EffectiveRatePercent decimal.Decimal `json:"effectiveRatePercent"`

	// Comparison to Base. Tax deltas are only meaningful in a shared currency.
	SameCurrencyAsBase    bool            `json:"sameCurrencyAsBase"`
	TaxDiffFromBase       decimal.Decimal `json:"taxDiffFromBase"`
	EffectiveDiffFromBase decimal.Decimal `json:"effectiveDiffFromBase"`
	MarginalDiffFromBase  decimal.Decimal `json:"marginalDiffFromBase"`

	Result domain.TaxCalculationResult `json:"-"`
}

// ComparisonSet holds the base jurisdiction and its alternatives
type ComparisonSet struct {
	GrossIncome        decimal.Decimal     `json:"grossIncome"`
	FilingStatus       domain.FilingStatus `json:"filingStatus"`
	BaseResult         *ComparisonResult   `json:"baseResult"`
	AlternativeResults []ComparisonResult  `json:"alternativeResults"`
	Recommendations    []string            `json:"recommendations"`
}

// All returns the base followed by the alternatives
func (cs *ComparisonSet) All() []ComparisonResult {
	all := make([]ComparisonResult, 0, len(cs.AlternativeResults)+1)
	if cs.BaseResult != nil {
		all = append(all, *cs.BaseResult)
	}
	return append(all, cs.AlternativeResults...)
}

// MetricsCalculator extracts comparison metrics from engine results
type MetricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// CalculateMetrics builds a comparison row from a computed result
func (mc *MetricsCalculator) CalculateMetrics(target Target, system domain.TaxSystem, deductions decimal.Decimal, res domain.TaxCalculationResult) ComparisonResult {
	return ComparisonResult{
		Name:                 target.String(),
		Target:               target,
		Jurisdiction:         system.DisplayName,
		Currency:             res.CurrencyCode,
		Deductions:           deductions,
		TaxableIncome:        res.TaxableIncome,
		TotalTax:             res.TotalTax,
		NetIncome:            res.NetIncome(),
		MarginalRatePercent:  res.MarginalRatePercent,
		EffectiveRatePercent: res.EffectiveRatePercent,
		Result:               res,
	}
}

// CalculateComparison fills the deltas of a result against the base
func (mc *MetricsCalculator) CalculateComparison(result, base ComparisonResult) ComparisonResult {
	result.SameCurrencyAsBase = result.Currency == base.Currency
	if result.SameCurrencyAsBase {
		result.TaxDiffFromBase = result.TotalTax.Sub(base.TotalTax)
	}
	result.EffectiveDiffFromBase = result.EffectiveRatePercent.Sub(base.EffectiveRatePercent)
	result.MarginalDiffFromBase = result.MarginalRatePercent.Sub(base.MarginalRatePercent)
	return result
}

// GenerateRecommendations points at the alternatives that beat the base on
// effective rate, marginal rate and, in a shared currency, total tax
func GenerateRecommendations(compSet *ComparisonSet) []string {
	recommendations := []string{}

	if compSet.BaseResult == nil || len(compSet.AlternativeResults) == 0 {
		return recommendations
	}
	base := compSet.BaseResult

	lowestEffective := base
	for i := range compSet.AlternativeResults {
		alt := &compSet.AlternativeResults[i]
		if alt.EffectiveRatePercent.LessThan(lowestEffective.EffectiveRatePercent) {
			lowestEffective = alt
		}
	}
	if lowestEffective != base {
		recommendations = append(recommendations,
			"Lowest Effective Rate: "+lowestEffective.Name+" at "+output.FormatPercent(lowestEffective.EffectiveRatePercent)+
				" ("+base.EffectiveRatePercent.Sub(lowestEffective.EffectiveRatePercent).StringFixed(2)+" points below "+base.Name+")")
	}

	lowestMarginal := base
	for i := range compSet.AlternativeResults {
		alt := &compSet.AlternativeResults[i]
		if alt.MarginalRatePercent.LessThan(lowestMarginal.MarginalRatePercent) {
			lowestMarginal = alt
		}
	}
	if lowestMarginal != base {
		recommendations = append(recommendations,
			"Lowest Marginal Rate: "+lowestMarginal.Name+" taxes the next unit of income at "+
				output.FormatPercent(lowestMarginal.MarginalRatePercent))
	}

	var lowestTax *ComparisonResult
	for i := range compSet.AlternativeResults {
		alt := &compSet.AlternativeResults[i]
		if !alt.SameCurrencyAsBase || !alt.TaxDiffFromBase.IsNegative() {
			continue
		}
		if lowestTax == nil || alt.TotalTax.LessThan(lowestTax.TotalTax) {
			lowestTax = alt
		}
	}
	if lowestTax != nil {
		recommendations = append(recommendations,
			"Lowest Taxes: "+lowestTax.Name+" saves "+output.FormatMoney(lowestTax.TaxDiffFromBase.Neg(), lowestTax.Currency)+
				" compared to "+base.Name)
	}

	return recommendations
}
