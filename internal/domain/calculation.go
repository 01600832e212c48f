package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FilingStatus selects which standard deduction applies
type FilingStatus string

const (
	FilingSingle  FilingStatus = "single"
	FilingMarried FilingStatus = "married"
)

// ParseFilingStatus accepts "single" or "married" in any case; "mfj" and
// "married_filing_jointly" are accepted as married. Empty means single.
func ParseFilingStatus(s string) (FilingStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "single", "":
		return FilingSingle, nil
	case "married", "mfj", "married_filing_jointly":
		return FilingMarried, nil
	default:
		return "", fmt.Errorf("unknown filing status %q (expected single or married)", s)
	}
}

// Toggle returns the other filing status
func (f FilingStatus) Toggle() FilingStatus {
	if f == FilingMarried {
		return FilingSingle
	}
	return FilingMarried
}

// TaxCalculationInput is the request for a single computation.
// Negative amounts are not rejected here; callers validate before computing.
type TaxCalculationInput struct {
	GrossIncome  decimal.Decimal `yaml:"grossIncome" json:"grossIncome"`
	FilingStatus FilingStatus    `yaml:"filingStatus" json:"filingStatus"`
	Deductions   decimal.Decimal `yaml:"deductions" json:"deductions"`
	CountryCode  string          `yaml:"countryCode" json:"countryCode"`
	RegionCode   string          `yaml:"regionCode,omitempty" json:"regionCode,omitempty"`
}

// TaxCalculationResult is the aggregated outcome of a computation.
// TotalTax always equals NationalTax + RegionalTax.
type TaxCalculationResult struct {
	TaxableIncome        decimal.Decimal `yaml:"taxableIncome" json:"taxableIncome"`
	NationalTax          decimal.Decimal `yaml:"nationalTax" json:"nationalTax"`
	RegionalTax          decimal.Decimal `yaml:"regionalTax" json:"regionalTax"`
	TotalTax             decimal.Decimal `yaml:"totalTax" json:"totalTax"`
	MarginalRatePercent  decimal.Decimal `yaml:"marginalRatePercent" json:"marginalRatePercent"`
	EffectiveRatePercent decimal.Decimal `yaml:"effectiveRatePercent" json:"effectiveRatePercent"`

	// Echo of the request, for presentation only
	GrossIncome  decimal.Decimal `yaml:"grossIncome" json:"grossIncome"`
	CountryCode  string          `yaml:"countryCode" json:"countryCode"`
	RegionCode   string          `yaml:"regionCode,omitempty" json:"regionCode,omitempty"`
	CurrencyCode string          `yaml:"currencyCode" json:"currencyCode"`
}

// NetIncome returns gross income minus total tax
func (r TaxCalculationResult) NetIncome() decimal.Decimal {
	return r.GrossIncome.Sub(r.TotalTax)
}
