package domain

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// TaxTypeName identifies the bracket table a jurisdiction uses as its primary national tax.
type TaxTypeName string

const (
	TaxTypeIncomeTax        TaxTypeName = "incomeTax"
	TaxTypeFederalIncome    TaxTypeName = "federalIncome"
	TaxTypeIndividualIncome TaxTypeName = "individualIncome"
)

// PrimaryTaxTypeNames lists the aliases accepted as a jurisdiction's primary tax type.
var PrimaryTaxTypeNames = []TaxTypeName{TaxTypeIncomeTax, TaxTypeFederalIncome, TaxTypeIndividualIncome}

// IsPrimary reports whether n is one of the recognized primary tax type aliases.
func (n TaxTypeName) IsPrimary() bool {
	for _, p := range PrimaryTaxTypeNames {
		if n == p {
			return true
		}
	}
	return false
}

// TaxBracket is a contiguous income range taxed at a single marginal rate.
// Min and Max are inclusive; a nil Max marks the unbounded top bracket.
type TaxBracket struct {
	Min  decimal.Decimal  `yaml:"min" json:"min"`
	Max  *decimal.Decimal `yaml:"max" json:"max"`
	Rate decimal.Decimal  `yaml:"rate" json:"rate"`
}

// IsUnbounded reports whether the bracket has no upper limit.
func (b TaxBracket) IsUnbounded() bool {
	return b.Max == nil
}

// TaxType is a named bracket table
type TaxType struct {
	Name     TaxTypeName  `yaml:"name" json:"name"`
	Brackets []TaxBracket `yaml:"brackets" json:"brackets"`
}

// Validate checks that the brackets are ascending, contiguous, within [0,1] and
// terminated by exactly one unbounded bracket.
func (t TaxType) Validate() error {
	malformed := func(i int, format string, args ...any) error {
		return &MalformedBracketTableError{TaxType: t.Name, Index: i, Reason: fmt.Sprintf(format, args...)}
	}

	if len(t.Brackets) == 0 {
		return malformed(-1, "no brackets defined")
	}

	one := decimal.NewFromInt(1)
	for i, b := range t.Brackets {
		if b.Rate.IsNegative() || b.Rate.GreaterThan(one) {
			return malformed(i, "rate %s outside [0, 1]", b.Rate)
		}
		if i == 0 && b.Min.IsNegative() {
			return malformed(i, "first bracket starts below zero (%s)", b.Min)
		}
		if b.Max != nil && b.Max.LessThan(b.Min) {
			return malformed(i, "max %s below min %s", b.Max, b.Min)
		}
		if i == 0 {
			continue
		}

		prev := t.Brackets[i-1]
		if prev.Max == nil {
			return malformed(i-1, "unbounded bracket is not the last one")
		}
		expected := prev.Max.Add(one)
		switch {
		case b.Min.LessThan(expected):
			return malformed(i, "overlaps previous bracket (min %s, expected %s)", b.Min, expected)
		case b.Min.GreaterThan(expected):
			return malformed(i, "gap after previous bracket (min %s, expected %s)", b.Min, expected)
		}
	}

	if last := t.Brackets[len(t.Brackets)-1]; last.Max != nil {
		return malformed(len(t.Brackets)-1, "missing unbounded terminal bracket")
	}
	return nil
}

// RegionalTaxInfo describes a flat sub-national surtax. A nil Rate means the region
// is modeled but levies no additional tax.
type RegionalTaxInfo struct {
	RegionCode string           `yaml:"regionCode" json:"regionCode"`
	Rate       *decimal.Decimal `yaml:"rate" json:"rate"`
}

// StandardDeductions holds the default deduction per filing status
type StandardDeductions struct {
	Single  decimal.Decimal `yaml:"single" json:"single"`
	Married decimal.Decimal `yaml:"married" json:"married"`
}

// For returns the standard deduction that applies to the given filing status.
func (s StandardDeductions) For(status FilingStatus) decimal.Decimal {
	if status == FilingMarried {
		return s.Married
	}
	return s.Single
}

// TaxSystem is the full definition of a jurisdiction.
type TaxSystem struct {
	CountryCode       string                     `yaml:"countryCode" json:"countryCode"`
	DisplayName       string                     `yaml:"displayName" json:"displayName"`
	CurrencyCode      string                     `yaml:"currencyCode" json:"currencyCode"`
	CurrencySymbol    string                     `yaml:"currencySymbol" json:"currencySymbol"`
	StandardDeduction StandardDeductions         `yaml:"standardDeduction" json:"standardDeduction"`
	PrimaryTaxType    TaxType                    `yaml:"primaryTaxType" json:"primaryTaxType"`
	RegionalTax       map[string]RegionalTaxInfo `yaml:"regionalTax,omitempty" json:"regionalTax,omitempty"`
}

// HasRegions reports whether the jurisdiction models any sub-national surtax.
func (s TaxSystem) HasRegions() bool {
	return len(s.RegionalTax) > 0
}

// Validate checks the jurisdiction's data invariants. Bracket problems are reported
// as *MalformedBracketTableError carrying the country code.
func (s TaxSystem) Validate() error {
	if strings.TrimSpace(s.CountryCode) == "" {
		return fmt.Errorf("country code is required")
	}
	if money.GetCurrency(strings.ToUpper(s.CurrencyCode)) == nil {
		return fmt.Errorf("%s: currency code %q is not a valid ISO 4217 code", s.CountryCode, s.CurrencyCode)
	}
	if s.StandardDeduction.Single.IsNegative() || s.StandardDeduction.Married.IsNegative() {
		return fmt.Errorf("%s: standard deductions cannot be negative", s.CountryCode)
	}
	if !s.PrimaryTaxType.Name.IsPrimary() {
		return fmt.Errorf("%s: primary tax type %q is not one of %v", s.CountryCode, s.PrimaryTaxType.Name, PrimaryTaxTypeNames)
	}
	if err := s.PrimaryTaxType.Validate(); err != nil {
		if m, ok := err.(*MalformedBracketTableError); ok {
			m.CountryCode = s.CountryCode
		}
		return err
	}

	one := decimal.NewFromInt(1)
	for code, info := range s.RegionalTax {
		if info.Rate != nil && (info.Rate.IsNegative() || info.Rate.GreaterThan(one)) {
			return fmt.Errorf("%s: regional rate for %s outside [0, 1]", s.CountryCode, code)
		}
	}
	return nil
}

// Clone returns a deep copy so callers cannot mutate shared bracket or region tables.
func (s TaxSystem) Clone() TaxSystem {
	out := s
	out.PrimaryTaxType.Brackets = make([]TaxBracket, len(s.PrimaryTaxType.Brackets))
	for i, b := range s.PrimaryTaxType.Brackets {
		b.Max = clonePtr(b.Max)
		out.PrimaryTaxType.Brackets[i] = b
	}
	if s.RegionalTax != nil {
		out.RegionalTax = make(map[string]RegionalTaxInfo, len(s.RegionalTax))
		for k, v := range s.RegionalTax {
			v.Rate = clonePtr(v.Rate)
			out.RegionalTax[k] = v
		}
	}
	return out
}

func clonePtr(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}
