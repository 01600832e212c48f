package calculation

import (
	"github.com/rgehrsitz/taxcalc/internal/domain"
	"github.com/shopspring/decimal"
)

// stubCatalog is a minimal in-memory catalog for tests
type stubCatalog map[string]domain.TaxSystem

func (s stubCatalog) Lookup(code string) (domain.TaxSystem, error) {
	sys, ok := s[code]
	if !ok {
		return domain.TaxSystem{}, &domain.UnknownJurisdictionError{CountryCode: code}
	}
	return sys, nil
}

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func dp(v string) *decimal.Decimal {
	x := d(v)
	return &x
}

// twoBrackets is the regression table: 10% up to 9,999 and 20% above
func twoBrackets() []domain.TaxBracket {
	return []domain.TaxBracket{
		{Min: d("0"), Max: dp("9999"), Rate: d("0.1")},
		{Min: d("10000"), Max: nil, Rate: d("0.2")},
	}
}

func syntheticSystem() domain.TaxSystem {
	return domain.TaxSystem{
		CountryCode:    "zz",
		DisplayName:    "Testland",
		CurrencyCode:   "USD",
		CurrencySymbol: "$",
		StandardDeduction: domain.StandardDeductions{
			Single:  d("1000"),
			Married: d("2000"),
		},
		PrimaryTaxType: domain.TaxType{Name: domain.TaxTypeIncomeTax, Brackets: twoBrackets()},
		RegionalTax: map[string]domain.RegionalTaxInfo{
			"north": {RegionCode: "north", Rate: dp("0.05")},
			"south": {RegionCode: "south", Rate: nil},
		},
	}
}

func syntheticCatalog() stubCatalog {
	flat := domain.TaxSystem{
		CountryCode:    "ff",
		DisplayName:    "Flatland",
		CurrencyCode:   "EUR",
		CurrencySymbol: "€",
		PrimaryTaxType: domain.TaxType{
			Name:     domain.TaxTypeIndividualIncome,
			Brackets: []domain.TaxBracket{{Min: d("0"), Max: nil, Rate: d("0.25")}},
		},
	}
	return stubCatalog{"zz": syntheticSystem(), "ff": flat}
}
