package calculation

import (
	"github.com/rgehrsitz/taxcalc/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// BracketResult is the outcome of integrating income over a bracket table
type BracketResult struct {
	Tax                 decimal.Decimal
	MarginalRatePercent decimal.Decimal
}

// BracketSlice is the part of taxable income that fell into one bracket
type BracketSlice struct {
	Bracket     domain.TaxBracket
	TaxedAmount decimal.Decimal
	Tax         decimal.Decimal
}

// Integrate computes progressive tax over brackets sorted ascending by Min.
//
// A bracket only participates when taxableIncome is strictly greater than its Min.
// Income sitting exactly on a bracket's Min is therefore taxed, and its marginal
// rate reported, at the rate of the bracket below.
func Integrate(brackets []domain.TaxBracket, taxableIncome decimal.Decimal) BracketResult {
	result := BracketResult{Tax: decimal.Zero, MarginalRatePercent: decimal.Zero}
	for _, s := range Breakdown(brackets, taxableIncome) {
		result.Tax = result.Tax.Add(s.Tax)
		result.MarginalRatePercent = s.Bracket.Rate.Mul(hundred)
	}
	return result
}

// Breakdown lists the qualifying brackets with the amount taxed in each, in
// bracket order. It applies the same strict Min test as Integrate.
func Breakdown(brackets []domain.TaxBracket, taxableIncome decimal.Decimal) []BracketSlice {
	var slices []BracketSlice
	for _, b := range brackets {
		if !taxableIncome.GreaterThan(b.Min) {
			continue
		}

		amount := taxableIncome.Sub(b.Min)
		if b.Max != nil {
			// Max is inclusive, so the bracket spans Max+1-Min units
			amount = decimal.Min(b.Max.Add(one).Sub(b.Min), amount)
		}
		slices = append(slices, BracketSlice{
			Bracket:     b,
			TaxedAmount: amount,
			Tax:         amount.Mul(b.Rate),
		})
	}
	return slices
}
