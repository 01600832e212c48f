package output

import (
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

var maxMinorUnits = decimal.NewFromInt(math.MaxInt64)

// FormatMoney renders an amount in the conventions of its ISO 4217 currency:
// grapheme and its placement, separators and fraction digits. Amounts are rounded
// half away from zero to the currency's minor unit. Unknown codes fall back to
// "CODE 1234.56", as do amounts too large to count in int64 minor units.
func FormatMoney(amount decimal.Decimal, currencyCode string) string {
	cur := money.GetCurrency(strings.ToUpper(strings.TrimSpace(currencyCode)))
	if cur == nil {
		return strings.TrimSpace(strings.ToUpper(currencyCode) + " " + amount.StringFixed(2))
	}
	minor := amount.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	if minor.Abs().GreaterThan(maxMinorUnits) {
		return cur.Code + " " + amount.StringFixed(int32(cur.Fraction))
	}
	return cur.Formatter().Format(minor.IntPart())
}

// FormatPercent renders a percentage value with two decimals
func FormatPercent(percent decimal.Decimal) string {
	return percent.StringFixed(2) + "%"
}

// FormatRate renders a fractional rate (0.25) as a percentage
func FormatRate(rate decimal.Decimal) string {
	return FormatPercent(rate.Shift(2))
}
