package calculation

import (
	"strings"

	"github.com/rgehrsitz/taxcalc/internal/domain"
	"github.com/shopspring/decimal"
)

// ResolveRegional returns the flat regional surtax on taxableIncome. It is zero when
// there is no regional table, no region was requested, the region is not modeled
// (matched case-insensitively) or the region levies no tax.
func ResolveRegional(regionalTax map[string]domain.RegionalTaxInfo, regionCode string, taxableIncome decimal.Decimal) decimal.Decimal {
	code := strings.TrimSpace(regionCode)
	if regionalTax == nil || code == "" {
		return decimal.Zero
	}

	info, ok := regionalTax[code]
	if !ok {
		for key, candidate := range regionalTax {
			if strings.EqualFold(key, code) {
				info, ok = candidate, true
				break
			}
		}
	}
	if !ok || info.Rate == nil {
		return decimal.Zero
	}
	return taxableIncome.Mul(*info.Rate)
}
