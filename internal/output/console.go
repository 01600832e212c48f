package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ConsoleFormatter renders a detailed report with the bracket breakdown of each entry
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(report *Report) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintln(&buf, strings.Repeat("=", 64))
	fmt.Fprintln(&buf, "INCOME TAX CALCULATION")
	fmt.Fprintln(&buf, strings.Repeat("=", 64))

	if len(report.Entries) == 0 {
		fmt.Fprintln(&buf)
		fmt.Fprintln(&buf, "No calculations.")
		return buf.Bytes(), nil
	}

	for i, e := range report.Entries {
		cur := e.Result.CurrencyCode
		res := e.Result

		fmt.Fprintln(&buf)
		fmt.Fprintf(&buf, "%d. %s\n", i+1, e.Label())
		fmt.Fprintln(&buf, strings.Repeat("-", 64))
		jurisdiction := e.System.DisplayName
		if res.RegionCode != "" {
			jurisdiction += " (" + strings.ToUpper(res.RegionCode) + ")"
		}
		fmt.Fprintf(&buf, "Jurisdiction:      %s\n", jurisdiction)
		fmt.Fprintf(&buf, "Filing Status:     %s\n", e.Input.FilingStatus)
		fmt.Fprintf(&buf, "Gross Income:      %s\n", FormatMoney(res.GrossIncome, cur))
		fmt.Fprintf(&buf, "Deductions:        %s\n", FormatMoney(e.Input.Deductions, cur))
		fmt.Fprintf(&buf, "Taxable Income:    %s\n", FormatMoney(res.TaxableIncome, cur))
		fmt.Fprintln(&buf)

		if slices := e.Breakdown(); len(slices) > 0 {
			fmt.Fprintln(&buf, "Bracket Breakdown:")
			for _, s := range slices {
				fmt.Fprintf(&buf, "  %-28s %7s  on %-16s = %s\n",
					BracketRange(s.Bracket.Min, s.Bracket.Max, cur),
					FormatRate(s.Bracket.Rate),
					FormatMoney(s.TaxedAmount, cur),
					FormatMoney(s.Tax, cur))
			}
			fmt.Fprintln(&buf)
		}

		fmt.Fprintf(&buf, "National Tax:      %s\n", FormatMoney(res.NationalTax, cur))
		if !res.RegionalTax.IsZero() {
			fmt.Fprintf(&buf, "Regional Tax:      %s\n", FormatMoney(res.RegionalTax, cur))
		}
		fmt.Fprintf(&buf, "Total Tax:         %s\n", FormatMoney(res.TotalTax, cur))
		fmt.Fprintf(&buf, "Net Income:        %s\n", FormatMoney(res.NetIncome(), cur))
		fmt.Fprintf(&buf, "Marginal Rate:     %s\n", FormatPercent(res.MarginalRatePercent))
		fmt.Fprintf(&buf, "Effective Rate:    %s\n", FormatPercent(res.EffectiveRatePercent))
	}

	return buf.Bytes(), nil
}

// BracketRange renders a bracket's bounds, e.g. "$0.00 - $9,999.00" or "$10,000.00 and up"
func BracketRange(min decimal.Decimal, max *decimal.Decimal, cur string) string {
	if max == nil {
		return FormatMoney(min, cur) + " and up"
	}
	return FormatMoney(min, cur) + " - " + FormatMoney(*max, cur)
}

// SummaryFormatter renders one line per entry
type SummaryFormatter struct{}

func (s SummaryFormatter) Name() string { return "summary" }

func (s SummaryFormatter) Format(report *Report) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%-20s %-8s %18s %18s %10s %10s\n", "Name", "Country", "Gross", "Total Tax", "Marginal", "Effective")
	fmt.Fprintln(&buf, strings.Repeat("-", 89))
	for _, e := range report.Entries {
		res := e.Result
		fmt.Fprintf(&buf, "%-20s %-8s %18s %18s %10s %10s\n",
			e.Label(),
			strings.ToUpper(res.CountryCode),
			FormatMoney(res.GrossIncome, res.CurrencyCode),
			FormatMoney(res.TotalTax, res.CurrencyCode),
			FormatPercent(res.MarginalRatePercent),
			FormatPercent(res.EffectiveRatePercent))
	}
	return buf.Bytes(), nil
}
