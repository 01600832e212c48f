package compare

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/taxcalc/internal/output"
	"github.com/shopspring/decimal"
)

// TableFormatter formats comparison results as a console table
type TableFormatter struct{}

// Format generates a formatted table comparing jurisdictions
func (tf *TableFormatter) Format(compSet *ComparisonSet) string {
	var sb strings.Builder

	sb.WriteString("JURISDICTION COMPARISON\n")
	sb.WriteString(strings.Repeat("=", 96) + "\n")
	sb.WriteString(fmt.Sprintf("Gross Income: %s (%s)\n", compSet.GrossIncome.StringFixed(2), compSet.FilingStatus))
	if compSet.BaseResult != nil {
		sb.WriteString(fmt.Sprintf("Base: %s\n", compSet.BaseResult.Name))
	}
	sb.WriteString("\n")

	nameWidth := 24
	numWidth := 17

	sb.WriteString(fmt.Sprintf("%-*s %*s %*s %*s %*s\n",
		nameWidth, "Jurisdiction",
		numWidth, "Total Tax",
		numWidth, "Net Income",
		numWidth, "Marginal",
		numWidth, "Effective"))
	sb.WriteString(strings.Repeat("-", 96) + "\n")

	if compSet.BaseResult != nil {
		sb.WriteString(tf.formatRow(compSet.BaseResult, nameWidth, numWidth, true))
	}
	if len(compSet.AlternativeResults) > 0 {
		sb.WriteString(strings.Repeat("-", 96) + "\n")
		for _, alt := range compSet.AlternativeResults {
			sb.WriteString(tf.formatRow(&alt, nameWidth, numWidth, false))
		}
	}
	sb.WriteString(strings.Repeat("=", 96) + "\n")

	if len(compSet.AlternativeResults) > 0 && compSet.BaseResult != nil {
		sb.WriteString("\nCOMPARISON TO BASE\n")
		sb.WriteString(strings.Repeat("-", 96) + "\n")
		for _, alt := range compSet.AlternativeResults {
			sb.WriteString(fmt.Sprintf("\n%s:\n", alt.Name))
			sb.WriteString(fmt.Sprintf("  Effective Rate:   %s%s points\n",
				tf.deltaSymbol(alt.EffectiveDiffFromBase), alt.EffectiveDiffFromBase.StringFixed(2)))
			sb.WriteString(fmt.Sprintf("  Marginal Rate:    %s%s points\n",
				tf.deltaSymbol(alt.MarginalDiffFromBase), alt.MarginalDiffFromBase.StringFixed(2)))
			if alt.SameCurrencyAsBase {
				sb.WriteString(fmt.Sprintf("  Tax Impact:       %s%s\n",
					tf.deltaSymbol(alt.TaxDiffFromBase), output.FormatMoney(alt.TaxDiffFromBase, alt.Currency)))
			} else {
				sb.WriteString(fmt.Sprintf("  Tax Impact:       n/a (%s vs %s)\n", alt.Currency, compSet.BaseResult.Currency))
			}
		}
		sb.WriteString("\n")
	}

	if len(compSet.Recommendations) > 0 {
		sb.WriteString("\nRECOMMENDATIONS\n")
		sb.WriteString(strings.Repeat("-", 96) + "\n")
		for _, rec := range compSet.Recommendations {
			sb.WriteString(fmt.Sprintf("• %s\n", rec))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func (tf *TableFormatter) formatRow(result *ComparisonResult, nameWidth, numWidth int, isBase bool) string {
	name := result.Name
	if isBase {
		name += " (base)"
	}
	return fmt.Sprintf("%-*s %*s %*s %*s %*s\n",
		nameWidth, tf.truncate(name, nameWidth),
		numWidth, output.FormatMoney(result.TotalTax, result.Currency),
		numWidth, output.FormatMoney(result.NetIncome, result.Currency),
		numWidth, output.FormatPercent(result.MarginalRatePercent),
		numWidth, output.FormatPercent(result.EffectiveRatePercent))
}

// deltaSymbol prefixes positive deltas; negative values carry their own sign
func (tf *TableFormatter) deltaSymbol(delta decimal.Decimal) string {
	if delta.IsPositive() {
		return "+"
	}
	return ""
}

func (tf *TableFormatter) truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// FormatCompact creates a single-line summary of effective rates
func (tf *TableFormatter) FormatCompact(compSet *ComparisonSet) string {
	var sb strings.Builder
	for i, r := range compSet.All() {
		if i > 0 {
			sb.WriteString(" | ")
		}
		sb.WriteString(fmt.Sprintf("%s: %s", r.Name, output.FormatPercent(r.EffectiveRatePercent)))
	}
	return sb.String()
}
