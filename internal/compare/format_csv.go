package compare

import (
	"encoding/csv"
	"strconv"
	"strings"
)

// CSVFormatter formats comparison results as CSV
type CSVFormatter struct{}

// Format generates CSV output for comparison results
func (cf *CSVFormatter) Format(compSet *ComparisonSet) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	header := []string{
		"Jurisdiction",
		"Type",
		"Country",
		"Region",
		"Currency",
		"Deductions",
		"Taxable Income",
		"Total Tax",
		"Net Income",
		"Marginal Rate %",
		"Effective Rate %",
		"Same Currency As Base",
		"Tax Diff from Base",
		"Effective Diff from Base",
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	if compSet.BaseResult != nil {
		if err := writer.Write(cf.formatRow(compSet.BaseResult, "base")); err != nil {
			return "", err
		}
	}
	for _, alt := range compSet.AlternativeResults {
		if err := writer.Write(cf.formatRow(&alt, "alternative")); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}

	return sb.String(), nil
}

func (cf *CSVFormatter) formatRow(result *ComparisonResult, kind string) []string {
	return []string{
		result.Jurisdiction,
		kind,
		result.Target.Country,
		result.Target.Region,
		result.Currency,
		result.Deductions.StringFixed(2),
		result.TaxableIncome.StringFixed(2),
		result.TotalTax.StringFixed(2),
		result.NetIncome.StringFixed(2),
		result.MarginalRatePercent.StringFixed(2),
		result.EffectiveRatePercent.StringFixed(2),
		strconv.FormatBool(kind == "base" || result.SameCurrencyAsBase),
		result.TaxDiffFromBase.StringFixed(2),
		result.EffectiveDiffFromBase.StringFixed(2),
	}
}
