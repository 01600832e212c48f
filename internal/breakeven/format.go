package breakeven

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rgehrsitz/taxcalc/internal/output"
)

// TableFormatter formats solver results as a console table
type TableFormatter struct{}

// Format generates a formatted table for a solver result
func (tf *TableFormatter) Format(result *Result) string {
	var sb strings.Builder
	cur := result.Calculation.CurrencyCode

	sb.WriteString("GROSS-UP RESULT\n")
	sb.WriteString(strings.Repeat("=", 64) + "\n")

	jurisdiction := result.Request.CountryCode
	if result.Request.RegionCode != "" {
		jurisdiction += "/" + result.Request.RegionCode
	}
	sb.WriteString(fmt.Sprintf("Jurisdiction:        %s\n", jurisdiction))
	sb.WriteString(fmt.Sprintf("Filing Status:       %s\n", result.Request.FilingStatus))
	sb.WriteString(fmt.Sprintf("Target:              %s of %s\n", result.Request.Target, output.FormatMoney(result.Request.TargetAmount, cur)))
	sb.WriteString(fmt.Sprintf("Status:              %s\n", tf.formatStatus(result.Success)))
	sb.WriteString(fmt.Sprintf("Iterations:          %d\n", result.Iterations))
	if result.ConvergenceInfo != "" {
		sb.WriteString(fmt.Sprintf("Convergence:         %s\n", result.ConvergenceInfo))
	}
	sb.WriteString("\n")

	sb.WriteString("REQUIRED GROSS INCOME\n")
	sb.WriteString(strings.Repeat("-", 64) + "\n")
	sb.WriteString(fmt.Sprintf("Gross Income:        %s\n", output.FormatMoney(result.GrossIncome, cur)))
	sb.WriteString(fmt.Sprintf("Deductions:          %s\n", output.FormatMoney(result.Deductions, cur)))
	sb.WriteString(fmt.Sprintf("Total Tax:           %s\n", output.FormatMoney(result.Calculation.TotalTax, cur)))
	sb.WriteString(fmt.Sprintf("Net Income:          %s\n", output.FormatMoney(result.Calculation.NetIncome(), cur)))
	sb.WriteString(fmt.Sprintf("Marginal Rate:       %s\n", output.FormatPercent(result.Calculation.MarginalRatePercent)))
	sb.WriteString(fmt.Sprintf("Effective Rate:      %s\n", output.FormatPercent(result.Calculation.EffectiveRatePercent)))

	return sb.String()
}

func (tf *TableFormatter) formatStatus(success bool) string {
	if success {
		return "✓ Converged"
	}
	return "⚠ Did not converge"
}

// JSONFormatter formats results as JSON
type JSONFormatter struct {
	Pretty bool
}

// Format generates JSON output
func (jf *JSONFormatter) Format(result *Result) (string, error) {
	var data []byte
	var err error

	if jf.Pretty {
		data, err = json.MarshalIndent(result, "", "  ")
	} else {
		data, err = json.Marshal(result)
	}

	if err != nil {
		return "", err
	}

	return string(data), nil
}
