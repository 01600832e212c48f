package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// JSONFormatter renders the report as indented JSON with fixed two-decimal amounts
type JSONFormatter struct{}

func (j JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) Format(report *Report) ([]byte, error) {
	return json.MarshalIndent(report.view(), "", "  ")
}

// YAMLFormatter renders the report as YAML
type YAMLFormatter struct{}

func (y YAMLFormatter) Name() string { return "yaml" }

func (y YAMLFormatter) Format(report *Report) ([]byte, error) {
	return yaml.Marshal(report.view())
}

// CSVFormatter writes one row per entry in report order
type CSVFormatter struct{}

func (c CSVFormatter) Name() string { return "csv" }

func (c CSVFormatter) Format(report *Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Name", "Country", "Region", "FilingStatus", "Currency", "GrossIncome", "Deductions",
		"TaxableIncome", "NationalTax", "RegionalTax", "TotalTax", "NetIncome", "MarginalRatePercent", "EffectiveRatePercent"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, v := range report.view().Results {
		row := []string{v.Name, v.Country, v.Region, v.FilingStatus, v.Currency, v.GrossIncome, v.Deductions,
			v.TaxableIncome, v.NationalTax, v.RegionalTax, v.TotalTax, v.NetIncome, v.MarginalRatePercent, v.EffectiveRatePercent}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
