package output

import (
	"github.com/rgehrsitz/taxcalc/internal/calculation"
	"github.com/rgehrsitz/taxcalc/internal/domain"
)

// Entry is one computed scenario with the tax system it was computed against
type Entry struct {
	Name   string
	System domain.TaxSystem
	Input  domain.TaxCalculationInput
	Result domain.TaxCalculationResult
}

// Report is an ordered list of computed entries
type Report struct {
	Entries []Entry
}

// NewReport builds a report from entries
func NewReport(entries ...Entry) *Report {
	return &Report{Entries: entries}
}

// Add appends an entry
func (r *Report) Add(e Entry) {
	r.Entries = append(r.Entries, e)
}

// Breakdown returns the per-bracket slices of the entry's national tax
func (e Entry) Breakdown() []calculation.BracketSlice {
	return calculation.Breakdown(e.System.PrimaryTaxType.Brackets, e.Result.TaxableIncome)
}

// Label is the entry name, falling back to the country and region codes
func (e Entry) Label() string {
	if e.Name != "" {
		return e.Name
	}
	if e.Result.RegionCode != "" {
		return e.Result.CountryCode + "/" + e.Result.RegionCode
	}
	return e.Result.CountryCode
}

// entryView is the flat, string-valued shape used by the json and yaml formatters
type entryView struct {
	Name                 string `json:"name" yaml:"name"`
	Country              string `json:"country" yaml:"country"`
	Jurisdiction         string `json:"jurisdiction" yaml:"jurisdiction"`
	Region               string `json:"region,omitempty" yaml:"region,omitempty"`
	FilingStatus         string `json:"filingStatus" yaml:"filingStatus"`
	Currency             string `json:"currency" yaml:"currency"`
	GrossIncome          string `json:"grossIncome" yaml:"grossIncome"`
	Deductions           string `json:"deductions" yaml:"deductions"`
	TaxableIncome        string `json:"taxableIncome" yaml:"taxableIncome"`
	NationalTax          string `json:"nationalTax" yaml:"nationalTax"`
	RegionalTax          string `json:"regionalTax" yaml:"regionalTax"`
	TotalTax             string `json:"totalTax" yaml:"totalTax"`
	NetIncome            string `json:"netIncome" yaml:"netIncome"`
	MarginalRatePercent  string `json:"marginalRatePercent" yaml:"marginalRatePercent"`
	EffectiveRatePercent string `json:"effectiveRatePercent" yaml:"effectiveRatePercent"`
}

type reportView struct {
	Results []entryView `json:"results" yaml:"results"`
}

func (r *Report) view() reportView {
	v := reportView{Results: make([]entryView, 0, len(r.Entries))}
	for _, e := range r.Entries {
		res := e.Result
		v.Results = append(v.Results, entryView{
			Name:                 e.Label(),
			Country:              res.CountryCode,
			Jurisdiction:         e.System.DisplayName,
			Region:               res.RegionCode,
			FilingStatus:         string(e.Input.FilingStatus),
			Currency:             res.CurrencyCode,
			GrossIncome:          res.GrossIncome.StringFixed(2),
			Deductions:           e.Input.Deductions.StringFixed(2),
			TaxableIncome:        res.TaxableIncome.StringFixed(2),
			NationalTax:          res.NationalTax.StringFixed(2),
			RegionalTax:          res.RegionalTax.StringFixed(2),
			TotalTax:             res.TotalTax.StringFixed(2),
			NetIncome:            res.NetIncome().StringFixed(2),
			MarginalRatePercent:  res.MarginalRatePercent.StringFixed(2),
			EffectiveRatePercent: res.EffectiveRatePercent.StringFixed(2),
		})
	}
	return v
}
