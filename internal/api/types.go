package api

import (
	"sort"

	"github.com/rgehrsitz/taxcalc/internal/calculation"
	"github.com/rgehrsitz/taxcalc/internal/domain"
	"github.com/rgehrsitz/taxcalc/internal/output"
	"github.com/shopspring/decimal"
)

// CalculateRequest is the body of POST /api/v1/calculate
type CalculateRequest struct {
	Country      string           `json:"country" validate:"required,notblank"`
	Region       string           `json:"region"`
	FilingStatus string           `json:"filingStatus" validate:"filingstatus"`
	GrossIncome  decimal.Decimal  `json:"grossIncome" validate:"gte=0"`
	Deductions   *decimal.Decimal `json:"deductions" validate:"omitempty,gte=0"` // omitted applies the standard deduction
}

// CompareRequest is the body of POST /api/v1/compare
type CompareRequest struct {
	Base         string           `json:"base" validate:"required,notblank"`
	Alternatives []string         `json:"alternatives" validate:"required,min=1,dive,required,notblank"`
	FilingStatus string           `json:"filingStatus" validate:"filingstatus"`
	GrossIncome  decimal.Decimal  `json:"grossIncome" validate:"gte=0"`
	Deductions   *decimal.Decimal `json:"deductions" validate:"omitempty,gte=0"`
}

// GrossUpRequest is the body of POST /api/v1/gross-up
type GrossUpRequest struct {
	Country      string           `json:"country" validate:"required,notblank"`
	Region       string           `json:"region"`
	FilingStatus string           `json:"filingStatus" validate:"filingstatus"`
	Target       string           `json:"target" validate:"omitempty,oneof=net tax net_income total_tax"`
	Amount       decimal.Decimal  `json:"amount" validate:"gte=0"`
	Deductions   *decimal.Decimal `json:"deductions" validate:"omitempty,gte=0"`
}

// JurisdictionSummary is one entry of the jurisdiction listing
type JurisdictionSummary struct {
	Code           string   `json:"code"`
	DisplayName    string   `json:"displayName"`
	CurrencyCode   string   `json:"currencyCode"`
	CurrencySymbol string   `json:"currencySymbol"`
	TaxType        string   `json:"taxType"`
	Regions        []string `json:"regions,omitempty"`
}

func summarize(s domain.TaxSystem) JurisdictionSummary {
	var regions []string
	for code := range s.RegionalTax {
		regions = append(regions, code)
	}
	sort.Strings(regions)
	return JurisdictionSummary{
		Code:           s.CountryCode,
		DisplayName:    s.DisplayName,
		CurrencyCode:   s.CurrencyCode,
		CurrencySymbol: s.CurrencySymbol,
		TaxType:        string(s.PrimaryTaxType.Name),
		Regions:        regions,
	}
}

// BracketLine is one qualifying bracket of a calculation
type BracketLine struct {
	Min         decimal.Decimal  `json:"min"`
	Max         *decimal.Decimal `json:"max"`
	Rate        decimal.Decimal  `json:"rate"`
	TaxedAmount decimal.Decimal  `json:"taxedAmount"`
	Tax         decimal.Decimal  `json:"tax"`
}

// CalculateResponse carries the engine result plus display strings
type CalculateResponse struct {
	Country              string            `json:"country"`
	Region               string            `json:"region,omitempty"`
	Jurisdiction         string            `json:"jurisdiction"`
	Currency             string            `json:"currency"`
	FilingStatus         string            `json:"filingStatus"`
	GrossIncome          decimal.Decimal   `json:"grossIncome"`
	Deductions           decimal.Decimal   `json:"deductions"`
	TaxableIncome        decimal.Decimal   `json:"taxableIncome"`
	NationalTax          decimal.Decimal   `json:"nationalTax"`
	RegionalTax          decimal.Decimal   `json:"regionalTax"`
	TotalTax             decimal.Decimal   `json:"totalTax"`
	NetIncome            decimal.Decimal   `json:"netIncome"`
	MarginalRatePercent  decimal.Decimal   `json:"marginalRatePercent"`
	EffectiveRatePercent decimal.Decimal   `json:"effectiveRatePercent"`
	Brackets             []BracketLine     `json:"brackets"`
	Formatted            map[string]string `json:"formatted"`
}

func newCalculateResponse(system domain.TaxSystem, in domain.TaxCalculationInput, res domain.TaxCalculationResult) CalculateResponse {
	slices := calculation.Breakdown(system.PrimaryTaxType.Brackets, res.TaxableIncome)
	lines := make([]BracketLine, 0, len(slices))
	for _, s := range slices {
		lines = append(lines, BracketLine{
			Min:         s.Bracket.Min,
			Max:         s.Bracket.Max,
			Rate:        s.Bracket.Rate,
			TaxedAmount: s.TaxedAmount,
			Tax:         s.Tax,
		})
	}
	cur := res.CurrencyCode
	return CalculateResponse{
		Country:              res.CountryCode,
		Region:               res.RegionCode,
		Jurisdiction:         system.DisplayName,
		Currency:             cur,
		FilingStatus:         string(in.FilingStatus),
		GrossIncome:          res.GrossIncome,
		Deductions:           in.Deductions,
		TaxableIncome:        res.TaxableIncome,
		NationalTax:          res.NationalTax,
		RegionalTax:          res.RegionalTax,
		TotalTax:             res.TotalTax,
		NetIncome:            res.NetIncome(),
		MarginalRatePercent:  res.MarginalRatePercent,
		EffectiveRatePercent: res.EffectiveRatePercent,
		Brackets:             lines,
		Formatted: map[string]string{
			"grossIncome":   output.FormatMoney(res.GrossIncome, cur),
			"totalTax":      output.FormatMoney(res.TotalTax, cur),
			"netIncome":     output.FormatMoney(res.NetIncome(), cur),
			"marginalRate":  output.FormatPercent(res.MarginalRatePercent),
			"effectiveRate": output.FormatPercent(res.EffectiveRatePercent),
		},
	}
}
