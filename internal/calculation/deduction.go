package calculation

import (
	"github.com/rgehrsitz/taxcalc/internal/domain"
	"github.com/shopspring/decimal"
)

// ResolveDeductions returns explicit when supplied, otherwise the jurisdiction's
// standard deduction for the filing status.
func ResolveDeductions(system domain.TaxSystem, status domain.FilingStatus, explicit *decimal.Decimal) decimal.Decimal {
	if explicit != nil {
		return *explicit
	}
	return system.StandardDeduction.For(status)
}

// DeductionForm tracks the deduction field of an interactive calculator. Until the
// user types an explicit amount, the deduction follows the standard deduction of
// the selected country and filing status and is re-derived whenever either changes.
type DeductionForm struct {
	catalog  Catalog
	system   domain.TaxSystem
	status   domain.FilingStatus
	override *decimal.Decimal
}

// NewDeductionForm starts a form for the given country and filing status
func NewDeductionForm(c Catalog, countryCode string, status domain.FilingStatus) (*DeductionForm, error) {
	system, err := c.Lookup(countryCode)
	if err != nil {
		return nil, err
	}
	return &DeductionForm{catalog: c, system: system, status: status}, nil
}

// SetCountry switches jurisdiction. On error the previous country is kept.
func (f *DeductionForm) SetCountry(countryCode string) error {
	system, err := f.catalog.Lookup(countryCode)
	if err != nil {
		return err
	}
	f.system = system
	return nil
}

// SetFilingStatus switches filing status
func (f *DeductionForm) SetFilingStatus(status domain.FilingStatus) {
	f.status = status
}

// SetDeductions records an explicit amount that survives country and status changes
func (f *DeductionForm) SetDeductions(amount decimal.Decimal) {
	f.override = &amount
}

// ResetDeductions drops the explicit amount and goes back to the standard deduction
func (f *DeductionForm) ResetDeductions() {
	f.override = nil
}

// IsOverridden reports whether the user supplied an explicit amount
func (f *DeductionForm) IsOverridden() bool { return f.override != nil }

// Deductions returns the amount currently in effect
func (f *DeductionForm) Deductions() decimal.Decimal {
	return ResolveDeductions(f.system, f.status, f.override)
}

// System returns the selected jurisdiction
func (f *DeductionForm) System() domain.TaxSystem { return f.system }

// FilingStatus returns the selected filing status
func (f *DeductionForm) FilingStatus() domain.FilingStatus { return f.status }

// Input assembles an engine input from the form state
func (f *DeductionForm) Input(grossIncome decimal.Decimal, regionCode string) domain.TaxCalculationInput {
	return domain.TaxCalculationInput{
		GrossIncome:  grossIncome,
		FilingStatus: f.status,
		Deductions:   f.Deductions(),
		CountryCode:  f.system.CountryCode,
		RegionCode:   regionCode,
	}
}
