package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/rgehrsitz/taxcalc/internal/calculation"
	"github.com/rgehrsitz/taxcalc/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// CalculationRequest is one entry of a batch request file
type CalculationRequest struct {
	Name         string           `yaml:"name" json:"name"`
	Country      string           `yaml:"country" json:"country"`
	Region       string           `yaml:"region,omitempty" json:"region,omitempty"`
	FilingStatus string           `yaml:"filing_status,omitempty" json:"filing_status,omitempty"`
	GrossIncome  decimal.Decimal  `yaml:"gross_income" json:"gross_income"`
	Deductions   *decimal.Decimal `yaml:"deductions,omitempty" json:"deductions,omitempty"` // nil applies the standard deduction
}

// Status returns the parsed filing status; ValidateRequest has already rejected
// unknown values
func (r CalculationRequest) Status() domain.FilingStatus {
	status, _ := domain.ParseFilingStatus(r.FilingStatus)
	return status
}

// Input resolves the request against its tax system into an engine input
func (r CalculationRequest) Input(system domain.TaxSystem) domain.TaxCalculationInput {
	status := r.Status()
	return domain.TaxCalculationInput{
		GrossIncome:  r.GrossIncome,
		FilingStatus: status,
		Deductions:   calculation.ResolveDeductions(system, status, r.Deductions),
		CountryCode:  r.Country,
		RegionCode:   r.Region,
	}
}

// BatchFile is the request file accepted by "taxcalc calculate --file"
type BatchFile struct {
	Calculations []CalculationRequest `yaml:"calculations" json:"calculations"`
}

// InputParser handles parsing of batch request files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads a batch from a YAML or JSON file
func (ip *InputParser) LoadFromFile(filename string) (*BatchFile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.Parse(data)
}

// Parse decodes and validates batch data; YAML is a superset of JSON so one
// decoder serves both
func (ip *InputParser) Parse(data []byte) (*BatchFile, error) {
	var batch BatchFile
	if err := yaml.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ip.ValidateBatch(&batch); err != nil {
		return nil, fmt.Errorf("request validation failed: %w", err)
	}

	return &batch, nil
}

// ValidateBatch validates every request and rejects duplicate names
func (ip *InputParser) ValidateBatch(batch *BatchFile) error {
	if len(batch.Calculations) == 0 {
		return fmt.Errorf("no calculations provided")
	}

	seen := make(map[string]int, len(batch.Calculations))
	for i := range batch.Calculations {
		req := &batch.Calculations[i]
		if err := ip.ValidateRequest(req); err != nil {
			return fmt.Errorf("calculation %d (%s) validation failed: %w", i, req.Name, err)
		}
		if prev, dup := seen[req.Name]; dup {
			return fmt.Errorf("calculation %d: name %q already used by calculation %d", i, req.Name, prev)
		}
		seen[req.Name] = i
	}
	return nil
}

// ValidateRequest checks a single request and normalizes its codes and filing
// status in place
func (ip *InputParser) ValidateRequest(req *CalculationRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("name is required")
	}
	req.Country = strings.ToLower(strings.TrimSpace(req.Country))
	if req.Country == "" {
		return fmt.Errorf("country is required")
	}
	req.Region = strings.TrimSpace(req.Region)

	status, err := domain.ParseFilingStatus(req.FilingStatus)
	if err != nil {
		return err
	}
	req.FilingStatus = string(status)

	if req.GrossIncome.IsNegative() {
		return fmt.Errorf("gross income cannot be negative")
	}
	if req.Deductions != nil && req.Deductions.IsNegative() {
		return fmt.Errorf("deductions cannot be negative")
	}
	return nil
}
