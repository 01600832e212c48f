package main

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/taxcalc/internal/calculation"
	"github.com/rgehrsitz/taxcalc/internal/catalog"
	"github.com/rgehrsitz/taxcalc/internal/config"
	"github.com/rgehrsitz/taxcalc/internal/entitlement"
	"github.com/rgehrsitz/taxcalc/internal/output"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// parseAmount reads an optional non-negative amount flag; "" yields nil
func parseAmount(flag, raw string) (*decimal.Decimal, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("--%s: %q is not a number", flag, raw)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("--%s cannot be negative", flag)
	}
	return &d, nil
}

// formatOrDefault falls back to the settings default when no --format was given
func (a *app) formatOrDefault(format string) string {
	if format == "" {
		return a.settings.DefaultFormat
	}
	return format
}

func calculateCmd(a *app) *cobra.Command {
	var (
		file, name, country, region, status string
		gross, deductions, format           string
		save                                bool
	)

	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Calculate income tax for one request or a batch file",
		Long: `Calculate national and regional income tax.

Examples:
  taxcalc calculate --country us --region ca --gross 85000
  taxcalc calculate --country de --gross 60000 --status married --format json
  taxcalc calculate --file requests.yaml --format csv --save
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parser := config.NewInputParser()

			var batch *config.BatchFile
			if file != "" {
				loaded, err := parser.LoadFromFile(file)
				if err != nil {
					return err
				}
				batch = loaded
			} else {
				if gross == "" {
					return fmt.Errorf("--gross is required unless --file is given")
				}
				req, err := a.requestFromFlags(name, country, region, status, gross, deductions)
				if err != nil {
					return err
				}
				batch = &config.BatchFile{Calculations: []config.CalculationRequest{req}}
				if err := parser.ValidateBatch(batch); err != nil {
					return err
				}
			}

			c, engine, err := a.engine()
			if err != nil {
				return err
			}
			report, err := runBatch(c, engine, a.settings.Filter(), batch)
			if err != nil {
				return err
			}

			format = a.formatOrDefault(format)
			f := output.GetFormatterByName(format)
			if f == nil {
				return fmt.Errorf("unknown format %q (available: %s)", format, strings.Join(output.AvailableFormatterNames(), ", "))
			}
			if save {
				path, err := output.WriteFormatted(f, report, f.Name())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", path)
				return nil
			}
			data, err := f.Format(report)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Batch request file (YAML or JSON)")
	cmd.Flags().StringVar(&name, "name", "", "Label for the calculation")
	cmd.Flags().StringVarP(&country, "country", "c", "", "Country code (default from settings)")
	cmd.Flags().StringVarP(&region, "region", "r", "", "Region code for the regional surcharge")
	cmd.Flags().StringVarP(&status, "status", "s", "", "Filing status: single or married (default from settings)")
	cmd.Flags().StringVarP(&gross, "gross", "g", "", "Gross income")
	cmd.Flags().StringVarP(&deductions, "deductions", "d", "", "Deductions (default: standard deduction)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format ("+strings.Join(output.AvailableFormatterNames(), ", ")+")")
	cmd.Flags().BoolVar(&save, "save", false, "Write the report to a timestamped file instead of stdout")

	return cmd
}

// requestFromFlags builds a single request, filling blanks from settings
func (a *app) requestFromFlags(name, country, region, status, gross, deductions string) (config.CalculationRequest, error) {
	grossAmount, err := parseAmount("gross", gross)
	if err != nil {
		return config.CalculationRequest{}, err
	}
	deductionAmount, err := parseAmount("deductions", deductions)
	if err != nil {
		return config.CalculationRequest{}, err
	}
	if country == "" {
		country = a.settings.DefaultCountry
		if region == "" {
			region = a.settings.DefaultRegion
		}
	}
	if status == "" {
		status = a.settings.DefaultFilingStatus
	}
	if name == "" {
		name = catalog.NormalizeCode(country)
		if region != "" {
			name += "/" + catalog.NormalizeCode(region)
		}
	}
	return config.CalculationRequest{
		Name:         name,
		Country:      country,
		Region:       region,
		FilingStatus: status,
		GrossIncome:  *grossAmount,
		Deductions:   deductionAmount,
	}, nil
}

// runBatch computes every request of a validated batch
func runBatch(c *catalog.Catalog, engine *calculation.Engine, filter entitlement.Filter, batch *config.BatchFile) (*output.Report, error) {
	report := output.NewReport()
	for _, req := range batch.Calculations {
		if err := entitlement.Check(filter, req.Country); err != nil {
			return nil, fmt.Errorf("%s: %w", req.Name, err)
		}
		system, err := c.Lookup(req.Country)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", req.Name, err)
		}
		input := req.Input(system)
		res, err := engine.Compute(input)
		if err != nil {
			return nil, fmt.Errorf("failed to calculate %s: %w", req.Name, err)
		}
		report.Add(output.Entry{Name: req.Name, System: system, Input: input, Result: res})
	}
	return report, nil
}
