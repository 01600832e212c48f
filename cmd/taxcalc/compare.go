package main

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/taxcalc/internal/compare"
	"github.com/rgehrsitz/taxcalc/internal/domain"
	"github.com/spf13/cobra"
)

func parseStatus(s string) (domain.FilingStatus, error) {
	status, err := domain.ParseFilingStatus(s)
	if err != nil {
		return "", fmt.Errorf("--status: %w", err)
	}
	return status, nil
}

func compareCmd(a *app) *cobra.Command {
	var (
		base, with, gross, deductions, status, format string
		concurrency                                   int
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare one gross income across jurisdictions",
		Long: `Compare the tax on one gross income in a base jurisdiction against alternatives.

Targets are country codes with an optional region, e.g. us/ca.
Tax differences are only reported between jurisdictions that share a currency.

Examples:
  taxcalc compare --base us/ca --with us/tx,us/ny --gross 120000
  taxcalc compare --base gb --with de,fr,nl --gross 60000 --format csv
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if base == "" {
				return fmt.Errorf("--base is required")
			}
			if with == "" {
				return fmt.Errorf("--with is required")
			}
			if gross == "" {
				return fmt.Errorf("--gross is required")
			}

			baseTarget, err := compare.ParseTarget(base)
			if err != nil {
				return err
			}
			var alternatives []compare.Target
			for _, s := range strings.Split(with, ",") {
				if strings.TrimSpace(s) == "" {
					continue
				}
				t, err := compare.ParseTarget(s)
				if err != nil {
					return err
				}
				alternatives = append(alternatives, t)
			}
			if len(alternatives) == 0 {
				return fmt.Errorf("no valid targets in --with")
			}

			grossAmount, err := parseAmount("gross", gross)
			if err != nil {
				return err
			}
			deductionAmount, err := parseAmount("deductions", deductions)
			if err != nil {
				return err
			}
			if status == "" {
				status = a.settings.DefaultFilingStatus
			}
			filingStatus, err := parseStatus(status)
			if err != nil {
				return err
			}

			_, engine, err := a.engine()
			if err != nil {
				return err
			}
			compSet, err := compare.NewCompareEngine(engine).Compare(cmd.Context(), compare.CompareOptions{
				Base:         baseTarget,
				Alternatives: alternatives,
				GrossIncome:  *grossAmount,
				FilingStatus: filingStatus,
				Deductions:   deductionAmount,
				Filter:       a.settings.Filter(),
				Concurrency:  concurrency,
			})
			if err != nil {
				return err
			}

			var out string
			switch strings.ToLower(format) {
			case "", "table", "console":
				out = (&compare.TableFormatter{}).Format(compSet)
			case "compact":
				out = (&compare.TableFormatter{}).FormatCompact(compSet) + "\n"
			case "csv":
				out, err = (&compare.CSVFormatter{}).Format(compSet)
			case "json":
				out, err = (&compare.JSONFormatter{Pretty: true}).Format(compSet)
			default:
				return fmt.Errorf("unknown format %q (available: table, compact, csv, json)", format)
			}
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&base, "base", "", "Base jurisdiction, e.g. us/ca (required)")
	cmd.Flags().StringVar(&with, "with", "", "Comma-separated alternative jurisdictions (required)")
	cmd.Flags().StringVarP(&gross, "gross", "g", "", "Gross income in each jurisdiction's currency (required)")
	cmd.Flags().StringVarP(&deductions, "deductions", "d", "", "Deductions (default: each jurisdiction's standard deduction)")
	cmd.Flags().StringVarP(&status, "status", "s", "", "Filing status: single or married")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (table, compact, csv, json)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Maximum concurrent calculations (0: unlimited)")
	return cmd
}
