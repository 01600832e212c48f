package main

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/taxcalc/internal/breakeven"
	"github.com/rgehrsitz/taxcalc/internal/catalog"
	"github.com/rgehrsitz/taxcalc/internal/entitlement"
	"github.com/spf13/cobra"
)

func grossUpCmd(a *app) *cobra.Command {
	var (
		country, region, status, deductions string
		target, amount, format              string
	)

	cmd := &cobra.Command{
		Use:   "gross-up",
		Short: "Find the gross income that yields a target net income or tax",
		Long: `Search for the smallest gross income that reaches a target.

Targets:
  net   gross income whose net income after tax is at least the amount (default)
  tax   gross income whose total tax is at least the amount

Examples:
  taxcalc gross-up --country us --region ny --amount 60000
  taxcalc gross-up --country gb --target tax --amount 10000 --format json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if amount == "" {
				return fmt.Errorf("--amount is required")
			}
			targetAmount, err := parseAmount("amount", amount)
			if err != nil {
				return err
			}
			deductionAmount, err := parseAmount("deductions", deductions)
			if err != nil {
				return err
			}
			solveTarget, err := breakeven.ParseSolveTarget(strings.ToLower(target))
			if err != nil {
				return err
			}
			if country == "" {
				country = a.settings.DefaultCountry
				if region == "" {
					region = a.settings.DefaultRegion
				}
			}
			country = catalog.NormalizeCode(country)
			if status == "" {
				status = a.settings.DefaultFilingStatus
			}
			filingStatus, err := parseStatus(status)
			if err != nil {
				return err
			}
			if err := entitlement.Check(a.settings.Filter(), country); err != nil {
				return err
			}

			_, engine, err := a.engine()
			if err != nil {
				return err
			}
			result, err := breakeven.NewDefaultSolver(engine).Solve(cmd.Context(), breakeven.Request{
				CountryCode:  country,
				RegionCode:   catalog.NormalizeCode(region),
				FilingStatus: filingStatus,
				Deductions:   deductionAmount,
				Target:       solveTarget,
				TargetAmount: *targetAmount,
			})
			if err != nil {
				return err
			}

			switch strings.ToLower(format) {
			case "", "table", "console":
				fmt.Fprint(cmd.OutOrStdout(), (&breakeven.TableFormatter{}).Format(result))
			case "json":
				out, err := (&breakeven.JSONFormatter{Pretty: true}).Format(result)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), out)
			default:
				return fmt.Errorf("unknown format %q (available: table, json)", format)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&country, "country", "c", "", "Country code (default from settings)")
	cmd.Flags().StringVarP(&region, "region", "r", "", "Region code")
	cmd.Flags().StringVarP(&status, "status", "s", "", "Filing status: single or married")
	cmd.Flags().StringVarP(&deductions, "deductions", "d", "", "Deductions (default: standard deduction)")
	cmd.Flags().StringVarP(&target, "target", "t", "net", "What the amount measures: net or tax")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "Target amount (required)")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (table, json)")
	return cmd
}
