package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rgehrsitz/taxcalc/internal/output"
	"github.com/spf13/cobra"
)

func jurisdictionsCmd(a *app) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:     "jurisdictions",
		Aliases: []string{"list"},
		Short:   "List the jurisdictions available for calculation",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := a.engine()
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

			systems := c.ListAvailable(a.settings.Filter().AllowedCountries())
			if len(systems) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No jurisdictions available.")
				return nil
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("CODE", "NAME", "CURRENCY", "BRACKETS", "TOP RATE", "STD DEDUCTION", "REGIONS")
			for _, s := range systems {
				brackets := s.PrimaryTaxType.Brackets
				top := brackets[len(brackets)-1].Rate

				regions := make([]string, 0, len(s.RegionalTax))
				for code := range s.RegionalTax {
					regions = append(regions, code)
				}
				sort.Strings(regions)
				regionList := "-"
				if len(regions) > 0 {
					regionList = strings.Join(regions, ",")
				}

				t.Row(
					s.CountryCode,
					s.DisplayName,
					s.CurrencyCode,
					strconv.Itoa(len(brackets)),
					output.FormatRate(top),
					output.FormatMoney(s.StandardDeduction.For(filingStatus), s.CurrencyCode),
					regionList)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "Filing status used for the standard deduction column")
	return cmd
}
