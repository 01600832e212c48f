package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rgehrsitz/taxcalc/internal/config"
	"github.com/rgehrsitz/taxcalc/internal/tui"
)

func newRootCmd() *cobra.Command {
	var configPath, country, region, gross string

	cmd := &cobra.Command{
		Use:          "taxcalc-tui",
		Short:        "Interactive income tax calculator",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.LoadSettings(configPath)
			if err != nil {
				return err
			}
			c, err := settings.LoadCatalog()
			if err != nil {
				return err
			}

			opts := tui.Options{
				Country:      settings.DefaultCountry,
				Region:       settings.DefaultRegion,
				FilingStatus: settings.FilingStatus(),
				GrossIncome:  gross,
				Filter:       settings.Filter(),
			}
			// the configured region belongs to the configured country
			if country != "" {
				opts.Country = country
				opts.Region = ""
			}
			if region != "" {
				opts.Region = region
			}

			model, err := tui.NewModel(c, opts)
			if err != nil {
				return err
			}

			p := tea.NewProgram(model, tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("error running TUI: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to settings file (YAML)")
	cmd.Flags().StringVarP(&country, "country", "c", "", "Initial country code (default from settings)")
	cmd.Flags().StringVarP(&region, "region", "r", "", "Initial region code")
	cmd.Flags().StringVarP(&gross, "gross", "g", "", "Initial gross income")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
