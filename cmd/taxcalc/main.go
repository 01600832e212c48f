package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/rgehrsitz/taxcalc/internal/calculation"
	"github.com/rgehrsitz/taxcalc/internal/catalog"
	"github.com/rgehrsitz/taxcalc/internal/config"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// app carries the state shared by every command
type app struct {
	configPath  string
	catalogPath string
	debug       bool

	settings config.Settings
	logger   calculation.Logger
}

// loadSettings reads the settings file and applies command-line overrides
func (a *app) loadSettings(cmd *cobra.Command) error {
	settings, err := config.LoadSettings(a.configPath)
	if err != nil {
		return err
	}
	if a.catalogPath != "" {
		settings.CatalogPath = a.catalogPath
	}
	a.settings = settings

	a.logger = calculation.NopLogger{}
	if a.debug {
		handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug})
		a.logger = calculation.SlogLogger{Logger: slog.New(handler)}
	}
	return nil
}

// engine loads the configured catalog and returns an engine over it
func (a *app) engine() (*catalog.Catalog, *calculation.Engine, error) {
	c, err := a.settings.LoadCatalog()
	if err != nil {
		return nil, nil, err
	}
	for _, p := range c.Problems() {
		a.logger.Warnf("skipping jurisdiction: %v", p)
	}
	engine := calculation.NewEngine(c)
	engine.SetLogger(a.logger)
	return c, engine, nil
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "taxcalc",
		Short: "Multi-jurisdiction income tax calculator",
		Long: `Progressive income tax calculator across national and regional jurisdictions.

Computes national tax from bracket tables, adds any regional surcharge, and
reports marginal and effective rates. Jurisdictions come from an embedded
catalog or a YAML/JSON catalog file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadSettings(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to settings file (YAML)")
	rootCmd.PersistentFlags().StringVar(&a.catalogPath, "catalog", "", "Path to a jurisdiction catalog (default: embedded catalog)")
	rootCmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug output for detailed calculations")

	rootCmd.AddCommand(calculateCmd(a))
	rootCmd.AddCommand(jurisdictionsCmd(a))
	rootCmd.AddCommand(compareCmd(a))
	rootCmd.AddCommand(grossUpCmd(a))
	rootCmd.AddCommand(catalogCmd(a))
	rootCmd.AddCommand(serveCmd(a))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "taxcalc %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.Main.Path + " " + bi.GoVersion
	}
	return ""
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
