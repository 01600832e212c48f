package main

import (
	"fmt"
	"os"

	"github.com/rgehrsitz/taxcalc/internal/catalog"
	"github.com/spf13/cobra"
)

func catalogCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect jurisdiction catalogs",
	}
	cmd.AddCommand(catalogValidateCmd(a))
	cmd.AddCommand(catalogExportCmd(a))
	return cmd
}

// openCatalog loads the file argument if given, else the configured catalog
func (a *app) openCatalog(args []string) (*catalog.Catalog, error) {
	if len(args) == 1 {
		return catalog.LoadFile(args[0])
	}
	return a.settings.LoadCatalog()
}

func catalogValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [catalog-file]",
		Short: "Check a catalog and report rejected jurisdictions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.openCatalog(args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			problems := c.Problems()
			for _, p := range problems {
				fmt.Fprintf(out, "✗ %v\n", p)
			}
			fmt.Fprintf(out, "%d jurisdictions valid, %d rejected\n", c.Len(), len(problems))
			if len(problems) > 0 {
				return fmt.Errorf("catalog has %d invalid jurisdictions", len(problems))
			}
			return nil
		},
	}
}

func catalogExportCmd(a *app) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export [catalog-file]",
		Short: "Write the valid jurisdictions as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.openCatalog(args)
			if err != nil {
				return err
			}
			if outPath == "" {
				return c.Export(cmd.OutOrStdout())
			}

			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", outPath, err)
			}
			if err := c.Export(f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Catalog written to %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default: stdout)")
	return cmd
}
