package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/giygas/infomed-parser/store"
)

func loadRegistryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load-registry",
		Short: "Load the sqlite registry from CSV exports",
		Long: `Populate the registry database from the reference CSV exports:
the filename to CIS document mapping, the authorized specialites with
their isBdm flag, and the CIS to ATC mapping. Each file is optional
and replaces its table's rows on conflict.

Example:
  infomed-parser load-registry --spec-docs spec_doc.csv --specialites specialites.csv --cis-atc cis_atc.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			registryPath, _ := cmd.Flags().GetString("registry")
			specDocs, _ := cmd.Flags().GetString("spec-docs")
			specialites, _ := cmd.Flags().GetString("specialites")
			cisATC, _ := cmd.Flags().GetString("cis-atc")

			if specDocs == "" && specialites == "" && cisATC == "" {
				return fmt.Errorf("nothing to load: provide --spec-docs, --specialites or --cis-atc")
			}

			reg, err := store.Open(registryPath)
			if err != nil {
				return fmt.Errorf("failed to open registry: %w", err)
			}
			defer reg.Close()

			ctx := context.Background()
			loads := []struct {
				path  string
				table string
				load  func(context.Context, io.Reader) (int, error)
			}{
				{specDocs, "document mapping", reg.LoadSpecDocs},
				{specialites, "specialites", reg.LoadSpecialites},
				{cisATC, "CIS/ATC mapping", reg.LoadCISATC},
			}

			for _, l := range loads {
				if l.path == "" {
					continue
				}
				f, err := os.Open(filepath.Clean(l.path))
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", l.path, err)
				}
				count, err := l.load(ctx, f)
				f.Close()
				if err != nil {
					return err
				}
				fmt.Printf("Loaded %s: %d rows from %s\n", l.table, count, l.path)
			}
			return nil
		},
	}

	cmd.Flags().String("registry", "./data/registry.db", "SQLite registry database path")
	cmd.Flags().String("spec-docs", "", "CSV with filename,cis columns")
	cmd.Flags().String("specialites", "", "CSV with cis,is_bdm columns")
	cmd.Flags().String("cis-atc", "", "CSV with cis,atc columns")

	return cmd
}
