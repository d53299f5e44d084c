package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/giygas/infomed-parser/docparser/entities"
	"github.com/giygas/infomed-parser/store"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import parsed documents into the registry",
		Long: `Import a parsed JSONL file into the registry's content block
tables. Each document is inserted in its own transaction; block HTML
is cleaned, table blocks are kept verbatim, and child blocks keep a
parent_id link to their parent row.

Example:
  infomed-parser import --input notices.jsonl
  infomed-parser import --input rcp.jsonl --registry ./data/registry.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, _ := cmd.Flags().GetString("input")
			registryPath, _ := cmd.Flags().GetString("registry")

			if input == "" {
				return fmt.Errorf("--input flag is required")
			}

			reg, err := store.Open(registryPath)
			if err != nil {
				return fmt.Errorf("failed to open registry: %w", err)
			}
			defer reg.Close()

			f, err := os.Open(filepath.Clean(input))
			if err != nil {
				return fmt.Errorf("failed to open input: %w", err)
			}
			defer f.Close()

			ctx := context.Background()
			start := time.Now()
			imported, blocks, failed := 0, 0, 0

			decoder := json.NewDecoder(f)
			for {
				var doc entities.ParsedDocument
				if err := decoder.Decode(&doc); err != nil {
					if errors.Is(err, io.EOF) {
						break
					}
					return fmt.Errorf("failed to decode document %d: %w", imported+failed+1, err)
				}
				ids, err := reg.ImportDocument(ctx, &doc)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Skipping %s (%s): %v\n", doc.Source.Filename, doc.Source.CIS, err)
					failed++
					continue
				}
				imported++
				blocks += len(ids)
			}

			fmt.Printf("Imported %d documents (%d blocks, %d failed) in %v\n",
				imported, blocks, failed, time.Since(start).Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringP("input", "i", "", "Parsed JSONL file to import")
	cmd.Flags().String("registry", "./data/registry.db", "SQLite registry database path")

	return cmd
}
