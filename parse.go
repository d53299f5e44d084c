package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/giygas/infomed-parser/config"
	"github.com/giygas/infomed-parser/docparser"
	"github.com/giygas/infomed-parser/docparser/entities"
	"github.com/giygas/infomed-parser/store"
	"github.com/giygas/infomed-parser/validation"
)

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse BDPM HTML exports into a JSONL file",
		Long: `Parse the Notice (N*.htm) or RCP (R*.htm) exports of a BDPM
directory into structured documents, one JSON envelope per line.

Filenames are resolved to CIS codes through the registry; documents
whose CIS is not authorized are skipped. A CIS list file (one code per
line) replaces the registry's authorized set when provided.

With --base-url the registry filenames are downloaded over HTTP
instead of read from the directory.

Example:
  infomed-parser parse --dir ./documents --pattern N --out notices.jsonl
  infomed-parser parse --dir ./documents --pattern R --cis-list sample.txt --limit 100`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			pattern, _ := cmd.Flags().GetString("pattern")
			registryPath, _ := cmd.Flags().GetString("registry")
			output, _ := cmd.Flags().GetString("out")
			cisListPath, _ := cmd.Flags().GetString("cis-list")
			limit, _ := cmd.Flags().GetInt("limit")
			workers, _ := cmd.Flags().GetInt("workers")
			baseURL, _ := cmd.Flags().GetString("base-url")
			imageBaseURL, _ := cmd.Flags().GetString("image-base-url")

			if pattern != "N" && pattern != "R" {
				return fmt.Errorf("--pattern must be N (notices) or R (RCPs), got %q", pattern)
			}
			if output == "" {
				output = map[string]string{"N": "notices.jsonl", "R": "rcp.jsonl"}[pattern]
			}

			ctx := context.Background()

			reg, err := store.Open(registryPath)
			if err != nil {
				return fmt.Errorf("failed to open registry: %w", err)
			}
			defer reg.Close()

			filenameToCIS, err := reg.FilenameToCIS(ctx)
			if err != nil {
				return fmt.Errorf("failed to load document mapping: %w", err)
			}

			authorized, err := reg.AuthorizedCIS(ctx)
			if err != nil {
				return fmt.Errorf("failed to load authorized CIS: %w", err)
			}

			if cisListPath != "" {
				authorized, err = loadCISList(cisListPath)
				if err != nil {
					return err
				}
				fmt.Printf("Using CIS list override: %d codes from %s\n", len(authorized), cisListPath)
			}

			items, src, skipped, err := collectParseItems(dir, pattern, baseURL, filenameToCIS, authorized)
			if err != nil {
				return err
			}
			if limit > 0 && len(items) > limit {
				items = items[:limit]
			}

			fmt.Printf("Parsing %d documents (%d skipped by registry filters)\n", len(items), skipped)
			start := time.Now()

			out, err := os.Create(filepath.Clean(output))
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer out.Close()

			writer := bufio.NewWriter(out)
			encoder := json.NewEncoder(writer)

			parser := docparser.New(imageBaseURL)
			stats := parser.ParseBatch(items, src, workers, func(doc *entities.ParsedDocument) error {
				return encoder.Encode(doc)
			})

			if err := writer.Flush(); err != nil {
				return fmt.Errorf("failed to flush output: %w", err)
			}

			fmt.Printf("Done in %v: %d parsed, %d failed, output %s\n",
				time.Since(start).Round(time.Millisecond), stats.Parsed, stats.Failed, output)
			return nil
		},
	}

	cmd.Flags().StringP("dir", "d", "./documents", "Directory holding the HTML exports")
	cmd.Flags().StringP("pattern", "p", "N", "Document type to parse: N (notices) or R (RCPs)")
	cmd.Flags().String("registry", "./data/registry.db", "SQLite registry database path")
	cmd.Flags().StringP("out", "o", "", "Output JSONL path (default notices.jsonl or rcp.jsonl)")
	cmd.Flags().String("cis-list", "", "File with one CIS per line, replacing the authorized set")
	cmd.Flags().Int("limit", 0, "Parse at most this many documents (0 = all)")
	cmd.Flags().Int("workers", 4, "Parallel parsing workers")
	cmd.Flags().String("base-url", "", "Download documents from this base URL instead of --dir")
	cmd.Flags().String("image-base-url", config.DefaultImageBaseURL, "Base URL for rewritten image references")

	return cmd
}

// collectParseItems resolves which documents to parse and where to load
// them from. Local mode globs the directory; remote mode walks the
// registry filenames. Returns the number of documents dropped by the
// mapping and authorization filters.
func collectParseItems(dir, pattern, baseURL string, filenameToCIS map[string]string, authorized map[string]bool) ([]docparser.Item, docparser.Source, int, error) {
	if baseURL != "" {
		var items []docparser.Item
		skipped := 0
		for filename, cis := range filenameToCIS {
			if !strings.HasPrefix(filename, pattern) {
				continue
			}
			if !authorized[cis] {
				skipped++
				continue
			}
			items = append(items, docparser.Item{Filename: filename, CIS: cis})
		}
		sort.Slice(items, func(i, j int) bool { return items[i].Filename < items[j].Filename })
		return items, docparser.NewDownloader(baseURL), skipped, nil
	}

	src := docparser.DirSource{Dir: dir}
	names, err := src.List(pattern)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("failed to list documents: %w", err)
	}

	var items []docparser.Item
	skipped := 0
	for _, name := range names {
		cis, ok := filenameToCIS[name]
		if !ok || !authorized[cis] {
			skipped++
			continue
		}
		items = append(items, docparser.Item{Filename: name, CIS: cis})
	}
	return items, src, skipped, nil
}

// loadCISList reads a plain text file with one CIS code per line.
// Blank lines and lines starting with # are ignored; anything else
// must be a valid CIS code.
func loadCISList(path string) (map[string]bool, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open CIS list: %w", err)
	}
	defer f.Close()

	validator := validation.NewDataValidator()
	codes := make(map[string]bool)

	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		cis, err := validator.ValidateCIS(text)
		if err != nil {
			return nil, fmt.Errorf("invalid CIS on line %d of %s: %w", line, path, err)
		}
		codes[cis] = true
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read CIS list: %w", err)
	}
	return codes, nil
}
