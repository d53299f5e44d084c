package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/giygas/infomed-parser/docparser/entities"
	"github.com/giygas/infomed-parser/pediatric"
	"github.com/giygas/infomed-parser/store"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify pediatric usage from parsed RCP documents",
		Long: `Classify every document of a parsed RCP JSONL file into the three
pediatric conditions (A: indication, B: contre-indication, C: sur avis)
and write one explainable prediction row per document.

ATC codes sharpen the classification of drug classes with known
pediatric rules. They are taken from the ground truth file's fifth
column when present, falling back to the registry.

With --ground-truth the predictions are scored and the metrics report
is printed.

Example:
  infomed-parser classify --input rcp.jsonl --out predictions.csv
  infomed-parser classify --input rcp.jsonl --ground-truth truth.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, _ := cmd.Flags().GetString("input")
			output, _ := cmd.Flags().GetString("out")
			groundTruthPath, _ := cmd.Flags().GetString("ground-truth")
			registryPath, _ := cmd.Flags().GetString("registry")

			if input == "" {
				return fmt.Errorf("--input flag is required")
			}

			groundTruth := map[string]pediatric.GroundTruthEntry{}
			if groundTruthPath != "" {
				var err error
				groundTruth, err = pediatric.LoadGroundTruth(groundTruthPath)
				if err != nil {
					return err
				}
				fmt.Printf("Loaded ground truth: %d entries\n", len(groundTruth))
			}

			atcByCIS, err := loadATCCodes(registryPath)
			if err != nil {
				return err
			}

			f, err := os.Open(filepath.Clean(input))
			if err != nil {
				return fmt.Errorf("failed to open input: %w", err)
			}
			defer f.Close()

			var predictions []*pediatric.Classification
			decoder := json.NewDecoder(f)
			for {
				var doc entities.ParsedDocument
				if err := decoder.Decode(&doc); err != nil {
					if errors.Is(err, io.EOF) {
						break
					}
					return fmt.Errorf("failed to decode document %d: %w", len(predictions)+1, err)
				}
				atc := groundTruth[doc.Source.CIS].ATC
				if atc == "" {
					atc = atcByCIS[doc.Source.CIS]
				}
				predictions = append(predictions, pediatric.Classify(&doc, atc))
			}

			// JSONL order depends on parse completion order, so sort for
			// a reproducible CSV
			sort.Slice(predictions, func(i, j int) bool { return predictions[i].CIS < predictions[j].CIS })

			out, err := os.Create(filepath.Clean(output))
			if err != nil {
				return fmt.Errorf("failed to create predictions file: %w", err)
			}
			defer out.Close()

			if err := pediatric.WritePredictions(out, predictions, groundTruth); err != nil {
				return err
			}
			fmt.Printf("Classified %d documents, predictions written to %s\n", len(predictions), output)

			if len(groundTruth) > 0 {
				metrics := pediatric.ComputeMetrics(predictions, groundTruth)
				fmt.Println()
				fmt.Println(pediatric.FormatMetrics(metrics))
			}
			return nil
		},
	}

	cmd.Flags().StringP("input", "i", "", "Parsed RCP JSONL file")
	cmd.Flags().StringP("out", "o", "predictions.csv", "Predictions CSV path")
	cmd.Flags().StringP("ground-truth", "g", "", "Ground truth CSV for scoring (columns: cis, A, B, C[, atc])")
	cmd.Flags().String("registry", "./data/registry.db", "SQLite registry for ATC lookups")

	return cmd
}

// loadATCCodes returns the registry's CIS to ATC mapping, or an empty
// map when the registry file does not exist. Classification works
// without ATC codes, just with weaker class-specific rules.
func loadATCCodes(registryPath string) (map[string]string, error) {
	if registryPath == "" {
		return map[string]string{}, nil
	}
	if _, err := os.Stat(registryPath); os.IsNotExist(err) {
		fmt.Printf("Registry %s not found, classifying without ATC codes\n", registryPath)
		return map[string]string{}, nil
	}

	reg, err := store.Open(registryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry: %w", err)
	}
	defer reg.Close()

	atcByCIS, err := reg.ATCByCIS(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to load ATC codes: %w", err)
	}
	return atcByCIS, nil
}
