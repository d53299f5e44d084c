// Command infomed-parser turns the BDPM Notice and RCP HTML exports into
// structured documents, classifies each drug's pediatric usage, and serves
// the corpus over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "1.0.0"

func main() {
	// .env is optional; explicit environment variables win
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "infomed-parser",
		Short: "BDPM document parser and pediatric usage classifier",
		Long: `infomed-parser processes the BDPM Notice (N*.htm) and RCP (R*.htm)
HTML exports of French drug documents.

It provides:
  - Structured parsing of documents into typed content block trees
  - Deterministic pediatric usage classification from RCP sections 4.1-4.3
  - A sqlite registry for filename/CIS/ATC lookups and content storage
  - SQL dump to CSV conversion for the registry source exports
  - An HTTP API serving the parsed corpus with scheduled refreshes`,
		Version: version,
	}

	rootCmd.AddCommand(parseCmd())
	rootCmd.AddCommand(classifyCmd())
	rootCmd.AddCommand(sqlToCSVCmd())
	rootCmd.AddCommand(loadRegistryCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
