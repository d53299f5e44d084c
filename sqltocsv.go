package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/giygas/infomed-parser/sqlconvert"
)

func sqlToCSVCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sql-to-csv [dump-file]",
		Short: "Convert a SQL dump's INSERT rows to CSV",
		Long: `Convert the INSERT statements of a SQL dump (T-SQL or MySQL,
ISO-8859-1 or UTF-8) into a UTF-8 CSV file with the column list as
header. Non-INSERT statements are skipped.

Example:
  infomed-parser sql-to-csv classes_atc.sql
  infomed-parser sql-to-csv classes_atc.sql --out atc.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("out")

			result, err := sqlconvert.Convert(args[0], output)
			if err != nil {
				return err
			}
			if result.Table == "" {
				fmt.Println("No INSERT statements found, nothing written")
				return nil
			}
			fmt.Printf("Converted table %s: %d rows, %d columns\n", result.Table, result.Rows, result.Columns)
			return nil
		},
	}

	cmd.Flags().StringP("out", "o", "", "Output CSV path (default swaps the extension for .csv)")

	return cmd
}
