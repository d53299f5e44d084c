// Package sqlconvert turns the INSERT statements of a SQL dump into a
// UTF-8 CSV file. BDPM reference exports (ATC classes and the like)
// ship as T-SQL dumps in ISO-8859-1; this package extracts their rows
// without needing a database.
package sqlconvert

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/giygas/infomed-parser/logging"
)

// Result summarises one conversion: the table the rows came from, the
// number of rows written, and the column count. Table is empty when
// the dump held no INSERT statement.
type Result struct {
	Table   string `json:"table"`
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
}

// Convert reads the SQL dump at inputPath and writes its INSERT rows
// to outputPath as UTF-8 CSV with the column list as header. An empty
// outputPath derives the target by swapping the extension for .csv.
// Non-INSERT statements are logged and skipped; a dump with no INSERT
// yields an empty Result and no output file.
func Convert(inputPath, outputPath string) (*Result, error) {
	data, err := os.ReadFile(filepath.Clean(inputPath))
	if err != nil {
		return nil, fmt.Errorf("failed to read SQL dump: %w", err)
	}
	src, err := decodeDump(data)
	if err != nil {
		return nil, err
	}

	if outputPath == "" {
		outputPath = strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".csv"
	}

	result := &Result{}
	var out *os.File
	var writer *csv.Writer
	defer func() {
		if out != nil {
			out.Close()
		}
	}()

	for _, stmt := range splitStatements(src) {
		insert, isInsert, err := parseInsert(stmt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse INSERT statement: %w", err)
		}
		if !isInsert {
			logging.Warn("Skipping non-INSERT statement", "statement", summarize(stmt))
			continue
		}

		// The first INSERT fixes the table, the header, and the
		// column count for the whole file.
		if writer == nil {
			out, err = os.Create(filepath.Clean(outputPath))
			if err != nil {
				return nil, fmt.Errorf("failed to create CSV file: %w", err)
			}
			writer = csv.NewWriter(out)
			if err := writer.Write(insert.Columns); err != nil {
				return nil, fmt.Errorf("failed to write CSV header: %w", err)
			}
			result.Table = insert.Table
			result.Columns = len(insert.Columns)
		}

		for _, row := range insert.Rows {
			if err := writer.Write(row); err != nil {
				return nil, fmt.Errorf("failed to write CSV row: %w", err)
			}
			result.Rows++
		}
	}

	if writer != nil {
		writer.Flush()
		if err := writer.Error(); err != nil {
			return nil, fmt.Errorf("failed to flush CSV: %w", err)
		}
	}
	return result, nil
}

// decodeDump decodes the dump bytes, falling back to ISO-8859-1 when
// they are not valid UTF-8.
func decodeDump(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode SQL dump: %w", err)
	}
	return string(decoded), nil
}

// summarize shortens a statement for log output.
func summarize(stmt string) string {
	stmt = strings.Join(strings.Fields(stmt), " ")
	if runes := []rune(stmt); len(runes) > 60 {
		return string(runes[:60]) + "..."
	}
	return stmt
}
