package pediatric

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/giygas/infomed-parser/logging"
)

// GroundTruthEntry holds the expected conditions for one drug, plus its
// ATC code when the table carries a fifth column.
type GroundTruthEntry struct {
	A   bool
	B   bool
	C   bool
	ATC string
}

// LoadGroundTruth reads a ground truth CSV keyed by CIS. The first four
// columns are positional: identifier, then the A, B and C labels with
// oui/non values ("oui" in any casing means true). A fifth column, when
// present, carries the ATC code.
func LoadGroundTruth(path string) (map[string]GroundTruthEntry, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open ground truth %s: %w", path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Warn("Failed to close ground truth file", "error", err)
		}
	}()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read ground truth header: %w", err)
	}
	if len(header) < 4 {
		return nil, fmt.Errorf("ground truth needs at least 4 columns, got %d", len(header))
	}
	hasATC := len(header) >= 5

	gt := make(map[string]GroundTruthEntry)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read ground truth row: %w", err)
		}
		if len(record) < 4 {
			continue
		}
		entry := GroundTruthEntry{
			A: isOui(record[1]),
			B: isOui(record[2]),
			C: isOui(record[3]),
		}
		if hasATC && len(record) >= 5 {
			entry.ATC = strings.TrimSpace(record[4])
		}
		gt[strings.TrimSpace(record[0])] = entry
	}
	return gt, nil
}

func isOui(value string) bool {
	return strings.ToLower(strings.TrimSpace(value)) == "oui"
}
