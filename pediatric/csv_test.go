package pediatric

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"unicode/utf8"
)

func readCSV(t *testing.T, buf *bytes.Buffer) [][]string {
	t.Helper()
	records, err := csv.NewReader(buf).ReadAll()
	if err != nil {
		t.Fatalf("Failed to read written CSV: %v", err)
	}
	return records
}

func TestWritePredictions_WithoutGroundTruth(t *testing.T) {
	predictions := []*Classification{
		{
			CIS:        "61266250",
			ConditionA: true,
			CReasons:   []string{"keyword sans indication explicite en 4.1/4.2"},
			Matches4142: []SentenceMatch{
				{Text: "chez l'enfant", Keywords: []string{"enfant"}},
				{Text: "chez les enfants", Keywords: []string{"enfant", "enfants"}},
			},
			Matches43: []SentenceMatch{
				{Text: "ne doit pas être utilisé chez le nourrisson", Keywords: []string{"nourrisson"}},
			},
		},
	}

	var buf bytes.Buffer
	if err := WritePredictions(&buf, predictions, nil); err != nil {
		t.Fatalf("WritePredictions failed: %v", err)
	}

	records := readCSV(t, &buf)
	if len(records) != 2 {
		t.Fatalf("Expected header and one row, got %d records", len(records))
	}

	header := records[0]
	want := []string{"cis", "pred_A", "pred_B", "pred_C", "c_reasons", "keywords_41_42", "keywords_43", "evidence_41_42", "evidence_43"}
	if strings.Join(header, "|") != strings.Join(want, "|") {
		t.Errorf("Unexpected header: %v", header)
	}

	row := records[1]
	if row[0] != "61266250" || row[1] != "1" || row[2] != "0" || row[3] != "0" {
		t.Errorf("Unexpected prediction flags: %v", row[:4])
	}
	if row[5] != "enfant | enfants" {
		t.Errorf("Expected deduplicated keywords, got %q", row[5])
	}
	if row[7] != "chez l'enfant ||| chez les enfants" {
		t.Errorf("Unexpected evidence column: %q", row[7])
	}
	if row[8] != "ne doit pas être utilisé chez le nourrisson" {
		t.Errorf("Unexpected 4.3 evidence: %q", row[8])
	}
}

func TestWritePredictions_WithGroundTruth(t *testing.T) {
	predictions := []*Classification{
		{CIS: "61266250", ConditionA: true},
		{CIS: "99999999", ConditionB: true},
	}
	groundTruth := map[string]GroundTruthEntry{
		"61266250": {A: true, C: true},
	}

	var buf bytes.Buffer
	if err := WritePredictions(&buf, predictions, groundTruth); err != nil {
		t.Fatalf("WritePredictions failed: %v", err)
	}

	records := readCSV(t, &buf)
	header := records[0]
	if len(header) != 15 {
		t.Fatalf("Expected 15 columns with ground truth, got %d: %v", len(header), header)
	}
	for i, name := range []string{"truth_A", "truth_B", "truth_C", "match_A", "match_B", "match_C"} {
		if header[4+i] != name {
			t.Errorf("Expected column %s at position %d, got %s", name, 4+i, header[4+i])
		}
	}

	known := records[1]
	// pred A=1, truth A=1,C=1: A and B match, C does not.
	if known[4] != "1" || known[5] != "0" || known[6] != "1" {
		t.Errorf("Unexpected truth flags: %v", known[4:7])
	}
	if known[7] != "1" || known[8] != "1" || known[9] != "0" {
		t.Errorf("Unexpected match flags: %v", known[7:10])
	}

	unknown := records[2]
	for i := 4; i < 10; i++ {
		if unknown[i] != "" {
			t.Errorf("Expected empty truth column %d for unknown CIS, got %q", i, unknown[i])
		}
	}
}

func TestWritePredictions_EvidenceTruncated(t *testing.T) {
	long := strings.Repeat("é", 250)
	predictions := []*Classification{
		{CIS: "61266250", Matches4142: []SentenceMatch{{Text: long, Keywords: []string{"enfant"}}}},
	}

	var buf bytes.Buffer
	if err := WritePredictions(&buf, predictions, nil); err != nil {
		t.Fatalf("WritePredictions failed: %v", err)
	}

	records := readCSV(t, &buf)
	evidence := records[1][7]
	if got := utf8.RuneCountInString(evidence); got != 200 {
		t.Errorf("Expected evidence cut at 200 runes, got %d", got)
	}
	if !utf8.ValidString(evidence) {
		t.Error("Expected truncation to keep valid UTF-8")
	}
}

func TestWritePredictions_NoPredictions(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePredictions(&buf, nil, nil); err != nil {
		t.Fatalf("WritePredictions failed: %v", err)
	}
	records := readCSV(t, &buf)
	if len(records) != 1 {
		t.Errorf("Expected only the header, got %d records", len(records))
	}
}
