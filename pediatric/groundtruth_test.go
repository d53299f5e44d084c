package pediatric

import (
	"os"
	"path/filepath"
	"testing"
)

func writeGroundTruth(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ground_truth.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadGroundTruth(t *testing.T) {
	path := writeGroundTruth(t, `cis,condition_a,condition_b,condition_c,atc
61266250,Oui,non,non,N02BE01
67829209,non,OUI,non,M01AE01
60002283,non,non, oui ,
`)

	gt, err := LoadGroundTruth(path)
	if err != nil {
		t.Fatalf("LoadGroundTruth failed: %v", err)
	}
	if len(gt) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(gt))
	}

	first := gt["61266250"]
	if !first.A || first.B || first.C {
		t.Errorf("Unexpected conditions for 61266250: %+v", first)
	}
	if first.ATC != "N02BE01" {
		t.Errorf("Expected ATC code, got %q", first.ATC)
	}

	if second := gt["67829209"]; !second.B {
		t.Errorf("Expected uppercase oui accepted, got %+v", second)
	}
	if third := gt["60002283"]; !third.C || third.ATC != "" {
		t.Errorf("Expected padded oui accepted and empty ATC, got %+v", third)
	}
}

func TestLoadGroundTruth_WithoutATCColumn(t *testing.T) {
	path := writeGroundTruth(t, `cis,condition_a,condition_b,condition_c
61266250,oui,non,non
`)

	gt, err := LoadGroundTruth(path)
	if err != nil {
		t.Fatalf("LoadGroundTruth failed: %v", err)
	}
	if entry := gt["61266250"]; !entry.A || entry.ATC != "" {
		t.Errorf("Expected entry without ATC, got %+v", entry)
	}
}

func TestLoadGroundTruth_ShortRowsSkipped(t *testing.T) {
	path := writeGroundTruth(t, `cis,condition_a,condition_b,condition_c
61266250,oui,non,non
67829209,oui
`)

	gt, err := LoadGroundTruth(path)
	if err != nil {
		t.Fatalf("LoadGroundTruth failed: %v", err)
	}
	if len(gt) != 1 {
		t.Errorf("Expected the short row skipped, got %d entries", len(gt))
	}
}

func TestLoadGroundTruth_TooFewColumns(t *testing.T) {
	path := writeGroundTruth(t, "cis,condition_a\n61266250,oui\n")
	if _, err := LoadGroundTruth(path); err == nil {
		t.Error("Expected error for a header with too few columns")
	}
}

func TestLoadGroundTruth_MissingFile(t *testing.T) {
	if _, err := LoadGroundTruth(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Error("Expected error for a missing file")
	}
}

func TestLoadGroundTruth_HeaderOnly(t *testing.T) {
	path := writeGroundTruth(t, "cis,condition_a,condition_b,condition_c\n")
	gt, err := LoadGroundTruth(path)
	if err != nil {
		t.Fatalf("LoadGroundTruth failed: %v", err)
	}
	if len(gt) != 0 {
		t.Errorf("Expected no entries, got %d", len(gt))
	}
}
