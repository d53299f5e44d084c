package sqlconvert

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const atcDump = `INSERT INTO [dbo].[ClasseATC] ([codeTerme], [codeTermePere], [libAbr], [libCourt], [libLong], [libLongAnglais], [libRech], [numOrdreEdit], [dateCreationTerme], [dateModifTerme], [dateInactivTerme], [textSourceRef], [remTerme]) VALUES (0, NULL, N'R03DX09', N'MEPOLIZUMAB', N'mépolizumab', N'mepolizumab', N'MEPOLIZUMAB', 1, '20160101', NULL, NULL, NULL, NULL);
INSERT INTO [dbo].[ClasseATC] ([codeTerme], [codeTermePere], [libAbr], [libCourt], [libLong], [libLongAnglais], [libRech], [numOrdreEdit], [dateCreationTerme], [dateModifTerme], [dateInactivTerme], [textSourceRef], [remTerme]) VALUES (1, 0, N'A01AA04', N'FLUORURE D''ETAIN', N'Fluorure d''étain', N'stannous fluoride', N'FLUORURE ETAIN', 2, '19960101', NULL, NULL, NULL, NULL), (2, NULL, N'A', N'VOIES DIGESTIVES', N'VOIES DIGESTIVES ET METABOLISME', N'ALIMENTARY TRACT', N'VOIES DIGESTIVES', 3, '19960101', NULL, NULL, NULL, NULL);
`

func writeDump(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dump.sql")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing dump: %v", err)
	}
	return path
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening CSV: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading CSV: %v", err)
	}
	return records
}

func TestConvert(t *testing.T) {
	input := writeDump(t, atcDump)
	output := filepath.Join(t.TempDir(), "out.csv")

	result, err := Convert(input, output)
	if err != nil {
		t.Fatalf("converting dump: %v", err)
	}
	if result.Table != "ClasseATC" {
		t.Errorf("expected table ClasseATC, got %q", result.Table)
	}
	if result.Rows != 3 {
		t.Errorf("expected 3 rows, got %d", result.Rows)
	}
	if result.Columns != 13 {
		t.Errorf("expected 13 columns, got %d", result.Columns)
	}
	if _, err := os.Stat(output); err != nil {
		t.Errorf("expected output file: %v", err)
	}
}

func TestConvertWritesHeaders(t *testing.T) {
	input := writeDump(t, atcDump)
	output := filepath.Join(t.TempDir(), "out.csv")
	if _, err := Convert(input, output); err != nil {
		t.Fatalf("converting dump: %v", err)
	}

	records := readCSV(t, output)
	want := []string{
		"codeTerme", "codeTermePere", "libAbr", "libCourt", "libLong",
		"libLongAnglais", "libRech", "numOrdreEdit", "dateCreationTerme",
		"dateModifTerme", "dateInactivTerme", "textSourceRef", "remTerme",
	}
	if len(records) == 0 {
		t.Fatal("expected header row")
	}
	header := records[0]
	if len(header) != len(want) {
		t.Fatalf("expected %d headers, got %d", len(want), len(header))
	}
	for i, col := range want {
		if header[i] != col {
			t.Errorf("header[%d] = %q, want %q", i, header[i], col)
		}
	}
}

func TestConvertRowValues(t *testing.T) {
	input := writeDump(t, atcDump)
	output := filepath.Join(t.TempDir(), "out.csv")
	if _, err := Convert(input, output); err != nil {
		t.Fatalf("converting dump: %v", err)
	}

	records := readCSV(t, output)
	if len(records) != 4 {
		t.Fatalf("expected header + 3 rows, got %d records", len(records))
	}

	first := records[1]
	if first[0] != "0" {
		t.Errorf("codeTerme = %q, want 0", first[0])
	}
	if first[1] != "" {
		t.Errorf("NULL codeTermePere = %q, want empty", first[1])
	}
	if first[2] != "R03DX09" {
		t.Errorf("libAbr = %q, want R03DX09", first[2])
	}
	if first[5] != "mepolizumab" {
		t.Errorf("libLongAnglais = %q, want mepolizumab", first[5])
	}

	// Escaped quotes collapse to a single quote.
	etain := records[2]
	if !strings.Contains(etain[4], "d'étain") {
		t.Errorf("expected unescaped quote in %q", etain[4])
	}
}

func TestConvertDefaultOutputPath(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "test.sql")
	if err := os.WriteFile(input, []byte(atcDump), 0644); err != nil {
		t.Fatalf("writing dump: %v", err)
	}

	if _, err := Convert(input, ""); err != nil {
		t.Fatalf("converting dump: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "test.csv")); err != nil {
		t.Errorf("expected test.csv next to input: %v", err)
	}
}

func TestConvertNoInsertStatements(t *testing.T) {
	input := writeDump(t, "-- Just a comment\nSELECT 1;")
	output := filepath.Join(t.TempDir(), "out.csv")

	result, err := Convert(input, output)
	if err != nil {
		t.Fatalf("converting dump: %v", err)
	}
	if result.Table != "" || result.Rows != 0 || result.Columns != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Errorf("expected no output file, stat err = %v", err)
	}
}

func TestConvertSkipsNonInsertStatements(t *testing.T) {
	input := writeDump(t,
		"SELECT 1;\nINSERT INTO test (id, name) VALUES (1, 'foo'), (2, 'bar');\nCREATE TABLE other (x INT);\n")
	output := filepath.Join(t.TempDir(), "out.csv")

	result, err := Convert(input, output)
	if err != nil {
		t.Fatalf("converting dump: %v", err)
	}
	if result.Table != "test" {
		t.Errorf("expected table test, got %q", result.Table)
	}
	if result.Rows != 2 {
		t.Errorf("expected 2 rows, got %d", result.Rows)
	}
}

func TestConvertDecodesLatin1(t *testing.T) {
	// "déjà" with é and à as single ISO-8859-1 bytes.
	dump := []byte("INSERT INTO test (mot) VALUES (N'd\xe9j\xe0');")
	input := filepath.Join(t.TempDir(), "latin1.sql")
	if err := os.WriteFile(input, dump, 0644); err != nil {
		t.Fatalf("writing dump: %v", err)
	}
	output := filepath.Join(t.TempDir(), "out.csv")

	if _, err := Convert(input, output); err != nil {
		t.Fatalf("converting dump: %v", err)
	}
	content, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !strings.Contains(string(content), "déjà") {
		t.Errorf("expected UTF-8 déjà in output, got %q", content)
	}
}

func TestParseInsertValues(t *testing.T) {
	stmt := "INSERT INTO t (a, b, c, d) VALUES (42, NULL, N'héllo', 'it''s')"
	insert, isInsert, err := parseInsert(stmt)
	if err != nil {
		t.Fatalf("parsing insert: %v", err)
	}
	if !isInsert {
		t.Fatal("expected statement recognized as INSERT")
	}
	if insert.Table != "t" {
		t.Errorf("table = %q, want t", insert.Table)
	}
	if len(insert.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(insert.Rows))
	}
	row := insert.Rows[0]
	want := []string{"42", "", "héllo", "it's"}
	for i, v := range want {
		if row[i] != v {
			t.Errorf("row[%d] = %q, want %q", i, row[i], v)
		}
	}
}

func TestParseInsertRejectsOtherStatements(t *testing.T) {
	for _, stmt := range []string{"SELECT 1", "CREATE TABLE t (x INT)", "UPDATE t SET x = 1"} {
		if _, isInsert, _ := parseInsert(stmt); isInsert {
			t.Errorf("statement %q recognized as INSERT", stmt)
		}
	}
}

func TestSplitStatementsRespectsQuotedSemicolons(t *testing.T) {
	stmts := splitStatements("INSERT INTO t (a) VALUES ('a;b');INSERT INTO t (a) VALUES ('c')")
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d: %v", len(stmts), stmts)
	}
	if !strings.Contains(stmts[0], "a;b") {
		t.Errorf("first statement lost quoted semicolon: %q", stmts[0])
	}
}
