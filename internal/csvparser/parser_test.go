package csvparser

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseReader(t *testing.T) {
	input := "\xEF\xBB\xBFEthics Name,Name,Category\n" +
		"Acme Corp,ACME CORPORATION,Manufacturing\n" +
		"\n" +
		",,\n" +
		"\"Smith, Jones & Co\",,\n" +
		"Short Row\n"

	table, err := ParseReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseReader() error = %v", err)
	}

	if got := strings.Join(table.Headers, "|"); got != "Ethics Name|Name|Category" {
		t.Errorf("Headers = %q", got)
	}
	if len(table.Records) != 3 {
		t.Fatalf("len(Records) = %d, want 3", len(table.Records))
	}

	first := table.Records[0]
	if first.Line != 2 || first.Field(1) != "ACME CORPORATION" {
		t.Errorf("first record = %+v", first)
	}
	if got := table.Records[1].Field(0); got != "Smith, Jones & Co" {
		t.Errorf("quoted field = %q", got)
	}
	if table.Records[1].Line != 5 {
		t.Errorf("Line = %d, want 5", table.Records[1].Line)
	}
	if got := table.Records[2].Field(2); got != "" {
		t.Errorf("missing field = %q, want empty", got)
	}
}

func TestParseReader_Empty(t *testing.T) {
	if _, err := ParseReader(strings.NewReader("")); !errors.Is(err, ErrEmpty) {
		t.Errorf("error = %v, want ErrEmpty", err)
	}
}

func TestParse_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orgs.csv")
	if err := os.WriteFile(path, []byte("h1,h2\nx,y\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if table.SourceFile != path || len(table.Records) != 1 {
		t.Errorf("table = %+v", table)
	}

	if _, err := Parse(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
