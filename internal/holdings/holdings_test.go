package holdings

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "holdings.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			"simple",
			"symbol\n600519.SS\n000858.SZ\n",
			[]string{"600519.SS", "000858.SZ"},
		},
		{
			"mixed case header and extra columns",
			"Name,Symbol,Shares\nMoutai,600519.SS,100\nWuliangye,000858.SZ,200\n",
			[]string{"600519.SS", "000858.SZ"},
		},
		{
			"duplicates and blanks dropped",
			"symbol\n600519.SS\n\n600519.SS\n 000858.SZ \n",
			[]string{"600519.SS", "000858.SZ"},
		},
		{
			"utf-8 BOM on header",
			"\uFEFFsymbol\n600519.SS\n",
			[]string{"600519.SS"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.content)

			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load() returned unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Load() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_MissingSymbolColumn(t *testing.T) {
	path := writeFile(t, "ticker,shares\n600519.SS,100\n")

	_, err := Load(path)
	if err == nil {
		t.Error("Load() expected error for missing symbol column, got nil")
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	path := writeFile(t, "")

	_, err := Load(path)
	if err == nil {
		t.Error("Load() expected error for empty file, got nil")
	}
}

func TestLoad_HeaderOnly(t *testing.T) {
	path := writeFile(t, "symbol\n")

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Load() = %v, want empty", got)
	}
}
