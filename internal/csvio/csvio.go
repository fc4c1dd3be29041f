package csvio

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"marketfetcher/internal/frame"
)

// utf8BOM makes the files open cleanly in spreadsheet software that sniffs
// encodings (the original consumers of these tables).
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteTable writes a table as a UTF-8 CSV with a byte-order mark, creating
// parent directories as needed and fully overwriting any previous file.
func WriteTable(path string, t *frame.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output dir for %s: %w", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	for _, row := range t.Rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
