package holdings

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// Load reads the holdings list and returns the symbols in file order,
// deduplicated, blanks dropped. The file must exist and its header must
// contain a "symbol" column (any casing); both conditions are fatal for the
// holdings pipeline, so errors here are returned as-is rather than converted
// to a skip.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("holdings file not found: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse holdings file %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("holdings file %s is empty", path)
	}

	symCol := -1
	for i, name := range records[0] {
		if strings.ToLower(strings.TrimSpace(stripBOM(name))) == "symbol" {
			symCol = i
			break
		}
	}
	if symCol < 0 {
		return nil, fmt.Errorf("holdings file %s must contain a 'symbol' column, got %v", path, records[0])
	}

	var syms []string
	seen := make(map[string]bool)
	for _, rec := range records[1:] {
		if symCol >= len(rec) {
			continue
		}
		s := strings.TrimSpace(rec[symCol])
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		syms = append(syms, s)
	}
	return syms, nil
}

// stripBOM removes a UTF-8 byte-order mark; our own outputs carry one and
// users tend to re-save holdings files from spreadsheets that add it.
func stripBOM(s string) string {
	return strings.TrimPrefix(s, "\uFEFF")
}
