package frame

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical calendar-day format used in every table.
const DateLayout = "2006-01-02"

// Table is an ordered tabular payload as returned by a vendor: a header of
// column names plus rows of string cells. Cell values keep the vendor's own
// formatting so that written output is reproducible byte for byte; only the
// date column is normalized to DateLayout.
type Table struct {
	Columns []string
	Rows    [][]string
}

// New creates an empty table with the given columns.
func New(columns ...string) *Table {
	return &Table{Columns: columns}
}

// Append adds one row. The caller must pass exactly one cell per column.
func (t *Table) Append(row ...string) {
	t.Rows = append(t.Rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Col returns the index of the named column, or -1 if absent.
func (t *Table) Col(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Normalize collapses vendor column naming to the canonical schema: names are
// trimmed and lowercased in place. It must run after the vendor response has
// been materialized into positional rows and before any required-column check.
func (t *Table) Normalize() {
	for i, c := range t.Columns {
		t.Columns[i] = strings.ToLower(strings.TrimSpace(c))
	}
}

// Require verifies the named columns are all present (after Normalize).
func (t *Table) Require(names ...string) error {
	var missing []string
	for _, n := range names {
		if t.Col(n) < 0 {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing columns %v, got %v", missing, t.Columns)
	}
	return nil
}

// FilterFrom drops rows whose date is earlier than start. Vendors are not
// trusted to honor the start parameter exactly. Rows with an unparseable date
// cell are dropped as well.
func (t *Table) FilterFrom(start time.Time) {
	di := t.Col("date")
	if di < 0 {
		return
	}
	day := start.Format(DateLayout)
	kept := t.Rows[:0]
	for _, row := range t.Rows {
		if _, err := time.Parse(DateLayout, row[di]); err != nil {
			continue
		}
		if row[di] >= day {
			kept = append(kept, row)
		}
	}
	t.Rows = kept
}

// WithColumn appends a column whose value is the same for every row, e.g. the
// source or symbol tag.
func (t *Table) WithColumn(name, value string) {
	t.Columns = append(t.Columns, name)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], value)
	}
}

// Select returns a new table keeping only the named columns, in the given
// order. Names absent from the table are skipped rather than erroring, so
// callers can express a "keep the usual columns" intent against a vendor
// schema that varies.
func (t *Table) Select(names ...string) *Table {
	var idx []int
	out := &Table{}
	for _, n := range names {
		if i := t.Col(n); i >= 0 {
			idx = append(idx, i)
			out.Columns = append(out.Columns, n)
		}
	}
	for _, row := range t.Rows {
		sel := make([]string, len(idx))
		for k, i := range idx {
			sel[k] = row[i]
		}
		out.Rows = append(out.Rows, sel)
	}
	return out
}

// Point is one (date, close) observation projected out of a series.
type Point struct {
	Date  string
	Close string
}

// Project extracts the (date, close) projection used by the wide merge.
func (t *Table) Project() ([]Point, error) {
	di, ci := t.Col("date"), t.Col("close")
	if di < 0 || ci < 0 {
		return nil, fmt.Errorf("projection needs date and close, got %v", t.Columns)
	}
	pts := make([]Point, 0, len(t.Rows))
	for _, row := range t.Rows {
		pts = append(pts, Point{Date: row[di], Close: row[ci]})
	}
	return pts, nil
}

// SortByDate orders rows ascending by the date column. Dates use DateLayout,
// so lexicographic order is chronological order.
func (t *Table) SortByDate() {
	di := t.Col("date")
	if di < 0 {
		return
	}
	// Insertion sort: vendor rows are almost always already in order.
	for i := 1; i < len(t.Rows); i++ {
		for j := i; j > 0 && t.Rows[j][di] < t.Rows[j-1][di]; j-- {
			t.Rows[j], t.Rows[j-1] = t.Rows[j-1], t.Rows[j]
		}
	}
}
