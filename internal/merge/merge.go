package merge

import (
	"sort"

	"marketfetcher/internal/frame"
)

// Wide accumulates per-instrument (date, close) projections into one wide
// table: one row per date observed in any contributing series, one column per
// instrument. This is the outer-join fold of the per-instrument series, built
// as a map from date to per-label close so no repeated full-table joins are
// needed.
type Wide struct {
	labels []string
	byDate map[string]map[string]string
}

// New creates an empty accumulator.
func New() *Wide {
	return &Wide{byDate: make(map[string]map[string]string)}
}

// Add contributes one instrument's projection under the given column label.
// Column order in the output equals Add order, so callers must Add in the
// fixed instrument-list order to keep the output deterministic even when
// fetches ran concurrently.
func (w *Wide) Add(label string, points []frame.Point) {
	w.labels = append(w.labels, label)
	for _, p := range points {
		row, ok := w.byDate[p.Date]
		if !ok {
			row = make(map[string]string, 4)
			w.byDate[p.Date] = row
		}
		row[label] = p.Close
	}
}

// Len returns the number of contributed instruments.
func (w *Wide) Len() int {
	return len(w.labels)
}

// Table materializes the accumulator: a date column plus one column per
// instrument, rows sorted ascending by date (sorted once, here, not per
// contribution). Dates an instrument never observed hold an empty cell.
func (w *Wide) Table() *frame.Table {
	dates := make([]string, 0, len(w.byDate))
	for d := range w.byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	out := frame.New(append([]string{"date"}, w.labels...)...)
	for _, d := range dates {
		row := make([]string, 1+len(w.labels))
		row[0] = d
		for i, label := range w.labels {
			row[i+1] = w.byDate[d][label]
		}
		out.Append(row...)
	}
	return out
}
