package fetch

import (
	"context"
	"time"

	"marketfetcher/internal/frame"
)

// Source is the capability interface every vendor adapter implements. Daily
// returns the normalized daily series for one vendor-specific symbol, already
// lowercased, schema-checked and filtered to dates >= start, and tagged with
// a "source" column. Any failure — empty response, missing required columns,
// transport error — comes back as a *SourceError.
type Source interface {
	// Name identifies the vendor in logs and in the "source" column.
	Name() string

	// Daily retrieves the daily OHLCV series for symbol starting at start.
	Daily(ctx context.Context, symbol string, start time.Time) (*frame.Table, error)
}

// Binding pairs a source with the vendor-specific identifier for one
// instrument. The same logical instrument carries a different symbol per
// vendor (e.g. "000001.SS" on Yahoo, "sh000001" on Eastmoney).
type Binding struct {
	Source Source
	Symbol string
}
