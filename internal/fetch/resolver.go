package fetch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"marketfetcher/internal/frame"
)

// ErrAllSourcesFailed is returned by Resolve when every binding in the chain
// failed. The per-source failures are logged as they happen.
var ErrAllSourcesFailed = errors.New("all sources failed")

// Resolved is a successfully fetched series together with the binding that
// produced it. At most one vendor's data is ever used per instrument per
// run; mixing vendors within one series would create silent inconsistency.
type Resolved struct {
	Table  *frame.Table
	Source string
	Symbol string
}

// Resolve tries each binding in order and returns the first success. A
// binding fails on empty response, missing required columns, or transport
// error alike; the next binding in the chain is tried regardless of which.
// When every binding fails, the returned error wraps ErrAllSourcesFailed.
func Resolve(ctx context.Context, label string, chain []Binding, start time.Time) (*Resolved, error) {
	for _, b := range chain {
		table, err := b.Source.Daily(ctx, b.Symbol, start)
		if err != nil {
			slog.Debug("source failed",
				"instrument", label,
				"source", b.Source.Name(),
				"symbol", b.Symbol,
				"error", err)
			continue
		}
		return &Resolved{Table: table, Source: b.Source.Name(), Symbol: b.Symbol}, nil
	}
	return nil, ErrAllSourcesFailed
}
