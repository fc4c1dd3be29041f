package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"marketfetcher/internal/csvio"
	"marketfetcher/internal/fetch"
	"marketfetcher/internal/frame"
	"marketfetcher/internal/merge"
)

// Index is one entry of the fixed index list: a display label plus the
// vendor-specific symbol per source.
type Index struct {
	Label           string
	YahooSymbol     string
	EastmoneySymbol string
}

// DefaultIndices is the fixed set of tracked market indices.
var DefaultIndices = []Index{
	{"上证指数", "000001.SS", "sh000001"},
	{"沪深300", "000300.SS", "sh000300"},
	{"深证成指", "399001.SZ", "sz399001"},
	{"创业板指", "399006.SZ", "sz399006"},
}

// FlowSource fetches optional per-holding capital-flow history. Its failures
// never affect the price pipeline.
type FlowSource interface {
	Flow(ctx context.Context, symbol string) (*frame.Table, error)
}

// Coordinator drives the index and holdings pipelines: fetch each instrument,
// persist the individual series, accumulate every success into the wide merge
// and write the merged table. Instruments are fetched concurrently, but
// persistence and merge accumulation run afterwards in fixed list order so
// the outputs are deterministic.
type Coordinator struct {
	outDir   string
	primary  fetch.Source
	fallback fetch.Source
	flows    FlowSource
}

// New creates a Coordinator. fallback is only consulted by the index
// pipeline; flows may be nil to disable holdings enrichment.
func New(outDir string, primary, fallback fetch.Source, flows FlowSource) *Coordinator {
	return &Coordinator{
		outDir:   outDir,
		primary:  primary,
		fallback: fallback,
		flows:    flows,
	}
}

// RunIndices fetches every index through the primary-then-fallback chain,
// writes one CSV per index and the wide close merge. A failed index is
// logged and skipped; the run only errors when not a single index succeeded,
// because then there is nothing to merge.
func (c *Coordinator) RunIndices(ctx context.Context, indices []Index, start time.Time) error {
	results := make([]*fetch.Resolved, len(indices))

	var wg sync.WaitGroup
	for i, idx := range indices {
		wg.Add(1)
		go func(i int, idx Index) {
			defer wg.Done()
			chain := []fetch.Binding{
				{Source: c.primary, Symbol: idx.YahooSymbol},
				{Source: c.fallback, Symbol: idx.EastmoneySymbol},
			}
			res, err := fetch.Resolve(ctx, idx.Label, chain, start)
			if err != nil {
				return
			}
			results[i] = res
		}(i, idx)
	}
	wg.Wait()

	wide := merge.New()
	for i, idx := range indices {
		res := results[i]
		if res == nil {
			slog.Warn("index skipped, no data from any source",
				"index", idx.Label,
				"yahoo", idx.YahooSymbol,
				"eastmoney", idx.EastmoneySymbol)
			continue
		}

		table := res.Table
		table.WithColumn("label", idx.Label)
		table.WithColumn("ticker", res.Symbol)
		table.SortByDate()

		path := filepath.Join(c.outDir, "indices", idx.Label+".csv")
		if err := csvio.WriteTable(path, table); err != nil {
			return err
		}

		points, err := table.Project()
		if err != nil {
			return fmt.Errorf("index %s: %w", idx.Label, err)
		}
		wide.Add(idx.Label, points)

		slog.Info("index saved",
			"index", idx.Label,
			"path", path,
			"rows", table.Len(),
			"source", res.Source)
	}

	if wide.Len() == 0 {
		return fmt.Errorf("no index saved, all sources failed for all %d indices", len(indices))
	}

	mergedPath := filepath.Join(c.outDir, "indices_merged.csv")
	mergedTable := wide.Table()
	if err := csvio.WriteTable(mergedPath, mergedTable); err != nil {
		return err
	}
	slog.Info("index merge saved",
		"path", mergedPath,
		"rows", mergedTable.Len(),
		"indices", wide.Len())
	return nil
}

// holdingResult carries one symbol's fetch outcome plus its optional flow
// table from the worker goroutine.
type holdingResult struct {
	table *frame.Table
	flow  *frame.Table
}

// RunHoldings fetches daily OHLCV for every holding from the primary vendor
// only (the client's bounded retry stands in for a fallback source), writes
// one CSV per symbol, best-effort flow tables, and the wide close merge.
// Unlike the index pipeline, zero successes is not an error: the merged file
// is simply not written.
func (c *Coordinator) RunHoldings(ctx context.Context, symbols []string, start time.Time) error {
	results := make([]holdingResult, len(symbols))

	var wg sync.WaitGroup
	for i, sym := range symbols {
		wg.Add(1)
		go func(i int, sym string) {
			defer wg.Done()
			table, err := c.primary.Daily(ctx, sym, start)
			if err != nil {
				slog.Debug("holding fetch failed", "symbol", sym, "error", err)
			} else {
				results[i].table = table
			}

			// Flow is optional enrichment; never retried, never fatal.
			if c.flows == nil {
				return
			}
			flow, err := c.flows.Flow(ctx, sym)
			if err != nil {
				slog.Debug("flow fetch skipped", "symbol", sym, "error", err)
				return
			}
			results[i].flow = flow
		}(i, sym)
	}
	wg.Wait()

	wide := merge.New()
	var flowsSaved int
	for i, sym := range symbols {
		res := results[i]
		if res.table == nil {
			slog.Warn("holding skipped, no data", "symbol", sym)
		} else {
			table := res.table
			table.WithColumn("symbol", sym)
			table.SortByDate()

			path := filepath.Join(c.outDir, "holdings", sym+".csv")
			if err := csvio.WriteTable(path, table); err != nil {
				return err
			}

			points, err := table.Project()
			if err != nil {
				return fmt.Errorf("holding %s: %w", sym, err)
			}
			wide.Add(sym, points)

			slog.Info("holding saved",
				"symbol", sym,
				"path", path,
				"rows", table.Len(),
				"source", c.primary.Name())
		}

		if res.flow != nil {
			path := filepath.Join(c.outDir, "flows", sym+"_flow.csv")
			if err := csvio.WriteTable(path, res.flow); err != nil {
				return err
			}
			flowsSaved++
		}
	}

	if wide.Len() == 0 {
		slog.Warn("no holding fetched, master table not written", "symbols", len(symbols))
		return nil
	}

	masterPath := filepath.Join(c.outDir, "ALL_TICKERS_MASTER.csv")
	masterTable := wide.Table()
	if err := csvio.WriteTable(masterPath, masterTable); err != nil {
		return err
	}
	slog.Info("holdings master saved",
		"path", masterPath,
		"rows", masterTable.Len(),
		"holdings", wide.Len(),
		"flows", flowsSaved)
	return nil
}
