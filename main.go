package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketfetcher/internal/config"
	"marketfetcher/internal/coordinator"
	"marketfetcher/internal/eastmoney"
	"marketfetcher/internal/holdings"
	"marketfetcher/internal/slogx"
	"marketfetcher/internal/yahoo"
)

const (
	// Bounded retry for the holdings price fetch: transient vendor failures
	// are absorbed here instead of by a fallback source.
	holdingsRetryCount = 2
	holdingsRetryWait  = 1 * time.Second

	// Whole-run cap; individual requests carry their own timeout too.
	runTimeout = 30 * time.Minute
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	slogx.Setup(cfg.LogLevel)

	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("received interrupt signal, shutting down")
		cancel()
	}()

	runCtx, runCancel := context.WithTimeout(ctx, runTimeout)
	defer runCancel()

	now := time.Now().UTC()

	// Index pipeline: yahoo first, eastmoney as fallback, per index.
	indexCoord := coordinator.New(
		cfg.OutDir,
		yahoo.NewClient(cfg.YahooBaseURL, 0, 0),
		eastmoney.NewClient(cfg.EastmoneyBaseURL, 0, 0),
		nil,
	)
	slog.Info("fetching indices",
		"count", len(coordinator.DefaultIndices),
		"start", cfg.IndexStart(now).Format("2006-01-02"))
	if err := indexCoord.RunIndices(runCtx, coordinator.DefaultIndices, cfg.IndexStart(now)); err != nil {
		log.Fatalf("Index pipeline failed: %v", err)
	}

	// Holdings pipeline: yahoo with bounded retry, eastmoney flow enrichment.
	syms, err := holdings.Load(cfg.HoldingsCSV)
	if err != nil {
		log.Fatalf("Failed to load holdings: %v", err)
	}
	slog.Info("fetching holdings",
		"count", len(syms),
		"path", cfg.HoldingsCSV,
		"start", cfg.HoldingsStart(now).Format("2006-01-02"))

	holdingsCoord := coordinator.New(
		cfg.OutDir,
		yahoo.NewClient(cfg.YahooBaseURL, holdingsRetryCount, holdingsRetryWait),
		nil,
		eastmoney.NewClient(cfg.EastmoneyBaseURL, 0, 0),
	)
	if err := holdingsCoord.RunHoldings(runCtx, syms, cfg.HoldingsStart(now)); err != nil {
		log.Fatalf("Holdings pipeline failed: %v", err)
	}

	slog.Info("done", "out_dir", cfg.OutDir)
}
