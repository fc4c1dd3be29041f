package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"marketfetcher/internal/coordinator"
	"marketfetcher/internal/eastmoney"
	"marketfetcher/internal/holdings"
	"marketfetcher/internal/yahoo"
)

// Timestamps are UTC midnights for 2024-01-02..2024-01-04.
func chartJSON(closes ...float64) string {
	ts := []int64{1704153600, 1704240000, 1704326400}[:len(closes)]
	var tsStr, cStr []string
	for i, c := range closes {
		tsStr = append(tsStr, fmt.Sprintf("%d", ts[i]))
		cStr = append(cStr, fmt.Sprintf("%.2f", c))
	}
	vals := strings.Join(cStr, ",")
	return fmt.Sprintf(`{
		"chart": {
			"result": [{
				"timestamp": [%s],
				"indicators": {
					"quote": [{
						"open": [%s], "high": [%s], "low": [%s],
						"close": [%s],
						"volume": [%s]
					}]
				}
			}],
			"error": null
		}
	}`, strings.Join(tsStr, ","), vals, vals, vals, vals,
		strings.Repeat("1000,", len(closes)-1)+"1000")
}

// TestIntegration_BothPipelines drives the index and holdings pipelines
// against fake vendor servers and verifies every output file.
func TestIntegration_BothPipelines(t *testing.T) {
	// Fake Yahoo: serves two indices and one holding; one index and one
	// holding are unknown to it.
	yahooServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/000001.SS"):
			w.Write([]byte(chartJSON(2967.25, 2962.28, 2954.35)))
		case strings.HasSuffix(r.URL.Path, "/399001.SZ"):
			w.Write([]byte(chartJSON(9267.68, 9254.33)))
		case strings.HasSuffix(r.URL.Path, "/600519.SS"):
			w.Write([]byte(chartJSON(1685.01, 1694.00)))
		default:
			w.Write([]byte(`{"chart": {"result": [], "error": null}}`))
		}
	}))
	defer yahooServer.Close()

	// Fake Eastmoney: serves the kline fallback for the index Yahoo does not
	// know, and flow data for the holding.
	eastmoneyServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/qt/stock/kline/get":
			if r.URL.Query().Get("secid") != "1.000300" {
				w.Write([]byte(`{"data": null}`))
				return
			}
			w.Write([]byte(`{
				"data": {
					"code": "000300",
					"klines": [
						"2024-01-03,3472.99,3465.43,3480.08,3461.94,159000000,210000000000.0,0.52,-0.22,-7.56,0.41",
						"2024-01-05,3454.06,3463.08,3470.10,3449.58,148000000,196000000000.0,0.59,0.28,9.65,0.38"
					]
				}
			}`))
		case "/api/qt/stock/fflow/daykline/get":
			w.Write([]byte(`{
				"data": {
					"code": "600519",
					"klines": [
						"2024-01-02,-153041110.0,-3384399.0,28276014.0,54845870.0,-207886980.0,-4.21,-0.09,0.78,1.51,-5.72,1685.01,-1.32"
					]
				}
			}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer eastmoneyServer.Close()

	dir := t.TempDir()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Index pipeline: 沪深300 falls back to eastmoney, 创业板指 fails both.
	indices := []coordinator.Index{
		{Label: "上证指数", YahooSymbol: "000001.SS", EastmoneySymbol: "sh000001"},
		{Label: "沪深300", YahooSymbol: "000300.SS", EastmoneySymbol: "sh000300"},
		{Label: "深证成指", YahooSymbol: "399001.SZ", EastmoneySymbol: "sz399001"},
		{Label: "创业板指", YahooSymbol: "399006.SZ", EastmoneySymbol: "sz399006"},
	}
	indexCoord := coordinator.New(dir,
		yahoo.NewClient(yahooServer.URL, 0, 0),
		eastmoney.NewClient(eastmoneyServer.URL, 0, 0),
		nil)
	if err := indexCoord.RunIndices(ctx, indices, start); err != nil {
		t.Fatalf("RunIndices() returned unexpected error: %v", err)
	}

	assertExists(t, filepath.Join(dir, "indices", "上证指数.csv"))
	assertExists(t, filepath.Join(dir, "indices", "深证成指.csv"))
	assertNotExists(t, filepath.Join(dir, "indices", "创业板指.csv"))

	hs300 := readFile(t, filepath.Join(dir, "indices", "沪深300.csv"))
	if !strings.Contains(hs300, ",eastmoney,沪深300,sh000300") {
		t.Errorf("沪深300 must be tagged with the fallback source:\n%s", hs300)
	}

	merged := readFile(t, filepath.Join(dir, "indices_merged.csv"))
	mergedLines := strings.Split(strings.TrimRight(merged, "\n"), "\n")
	if mergedLines[0] != "date,上证指数,沪深300,深证成指" {
		t.Errorf("merged header = %q", mergedLines[0])
	}
	// Union of 2024-01-02..05 minus the 4th absent everywhere but Yahoo.
	if len(mergedLines) != 5 {
		t.Errorf("merged rows = %d, want 5 (header + union of 4 dates)", len(mergedLines)-1)
	}
	if mergedLines[4] != "2024-01-05,,3463.08," {
		t.Errorf("merged last row = %q, want only 沪深300 populated", mergedLines[4])
	}

	// Holdings pipeline.
	holdingsCSV := filepath.Join(dir, "holdings_in.csv")
	if err := os.WriteFile(holdingsCSV, []byte("symbol\n600519.SS\nMISSING.SS\n"), 0o644); err != nil {
		t.Fatalf("failed to write holdings file: %v", err)
	}
	syms, err := holdings.Load(holdingsCSV)
	if err != nil {
		t.Fatalf("holdings.Load() returned unexpected error: %v", err)
	}

	holdingsCoord := coordinator.New(dir,
		yahoo.NewClient(yahooServer.URL, 1, 10*time.Millisecond),
		nil,
		eastmoney.NewClient(eastmoneyServer.URL, 0, 0))
	if err := holdingsCoord.RunHoldings(ctx, syms, start); err != nil {
		t.Fatalf("RunHoldings() returned unexpected error: %v", err)
	}

	moutai := readFile(t, filepath.Join(dir, "holdings", "600519.SS.csv"))
	if !strings.Contains(moutai, "2024-01-02") || !strings.Contains(moutai, ",600519.SS") {
		t.Errorf("holding file missing data or symbol column:\n%s", moutai)
	}
	assertNotExists(t, filepath.Join(dir, "holdings", "MISSING.SS.csv"))

	flow := readFile(t, filepath.Join(dir, "flows", "600519.SS_flow.csv"))
	if !strings.Contains(flow, "-153041110.0,") {
		t.Errorf("flow file missing vendor data:\n%s", flow)
	}

	master := readFile(t, filepath.Join(dir, "ALL_TICKERS_MASTER.csv"))
	masterLines := strings.Split(strings.TrimRight(master, "\n"), "\n")
	if masterLines[0] != "date,600519.SS" {
		t.Errorf("master header = %q, failed holding must be excluded", masterLines[0])
	}
	if len(masterLines) != 3 {
		t.Errorf("master rows = %d, want 3 (header + 2 dates)", len(masterLines))
	}
}

func assertExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file %s: %v", path, err)
	}
}

func assertNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("file %s should not exist", path)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return strings.TrimPrefix(string(data), "\uFEFF")
}
