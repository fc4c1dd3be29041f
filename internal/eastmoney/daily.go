package eastmoney

import (
	"context"
	"fmt"
	"strings"
	"time"

	"resty.dev/v3"

	"marketfetcher/internal/fetch"
	"marketfetcher/internal/frame"
	"marketfetcher/internal/ratelimit"
)

const sourceName = "eastmoney"

// klineColumns is the field layout of one comma-packed kline entry
// (fields2=f51..f61 on the push2his endpoint).
var klineColumns = []string{
	"Date", "Open", "Close", "High", "Low", "Volume",
	"Amount", "Amplitude", "PctChange", "Change", "Turnover",
}

// KlineResponse represents the Eastmoney push2his daily kline response
type KlineResponse struct {
	Data *struct {
		Code   string   `json:"code"`
		Name   string   `json:"name"`
		Klines []string `json:"klines"`
	} `json:"data"`
}

// Client fetches daily kline history from the Eastmoney push2his API. It is
// the fallback price vendor for the index pipeline.
type Client struct {
	client *resty.Client
}

// NewClient creates an Eastmoney client. retryCount 0 disables retries.
func NewClient(baseURL string, retryCount int, retryWait time.Duration) *Client {
	return &Client{
		client: fetch.NewHTTPClient(baseURL, retryCount, retryWait),
	}
}

// Name identifies this vendor in logs and the "source" column.
func (c *Client) Name() string {
	return sourceName
}

// Daily retrieves daily bars for an exchange-prefixed symbol such as
// "sh000001" or "sz399001", keeping the usual date/open/high/low/close/volume
// columns and tagging the series with source=eastmoney.
func (c *Client) Daily(ctx context.Context, symbol string, start time.Time) (*frame.Table, error) {
	secid, err := secIDFromSymbol(symbol)
	if err != nil {
		return nil, fetch.NewTransportError(sourceName, symbol, err)
	}

	if err := ratelimit.GetLimiter().Wait(ctx, ratelimit.APIEastmoney); err != nil {
		return nil, fetch.NewTransportError(sourceName, symbol, err)
	}

	var result KlineResponse

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"secid":   secid,
			"fields1": "f1,f2,f3,f4,f5,f6",
			"fields2": "f51,f52,f53,f54,f55,f56,f57,f58,f59,f60,f61",
			"klt":     "101", // daily
			"fqt":     "0",   // unadjusted
			"beg":     start.Format("20060102"),
			"end":     "20500101",
		}).
		SetResult(&result).
		Get("/api/qt/stock/kline/get")

	if err != nil {
		return nil, fetch.NewTransportError(sourceName, symbol, err)
	}

	if !resp.IsSuccess() {
		return nil, fetch.NewTransportError(sourceName, symbol,
			fmt.Errorf("eastmoney API returned status %d", resp.StatusCode()))
	}

	if result.Data == nil || len(result.Data.Klines) == 0 {
		return nil, fetch.NewEmptyError(sourceName, symbol)
	}

	table := parseKlines(klineColumns, result.Data.Klines)
	table.Normalize()
	if err := table.Require("date", "close"); err != nil {
		return nil, fetch.NewMissingColumnsError(sourceName, symbol, err)
	}
	table = table.Select("date", "open", "high", "low", "close", "volume")
	table.FilterFrom(start)
	if table.Len() == 0 {
		return nil, fetch.NewEmptyError(sourceName, symbol)
	}
	table.WithColumn("source", sourceName)
	return table, nil
}

// parseKlines splits comma-packed kline strings into rows. Entries with a
// cell count that does not match the layout are dropped.
func parseKlines(columns []string, klines []string) *frame.Table {
	table := frame.New(append([]string(nil), columns...)...)
	for _, k := range klines {
		cells := strings.Split(k, ",")
		if len(cells) != len(columns) {
			continue
		}
		table.Append(cells...)
	}
	return table
}

// secIDFromSymbol converts an exchange-prefixed symbol ("sh000001",
// "sz399006") to the secid query form ("1.000001", "0.399006").
func secIDFromSymbol(symbol string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(symbol))
	switch {
	case strings.HasPrefix(s, "sh"):
		return "1." + s[2:], nil
	case strings.HasPrefix(s, "sz"):
		return "0." + s[2:], nil
	default:
		return "", fmt.Errorf("symbol %q has no sh/sz exchange prefix", symbol)
	}
}
