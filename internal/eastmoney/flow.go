package eastmoney

import (
	"context"
	"fmt"
	"strings"

	"marketfetcher/internal/fetch"
	"marketfetcher/internal/frame"
	"marketfetcher/internal/ratelimit"
)

// flowColumns is the field layout of one fund-flow kline entry
// (fields2=f51..f63 on the fflow daykline endpoint).
var flowColumns = []string{
	"date",
	"main_net_inflow", "small_net_inflow", "mid_net_inflow",
	"big_net_inflow", "super_net_inflow",
	"main_net_ratio", "small_net_ratio", "mid_net_ratio",
	"big_net_ratio", "super_net_ratio",
	"close", "pct_change",
}

// FlowResponse represents the Eastmoney daily capital-flow response
type FlowResponse struct {
	Data *struct {
		Code   string   `json:"code"`
		Klines []string `json:"klines"`
	} `json:"data"`
}

// Flow retrieves the daily capital-flow history for one holding. The symbol
// uses the Yahoo suffix form ("600519.SS", "000858.SZ"). The table keeps the
// vendor's own schema unmodified except for a trailing symbol column; it is
// best-effort enrichment, so callers treat any error as ignorable.
func (c *Client) Flow(ctx context.Context, symbol string) (*frame.Table, error) {
	secid, err := secIDFromSuffix(symbol)
	if err != nil {
		return nil, fetch.NewTransportError(sourceName, symbol, err)
	}

	if err := ratelimit.GetLimiter().Wait(ctx, ratelimit.APIEastmoney); err != nil {
		return nil, fetch.NewTransportError(sourceName, symbol, err)
	}

	var result FlowResponse

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"secid":   secid,
			"lmt":     "0",
			"klt":     "101",
			"fields1": "f1,f2,f3,f7",
			"fields2": "f51,f52,f53,f54,f55,f56,f57,f58,f59,f60,f61,f62,f63",
		}).
		SetResult(&result).
		Get("/api/qt/stock/fflow/daykline/get")

	if err != nil {
		return nil, fetch.NewTransportError(sourceName, symbol, err)
	}

	if !resp.IsSuccess() {
		return nil, fetch.NewTransportError(sourceName, symbol,
			fmt.Errorf("eastmoney flow API returned status %d", resp.StatusCode()))
	}

	if result.Data == nil || len(result.Data.Klines) == 0 {
		return nil, fetch.NewEmptyError(sourceName, symbol)
	}

	table := parseKlines(flowColumns, result.Data.Klines)
	if table.Len() == 0 {
		return nil, fetch.NewEmptyError(sourceName, symbol)
	}
	table.WithColumn("symbol", symbol)
	return table, nil
}

// secIDFromSuffix converts a Yahoo suffix symbol ("600519.SS", "000858.SZ")
// to the secid query form. Symbols without a Shanghai/Shenzhen suffix have
// no flow data on this vendor.
func secIDFromSuffix(symbol string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	switch {
	case strings.HasSuffix(s, ".SS"):
		return "1." + strings.TrimSuffix(s, ".SS"), nil
	case strings.HasSuffix(s, ".SZ"):
		return "0." + strings.TrimSuffix(s, ".SZ"), nil
	default:
		return "", fmt.Errorf("symbol %q is not a Shanghai/Shenzhen listing", symbol)
	}
}
