package yahoo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"resty.dev/v3"

	"marketfetcher/internal/fetch"
	"marketfetcher/internal/frame"
	"marketfetcher/internal/ratelimit"
)

const sourceName = "yahoo"

// ChartResponse represents the Yahoo Finance v8 chart API response
type ChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol   string `json:"symbol"`
				Timezone string `json:"timezone"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Client fetches daily OHLCV history from the Yahoo Finance chart API.
type Client struct {
	client *resty.Client
}

// NewClient creates a Yahoo chart client. retryCount 0 disables retries.
func NewClient(baseURL string, retryCount int, retryWait time.Duration) *Client {
	return &Client{
		client: fetch.NewHTTPClient(baseURL, retryCount, retryWait),
	}
}

// Name identifies this vendor in logs and the "source" column.
func (c *Client) Name() string {
	return sourceName
}

// Daily retrieves daily bars for symbol from start through today. The result
// is normalized (lowercase columns), checked for date/close, filtered to
// dates >= start and tagged with source=yahoo.
func (c *Client) Daily(ctx context.Context, symbol string, start time.Time) (*frame.Table, error) {
	if err := ratelimit.GetLimiter().Wait(ctx, ratelimit.APIYahoo); err != nil {
		return nil, fetch.NewTransportError(sourceName, symbol, err)
	}

	var result ChartResponse

	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("symbol", symbol).
		SetQueryParams(map[string]string{
			"period1":  strconv.FormatInt(start.Unix(), 10),
			"period2":  strconv.FormatInt(time.Now().UTC().Unix(), 10),
			"interval": "1d",
			"events":   "history",
		}).
		SetResult(&result).
		Get("/v8/finance/chart/{symbol}")

	if err != nil {
		return nil, fetch.NewTransportError(sourceName, symbol, err)
	}

	if !resp.IsSuccess() {
		return nil, fetch.NewTransportError(sourceName, symbol,
			fmt.Errorf("yahoo chart API returned status %d", resp.StatusCode()))
	}

	if result.Chart.Error != nil {
		return nil, fetch.NewTransportError(sourceName, symbol,
			fmt.Errorf("yahoo chart API error: %s: %s", result.Chart.Error.Code, result.Chart.Error.Description))
	}

	table, err := toTable(result, symbol)
	if err != nil {
		return nil, err
	}

	// Normalize after the response is positional rows, then check schema.
	table.Normalize()
	if err := table.Require("date", "close"); err != nil {
		return nil, fetch.NewMissingColumnsError(sourceName, symbol, err)
	}
	table.FilterFrom(start)
	if table.Len() == 0 {
		return nil, fetch.NewEmptyError(sourceName, symbol)
	}
	table.WithColumn("source", sourceName)
	return table, nil
}

// toTable flattens the chart arrays into rows. Yahoo pads thin sessions with
// nulls; rows without a close are dropped, duplicate timestamps keep the
// first occurrence so dates stay unique within the series.
func toTable(result ChartResponse, symbol string) (*frame.Table, error) {
	if len(result.Chart.Result) == 0 || len(result.Chart.Result[0].Timestamp) == 0 {
		return nil, fetch.NewEmptyError(sourceName, symbol)
	}
	r := result.Chart.Result[0]
	if len(r.Indicators.Quote) == 0 {
		return nil, fetch.NewEmptyError(sourceName, symbol)
	}
	q := r.Indicators.Quote[0]

	var adj []*float64
	if len(r.Indicators.AdjClose) > 0 {
		adj = r.Indicators.AdjClose[0].AdjClose
	}

	table := frame.New("Date", "Open", "High", "Low", "Close", "Adj Close", "Volume")
	seen := make(map[string]bool, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		if i >= len(q.Close) || q.Close[i] == nil {
			continue
		}
		date := time.Unix(ts, 0).UTC().Format(frame.DateLayout)
		if seen[date] {
			continue
		}
		seen[date] = true
		table.Append(
			date,
			floatCell(at(q.Open, i)),
			floatCell(at(q.High, i)),
			floatCell(at(q.Low, i)),
			floatCell(q.Close[i]),
			floatCell(at(adj, i)),
			intCell(at(q.Volume, i)),
		)
	}
	return table, nil
}

func at[T any](s []*T, i int) *T {
	if i < len(s) {
		return s[i]
	}
	return nil
}

func floatCell(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func intCell(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
