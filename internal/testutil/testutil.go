package testutil

import (
	"context"
	"sync"
	"time"

	"marketfetcher/internal/fetch"
	"marketfetcher/internal/frame"
)

// MockSource is a mock implementation of the fetch.Source interface for testing
type MockSource struct {
	NameValue string
	DailyFunc func(ctx context.Context, symbol string, start time.Time) (*frame.Table, error)

	// Calls records the symbols Daily was invoked with. The coordinator fans
	// out one goroutine per instrument, hence the mutex.
	mu    sync.Mutex
	Calls []string
}

// Name implements the fetch.Source interface
func (m *MockSource) Name() string {
	if m.NameValue != "" {
		return m.NameValue
	}
	return "mock"
}

// Daily implements the fetch.Source interface
func (m *MockSource) Daily(ctx context.Context, symbol string, start time.Time) (*frame.Table, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, symbol)
	m.mu.Unlock()
	if m.DailyFunc != nil {
		return m.DailyFunc(ctx, symbol, start)
	}
	return nil, fetch.NewEmptyError(m.Name(), symbol)
}

// NewDailySource creates a mock source that always returns the given table,
// tagged with the source column the way real adapters do.
func NewDailySource(name string, table *frame.Table) *MockSource {
	return &MockSource{
		NameValue: name,
		DailyFunc: func(ctx context.Context, symbol string, start time.Time) (*frame.Table, error) {
			t := CloneTable(table)
			t.WithColumn("source", name)
			return t, nil
		},
	}
}

// NewFailingSource creates a mock source that always reports vendor-unavailable.
func NewFailingSource(name string) *MockSource {
	return &MockSource{
		NameValue: name,
		DailyFunc: func(ctx context.Context, symbol string, start time.Time) (*frame.Table, error) {
			return nil, fetch.NewEmptyError(name, symbol)
		},
	}
}

// DailyTable builds a minimal daily series with the canonical columns from
// parallel date/close slices.
func DailyTable(dates, closes []string) *frame.Table {
	t := frame.New("date", "open", "high", "low", "close", "volume")
	for i := range dates {
		c := closes[i]
		t.Append(dates[i], c, c, c, c, "1000")
	}
	return t
}

// CloneTable deep-copies a table so mutating helpers on the copy do not leak
// between test cases.
func CloneTable(t *frame.Table) *frame.Table {
	out := frame.New(append([]string(nil), t.Columns...)...)
	for _, row := range t.Rows {
		out.Append(append([]string(nil), row...)...)
	}
	return out
}

// MockFlow is a mock implementation of the coordinator.FlowSource interface
type MockFlow struct {
	FlowFunc func(ctx context.Context, symbol string) (*frame.Table, error)

	mu    sync.Mutex
	Calls []string
}

// Flow implements the coordinator.FlowSource interface
func (m *MockFlow) Flow(ctx context.Context, symbol string) (*frame.Table, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, symbol)
	m.mu.Unlock()
	if m.FlowFunc != nil {
		return m.FlowFunc(ctx, symbol)
	}
	return nil, fetch.NewEmptyError("mockflow", symbol)
}
