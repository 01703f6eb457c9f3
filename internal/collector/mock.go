package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"PortfolioLens/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Symbols without configured bars get a generated series around Price.
type MockFetcher struct {
	Price  float64
	Bars   map[string][]model.OHLCV
	Quotes map[string]model.Quote
	Errs   map[string]error // per-symbol failure for both history and quote

	mu    sync.Mutex
	calls map[string]int
}

func (m *MockFetcher) Name() string { return "mock" }

// Calls returns how many requests were made for symbol.
func (m *MockFetcher) Calls(symbol string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[symbol]
}

func (m *MockFetcher) record(symbol string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[symbol]++
	return m.Errs[symbol]
}

func (m *MockFetcher) FetchHistory(ctx context.Context, symbol string, from, to time.Time) ([]model.OHLCV, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := m.record(symbol); err != nil {
		return nil, err
	}
	bars, ok := m.Bars[symbol]
	if !ok {
		bars = generateMockBars(m.Price, to, int(to.Sub(from).Hours()/24)+1)
	}
	lo, hi := model.Day(from), model.Day(to)
	out := make([]model.OHLCV, 0, len(bars))
	for _, b := range bars {
		d := model.Day(b.Time)
		if d.Before(lo) || d.After(hi) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (m *MockFetcher) FetchQuote(ctx context.Context, symbol string) (model.Quote, error) {
	if err := ctx.Err(); err != nil {
		return model.Quote{}, err
	}
	if err := m.record(symbol); err != nil {
		return model.Quote{}, err
	}
	if q, ok := m.Quotes[symbol]; ok {
		return q, nil
	}
	if m.Price == 0 {
		return model.Quote{}, fmt.Errorf("mock: no quote for %s", symbol)
	}
	return model.Quote{Symbol: symbol, Price: m.Price, PreviousClose: m.Price, FetchedAt: time.Now().UTC()}, nil
}

// generateMockBars lays count daily bars out ending on end.
func generateMockBars(basePrice float64, end time.Time, count int) []model.OHLCV {
	if basePrice == 0 || count <= 0 {
		return nil
	}
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   model.Day(end).AddDate(0, 0, -(count - 1 - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
