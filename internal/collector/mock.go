package collector

import (
	"fmt"
	"sync"
	"time"

	"StockSentry/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	mu sync.Mutex

	Bars        map[string][]model.PriceBar
	Prices      map[string]float64
	FailTickers map[string]bool

	IntradayCalls int
	PriceCalls    int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchIntradayBars(ticker string, _ time.Duration, _ time.Time) ([]model.PriceBar, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.IntradayCalls++
	if m.FailTickers[ticker] {
		return nil, fmt.Errorf("mock: fetch failed for %s", ticker)
	}
	if bars, ok := m.Bars[ticker]; ok {
		return bars, nil
	}
	return nil, fmt.Errorf("mock: no bars for %s", ticker)
}

func (m *MockFetcher) FetchLatestPrice(ticker string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PriceCalls++
	if m.FailTickers[ticker] {
		return 0, fmt.Errorf("mock: price failed for %s", ticker)
	}
	if p, ok := m.Prices[ticker]; ok {
		return p, nil
	}
	return 0, fmt.Errorf("mock: no price for %s", ticker)
}

// Calls reports how many intraday fetches have been made.
func (m *MockFetcher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.IntradayCalls
}
