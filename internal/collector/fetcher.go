package collector

import (
	"time"

	"StockSentry/internal/model"
)

// Fetcher defines the interface for fetching market data from the vendor.
type Fetcher interface {
	// FetchIntradayBars returns the intraday bars for the given calendar
	// day (interpreted in the fetcher's configured time zone) at the given
	// bar interval.
	FetchIntradayBars(ticker string, interval time.Duration, day time.Time) ([]model.PriceBar, error)
	// FetchLatestPrice returns the most recent traded price from the
	// current session. It fails when no intraday observation exists; it
	// never falls back to a historical close.
	FetchLatestPrice(ticker string) (float64, error)
	Name() string
}
