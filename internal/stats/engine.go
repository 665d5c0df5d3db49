package stats

import (
	"fmt"
	"math"
	"time"

	"StockSentry/internal/model"
	"StockSentry/internal/store"
)

// Engine computes trailing-window aggregates from stored price bars.
type Engine struct {
	Bars      store.BarStore
	ShortDays int
	LongDays  int
}

// NewEngine creates an Engine over the given bar store and lookbacks.
func NewEngine(bars store.BarStore, shortDays, longDays int) *Engine {
	return &Engine{Bars: bars, ShortDays: shortDays, LongDays: longDays}
}

// Compute returns rolling stats for a ticker anchored at now. The long
// window is queried once and the short window is derived from the same
// bars, so both windows see identical data. An empty window yields a nil
// WindowStats, not an error.
func (e *Engine) Compute(ticker string, now time.Time) (*model.RollingStats, error) {
	longFrom := now.AddDate(0, 0, -e.LongDays)
	bars, err := e.Bars.QueryBars(ticker, longFrom, now)
	if err != nil {
		return nil, fmt.Errorf("query %d-day bars for %s: %w", e.LongDays, ticker, err)
	}

	shortFrom := now.AddDate(0, 0, -e.ShortDays)
	shortStart := len(bars)
	for i, b := range bars {
		if !b.Timestamp.Before(shortFrom) {
			shortStart = i
			break
		}
	}

	return &model.RollingStats{
		Ticker:   ticker,
		Window30: windowStats(bars[shortStart:]),
		Window90: windowStats(bars),
	}, nil
}

func windowStats(bars []model.PriceBar) *model.WindowStats {
	if len(bars) == 0 {
		return nil
	}
	sum := 0.0
	minLow := math.Inf(1)
	for _, b := range bars {
		sum += b.Close
		if b.Low < minLow {
			minLow = b.Low
		}
	}
	return &model.WindowStats{
		AvgClose: sum / float64(len(bars)),
		MinLow:   minLow,
	}
}
