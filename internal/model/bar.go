package model

import "time"

// PriceBar represents a single fixed-interval OHLCV observation.
// (Ticker, Timestamp) is unique in the store.
type PriceBar struct {
	Ticker    string
	Timestamp time.Time // UTC
	Open      float64
	High      float64
	Low       float64
	Close     float64
	AdjClose  float64
	Volume    int64
	StoredAt  time.Time // UTC first-write time, preserved on upsert
}

// WindowStats holds the aggregates of one trailing lookback window.
type WindowStats struct {
	AvgClose float64
	MinLow   float64
}

// RollingStats holds per-ticker trailing-window aggregates. A nil window
// means the lookback range contained no bars and no rule over that window
// can apply.
type RollingStats struct {
	Ticker   string
	Window30 *WindowStats
	Window90 *WindowStats
}
