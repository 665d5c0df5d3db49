package model

import (
	"fmt"
	"time"
)

// WeekFlag names one trailing week-window facet of the weekly analysis.
type WeekFlag string

// WeekFlagThisWeek covers the current week, from this Monday.
const WeekFlagThisWeek WeekFlag = "sinceThisWeek"

// WeekSpans lists the additional lookbacks in whole weeks before this Monday.
var WeekSpans = []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14}

// WeekFlagForSpan returns the facet name for an N-week lookback.
func WeekFlagForSpan(n int) WeekFlag {
	return WeekFlag(fmt.Sprintf("sincePast%dWeeks", n))
}

// WeekFlags returns every facet name, current week first.
func WeekFlags() []WeekFlag {
	flags := []WeekFlag{WeekFlagThisWeek}
	for _, w := range WeekSpans {
		flags = append(flags, WeekFlagForSpan(w))
	}
	return flags
}

// WeekMatch records one ticker trading below a week window's minimum close.
type WeekMatch struct {
	Ticker       string  `json:"ticker"`
	CurrentPrice float64 `json:"currentPrice"`
	MinimumPrice float64 `json:"minimumPrice"`
}

// WeeklyExecution is the result of one weekly analysis run: per facet, the
// tickers assigned to it. Notified marks executions whose rows went out by
// email; only those count for same-day dedup.
type WeeklyExecution struct {
	ID        string                   `json:"-"`
	CreatedAt time.Time                `json:"createDatetime"`
	Notified  bool                     `json:"isNotified"`
	Weeks     map[WeekFlag][]WeekMatch `json:"weeks"`
}

// WeekPair identifies one (ticker, facet) assignment for dedup.
type WeekPair struct {
	Ticker string
	Flag   WeekFlag
}

// WeeklyRow is one line of the weekly digest email.
type WeeklyRow struct {
	Ticker       string
	Flag         WeekFlag
	CurrentPrice float64
	CompareWith  float64
}
