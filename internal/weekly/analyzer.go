package weekly

import (
	"fmt"
	"sort"
	"time"

	"StockSentry/internal/model"
	"StockSentry/internal/store"
)

// Analyzer computes the minimum close per ticker over the trailing week
// windows. Every window opens at 09:00 local on a Monday: the current
// week's Monday for sinceThisWeek, and N weeks before it for the
// sincePastNWeeks facets.
type Analyzer struct {
	Bars     store.BarStore
	Location *time.Location
	Spans    []int
}

// NewAnalyzer creates an Analyzer over the standard week spans.
func NewAnalyzer(bars store.BarStore, loc *time.Location) *Analyzer {
	return &Analyzer{Bars: bars, Location: loc, Spans: model.WeekSpans}
}

// mondayOpen returns 09:00 local on the Monday of now's week.
func (a *Analyzer) mondayOpen(now time.Time) time.Time {
	local := now.In(a.Location)
	// time.Weekday counts Sunday as 0; shift so Monday is day zero.
	back := (int(local.Weekday()) + 6) % 7
	monday := local.AddDate(0, 0, -back)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 9, 0, 0, 0, a.Location)
}

// WindowStarts maps each facet to the UTC instant its window opens.
func (a *Analyzer) WindowStarts(now time.Time) map[model.WeekFlag]time.Time {
	monday := a.mondayOpen(now)
	starts := map[model.WeekFlag]time.Time{
		model.WeekFlagThisWeek: monday.UTC(),
	}
	for _, w := range a.Spans {
		starts[model.WeekFlagForSpan(w)] = monday.AddDate(0, 0, -7*w).UTC()
	}
	return starts
}

// OrderedFlags returns every facet oldest window first, so assignment finds
// the longest lookback a ticker qualifies for.
func (a *Analyzer) OrderedFlags() []model.WeekFlag {
	spans := append([]int(nil), a.Spans...)
	sort.Sort(sort.Reverse(sort.IntSlice(spans)))
	flags := make([]model.WeekFlag, 0, len(spans)+1)
	for _, w := range spans {
		flags = append(flags, model.WeekFlagForSpan(w))
	}
	return append(flags, model.WeekFlagThisWeek)
}

// MinCloseByWindow queries the oldest window once and derives each facet's
// minimum close from the same bars. Facets with no bars are absent from the
// result.
func (a *Analyzer) MinCloseByWindow(ticker string, now time.Time) (map[model.WeekFlag]float64, error) {
	starts := a.WindowStarts(now)
	oldest := starts[model.WeekFlagForSpan(a.Spans[len(a.Spans)-1])]
	for _, s := range starts {
		if s.Before(oldest) {
			oldest = s
		}
	}

	bars, err := a.Bars.QueryBars(ticker, oldest, now)
	if err != nil {
		return nil, fmt.Errorf("query week bars for %s: %w", ticker, err)
	}

	mins := make(map[model.WeekFlag]float64)
	for flag, start := range starts {
		found := false
		min := 0.0
		for _, b := range bars {
			if b.Timestamp.Before(start) {
				continue
			}
			if !found || b.Close < min {
				min = b.Close
				found = true
			}
		}
		if found {
			mins[flag] = min
		}
	}
	return mins, nil
}

// Assign returns the oldest facet whose minimum close the price undercuts.
// A ticker lands in at most one facet per run.
func (a *Analyzer) Assign(price float64, mins map[model.WeekFlag]float64) (model.WeekFlag, bool) {
	for _, flag := range a.OrderedFlags() {
		min, ok := mins[flag]
		if !ok {
			continue
		}
		if price < min {
			return flag, true
		}
	}
	return "", false
}
