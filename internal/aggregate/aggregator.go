package aggregate

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"StockSentry/internal/model"
	"StockSentry/internal/store"
)

// Aggregator collapses all of today's execution snapshots into one alert per
// (rule, ticker) pair, keeping the most extreme (minimum) observed price.
// Only the rules in model.DigestRules are surfaced.
type Aggregator struct {
	Snapshots store.SnapshotStore
	Location  *time.Location
}

// NewAggregator creates an Aggregator over the snapshot store.
func NewAggregator(snapshots store.SnapshotStore, loc *time.Location) *Aggregator {
	return &Aggregator{Snapshots: snapshots, Location: loc}
}

// TodayRange returns the UTC instant range covering today's calendar date in
// the configured zone: [local midnight, next local midnight).
func (a *Aggregator) TodayRange(now time.Time) (time.Time, time.Time) {
	local := now.In(a.Location)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, a.Location)
	return start.UTC(), start.AddDate(0, 0, 1).UTC()
}

// AggregateToday reads every snapshot created today and retains, per
// (rule, ticker), the match with the globally minimum price together with
// the compareWith recorded alongside that minimum. An empty result is valid.
func (a *Aggregator) AggregateToday(now time.Time) ([]model.AggregatedAlert, error) {
	from, to := a.TodayRange(now)
	snaps, err := a.Snapshots.QuerySnapshots(from, to)
	if err != nil {
		return nil, fmt.Errorf("query today's snapshots: %w", err)
	}
	log.Info().
		Int("snapshots", len(snaps)).
		Time("from", from).
		Time("to", to).
		Msg("aggregating today's snapshots")

	return Collapse(snaps), nil
}

// Collapse performs the min-price aggregation over the given snapshots.
func Collapse(snaps []*model.ExecutionSnapshot) []model.AggregatedAlert {
	best := make(map[model.RuleID]map[string]model.AggregatedAlert)
	for _, rule := range model.DigestRules {
		best[rule] = make(map[string]model.AggregatedAlert)
	}

	for _, snap := range snaps {
		for _, rule := range model.DigestRules {
			for _, m := range snap.Matches(rule) {
				cur, ok := best[rule][m.Ticker]
				if !ok || m.Price < cur.MinPrice {
					best[rule][m.Ticker] = model.AggregatedAlert{
						Field:       rule,
						Ticker:      m.Ticker,
						MinPrice:    m.Price,
						CompareWith: m.CompareWith,
					}
				}
			}
		}
	}

	var alerts []model.AggregatedAlert
	for _, byTicker := range best {
		for _, alert := range byTicker {
			alerts = append(alerts, alert)
		}
	}
	sort.Slice(alerts, func(i, j int) bool {
		if alerts[i].Field != alerts[j].Field {
			return alerts[i].Field < alerts[j].Field
		}
		return alerts[i].Ticker < alerts[j].Ticker
	})
	return alerts
}
