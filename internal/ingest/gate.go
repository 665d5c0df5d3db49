package ingest

import (
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"

	"StockSentry/internal/collector"
	"StockSentry/internal/store"
)

const dateLayout = "2006-01-02"

// Gate decides once per calendar day whether yesterday's intraday bars must
// be backfilled before analytics run.
type Gate struct {
	Fetcher  collector.Fetcher
	Bars     store.BarStore
	State    store.FetchStateStore
	Location *time.Location
	Interval time.Duration
	Tickers  []string
}

// NewGate creates a Gate over the given collaborators.
func NewGate(fetcher collector.Fetcher, bars store.BarStore, state store.FetchStateStore,
	loc *time.Location, interval time.Duration, tickers []string) *Gate {
	return &Gate{
		Fetcher:  fetcher,
		Bars:     bars,
		State:    state,
		Location: loc,
		Interval: interval,
		Tickers:  tickers,
	}
}

// EnsureFresh backfills yesterday's intraday bars when the daily fetch state
// is behind today's calendar date in the configured zone. Per-ticker
// failures are logged and skipped; the state date advances only after every
// ticker attempt has resolved, via compare-and-swap on the previous value.
func (g *Gate) EnsureFresh(now time.Time) error {
	today := now.In(g.Location).Format(dateLayout)

	last, err := g.State.LastUpdateDate()
	if err != nil {
		return fmt.Errorf("read fetch state: %w", err)
	}
	if last == today {
		log.Debug().Str("date", today).Msg("fetch state up to date, skipping backfill")
		return nil
	}

	yesterday := now.In(g.Location).AddDate(0, 0, -1)
	log.Info().
		Str("last_update", last).
		Str("today", today).
		Msg("fetch state behind, backfilling yesterday's bars")

	type result struct {
		ticker string
		bars   int
		err    error
	}

	results := make([]result, len(g.Tickers))
	var wg sync.WaitGroup
	for i, ticker := range g.Tickers {
		wg.Add(1)
		go func(i int, ticker string) {
			defer wg.Done()
			bars, err := g.Fetcher.FetchIntradayBars(ticker, g.Interval, yesterday)
			if err != nil {
				results[i] = result{ticker: ticker, err: err}
				return
			}
			n, err := g.Bars.UpsertBars(ticker, bars)
			results[i] = result{ticker: ticker, bars: n, err: err}
		}(i, ticker)
	}
	// Join barrier: the date must not advance before every attempt resolves.
	wg.Wait()

	total := 0
	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			log.Warn().Err(r.err).Str("ticker", r.ticker).Msg("backfill failed, ticker skipped")
			continue
		}
		total += r.bars
	}

	advanced, err := g.State.AdvanceFetchDate(last, today)
	if err != nil {
		return fmt.Errorf("advance fetch state: %w", err)
	}
	if !advanced {
		// A concurrent gate got there first; its backfill covered today.
		log.Warn().Str("date", today).Msg("fetch state advanced by another run")
		return nil
	}

	log.Info().
		Str("date", today).
		Str("bars", humanize.Comma(int64(total))).
		Int("tickers", len(g.Tickers)).
		Int("failed", failed).
		Msg("backfill complete")
	return nil
}
