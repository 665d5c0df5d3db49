package weekly

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"StockSentry/internal/collector"
	"StockSentry/internal/ingest"
	"StockSentry/internal/model"
	"StockSentry/internal/notifier"
	"StockSentry/internal/store"
)

// Runner executes one weekly analysis: freshness gate, per-ticker week
// minima and current price, oldest-facet assignment, same-day dedup of
// already-reported pairs, then the weekly digest email. The raw execution
// is persisted when there is nothing new to report; a notified execution is
// persisted only after a confirmed send.
type Runner struct {
	Gate     *ingest.Gate
	Analyzer *Analyzer
	Fetcher  collector.Fetcher
	Store    store.WeeklyStore
	Notifier *notifier.Notifier
	Tickers  []string
	Location *time.Location
}

// NewRunner creates a Runner.
func NewRunner(gate *ingest.Gate, analyzer *Analyzer, fetcher collector.Fetcher,
	st store.WeeklyStore, n *notifier.Notifier, tickers []string, loc *time.Location) *Runner {
	return &Runner{
		Gate:     gate,
		Analyzer: analyzer,
		Fetcher:  fetcher,
		Store:    st,
		Notifier: n,
		Tickers:  tickers,
		Location: loc,
	}
}

func (r *Runner) todayRange(now time.Time) (time.Time, time.Time) {
	local := now.In(r.Location)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, r.Location)
	return start.UTC(), start.AddDate(0, 0, 1).UTC()
}

// Run performs one weekly analysis anchored at now.
func (r *Runner) Run(now time.Time) error {
	log.Info().Msg("running weekly analysis")

	if err := r.Gate.EnsureFresh(now); err != nil {
		return fmt.Errorf("freshness gate: %w", err)
	}

	weeks := make(map[model.WeekFlag][]model.WeekMatch, len(model.WeekFlags()))
	for _, flag := range model.WeekFlags() {
		weeks[flag] = []model.WeekMatch{}
	}

	for _, ticker := range r.Tickers {
		mins, err := r.Analyzer.MinCloseByWindow(ticker, now)
		if err != nil {
			log.Warn().Err(err).Str("ticker", ticker).Msg("week minima failed, ticker excluded from run")
			continue
		}
		price, err := r.Fetcher.FetchLatestPrice(ticker)
		if err != nil {
			log.Warn().Err(err).Str("ticker", ticker).Msg("no current price, ticker excluded from run")
			continue
		}
		flag, ok := r.Analyzer.Assign(price, mins)
		if !ok {
			continue
		}
		weeks[flag] = append(weeks[flag], model.WeekMatch{
			Ticker:       ticker,
			CurrentPrice: price,
			MinimumPrice: mins[flag],
		})
	}

	from, to := r.todayRange(now)
	reported, err := r.Store.ReportedWeekPairs(from, to)
	if err != nil {
		return fmt.Errorf("load reported pairs: %w", err)
	}

	rows := r.collectNewRows(weeks, reported)
	exec := &model.WeeklyExecution{
		ID:        uuid.NewString(),
		CreatedAt: now.UTC(),
		Weeks:     weeks,
	}

	if len(rows) == 0 {
		log.Info().Msg("no new weekly signals to report")
		if err := r.Store.SaveWeeklyExecution(exec); err != nil {
			return fmt.Errorf("save weekly execution: %w", err)
		}
		return nil
	}

	recipients, err := r.Notifier.SendWeekly(now, rows)
	if err != nil {
		return fmt.Errorf("send weekly digest: %w", err)
	}
	if len(recipients) == 0 {
		return nil
	}

	exec.Notified = true
	if err := r.Store.SaveWeeklyExecution(exec); err != nil {
		return fmt.Errorf("save weekly execution: %w", err)
	}
	if err := r.Notifier.LogWeeklySend(now, recipients, exec.ID, len(rows)); err != nil {
		return fmt.Errorf("log weekly send: %w", err)
	}

	log.Info().
		Str("execution", exec.ID).
		Int("rows", len(rows)).
		Msg("weekly analysis complete")
	return nil
}

// collectNewRows flattens the facet assignments into digest rows, dropping
// (ticker, facet) pairs already reported today. A ticker that moved to an
// older facet since the last run is a new pair and stays.
func (r *Runner) collectNewRows(weeks map[model.WeekFlag][]model.WeekMatch,
	reported map[model.WeekPair]struct{}) []model.WeeklyRow {

	var rows []model.WeeklyRow
	for _, flag := range r.Analyzer.OrderedFlags() {
		for _, m := range weeks[flag] {
			if _, seen := reported[model.WeekPair{Ticker: m.Ticker, Flag: flag}]; seen {
				log.Debug().
					Str("ticker", m.Ticker).
					Str("week", string(flag)).
					Msg("already reported today, skipping")
				continue
			}
			rows = append(rows, model.WeeklyRow{
				Ticker:       m.Ticker,
				Flag:         flag,
				CurrentPrice: m.CurrentPrice,
				CompareWith:  m.MinimumPrice,
			})
		}
	}
	return rows
}
