package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"StockSentry/internal/aggregate"
	"StockSentry/internal/collector"
	"StockSentry/internal/ingest"
	"StockSentry/internal/notifier"
	"StockSentry/internal/rules"
	"StockSentry/internal/stats"
	"StockSentry/internal/store"
	"StockSentry/internal/weekly"
)

// Scheduler manages the cron tasks: the analytics run, the daily digest,
// and the weekly analysis. The core owns no timers beyond these
// registrations; each task is a function of the invocation instant and the
// wired collaborators.
type Scheduler struct {
	Cron       *cron.Cron
	Gate       *ingest.Gate
	Stats      *stats.Engine
	Fetcher    collector.Fetcher
	Snapshots  store.SnapshotStore
	Aggregator *aggregate.Aggregator
	Notifier   *notifier.Notifier
	Weekly     *weekly.Runner
	Tickers    []string
}

// NewScheduler creates a new Scheduler.
func NewScheduler(gate *ingest.Gate, engine *stats.Engine, fetcher collector.Fetcher,
	snapshots store.SnapshotStore, agg *aggregate.Aggregator, n *notifier.Notifier,
	wk *weekly.Runner, tickers []string) *Scheduler {
	return &Scheduler{
		Cron:       cron.New(cron.WithSeconds()),
		Gate:       gate,
		Stats:      engine,
		Fetcher:    fetcher,
		Snapshots:  snapshots,
		Aggregator: agg,
		Notifier:   n,
		Weekly:     wk,
		Tickers:    tickers,
	}
}

// RegisterAll registers the analytics, digest, and weekly tasks.
func (s *Scheduler) RegisterAll(analyticsCron, digestCron, weeklyCron string) error {
	if _, err := s.Cron.AddFunc(analyticsCron, s.analyticsTask); err != nil {
		return fmt.Errorf("register analytics task: %w", err)
	}
	if _, err := s.Cron.AddFunc(digestCron, s.digestTask); err != nil {
		return fmt.Errorf("register digest task: %w", err)
	}
	if _, err := s.Cron.AddFunc(weeklyCron, s.weeklyTask); err != nil {
		return fmt.Errorf("register weekly task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Info().Msg("scheduler stopped")
}

func (s *Scheduler) analyticsTask() {
	if err := s.RunAnalytics(time.Now()); err != nil {
		log.Error().Err(err).Msg("analytics run failed")
	}
}

func (s *Scheduler) digestTask() {
	if err := s.RunDigest(time.Now()); err != nil {
		log.Error().Err(err).Msg("digest run failed")
	}
}

func (s *Scheduler) weeklyTask() {
	if err := s.RunWeekly(time.Now()); err != nil {
		log.Error().Err(err).Msg("weekly run failed")
	}
}

// RunAnalytics executes one analytics run: freshness gate, rolling stats and
// current price per ticker, rule evaluation, snapshot persistence. A ticker
// with no current price or a failed stats query is excluded from this run;
// a snapshot write failure aborts the run.
func (s *Scheduler) RunAnalytics(now time.Time) error {
	log.Info().Msg("running analytics")

	if err := s.Gate.EnsureFresh(now); err != nil {
		return fmt.Errorf("freshness gate: %w", err)
	}

	inputs := make([]rules.TickerInput, 0, len(s.Tickers))
	for _, ticker := range s.Tickers {
		st, err := s.Stats.Compute(ticker, now)
		if err != nil {
			log.Warn().Err(err).Str("ticker", ticker).Msg("stats failed, ticker excluded from run")
			continue
		}
		price, err := s.Fetcher.FetchLatestPrice(ticker)
		if err != nil {
			log.Warn().Err(err).Str("ticker", ticker).Msg("no current price, ticker excluded from run")
			continue
		}
		inputs = append(inputs, rules.TickerInput{Ticker: ticker, Price: price, Stats: st})
	}

	snap := rules.Evaluate(now, inputs)
	if err := s.Snapshots.SaveSnapshot(snap); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	log.Info().
		Str("snapshot", snap.ID).
		Int("tickers", len(inputs)).
		Msg("analytics run complete")
	return nil
}

// RunDigest aggregates today's snapshots and dispatches the alert email.
func (s *Scheduler) RunDigest(now time.Time) error {
	log.Info().Msg("running digest")

	alerts, err := s.Aggregator.AggregateToday(now)
	if err != nil {
		return fmt.Errorf("aggregate: %w", err)
	}
	return s.Notifier.SendDigest(now, alerts)
}

// RunWeekly executes the week-window analysis and its digest.
func (s *Scheduler) RunWeekly(now time.Time) error {
	return s.Weekly.Run(now)
}
