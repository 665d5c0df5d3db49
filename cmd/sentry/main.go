package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"StockSentry/internal/aggregate"
	"StockSentry/internal/collector"
	"StockSentry/internal/config"
	"StockSentry/internal/ingest"
	"StockSentry/internal/notifier"
	"StockSentry/internal/scheduler"
	"StockSentry/internal/stats"
	"StockSentry/internal/store"
	"StockSentry/internal/weekly"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Info().Msg("StockSentry starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("load timezone")
	}
	interval, err := cfg.BarInterval()
	if err != nil {
		log.Fatal().Err(err).Msg("parse bar interval")
	}

	// Init store
	st, err := store.NewSQLiteStore(cfg.Database.SQLitePath)
	if err != nil {
		log.Fatal().Err(err).Msg("init sqlite store")
	}
	defer st.Close()

	// Init fetcher
	fetcher := collector.NewYahooFetcher(loc, cfg.Proxy)
	log.Info().Str("source", fetcher.Name()).Msg("data source ready")

	// Init pipeline components
	gate := ingest.NewGate(fetcher, st, st, loc, interval, cfg.Tickers)
	engine := stats.NewEngine(st, cfg.Windows.ShortDays, cfg.Windows.LongDays)
	agg := aggregate.NewAggregator(st, loc)

	// Init email notifier
	sender := notifier.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password)
	n := notifier.NewNotifier(st, sender, cfg.SMTP.From, cfg.SMTP.SubjectPrefix, cfg.SMTP.WeeklySubjectPrefix, loc)

	// Init weekly analysis
	wk := weekly.NewRunner(gate, weekly.NewAnalyzer(st, loc), fetcher, st, n, cfg.Tickers, loc)

	// Init scheduler
	sched := scheduler.NewScheduler(gate, engine, fetcher, st, agg, n, wk, cfg.Tickers)
	if err := sched.RegisterAll(cfg.Schedule.AnalyticsCron, cfg.Schedule.DigestCron, cfg.Schedule.WeeklyCron); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, executing analytics now")
		go func() {
			if err := sched.RunAnalytics(time.Now()); err != nil {
				log.Error().Err(err).Msg("startup analytics run failed")
			}
		}()
	}

	log.Info().Msg("StockSentry is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping...")
}
