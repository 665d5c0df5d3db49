package store

import (
	"time"

	"StockSentry/internal/model"
)

// BarStore provides typed access to historical price bars.
type BarStore interface {
	// UpsertBars is idempotent and safe to call with overlapping data.
	// Returns the number of rows written.
	UpsertBars(ticker string, bars []model.PriceBar) (int, error)
	// QueryBars returns bars in [from, to] sorted by timestamp ascending.
	QueryBars(ticker string, from, to time.Time) ([]model.PriceBar, error)
}

// FetchStateStore holds the singleton daily-fetch state.
type FetchStateStore interface {
	// LastUpdateDate returns the recorded calendar date ("2006-01-02" in
	// the configured zone), or "" when no backfill has ever completed.
	LastUpdateDate() (string, error)
	// AdvanceFetchDate moves the date from old to next, but only when the
	// stored value still equals old. Returns whether the swap happened.
	AdvanceFetchDate(old, next string) (bool, error)
}

// SnapshotStore persists one ExecutionSnapshot per analytics run.
type SnapshotStore interface {
	SaveSnapshot(snap *model.ExecutionSnapshot) error
	// QuerySnapshots returns snapshots with CreatedAt in [from, to).
	QuerySnapshots(from, to time.Time) ([]*model.ExecutionSnapshot, error)
}

// WeeklyStore persists weekly analysis executions and answers the same-day
// dedup query over the notified ones.
type WeeklyStore interface {
	SaveWeeklyExecution(exec *model.WeeklyExecution) error
	// ReportedWeekPairs returns every (ticker, weekFlag) pair carried by a
	// notified weekly execution with CreatedAt in [from, to).
	ReportedWeekPairs(from, to time.Time) (map[model.WeekPair]struct{}, error)
}

// NotifyStore holds the notification audience and the dispatch log.
type NotifyStore interface {
	Recipients() ([]model.Recipient, error)
	AddRecipient(r model.Recipient) error
	LogEmail(entry *model.EmailLog) error
}
