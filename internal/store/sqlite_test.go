package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockSentry/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testBar(ts time.Time, close float64) model.PriceBar {
	return model.PriceBar{
		Timestamp: ts,
		Open:      close - 0.1,
		High:      close + 0.2,
		Low:       close - 0.3,
		Close:     close,
		AdjClose:  close,
		Volume:    1000,
	}
}

func TestUpsertBars_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ts := time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC)
	bars := []model.PriceBar{testBar(ts, 44.30), testBar(ts.Add(5*time.Minute), 44.35)}

	n, err := s.UpsertBars("BCE.TO", bars)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Re-upserting the same bars must not duplicate rows.
	_, err = s.UpsertBars("BCE.TO", bars)
	require.NoError(t, err)

	got, err := s.QueryBars("BCE.TO", ts.Add(-time.Hour), ts.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestUpsertBars_PreservesStoredAt(t *testing.T) {
	s := newTestStore(t)
	ts := time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC)

	first := testBar(ts, 44.30)
	first.StoredAt = time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	_, err := s.UpsertBars("BCE.TO", []model.PriceBar{first})
	require.NoError(t, err)

	// Second write carries a later StoredAt and a corrected close.
	second := testBar(ts, 44.31)
	second.StoredAt = time.Date(2025, 6, 2, 20, 0, 0, 0, time.UTC)
	_, err = s.UpsertBars("BCE.TO", []model.PriceBar{second})
	require.NoError(t, err)

	got, err := s.QueryBars("BCE.TO", ts, ts)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 44.31, got[0].Close, "measurement fields overwritten")
	assert.Equal(t, first.StoredAt, got[0].StoredAt, "stored_at keeps the first write")
}

func TestQueryBars_RangeAndOrder(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)

	// Insert out of order.
	_, err := s.UpsertBars("TD.TO", []model.PriceBar{
		testBar(base.Add(10*time.Minute), 80.2),
		testBar(base, 80.0),
		testBar(base.Add(5*time.Minute), 80.1),
		testBar(base.Add(2*time.Hour), 80.9),
	})
	require.NoError(t, err)

	got, err := s.QueryBars("TD.TO", base, base.Add(30*time.Minute))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.True(t, got[0].Timestamp.Before(got[1].Timestamp))
	assert.True(t, got[1].Timestamp.Before(got[2].Timestamp))
	assert.Equal(t, "TD.TO", got[0].Ticker)

	// Other tickers invisible.
	got, err = s.QueryBars("BNS.TO", base, base.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAdvanceFetchDate_CAS(t *testing.T) {
	s := newTestStore(t)

	last, err := s.LastUpdateDate()
	require.NoError(t, err)
	assert.Equal(t, "", last, "fresh database has no fetch state")

	// First advance inserts the singleton row.
	ok, err := s.AdvanceFetchDate("", "2025-06-01")
	require.NoError(t, err)
	assert.True(t, ok)

	last, err = s.LastUpdateDate()
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", last)

	// A second first-time advance loses the race.
	ok, err = s.AdvanceFetchDate("", "2025-06-01")
	require.NoError(t, err)
	assert.False(t, ok)

	// Advancing from a stale value fails and leaves the state untouched.
	ok, err = s.AdvanceFetchDate("2025-05-31", "2025-06-02")
	require.NoError(t, err)
	assert.False(t, ok)

	last, err = s.LastUpdateDate()
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", last)

	// Advancing from the current value succeeds.
	ok, err = s.AdvanceFetchDate("2025-06-01", "2025-06-02")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSnapshots_SaveAndQuery(t *testing.T) {
	s := newTestStore(t)
	at := time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC)

	snap := &model.ExecutionSnapshot{ID: uuid.NewString(), CreatedAt: at}
	snap.Append(model.RuleLessThanMin90, model.RuleMatch{Ticker: "T.TO", Price: 18.50, CompareWith: 19.21})
	require.NoError(t, s.SaveSnapshot(snap))

	got, err := s.QuerySnapshots(at.Add(-time.Hour), at.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, snap.ID, got[0].ID)
	assert.Equal(t, at, got[0].CreatedAt)
	require.Len(t, got[0].LessThanMin90, 1)
	assert.Equal(t, 18.50, got[0].LessThanMin90[0].Price)
	assert.Equal(t, 19.21, got[0].LessThanMin90[0].CompareWith)
}

func TestQuerySnapshots_HalfOpenRange(t *testing.T) {
	s := newTestStore(t)
	at := time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveSnapshot(&model.ExecutionSnapshot{ID: uuid.NewString(), CreatedAt: at}))

	// CreatedAt == from is included.
	got, err := s.QuerySnapshots(at, at.Add(time.Minute))
	require.NoError(t, err)
	assert.Len(t, got, 1)

	// CreatedAt == to is excluded.
	got, err = s.QuerySnapshots(at.Add(-time.Minute), at)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRecipients_Roundtrip(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.AddRecipient(model.Recipient{Email: "a@example.com", Active: true}))
	require.NoError(t, s.AddRecipient(model.Recipient{
		Email:  "b@example.com",
		Emails: []string{"c@example.com", "d@example.com"},
		Active: false,
	}))

	got, err := s.Recipients()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a@example.com", got[0].Email)
	assert.True(t, got[0].Active)
	assert.Equal(t, []string{"c@example.com", "d@example.com"}, got[1].Emails)
	assert.False(t, got[1].Active)
}

func TestLogEmail(t *testing.T) {
	s := newTestStore(t)
	err := s.LogEmail(&model.EmailLog{
		SentAt:     time.Now(),
		Subject:    "Tickers can be invested in - 2025-06-01",
		Recipients: []string{"a@example.com"},
		RowCount:   3,
	})
	require.NoError(t, err)

	err = s.LogEmail(&model.EmailLog{
		SentAt:      time.Now(),
		Subject:     "Favorable stocks to invest on 2025-06-02",
		Recipients:  []string{"a@example.com"},
		RowCount:    1,
		Kind:        "weeklySignals",
		ExecutionID: "exec-1",
	})
	require.NoError(t, err)
}

func weeklyExec(id string, at time.Time, notified bool) *model.WeeklyExecution {
	return &model.WeeklyExecution{
		ID:        id,
		CreatedAt: at,
		Notified:  notified,
		Weeks: map[model.WeekFlag][]model.WeekMatch{
			model.WeekFlagForSpan(3): {
				{Ticker: "RY.TO", CurrentPrice: 18.5, MinimumPrice: 19.2},
			},
		},
	}
}

func TestReportedWeekPairs_OnlyNotifiedCount(t *testing.T) {
	s := newTestStore(t)
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveWeeklyExecution(weeklyExec("a", day.Add(10*time.Hour), true)))
	require.NoError(t, s.SaveWeeklyExecution(weeklyExec("b", day.Add(12*time.Hour), false)))

	pairs, err := s.ReportedWeekPairs(day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	_, ok := pairs[model.WeekPair{Ticker: "RY.TO", Flag: model.WeekFlagForSpan(3)}]
	assert.True(t, ok)
}

func TestReportedWeekPairs_RangeIsHalfOpen(t *testing.T) {
	s := newTestStore(t)
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	next := day.AddDate(0, 0, 1)

	// On the lower bound: included. On the upper bound: excluded.
	require.NoError(t, s.SaveWeeklyExecution(weeklyExec("a", day, true)))
	require.NoError(t, s.SaveWeeklyExecution(weeklyExec("b", next, true)))

	pairs, err := s.ReportedWeekPairs(day, next)
	require.NoError(t, err)
	assert.Len(t, pairs, 1)
}
