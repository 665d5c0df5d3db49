package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"StockSentry/internal/model"
)

// SQLiteStore persists bars, snapshots, fetch state, recipients, and the
// email log to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite store opened")
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS price_bars (
			ticker     TEXT NOT NULL,
			ts         INTEGER NOT NULL,
			open       REAL,
			high       REAL,
			low        REAL,
			close      REAL,
			adj_close  REAL,
			volume     INTEGER,
			stored_at  INTEGER NOT NULL,
			PRIMARY KEY (ticker, ts)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bars_ts ON price_bars(ts)`,

		`CREATE TABLE IF NOT EXISTS fetch_state (
			id               INTEGER PRIMARY KEY CHECK (id = 1),
			last_update_date TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS snapshots (
			id         TEXT PRIMARY KEY,
			created_at INTEGER NOT NULL,
			doc        TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_created ON snapshots(created_at)`,

		`CREATE TABLE IF NOT EXISTS weekly_executions (
			id         TEXT PRIMARY KEY,
			created_at INTEGER NOT NULL,
			notified   INTEGER NOT NULL DEFAULT 0,
			doc        TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_weekly_created ON weekly_executions(created_at)`,

		`CREATE TABLE IF NOT EXISTS recipients (
			id     INTEGER PRIMARY KEY AUTOINCREMENT,
			email  TEXT,
			emails TEXT,
			active INTEGER NOT NULL DEFAULT 1
		)`,

		`CREATE TABLE IF NOT EXISTS email_log (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			sent_at      INTEGER NOT NULL,
			subject      TEXT,
			recipients   TEXT,
			row_count    INTEGER,
			kind         TEXT,
			execution_id TEXT
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// UpsertBars writes bars for a ticker. On conflict the measurement fields
// are overwritten; stored_at keeps the first-write time.
func (s *SQLiteStore) UpsertBars(ticker string, bars []model.PriceBar) (int, error) {
	if len(bars) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO price_bars
		(ticker, ts, open, high, low, close, adj_close, volume, stored_at)
		VALUES (?,?,?,?,?,?,?,?,?)
		ON CONFLICT(ticker, ts) DO UPDATE SET
			open=excluded.open, high=excluded.high, low=excluded.low,
			close=excluded.close, adj_close=excluded.adj_close,
			volume=excluded.volume`)
	if err != nil {
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, b := range bars {
		storedAt := b.StoredAt
		if storedAt.IsZero() {
			storedAt = now
		}
		if _, err := stmt.Exec(ticker, b.Timestamp.UTC().Unix(),
			b.Open, b.High, b.Low, b.Close, b.AdjClose, b.Volume,
			storedAt.Unix()); err != nil {
			return 0, fmt.Errorf("upsert bar %s@%s: %w", ticker, b.Timestamp, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit upsert: %w", err)
	}
	return len(bars), nil
}

// QueryBars returns bars for a ticker in [from, to], ascending by timestamp.
func (s *SQLiteStore) QueryBars(ticker string, from, to time.Time) ([]model.PriceBar, error) {
	rows, err := s.db.Query(`SELECT ticker, ts, open, high, low, close, adj_close, volume, stored_at
		FROM price_bars
		WHERE ticker = ? AND ts >= ? AND ts <= ?
		ORDER BY ts ASC`,
		ticker, from.UTC().Unix(), to.UTC().Unix())
	if err != nil {
		return nil, fmt.Errorf("query bars: %w", err)
	}
	defer rows.Close()

	var bars []model.PriceBar
	for rows.Next() {
		var b model.PriceBar
		var ts, storedAt int64
		if err := rows.Scan(&b.Ticker, &ts, &b.Open, &b.High, &b.Low,
			&b.Close, &b.AdjClose, &b.Volume, &storedAt); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		b.Timestamp = time.Unix(ts, 0).UTC()
		b.StoredAt = time.Unix(storedAt, 0).UTC()
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// LastUpdateDate returns the singleton fetch-state date, or "" when unset.
func (s *SQLiteStore) LastUpdateDate() (string, error) {
	var date string
	err := s.db.QueryRow(`SELECT last_update_date FROM fetch_state WHERE id = 1`).Scan(&date)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read fetch state: %w", err)
	}
	return date, nil
}

// AdvanceFetchDate swaps the fetch-state date from old to next. The swap
// only happens when the stored value still equals old, so overlapping gate
// invocations cannot both advance.
func (s *SQLiteStore) AdvanceFetchDate(old, next string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res sql.Result
	var err error
	if old == "" {
		res, err = s.db.Exec(`INSERT INTO fetch_state (id, last_update_date)
			VALUES (1, ?) ON CONFLICT(id) DO NOTHING`, next)
	} else {
		res, err = s.db.Exec(`UPDATE fetch_state SET last_update_date = ?
			WHERE id = 1 AND last_update_date = ?`, next, old)
	}
	if err != nil {
		return false, fmt.Errorf("advance fetch date: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("advance fetch date rows: %w", err)
	}
	return n == 1, nil
}

// SaveSnapshot persists one execution snapshot as a JSON document.
func (s *SQLiteStore) SaveSnapshot(snap *model.ExecutionSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if _, err := s.db.Exec(`INSERT INTO snapshots (id, created_at, doc) VALUES (?,?,?)`,
		snap.ID, snap.CreatedAt.UTC().Unix(), string(doc)); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// QuerySnapshots returns snapshots with created_at in [from, to).
func (s *SQLiteStore) QuerySnapshots(from, to time.Time) ([]*model.ExecutionSnapshot, error) {
	rows, err := s.db.Query(`SELECT id, created_at, doc FROM snapshots
		WHERE created_at >= ? AND created_at < ?
		ORDER BY created_at ASC`,
		from.UTC().Unix(), to.UTC().Unix())
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []*model.ExecutionSnapshot
	for rows.Next() {
		var id, doc string
		var createdAt int64
		if err := rows.Scan(&id, &createdAt, &doc); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snap := &model.ExecutionSnapshot{}
		if err := json.Unmarshal([]byte(doc), snap); err != nil {
			return nil, fmt.Errorf("unmarshal snapshot %s: %w", id, err)
		}
		snap.ID = id
		snap.CreatedAt = time.Unix(createdAt, 0).UTC()
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// SaveWeeklyExecution persists one weekly analysis execution as a JSON
// document.
func (s *SQLiteStore) SaveWeeklyExecution(exec *model.WeeklyExecution) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := json.Marshal(exec)
	if err != nil {
		return fmt.Errorf("marshal weekly execution: %w", err)
	}
	notified := 0
	if exec.Notified {
		notified = 1
	}
	if _, err := s.db.Exec(`INSERT INTO weekly_executions (id, created_at, notified, doc)
		VALUES (?,?,?,?)`,
		exec.ID, exec.CreatedAt.UTC().Unix(), notified, string(doc)); err != nil {
		return fmt.Errorf("insert weekly execution: %w", err)
	}
	return nil
}

// ReportedWeekPairs collects (ticker, weekFlag) pairs from notified weekly
// executions with created_at in [from, to).
func (s *SQLiteStore) ReportedWeekPairs(from, to time.Time) (map[model.WeekPair]struct{}, error) {
	rows, err := s.db.Query(`SELECT doc FROM weekly_executions
		WHERE created_at >= ? AND created_at < ? AND notified = 1`,
		from.UTC().Unix(), to.UTC().Unix())
	if err != nil {
		return nil, fmt.Errorf("query weekly executions: %w", err)
	}
	defer rows.Close()

	pairs := make(map[model.WeekPair]struct{})
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan weekly execution: %w", err)
		}
		exec := &model.WeeklyExecution{}
		if err := json.Unmarshal([]byte(doc), exec); err != nil {
			return nil, fmt.Errorf("unmarshal weekly execution: %w", err)
		}
		for flag, matches := range exec.Weeks {
			for _, m := range matches {
				pairs[model.WeekPair{Ticker: m.Ticker, Flag: flag}] = struct{}{}
			}
		}
	}
	return pairs, rows.Err()
}

// Recipients returns every recipient record, active or not.
func (s *SQLiteStore) Recipients() ([]model.Recipient, error) {
	rows, err := s.db.Query(`SELECT email, emails, active FROM recipients ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query recipients: %w", err)
	}
	defer rows.Close()

	var recipients []model.Recipient
	for rows.Next() {
		var email, emails sql.NullString
		var active int
		if err := rows.Scan(&email, &emails, &active); err != nil {
			return nil, fmt.Errorf("scan recipient: %w", err)
		}
		r := model.Recipient{Email: email.String, Active: active != 0}
		if emails.Valid && emails.String != "" {
			if err := json.Unmarshal([]byte(emails.String), &r.Emails); err != nil {
				return nil, fmt.Errorf("unmarshal recipient emails: %w", err)
			}
		}
		recipients = append(recipients, r)
	}
	return recipients, rows.Err()
}

// AddRecipient inserts one recipient record.
func (s *SQLiteStore) AddRecipient(r model.Recipient) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var emails interface{}
	if len(r.Emails) > 0 {
		b, err := json.Marshal(r.Emails)
		if err != nil {
			return fmt.Errorf("marshal recipient emails: %w", err)
		}
		emails = string(b)
	}
	active := 0
	if r.Active {
		active = 1
	}
	if _, err := s.db.Exec(`INSERT INTO recipients (email, emails, active) VALUES (?,?,?)`,
		r.Email, emails, active); err != nil {
		return fmt.Errorf("insert recipient: %w", err)
	}
	return nil
}

// LogEmail appends one dispatch record.
func (s *SQLiteStore) LogEmail(entry *model.EmailLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recipients, err := json.Marshal(entry.Recipients)
	if err != nil {
		return fmt.Errorf("marshal email recipients: %w", err)
	}
	if _, err := s.db.Exec(`INSERT INTO email_log (sent_at, subject, recipients, row_count, kind, execution_id)
		VALUES (?,?,?,?,?,?)`,
		entry.SentAt.UTC().Unix(), entry.Subject, string(recipients), entry.RowCount,
		entry.Kind, entry.ExecutionID); err != nil {
		return fmt.Errorf("insert email log: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	log.Info().Msg("closing sqlite store")
	return s.db.Close()
}
