package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	// Register sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when no fresh cache entry exists.
var ErrNotFound = errors.New("not cached")

type DB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
	Close() error
}

// Close is one cached daily close.
type Close struct {
	Day   time.Time
	Close float64
}

type Store struct {
	db  DB
	now func() time.Time
}

// OpenSQLite opens dsn with a single connection so ":memory:" databases are shared.
func OpenSQLite(dsn string) (DB, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

func InitSchema(ctx context.Context, db DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS closes(
			symbol TEXT NOT NULL, day TEXT NOT NULL, close REAL NOT NULL,
			PRIMARY KEY(symbol, day)
		)`,
		`CREATE TABLE IF NOT EXISTS close_fetches(
			symbol TEXT PRIMARY KEY, start_day TEXT NOT NULL, fetched_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS market_caps(
			symbol TEXT PRIMARY KEY, cap TEXT NOT NULL, fetched_at INTEGER NOT NULL
		)`,
	}
	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func NewStore(db DB) *Store { return &Store{db: db, now: time.Now} }

const dayLayout = "2006-01-02"

func dayKey(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dayLayout)
}

// SaveCloses replaces every cached close of symbol with rows, recording that the
// download covered history from start.
func (s *Store) SaveCloses(ctx context.Context, symbol string, start time.Time, rows []Close) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM closes WHERE symbol=?`, symbol); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO closes(symbol,day,close) VALUES(?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, symbol, dayKey(r.Day), r.Close); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO close_fetches(symbol,start_day,fetched_at) VALUES(?,?,?)
		 ON CONFLICT(symbol) DO UPDATE SET start_day=excluded.start_day, fetched_at=excluded.fetched_at`,
		symbol, dayKey(start), s.now().Unix()); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadCloses returns cached closes of symbol from start when the last download
// covered start and is not older than maxAge.
func (s *Store) LoadCloses(ctx context.Context, symbol string, start time.Time, maxAge time.Duration) ([]Close, error) {
	var startDay string
	var fetchedAt int64
	err := s.db.QueryRowContext(ctx, `SELECT start_day, fetched_at FROM close_fetches WHERE symbol=?`, symbol).
		Scan(&startDay, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if s.stale(fetchedAt, maxAge) {
		return nil, ErrNotFound
	}
	want := dayKey(start)
	if startDay != "" && (want == "" || strings.Compare(startDay, want) > 0) {
		return nil, ErrNotFound
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT day, close FROM closes WHERE symbol=? AND day>=? ORDER BY day ASC`, symbol, want)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Close
	for rows.Next() {
		var day string
		var c Close
		if err := rows.Scan(&day, &c.Close); err != nil {
			return nil, err
		}
		if c.Day, err = time.Parse(dayLayout, day); err != nil {
			return nil, fmt.Errorf("bad cached day %q: %w", day, err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

func (s *Store) SaveMarketCap(ctx context.Context, symbol string, v decimal.Decimal) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO market_caps(symbol,cap,fetched_at) VALUES(?,?,?)
		 ON CONFLICT(symbol) DO UPDATE SET cap=excluded.cap, fetched_at=excluded.fetched_at`,
		symbol, v.String(), s.now().Unix())
	return err
}

func (s *Store) LoadMarketCap(ctx context.Context, symbol string, maxAge time.Duration) (decimal.Decimal, error) {
	var raw string
	var fetchedAt int64
	err := s.db.QueryRowContext(ctx, `SELECT cap, fetched_at FROM market_caps WHERE symbol=?`, symbol).
		Scan(&raw, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, ErrNotFound
	}
	if err != nil {
		return decimal.Zero, err
	}
	if s.stale(fetchedAt, maxAge) {
		return decimal.Zero, ErrNotFound
	}
	return decimal.NewFromString(raw)
}

func (s *Store) stale(fetchedAt int64, maxAge time.Duration) bool {
	if maxAge <= 0 {
		return true
	}
	return s.now().Sub(time.Unix(fetchedAt, 0)) > maxAge
}
