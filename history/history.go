// Package history persists the daily totals of each profile in SQLite.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/etnz/portfoy"
	"github.com/etnz/portfoy/date"
	// Register sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
)

const schema = `CREATE TABLE IF NOT EXISTS history(
	profile TEXT NOT NULL,
	day     TEXT NOT NULL,
	try     REAL NOT NULL,
	usd     REAL NOT NULL,
	PRIMARY KEY (profile, day)
)`

// Store is the history database.
type Store struct{ db *sql.DB }

// Open opens, and creates if needed, the history database at dsn.
// Use ":memory:" for a transient store.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open history %q: %w", dsn, err)
	}
	// sqlite serializes writers, and every :memory: connection is a new database.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot create history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Record stores the totals of a profile on a date, replacing any previous
// record of that date.
//
// TOTAL is never stored: recording it is a no-op returning false and
// portfoy.ErrTotalReadOnly.
func (s *Store) Record(ctx context.Context, profile string, on date.Date, try, usd float64) (bool, error) {
	if err := portfoy.CheckWritable(profile); err != nil {
		return false, err
	}
	if on.IsZero() {
		return false, errors.New("cannot record history without a date")
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO history(profile,day,try,usd) VALUES(?,?,?,?)
		ON CONFLICT(profile,day) DO UPDATE SET try=excluded.try, usd=excluded.usd`,
		profile, on.String(), try, usd)
	if err != nil {
		return false, fmt.Errorf("cannot record %q on %s: %w", profile, on, err)
	}
	return true, nil
}

// Series returns the recorded history of a profile. The TOTAL series is
// computed from all other profiles with opts.
func (s *Store) Series(ctx context.Context, profile string, opts portfoy.UnionOptions) (*portfoy.Series, error) {
	if portfoy.IsTotal(profile) {
		all, err := s.All(ctx)
		if err != nil {
			return nil, err
		}
		return portfoy.CombineHistory(all, opts), nil
	}
	all, err := s.query(ctx, `SELECT profile,day,try,usd FROM history WHERE profile=? ORDER BY day`, profile)
	if err != nil {
		return nil, err
	}
	if series, ok := all[profile]; ok {
		return series, nil
	}
	return new(portfoy.Series), nil
}

// All returns the history of every stored profile.
func (s *Store) All(ctx context.Context) (map[string]*portfoy.Series, error) {
	return s.query(ctx, `SELECT profile,day,try,usd FROM history ORDER BY profile, day`)
}

// Profiles returns the names of profiles having a history.
func (s *Store) Profiles(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT profile FROM history ORDER BY profile`)
	if err != nil {
		return nil, fmt.Errorf("cannot list history profiles: %w", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *Store) query(ctx context.Context, query string, args ...any) (map[string]*portfoy.Series, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("cannot read history: %w", err)
	}
	defer rows.Close()

	all := make(map[string]*portfoy.Series)
	for rows.Next() {
		var (
			profile, day string
			try, usd     float64
		)
		if err := rows.Scan(&profile, &day, &try, &usd); err != nil {
			return nil, fmt.Errorf("cannot read history: %w", err)
		}
		on, err := date.Parse(day)
		if err != nil {
			return nil, fmt.Errorf("corrupted history of %q: %w", profile, err)
		}
		series, ok := all[profile]
		if !ok {
			series = new(portfoy.Series)
			all[profile] = series
		}
		series.Record(on, try, usd)
	}
	return all, rows.Err()
}
