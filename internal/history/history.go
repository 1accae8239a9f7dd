// Package history keeps a SQLite ledger of per-batch training reports.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Report is one line of the ledger.
type Report struct {
	Stage       int
	Batch       int
	P1Wins      int
	Draws       int
	P2Wins      int
	Moves       int
	GamesPerSec float64
	At          time.Time
}

// Store appends reports to a SQLite database.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS batches(
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ts REAL NOT NULL,
	stage INTEGER NOT NULL,
	batch INTEGER NOT NULL,
	p1_wins INTEGER NOT NULL,
	draws INTEGER NOT NULL,
	p2_wins INTEGER NOT NULL,
	moves INTEGER NOT NULL,
	games_per_sec REAL NOT NULL
)`

// Open opens or creates the ledger at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

// Append records r. A zero At is stamped with the current time.
func (s *Store) Append(ctx context.Context, r Report) error {
	if r.At.IsZero() {
		r.At = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO batches(ts, stage, batch, p1_wins, draws, p2_wins, moves, games_per_sec)
		 VALUES(?,?,?,?,?,?,?,?)`,
		float64(r.At.UnixMilli())/1000.0, r.Stage, r.Batch, r.P1Wins, r.Draws, r.P2Wins, r.Moves, r.GamesPerSec)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// Stage returns every report of stage in batch order.
func (s *Store) Stage(ctx context.Context, stage int) ([]Report, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ts, stage, batch, p1_wins, draws, p2_wins, moves, games_per_sec
		 FROM batches WHERE stage = ? ORDER BY batch, id`, stage)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []Report
	for rows.Next() {
		var r Report
		var ts float64
		if err := rows.Scan(&ts, &r.Stage, &r.Batch, &r.P1Wins, &r.Draws, &r.P2Wins, &r.Moves, &r.GamesPerSec); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		r.At = time.UnixMilli(int64(ts * 1000))
		out = append(out, r)
	}
	return out, rows.Err()
}
