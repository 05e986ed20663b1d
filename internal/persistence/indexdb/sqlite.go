// Package indexdb keeps batch run results in a local sqlite file, so large
// seed sweeps can be queried after the fact without re-reading run logs.
package indexdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// RunRow is one finished simulation run.
type RunRow struct {
	RunID              string
	Seed               string
	Policy             string
	TicksUsed          int
	ActionsExecuted    int
	ActionsFailed      int
	TotalXP            int
	Reputation         int
	ContractsCompleted int
	LuckDelta          float64
	Stalled            bool
	FinalDigest        string
	RecordedAt         string
}

// Summary aggregates a whole sweep.
type Summary struct {
	Runs               int
	MeanXP             float64
	MeanReputation     float64
	ContractsCompleted int
	Stalled            int
}

type SQLiteIndex struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteIndex{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			seed TEXT NOT NULL,
			policy TEXT NOT NULL,
			ticks_used INTEGER NOT NULL,
			actions_executed INTEGER NOT NULL,
			actions_failed INTEGER NOT NULL,
			total_xp INTEGER NOT NULL,
			reputation INTEGER NOT NULL,
			contracts_completed INTEGER NOT NULL,
			luck_delta REAL NOT NULL,
			stalled INTEGER NOT NULL,
			final_digest TEXT NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_seed ON runs(seed);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_policy_xp ON runs(policy, total_xp);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error { return s.db.Close() }

// SetMeta records a sweep-level key, e.g. the catalogs digest the runs used.
func (s *SQLiteIndex) SetMeta(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO meta(key, value) VALUES(?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`, key, value)
	return err
}

func (s *SQLiteIndex) GetMeta(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key=?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return v, err
}

func (s *SQLiteIndex) InsertRun(ctx context.Context, r RunRow) error {
	if r.RecordedAt == "" {
		r.RecordedAt = time.Now().UTC().Format(time.RFC3339)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs(
			run_id, seed, policy, ticks_used, actions_executed, actions_failed,
			total_xp, reputation, contracts_completed, luck_delta, stalled,
			final_digest, recorded_at
		) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		r.RunID, r.Seed, r.Policy, r.TicksUsed, r.ActionsExecuted, r.ActionsFailed,
		r.TotalXP, r.Reputation, r.ContractsCompleted, r.LuckDelta, boolInt(r.Stalled),
		r.FinalDigest, r.RecordedAt)
	return err
}

func (s *SQLiteIndex) ListRuns(ctx context.Context, policy string) ([]RunRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, seed, policy, ticks_used, actions_executed, actions_failed,
			total_xp, reputation, contracts_completed, luck_delta, stalled,
			final_digest, recorded_at
		 FROM runs WHERE (? = '' OR policy = ?) ORDER BY run_id`, policy, policy)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var r RunRow
		var stalled int
		if err := rows.Scan(&r.RunID, &r.Seed, &r.Policy, &r.TicksUsed, &r.ActionsExecuted,
			&r.ActionsFailed, &r.TotalXP, &r.Reputation, &r.ContractsCompleted,
			&r.LuckDelta, &stalled, &r.FinalDigest, &r.RecordedAt); err != nil {
			return nil, err
		}
		r.Stalled = stalled != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteIndex) Summarize(ctx context.Context, policy string) (Summary, error) {
	var sum Summary
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
			COALESCE(AVG(total_xp), 0),
			COALESCE(AVG(reputation), 0),
			COALESCE(SUM(contracts_completed), 0),
			COALESCE(SUM(stalled), 0)
		 FROM runs WHERE (? = '' OR policy = ?)`, policy, policy).
		Scan(&sum.Runs, &sum.MeanXP, &sum.MeanReputation, &sum.ContractsCompleted, &sum.Stalled)
	return sum, err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
