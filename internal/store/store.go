// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/verte-zerg/tuireact/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for run data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		return nil, multierr.Append(fmt.Errorf("failed to migrate db: %w", err), db.Close())
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY,
			uuid TEXT NOT NULL UNIQUE,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			seed INTEGER NOT NULL,
			error_count INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS trials (
			run_id INTEGER NOT NULL,
			kind TEXT NOT NULL,
			trial_index INTEGER NOT NULL,
			prompt TEXT NOT NULL,
			latency_ms INTEGER NOT NULL,
			PRIMARY KEY (run_id, kind, trial_index)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ended_at ON runs(ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRun stores a finished run and its trials. A run without a UUID gets a new one.
func (s *Store) InsertRun(ctx context.Context, run model.RunStats, trials []model.TrialResult) (id int64, err error) {
	if run.UUID == "" {
		run.UUID = uuid.New().String()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, tx.Rollback())
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (uuid, started_at, ended_at, seed, error_count)
		 VALUES (?, ?, ?, ?, ?)`,
		run.UUID,
		run.StartedAt.Format(time.RFC3339Nano),
		run.EndedAt.Format(time.RFC3339Nano),
		run.Seed,
		run.ErrorCount,
	)
	if err != nil {
		return 0, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(trials) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO trials (run_id, kind, trial_index, prompt, latency_ms)
			 VALUES (?, ?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return 0, err
		}
		defer func() {
			err = multierr.Append(err, stmt.Close())
		}()
		for _, tr := range trials {
			if _, err = stmt.ExecContext(ctx, id, string(tr.Kind), tr.Index, tr.Prompt, tr.LatencyMs); err != nil {
				return 0, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListRuns returns run aggregates filtered by stats config, oldest first.
func (s *Store) ListRuns(ctx context.Context, cfg model.StatsConfig) (_ []model.RunAggregate, err error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Since != nil {
		clauses = append(clauses, "r.ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT r.id, r.uuid, r.ended_at, r.error_count,
		COALESCE(AVG(CASE WHEN t.kind = 'prompt' THEN t.latency_ms END), 0.0),
		COALESCE(AVG(CASE WHEN t.kind = 'color' THEN t.latency_ms END), 0.0),
		COUNT(CASE WHEN t.kind = 'prompt' THEN 1 END),
		COUNT(CASE WHEN t.kind = 'color' THEN 1 END)
		FROM runs r
		LEFT JOIN trials t ON t.run_id = r.id
		WHERE %s
		GROUP BY r.id
		ORDER BY r.ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Append(err, rows.Close())
	}()

	var runs []model.RunAggregate
	for rows.Next() {
		var agg model.RunAggregate
		var endedAt string
		if err := rows.Scan(&agg.RunID, &agg.UUID, &endedAt, &agg.ErrorCount,
			&agg.PromptMeanMs, &agg.ColorMeanMs, &agg.PromptTrials, &agg.ColorTrials); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		runs = append(runs, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// ListTrialsForRuns returns the trials of the given runs ordered by run, kind and index.
func (s *Store) ListTrialsForRuns(ctx context.Context, runIDs []int64) (_ []model.StoredTrial, err error) {
	if len(runIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(runIDs))
	args := make([]any, len(runIDs))
	for i, id := range runIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT run_id, kind, trial_index, prompt, latency_ms
		FROM trials
		WHERE run_id IN (%s)
		ORDER BY run_id, kind DESC, trial_index`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Append(err, rows.Close())
	}()

	var result []model.StoredTrial
	for rows.Next() {
		var tr model.StoredTrial
		var kind string
		if err := rows.Scan(&tr.RunID, &kind, &tr.Index, &tr.Prompt, &tr.LatencyMs); err != nil {
			return nil, err
		}
		tr.Kind = model.TrialKind(kind)
		result = append(result, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
