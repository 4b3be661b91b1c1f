package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// RunRepo records ingest run summaries.
type RunRepo struct {
	db *sql.DB
}

// NewRunRepo creates a new RunRepo.
func NewRunRepo(db *sql.DB) *RunRepo {
	return &RunRepo{db: db}
}

// Record stores a finished run and sets its ID.
func (r *RunRepo) Record(ctx context.Context, run *IngestRun) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO ingest_runs (namespace, source, total, indexed, skipped, pruned)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.Namespace, run.Source, run.Total, run.Indexed, run.Skipped, run.Pruned,
	)
	if err != nil {
		return fmt.Errorf("failed to record ingest run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get ingest run ID: %w", err)
	}
	run.ID = id

	return nil
}

// Last returns the most recent run for a namespace.
// Returns nil and ErrNotFound if the namespace was never ingested.
func (r *RunRepo) Last(ctx context.Context, namespace string) (*IngestRun, error) {
	var run IngestRun
	var finishedAtStr string

	err := r.db.QueryRowContext(ctx,
		`SELECT id, namespace, source, total, indexed, skipped, pruned, finished_at
		 FROM ingest_runs WHERE namespace = ? ORDER BY id DESC LIMIT 1`,
		namespace,
	).Scan(&run.ID, &run.Namespace, &run.Source, &run.Total, &run.Indexed, &run.Skipped, &run.Pruned, &finishedAtStr)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query ingest run: %w", err)
	}

	if run.FinishedAt, err = parseTimestamp(finishedAtStr); err != nil {
		return nil, err
	}

	return &run, nil
}
