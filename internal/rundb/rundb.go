// Package rundb provides optional PostgreSQL persistence of batch run
// history. Everything here is best-effort: the pipeline works identically
// without a database.
package rundb

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool and verifies it.
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &DB{pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the run-history tables when missing.
func (db *DB) EnsureSchema(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS publish_runs (
			id UUID PRIMARY KEY,
			worksheet TEXT NOT NULL,
			status TEXT NOT NULL,
			summary TEXT,
			started_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			completed_at TIMESTAMPTZ
		);
		CREATE TABLE IF NOT EXISTS row_results (
			id BIGSERIAL PRIMARY KEY,
			run_id UUID NOT NULL REFERENCES publish_runs(id),
			row_number INT NOT NULL,
			post_id INT,
			status TEXT NOT NULL,
			note TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`)
	if err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// CreateRun records the start of a batch run and returns its ID.
func (db *DB) CreateRun(ctx context.Context, worksheet string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := db.pool.Exec(ctx,
		`INSERT INTO publish_runs (id, worksheet, status) VALUES ($1, $2, 'running')`,
		id, worksheet,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// CompleteRun marks a run finished with a summary line.
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, status, summary string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE publish_runs SET status = $1, summary = $2, completed_at = NOW() WHERE id = $3`,
		status, summary, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// SaveRowResult records the outcome of one processed sheet row.
func (db *DB) SaveRowResult(ctx context.Context, runID uuid.UUID, rowNumber, postID int, status, note string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO row_results (run_id, row_number, post_id, status, note)
		 VALUES ($1, $2, NULLIF($3, 0), $4, $5)`,
		runID, rowNumber, postID, status, note,
	)
	if err != nil {
		return fmt.Errorf("failed to save row result: %w", err)
	}
	return nil
}
