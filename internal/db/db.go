// Package db provides PostgreSQL persistence for analysis runs and their
// artifacts.
package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// CreateRun creates a new analysis run record and returns its ID
func (db *DB) CreateRun(ctx context.Context, productDescription string, referencePrice, costPrice float64) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO analysis_runs (product_description, reference_price, cost_price, status)
		 VALUES ($1, $2, $3, 'running')
		 RETURNING id`,
		productDescription, referencePrice, costPrice,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// CompleteRun marks an analysis run as completed or failed
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, status string, errorMessage *string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE analysis_runs SET status = $1, error_message = $2, completed_at = NOW() WHERE id = $3`,
		status, errorMessage, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// GetRun retrieves an analysis run by ID. Returns nil when no run exists.
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*AnalysisRun, error) {
	var run AnalysisRun
	err := db.pool.QueryRow(ctx,
		`SELECT id, product_description, reference_price, cost_price, status,
		        error_message, created_at, completed_at
		 FROM analysis_runs
		 WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.ProductDescription, &run.ReferencePrice, &run.CostPrice,
		&run.Status, &run.ErrorMessage, &run.CreatedAt, &run.CompletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// ListRuns retrieves the most recent analysis runs, newest first
func (db *DB) ListRuns(ctx context.Context, limit int) ([]AnalysisRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, product_description, reference_price, cost_price, status,
		        error_message, created_at, completed_at
		 FROM analysis_runs
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []AnalysisRun
	for rows.Next() {
		var run AnalysisRun
		if err := rows.Scan(&run.ID, &run.ProductDescription, &run.ReferencePrice,
			&run.CostPrice, &run.Status, &run.ErrorMessage,
			&run.CreatedAt, &run.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}
