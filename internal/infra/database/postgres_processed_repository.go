// internal/infra/database/postgres_processed_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresProcessedRepository is the durable processed-set implementation,
// used when dedup marks must survive a restart. Schema:
//
//	CREATE TABLE IF NOT EXISTS processed_line_items (
//	    line_item_id TEXT PRIMARY KEY,
//	    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
type PostgresProcessedRepository struct {
	db *sql.DB
}

func NewPostgresProcessedRepository(db *sql.DB) *PostgresProcessedRepository {
	return &PostgresProcessedRepository{db: db}
}

func (r *PostgresProcessedRepository) Contains(ctx context.Context, lineItemID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM processed_line_items WHERE line_item_id = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, lineItemID).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking processed line item: %w", err)
	}
	return exists, nil
}

func (r *PostgresProcessedRepository) Add(ctx context.Context, lineItemID string) error {
	// ON CONFLICT keeps Add idempotent when two polls race over the same id.
	query := `INSERT INTO processed_line_items (line_item_id)
               VALUES ($1)
               ON CONFLICT (line_item_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, lineItemID); err != nil {
		return fmt.Errorf("error marking line item processed: %w", err)
	}
	return nil
}

func (r *PostgresProcessedRepository) Remove(ctx context.Context, lineItemID string) error {
	query := `DELETE FROM processed_line_items WHERE line_item_id = $1`
	if _, err := r.db.ExecContext(ctx, query, lineItemID); err != nil {
		return fmt.Errorf("error removing processed mark: %w", err)
	}
	return nil
}

func (r *PostgresProcessedRepository) Reset(ctx context.Context) error {
	query := `TRUNCATE processed_line_items`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("error resetting processed set: %w", err)
	}
	return nil
}
