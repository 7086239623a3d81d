package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of database operations shared by *sql.DB and *sql.Tx.
// Repositories are constructed over it so the same implementation works
// against the pool and inside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxRunner executes a callback within a single database transaction,
// passing repositories bound to that transaction. Either everything the
// callback does persists, or nothing does.
type TxRunner interface {
	Run(ctx context.Context, fn func(products ProductRepository, movements StockMovementRepository) error) error
}

type txRunner struct {
	db *sql.DB
}

// NewTxRunner creates a new instance of TxRunner
func NewTxRunner(db *sql.DB) TxRunner {
	return &txRunner{db: db}
}

// Run begins a transaction, executes fn with transaction-bound repositories
// and commits, rolling back if fn or the commit fails
func (r *txRunner) Run(ctx context.Context, fn func(products ProductRepository, movements StockMovementRepository) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(NewProductRepository(tx), NewStockMovementRepository(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505)
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isForeignKeyViolation reports whether err is a PostgreSQL foreign key
// constraint violation (SQLSTATE 23503)
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
