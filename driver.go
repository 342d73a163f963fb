package dbal

import (
	"context"
	"database/sql"

	"github.com/bratiask/dbal/types"
)

// Driver opens physical backend connections from a resolved configuration.
//
// The router treats the driver as an opaque capability: it owns socket
// handling, timeouts and authentication. A failed connect is surfaced to the
// caller wrapped in *types.ConnectionError and is never retried by the
// router.
//
// Implementations include adapter/sql.Driver (database/sql backed) and
// testutil.MockDriver.
type Driver interface {
	// Connect opens a physical connection to the backend described by cfg.
	//
	// Parameters:
	//   - ctx: Context passed through to the underlying driver
	//   - cfg: The resolved backend configuration
	//
	// Returns:
	//   - Session: The established connection
	//   - error: The driver-level failure, if any
	Connect(ctx context.Context, cfg types.BackendConfig) (Session, error)
}

// Session is a single established backend connection.
//
// A session is exclusively owned by one router; it must not be shared
// between routers or used concurrently. Statement and transaction errors
// pass through to the caller unmodified.
type Session interface {
	// ExecContext executes a statement without returning rows.
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)

	// QueryContext executes a query that returns rows.
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)

	// QueryRowContext executes a query that returns at most one row.
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row

	// PrepareContext prepares a statement on this session.
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)

	// Begin starts a transaction on this session.
	Begin(ctx context.Context) error

	// Commit commits the current transaction.
	Commit(ctx context.Context) error

	// Rollback aborts the current transaction.
	Rollback(ctx context.Context) error

	// Savepoint creates a named savepoint inside the current transaction.
	Savepoint(ctx context.Context, name string) error

	// ReleaseSavepoint releases a named savepoint.
	ReleaseSavepoint(ctx context.Context, name string) error

	// RollbackToSavepoint rolls back to a named savepoint.
	RollbackToSavepoint(ctx context.Context, name string) error

	// PingContext verifies the connection is alive.
	PingContext(ctx context.Context) error

	// Close closes the physical connection.
	Close() error
}
