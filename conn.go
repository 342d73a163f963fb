package dbal

import (
	"context"
	"database/sql"

	"github.com/bratiask/dbal/types"
)

// opKind classifies façade operations for routing purposes.
type opKind int

const (
	// opQuery is a raw read query.
	opQuery opKind = iota
	// opExec is a raw exec: insert, update, delete or DDL.
	opExec
	// opPrepare prepares a statement.
	opPrepare
	// opTxControl is a transaction-control operation: begin, commit,
	// rollback or an explicit savepoint operation.
	opTxControl
)

// routeFor maps each operation kind to its routing target. Every
// write-shaped operation resolves to the primary; only raw read queries
// route to the replica.
var routeFor = map[opKind]types.Role{
	opQuery:     types.RoleReplica,
	opExec:      types.RolePrimary,
	opPrepare:   types.RolePrimary,
	opTxControl: types.RolePrimary,
}

// Conn is the connection-like handle callers use.
//
// Every operation first asks the router for the session that should handle
// it (per the routeFor table), then delegates to that session. Results and
// errors from the underlying driver pass through unmodified.
//
// A Conn serves a single logical session and must not be used concurrently;
// use one Conn per concurrent logical session (e.g. per request).
type Conn struct {
	router *Router
}

// New creates a routing connection.
//
// The configuration is validated immediately: a missing primary or a
// missing/empty replica list fails with *types.ConfigurationError before
// any connection attempt. No backend is connected until the first
// operation.
//
// Parameters:
//   - driver: The driver used to open physical backend connections (required)
//   - cfg: The merged router configuration
//   - opts: Optional configuration options
//
// Returns:
//   - *Conn: A new routing connection
//   - error: *types.ConfigurationError on invalid configuration,
//     types.ErrNilDriver if driver is nil
func New(driver Driver, cfg Config, opts ...Option) (*Conn, error) {
	if driver == nil {
		return nil, types.ErrNilDriver
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	return &Conn{router: newRouter(cfg.normalized(), driver, options)}, nil
}

// sessionFor resolves the session for an operation kind via the dispatch
// table.
func (c *Conn) sessionFor(ctx context.Context, kind opKind) (Session, error) {
	return c.router.route(ctx, routeFor[kind])
}

// Connect establishes the default connection for the session.
//
// Connect takes no target: the first connect of a fresh session routes to a
// replica, and later calls keep the current session (sticky routing). Any
// explicit target argument is rejected with *types.ConfigurationError;
// use EnsureConnectedToPrimary or EnsureConnectedToReplica instead.
//
// Parameters:
//   - ctx: Context passed through to the driver
//   - target: Must be empty
//
// Returns:
//   - error: *types.ConfigurationError when a target is supplied,
//     *types.ConnectionError when the driver fails
func (c *Conn) Connect(ctx context.Context, target ...types.Role) error {
	if len(target) > 0 {
		return &types.ConfigurationError{Cause: types.ErrExplicitTarget}
	}

	_, err := c.router.route(ctx, roleNone)

	return err
}

// EnsureConnectedToPrimary forces routing to the primary backend, opening
// it if needed.
func (c *Conn) EnsureConnectedToPrimary(ctx context.Context) error {
	_, err := c.router.EnsurePrimary(ctx)

	return err
}

// EnsureConnectedToReplica forces routing to the replica backend, opening
// it if needed. While a transaction is open this still resolves to the
// primary.
func (c *Conn) EnsureConnectedToReplica(ctx context.Context) error {
	_, err := c.router.EnsureReplica(ctx)

	return err
}

// IsConnectedToPrimary reports whether the active session is the primary.
// It is false before any connection exists.
func (c *Conn) IsConnectedToPrimary() bool {
	return c.router.IsOnPrimary()
}

// QueryContext executes a read query.
//
// Reads route to the replica unless a transaction is open or the session
// was promoted to the primary.
func (c *Conn) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	session, err := c.sessionFor(ctx, opQuery)
	if err != nil {
		return nil, err
	}

	return session.QueryContext(ctx, query, args...)
}

// QueryRowContext executes a read query that returns at most one row.
//
// A failed backend connect surfaces as the error; query-level errors are
// deferred to Row.Scan, as with database/sql.
func (c *Conn) QueryRowContext(ctx context.Context, query string, args ...any) (*sql.Row, error) {
	session, err := c.sessionFor(ctx, opQuery)
	if err != nil {
		return nil, err
	}

	return session.QueryRowContext(ctx, query, args...), nil
}

// ExecContext executes a write statement on the primary.
func (c *Conn) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	session, err := c.sessionFor(ctx, opExec)
	if err != nil {
		return nil, err
	}

	return session.ExecContext(ctx, query, args...)
}

// PrepareContext prepares a statement on the primary.
func (c *Conn) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	session, err := c.sessionFor(ctx, opPrepare)
	if err != nil {
		return nil, err
	}

	return session.PrepareContext(ctx, query)
}

// Begin starts a transaction on the primary and increments the nesting
// depth. Nested calls create savepoints.
func (c *Conn) Begin(ctx context.Context) error {
	return c.router.BeginTransaction(ctx)
}

// Commit commits the innermost transaction level.
func (c *Conn) Commit(ctx context.Context) error {
	return c.router.Commit(ctx)
}

// Rollback aborts the innermost transaction level.
func (c *Conn) Rollback(ctx context.Context) error {
	return c.router.Rollback(ctx)
}

// Savepoint creates a named savepoint on the primary.
func (c *Conn) Savepoint(ctx context.Context, name string) error {
	session, err := c.sessionFor(ctx, opTxControl)
	if err != nil {
		return err
	}

	return session.Savepoint(ctx, name)
}

// ReleaseSavepoint releases a named savepoint on the primary.
func (c *Conn) ReleaseSavepoint(ctx context.Context, name string) error {
	session, err := c.sessionFor(ctx, opTxControl)
	if err != nil {
		return err
	}

	return session.ReleaseSavepoint(ctx, name)
}

// RollbackToSavepoint rolls back to a named savepoint on the primary.
func (c *Conn) RollbackToSavepoint(ctx context.Context, name string) error {
	session, err := c.sessionFor(ctx, opTxControl)
	if err != nil {
		return err
	}

	return session.RollbackToSavepoint(ctx, name)
}

// PingContext verifies the active session, connecting with default routing
// when nothing is connected yet.
func (c *Conn) PingContext(ctx context.Context) error {
	session, err := c.router.route(ctx, roleNone)
	if err != nil {
		return err
	}

	return session.PingContext(ctx)
}

// Close releases both backend sessions and resets the routing state.
// It is idempotent; the next operation reconnects lazily.
func (c *Conn) Close() error {
	return c.router.Close()
}
