package sql

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/go-sql-driver/mysql"
	"github.com/hashicorp/go-multierror"

	"github.com/bratiask/dbal"
	"github.com/bratiask/dbal/types"
)

// Driver opens backend sessions through database/sql.
//
// Each Connect call opens its own *sql.DB and checks out a single dedicated
// *sql.Conn from it, so transaction-control statements issued by the router
// are guaranteed to land on the same physical connection.
type Driver struct {
	dsnFunc DSNFunc
}

// Compile-time assertion that Driver implements dbal.Driver.
var _ dbal.Driver = (*Driver)(nil)

// DSNFunc renders a backend configuration into a driver DSN string.
type DSNFunc func(cfg types.BackendConfig) (string, error)

// Option configures a Driver.
type Option func(*Driver)

// WithDSNFunc overrides DSN rendering.
//
// The default renderer understands the "mysql" driver and the raw "dsn"
// param passthrough; use this option to support other database/sql drivers.
//
// Parameters:
//   - fn: The DSN renderer to use
//
// Returns:
//   - Option: Configuration option
func WithDSNFunc(fn DSNFunc) Option {
	return func(d *Driver) {
		d.dsnFunc = fn
	}
}

// New creates a database/sql backed driver.
//
// Parameters:
//   - opts: Optional configuration options
//
// Returns:
//   - *Driver: A new driver
func New(opts ...Option) *Driver {
	d := &Driver{dsnFunc: DSN}
	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Connect opens a dedicated session to the backend described by cfg.
func (d *Driver) Connect(ctx context.Context, cfg types.BackendConfig) (dbal.Session, error) {
	dsn, err := d.dsnFunc(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName(cfg), dsn)
	if err != nil {
		return nil, err
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()

		return nil, err
	}

	return &session{db: db, conn: conn}, nil
}

// driverName returns the database/sql driver name for a backend.
func driverName(cfg types.BackendConfig) string {
	if cfg.Driver == "" {
		return "mysql"
	}

	return cfg.Driver
}

// DSN renders the default DSN for a backend configuration.
//
// A raw DSN supplied via Params["dsn"] is passed through verbatim,
// regardless of driver. Otherwise the "mysql" driver (the default) is
// rendered with go-sql-driver's DSN format; other drivers must either
// supply Params["dsn"] or install a custom renderer via WithDSNFunc.
//
// Parameters:
//   - cfg: The backend configuration
//
// Returns:
//   - string: The DSN
//   - error: When the configuration cannot be rendered
func DSN(cfg types.BackendConfig) (string, error) {
	if raw, ok := cfg.Params["dsn"]; ok && raw != "" {
		return raw, nil
	}

	name := driverName(cfg)
	if name != "mysql" {
		return "", fmt.Errorf("sqladapter: no DSN renderer for driver %q, set params.dsn or use WithDSNFunc", name)
	}

	mcfg := mysql.NewConfig()
	mcfg.User = cfg.Username
	mcfg.Passwd = cfg.Password
	mcfg.Net = "tcp"
	mcfg.Addr = cfg.Host
	if cfg.Port > 0 {
		mcfg.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	}
	mcfg.DBName = cfg.Database

	if cfg.Charset != "" || len(cfg.Params) > 0 {
		mcfg.Params = make(map[string]string, len(cfg.Params)+1)
		for k, v := range cfg.Params {
			mcfg.Params[k] = v
		}
		if cfg.Charset != "" {
			mcfg.Params["charset"] = cfg.Charset
		}
	}

	return mcfg.FormatDSN(), nil
}

// session is a dedicated database/sql connection implementing dbal.Session.
type session struct {
	db   *sql.DB
	conn *sql.Conn
}

// Compile-time assertion that session implements dbal.Session.
var _ dbal.Session = (*session)(nil)

// ExecContext executes a statement without returning rows.
func (s *session) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.conn.ExecContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows.
func (s *session) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.conn.QueryContext(ctx, query, args...)
}

// QueryRowContext executes a query that returns at most one row.
func (s *session) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return s.conn.QueryRowContext(ctx, query, args...)
}

// PrepareContext prepares a statement on this session.
func (s *session) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	return s.conn.PrepareContext(ctx, query)
}

// Begin starts a transaction with an explicit statement, keeping the
// transaction state on this session rather than in database/sql.
func (s *session) Begin(ctx context.Context) error {
	_, err := s.conn.ExecContext(ctx, "BEGIN")

	return err
}

// Commit commits the current transaction.
func (s *session) Commit(ctx context.Context) error {
	_, err := s.conn.ExecContext(ctx, "COMMIT")

	return err
}

// Rollback aborts the current transaction.
func (s *session) Rollback(ctx context.Context) error {
	_, err := s.conn.ExecContext(ctx, "ROLLBACK")

	return err
}

// savepointNameRegex restricts savepoint identifiers to a safe charset,
// since they are interpolated into statements.
var savepointNameRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// checkSavepointName validates a savepoint identifier.
func checkSavepointName(name string) error {
	if !savepointNameRegex.MatchString(name) {
		return fmt.Errorf("sqladapter: invalid savepoint name %q", name)
	}

	return nil
}

// Savepoint creates a named savepoint.
func (s *session) Savepoint(ctx context.Context, name string) error {
	if err := checkSavepointName(name); err != nil {
		return err
	}
	_, err := s.conn.ExecContext(ctx, "SAVEPOINT "+name)

	return err
}

// ReleaseSavepoint releases a named savepoint.
func (s *session) ReleaseSavepoint(ctx context.Context, name string) error {
	if err := checkSavepointName(name); err != nil {
		return err
	}
	_, err := s.conn.ExecContext(ctx, "RELEASE SAVEPOINT "+name)

	return err
}

// RollbackToSavepoint rolls back to a named savepoint.
func (s *session) RollbackToSavepoint(ctx context.Context, name string) error {
	if err := checkSavepointName(name); err != nil {
		return err
	}
	_, err := s.conn.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name)

	return err
}

// PingContext verifies the connection is alive.
func (s *session) PingContext(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// Close returns the dedicated connection and closes its pool.
func (s *session) Close() error {
	var result *multierror.Error

	if err := s.conn.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := s.db.Close(); err != nil {
		result = multierror.Append(result, err)
	}

	return result.ErrorOrNil()
}
