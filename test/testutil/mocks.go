package testutil

import (
	"context"
	"database/sql"

	"github.com/bratiask/dbal"
	"github.com/bratiask/dbal/types"
)

// MockDriver is a mock implementation of dbal.Driver for testing.
//
// It records every resolved configuration it was asked to connect with and
// hands out MockSession instances. Connect failures can be injected per
// backend host via ConnectErr.
type MockDriver struct {
	// ConnectErr, when set, makes Connect fail for configs whose Host
	// matches a key.
	ConnectErr map[string]error

	// Configs records the configuration of every Connect call in order.
	Configs []types.BackendConfig

	// Sessions records every session handed out, in order.
	Sessions []*MockSession
}

// Compile-time assertion that MockDriver implements dbal.Driver.
var _ dbal.Driver = (*MockDriver)(nil)

// NewMockDriver creates a new mock driver.
func NewMockDriver() *MockDriver {
	return &MockDriver{}
}

// Connect records the call and returns a fresh MockSession, or the injected
// error for the config's host.
func (d *MockDriver) Connect(_ context.Context, cfg types.BackendConfig) (dbal.Session, error) {
	d.Configs = append(d.Configs, cfg)

	if err := d.ConnectErr[cfg.Host]; err != nil {
		return nil, err
	}

	s := NewMockSession(cfg)
	d.Sessions = append(d.Sessions, s)

	return s, nil
}

// ConnectCount returns the number of Connect calls recorded.
func (d *MockDriver) ConnectCount() int {
	return len(d.Configs)
}

// MockSession is a mock implementation of dbal.Session for testing.
//
// It records every statement executed against it and can fail operations
// with injected errors.
type MockSession struct {
	// Config is the resolved configuration the session was opened with.
	Config types.BackendConfig

	// Statements records every statement text passed to Exec/Query/Prepare
	// and the transaction-control operations, in order.
	Statements []string

	// ExecErr, QueryErr and TxErr fail the corresponding operations.
	ExecErr  error
	QueryErr error
	TxErr    error

	// CloseErr fails Close.
	CloseErr error

	// Closed reports whether Close has been called.
	Closed bool
}

// Compile-time assertion that MockSession implements dbal.Session.
var _ dbal.Session = (*MockSession)(nil)

// NewMockSession creates a mock session for the given config.
func NewMockSession(cfg types.BackendConfig) *MockSession {
	return &MockSession{Config: cfg}
}

// record appends a statement to the session's history.
func (s *MockSession) record(stmt string) {
	s.Statements = append(s.Statements, stmt)
}

// ExecContext records the statement.
func (s *MockSession) ExecContext(_ context.Context, query string, _ ...any) (sql.Result, error) {
	s.record(query)
	if s.ExecErr != nil {
		return nil, s.ExecErr
	}

	return mockResult{}, nil
}

// QueryContext records the statement. The returned rows are nil; routing
// tests only care about which session was asked.
func (s *MockSession) QueryContext(_ context.Context, query string, _ ...any) (*sql.Rows, error) {
	s.record(query)
	if s.QueryErr != nil {
		return nil, s.QueryErr
	}

	return nil, nil
}

// QueryRowContext records the statement and returns nil.
func (s *MockSession) QueryRowContext(_ context.Context, query string, _ ...any) *sql.Row {
	s.record(query)

	return nil
}

// PrepareContext records the statement and returns nil.
func (s *MockSession) PrepareContext(_ context.Context, query string) (*sql.Stmt, error) {
	s.record(query)

	return nil, nil
}

// Begin records the operation.
func (s *MockSession) Begin(_ context.Context) error {
	s.record("BEGIN")

	return s.TxErr
}

// Commit records the operation.
func (s *MockSession) Commit(_ context.Context) error {
	s.record("COMMIT")

	return s.TxErr
}

// Rollback records the operation.
func (s *MockSession) Rollback(_ context.Context) error {
	s.record("ROLLBACK")

	return s.TxErr
}

// Savepoint records the operation.
func (s *MockSession) Savepoint(_ context.Context, name string) error {
	s.record("SAVEPOINT " + name)

	return s.TxErr
}

// ReleaseSavepoint records the operation.
func (s *MockSession) ReleaseSavepoint(_ context.Context, name string) error {
	s.record("RELEASE SAVEPOINT " + name)

	return s.TxErr
}

// RollbackToSavepoint records the operation.
func (s *MockSession) RollbackToSavepoint(_ context.Context, name string) error {
	s.record("ROLLBACK TO SAVEPOINT " + name)

	return s.TxErr
}

// PingContext records the operation.
func (s *MockSession) PingContext(_ context.Context) error {
	s.record("PING")

	return nil
}

// Close marks the session closed.
func (s *MockSession) Close() error {
	s.Closed = true

	return s.CloseErr
}

// mockResult is a trivial sql.Result.
type mockResult struct{}

// LastInsertId returns 1.
func (mockResult) LastInsertId() (int64, error) { return 1, nil }

// RowsAffected returns 1.
func (mockResult) RowsAffected() (int64, error) { return 1, nil }
