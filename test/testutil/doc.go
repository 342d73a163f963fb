// Package testutil provides test utilities and mock implementations for dbal testing.
//
// This package provides mock implementations of dbal interfaces for unit
// testing routing behavior without real database backends.
//
// # Mock Implementations
//
//   - [MockDriver]: Mock implementation of dbal.Driver
//   - [MockSession]: Mock implementation of dbal.Session
//
// # Usage
//
// Create a mock driver and inspect which backends were connected and which
// statements each session received:
//
//	driver := testutil.NewMockDriver()
//	conn, _ := dbal.New(driver, cfg)
//
//	_, _ = conn.ExecContext(ctx, "INSERT INTO users (name) VALUES (?)", "a")
//
//	// The exec connected the primary backend.
//	require.Equal(t, cfg.Primary.Host, driver.Configs[0].Host)
//	require.Equal(t, []string{"INSERT INTO users (name) VALUES (?)"}, driver.Sessions[0].Statements)
//
// Connect failures can be injected per host:
//
//	driver.ConnectErr = map[string]error{"db-replica-1.local": io.ErrUnexpectedEOF}
package testutil
