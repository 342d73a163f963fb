// Package dbal provides a primary/replica connection router for database
// clients.
//
// dbal presents a single connection-like handle while transparently
// splitting traffic between one writable primary backend and a pool of
// read-only replica backends. Statement execution is delegated to a Driver
// collaborator; the package's job is deciding, for every operation, which
// physical backend connection should handle it.
//
// # Key Features
//
//   - Read/Write Split: Raw read queries route to a replica; every
//     write-shaped operation routes to the primary
//   - Sticky Routing: The replica is picked once per session and never
//     re-selected; once a write promotes the session to the primary, plain
//     reads stay there (keep_replica disabled)
//   - Transaction Forcing: While a transaction is open, every operation,
//     including reads, is forced onto the primary
//   - Lazy Connect: Backends are opened on the first routing decision that
//     needs them, and reconnect lazily after Close
//
// # Basic Usage
//
//	cfg := dbal.Config{
//	    Driver:  "mysql",
//	    Primary: &types.BackendConfig{Host: "db-primary.local", Username: "app", Password: "secret", Database: "orders"},
//	    Replicas: []types.BackendConfig{
//	        {Host: "db-replica-1.local", Username: "app_ro", Password: "secret", Database: "orders"},
//	        {Host: "db-replica-2.local", Username: "app_ro", Password: "secret", Database: "orders"},
//	    },
//	}
//
//	conn, err := dbal.New(sqladapter.New(), cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conn.Close()
//
//	// Reads go to a replica...
//	rows, err := conn.QueryContext(ctx, "SELECT id, name FROM users")
//
//	// ...writes go to the primary, and the session sticks to it.
//	_, err = conn.ExecContext(ctx, "INSERT INTO users (name) VALUES (?)", name)
//
// # Error Handling
//
// dbal uses standard Go errors with clear semantics:
//
//   - types.ConfigurationError: missing primary/replica configuration or an
//     explicit target passed to Connect; fatal, never retried
//   - types.ConnectionError: the driver failed to open a backend
//     connection; surfaced unchanged, never retried, no replica fallback
//   - everything else (statement syntax errors, constraint violations) is
//     the driver's concern and passes through unmodified
//
// # Concurrency
//
// A Conn serves one logical session with at most one in-flight operation at
// a time; no internal locking is provided. Use one Conn per concurrent
// logical session.
package dbal
