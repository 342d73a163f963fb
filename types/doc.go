// Package types provides shared types and error definitions for the dbal library.
//
// This is a leaf package with zero dbal imports to prevent import cycles.
// All packages in dbal can safely import this package.
//
// # Types
//
// Role identifies which backend slot is being referenced:
//
//	const (
//	    RolePrimary Role = "primary"
//	    RoleReplica Role = "replica"
//	)
//
// BackendConfig carries the connection parameters for one backend (host,
// credentials, database, charset and driver-specific options).
//
// # Errors
//
// Sentinel errors are provided for common failure scenarios:
//
//   - ErrMissingPrimary: The primary backend configuration is absent
//   - ErrMissingReplicas: The replica list is absent or empty
//   - ErrExplicitTarget: A target was passed to Connect
//   - ErrNilDriver: A nil driver was provided
//
// Wrapper errors carry context and support errors.Is/As via Unwrap:
//
//   - ConfigurationError: Invalid or incomplete router configuration
//   - ConnectionError: The driver failed to open a backend connection
package types
