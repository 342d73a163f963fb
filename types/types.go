// Package types provides shared types and errors for the dbal library.
//
// This is a "leaf" package with no imports from other dbal packages,
// allowing it to be imported by any package without causing import cycles.
package types

import (
	"errors"
)

// Role identifies a backend slot in the primary/replica setup.
type Role string

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

const (
	// RolePrimary represents the single writable backend.
	RolePrimary Role = "primary"
	// RoleReplica represents the read-only backend.
	RoleReplica Role = "replica"
)

// BackendConfig holds the connection parameters for a single backend.
//
// The Driver field is normally empty in user-supplied configuration; the
// router merges the shared driver identity into every backend at
// construction time.
type BackendConfig struct {
	// Driver is the driver identity for this backend (e.g. "mysql").
	Driver string `yaml:"driver,omitempty"`

	// Host is the backend host name or address.
	Host string `yaml:"host"`

	// Port is the backend port. Zero means the driver default.
	Port int `yaml:"port,omitempty"`

	// Username is the authentication user.
	Username string `yaml:"username"`

	// Password is the authentication password.
	Password string `yaml:"password"`

	// Database is the schema/database name to connect to.
	Database string `yaml:"database"`

	// Charset is the connection character set. When a replica entry omits
	// it, the primary's charset is inherited at resolution time.
	Charset string `yaml:"charset,omitempty"`

	// Params holds driver-specific options passed through verbatim.
	Params map[string]string `yaml:"params,omitempty"`
}

// Clone returns a deep copy of the config.
func (c BackendConfig) Clone() BackendConfig {
	out := c
	if c.Params != nil {
		out.Params = make(map[string]string, len(c.Params))
		for k, v := range c.Params {
			out.Params[k] = v
		}
	}

	return out
}

// Sentinel errors for common failure scenarios.
var (
	// ErrMissingPrimary indicates the primary backend configuration is absent.
	ErrMissingPrimary = errors.New("dbal: primary backend configuration is required")

	// ErrMissingReplicas indicates the replica list is absent or empty.
	ErrMissingReplicas = errors.New("dbal: at least one replica backend configuration is required")

	// ErrExplicitTarget indicates a target was passed to Connect.
	// Connect takes no target; use EnsureConnectedToPrimary or
	// EnsureConnectedToReplica for explicit routing.
	ErrExplicitTarget = errors.New("dbal: connect does not accept a target")

	// ErrNilDriver indicates that a nil driver was provided.
	ErrNilDriver = errors.New("dbal: driver cannot be nil")
)

// ConfigurationError indicates invalid or incomplete router configuration.
//
// It is fatal at construction or at the offending call and is never retried.
type ConfigurationError struct {
	// Cause is the underlying reason, usually one of the sentinel errors.
	Cause error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return "dbal: invalid configuration: " + e.Cause.Error()
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// ConnectionError indicates that the driver failed to open a physical
// connection to a backend.
//
// The underlying driver failure is surfaced unchanged: the connect is not
// retried and no alternative replica is attempted, so partial outages are
// never masked.
type ConnectionError struct {
	// Role identifies which backend slot failed to connect.
	Role Role

	// Cause is the underlying driver error.
	Cause error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	return "dbal: connect to " + string(e.Role) + " backend failed: " + e.Cause.Error()
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// Logger defines the logging interface used throughout the library.
//
// The args are alternating key/value pairs, following the structured
// logging convention of log/slog.
type Logger interface {
	// Debug logs a debug-level message.
	Debug(msg string, args ...any)

	// Info logs an info-level message.
	Info(msg string, args ...any)

	// Warn logs a warning-level message.
	Warn(msg string, args ...any)

	// Error logs an error-level message.
	Error(msg string, args ...any)
}
