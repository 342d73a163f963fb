package dbal

import (
	"fmt"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bratiask/dbal/internal/logging"
	"github.com/bratiask/dbal/internal/metrics"
	"github.com/bratiask/dbal/types"
)

// Config holds the merged router configuration: one primary backend, a
// non-empty list of replica backends and the shared driver identity.
//
// The zero value is not usable; at minimum Primary and one Replica entry
// must be set. Validation happens at construction time, before any
// connection attempt.
type Config struct {
	// Driver is the shared driver identity, applied to the primary and to
	// every replica entry at construction time.
	Driver string `yaml:"driver"`

	// Primary is the writable backend configuration. Required.
	Primary *types.BackendConfig `yaml:"primary"`

	// Replicas is the ordered list of read-only backend configurations.
	// Required, at least one entry. One entry is chosen uniformly at random
	// on the first replica connect and pinned for the router's lifetime.
	Replicas []types.BackendConfig `yaml:"replica"`

	// KeepReplica controls whether promoting to the primary also overwrites
	// the replica slot. When false (the default), the first primary connect
	// assigns the primary handle to the replica slot, so later plain reads
	// stay on the primary for the rest of the session.
	KeepReplica bool `yaml:"keep_replica"`
}

// validate checks the configuration for structural problems.
//
// Returns:
//   - error: *types.ConfigurationError describing the first problem found,
//     or nil if the configuration is usable
func (c Config) validate() error {
	if c.Primary == nil {
		return &types.ConfigurationError{Cause: types.ErrMissingPrimary}
	}
	if len(c.Replicas) == 0 {
		return &types.ConfigurationError{Cause: types.ErrMissingReplicas}
	}

	return nil
}

// normalized returns a deep copy of the configuration with the shared
// driver identity merged into the primary and every replica entry.
//
// Entries that already carry an explicit driver keep it.
func (c Config) normalized() Config {
	out := c

	primary := c.Primary.Clone()
	if primary.Driver == "" {
		primary.Driver = c.Driver
	}
	out.Primary = &primary

	out.Replicas = make([]types.BackendConfig, len(c.Replicas))
	for i, replica := range c.Replicas {
		r := replica.Clone()
		if r.Driver == "" {
			r.Driver = c.Driver
		}
		out.Replicas[i] = r
	}

	return out
}

// ParseConfig parses a YAML document into a Config.
//
// The document shape mirrors the recognized configuration options:
//
//	driver: mysql
//	primary:
//	  host: db-primary.local
//	  username: app
//	  password: secret
//	  database: orders
//	  charset: utf8mb4
//	replica:
//	  - host: db-replica-1.local
//	    username: app_ro
//	    password: secret
//	    database: orders
//	keep_replica: false
//
// Parameters:
//   - data: Raw YAML bytes
//
// Returns:
//   - *Config: The parsed configuration (not yet validated)
//   - error: Parse error, if any
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("dbal: parse config: %w", err)
	}

	return &cfg, nil
}

// LoadConfig reads and parses a YAML configuration file.
//
// Parameters:
//   - path: Path to the YAML file
//
// Returns:
//   - *Config: The parsed configuration (not yet validated)
//   - error: Read or parse error, if any
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dbal: read config %s: %w", path, err)
	}

	return ParseConfig(data)
}

// ConnectInfo describes an established backend connection. It is passed to
// the connect hook registered via WithConnectHook.
type ConnectInfo struct {
	// Role identifies which slot the connection was opened for.
	Role types.Role

	// ConnID is a unique identifier for the physical connection, also used
	// in debug log messages.
	ConnID string

	// Config is the resolved backend configuration the driver received.
	Config types.BackendConfig
}

// ConnectHook is called after a backend connection has been established.
type ConnectHook func(info ConnectInfo)

// routerOptions holds the ambient collaborators of a router.
type routerOptions struct {
	logger    types.Logger
	metrics   types.MetricsCollector
	randSrc   rand.Source
	onConnect ConnectHook
}

// defaultOptions returns routerOptions with nop collaborators.
func defaultOptions() routerOptions {
	return routerOptions{
		logger:  logging.NewNopLogger(),
		metrics: metrics.NewNopMetrics(),
	}
}

// Option configures a router.
type Option func(*routerOptions)

// WithLogger sets the logger for routing and lifecycle events.
//
// Parameters:
//   - logger: The logger to use
//
// Returns:
//   - Option: Configuration option
func WithLogger(logger types.Logger) Option {
	return func(o *routerOptions) {
		o.logger = logger
	}
}

// WithMetrics sets the metrics collector.
//
// Parameters:
//   - collector: The metrics collector to use
//
// Returns:
//   - Option: Configuration option
func WithMetrics(collector types.MetricsCollector) Option {
	return func(o *routerOptions) {
		o.metrics = collector
	}
}

// WithRandSource sets the random source used for replica selection.
//
// The default source is seeded from the system clock. Injecting a fixed
// source makes replica selection deterministic in tests.
//
// Parameters:
//   - src: The random source to use
//
// Returns:
//   - Option: Configuration option
func WithRandSource(src rand.Source) Option {
	return func(o *routerOptions) {
		o.randSrc = src
	}
}

// WithConnectHook registers a hook invoked after every successful backend
// connect.
//
// Parameters:
//   - hook: The hook to invoke
//
// Returns:
//   - Option: Configuration option
func WithConnectHook(hook ConnectHook) Option {
	return func(o *routerOptions) {
		o.onConnect = hook
	}
}
