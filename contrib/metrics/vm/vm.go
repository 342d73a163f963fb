package vm

import (
	"fmt"
	"io"
	"net/http"

	"github.com/VictoriaMetrics/metrics"

	"github.com/bratiask/dbal/types"
)

// Option configures a Collector.
type Option func(*Collector)

// WithPrefix sets the metric name prefix.
//
// Default: "dbal"
//
// Parameters:
//   - prefix: The prefix to use for all metric names
//
// Returns:
//   - Option: A configuration option
func WithPrefix(prefix string) Option {
	return func(c *Collector) {
		c.prefix = prefix
	}
}

// WithMetricsSet sets the metrics set to use.
//
// If provided, the collector will register metrics with this set instead of
// creating a new one. The caller is responsible for exposing this set
// (e.g., via metrics.WritePrometheus or a custom handler).
//
// Parameters:
//   - set: The metrics set to use
//
// Returns:
//   - Option: A configuration option
func WithMetricsSet(set *metrics.Set) Option {
	return func(c *Collector) {
		c.set = set
	}
}

// Collector implements types.MetricsCollector using VictoriaMetrics.
//
// All metrics are pre-created at initialization time for optimal
// performance. Thread-safe for concurrent use.
type Collector struct {
	set    *metrics.Set
	prefix string

	// Connection lifecycle metrics
	connectTotalPrimary    *metrics.Counter
	connectTotalReplica    *metrics.Counter
	connectErrorsPrimary   *metrics.Counter
	connectErrorsReplica   *metrics.Counter
	connectDurationPrimary *metrics.Histogram
	connectDurationReplica *metrics.Histogram
	closeTotal             *metrics.Counter

	// Routing metrics
	routeTotalPrimary *metrics.Counter
	routeTotalReplica *metrics.Counter
	txForcedTotal     *metrics.Counter
	promotionsTotal   *metrics.Counter
}

// Compile-time assertion that Collector implements types.MetricsCollector.
var _ types.MetricsCollector = (*Collector)(nil)

// New creates a new VictoriaMetrics-based metrics collector.
//
// The collector creates its own metrics.Set and registers it globally.
// All metrics are pre-created at initialization for optimal performance.
//
// Parameters:
//   - opts: Configuration options (e.g., WithPrefix)
//
// Returns:
//   - *Collector: A new metrics collector ready for use
//
// Example:
//
//	collector := vm.New(vm.WithPrefix("myapp"))
//	conn, _ := dbal.New(driver, cfg,
//	    dbal.WithMetrics(collector),
//	)
func New(opts ...Option) *Collector {
	c := &Collector{
		prefix: "dbal",
	}

	for _, opt := range opts {
		opt(c)
	}

	// If no set is provided, create a new one and register it globally.
	// If a set is provided, we assume the caller manages it.
	if c.set == nil {
		c.set = metrics.NewSet()
		metrics.RegisterSet(c.set)
	}

	c.initMetrics()

	return c
}

// initMetrics pre-creates all metrics with the configured prefix.
func (c *Collector) initMetrics() {
	p := c.prefix
	np := types.RolePrimary.String()
	nr := types.RoleReplica.String()

	// Connection lifecycle metrics
	c.connectTotalPrimary = c.set.NewCounter(fmt.Sprintf(`%s_connect_total{backend="%s"}`, p, np))
	c.connectTotalReplica = c.set.NewCounter(fmt.Sprintf(`%s_connect_total{backend="%s"}`, p, nr))
	c.connectErrorsPrimary = c.set.NewCounter(fmt.Sprintf(`%s_connect_errors_total{backend="%s"}`, p, np))
	c.connectErrorsReplica = c.set.NewCounter(fmt.Sprintf(`%s_connect_errors_total{backend="%s"}`, p, nr))
	c.connectDurationPrimary = c.set.NewHistogram(fmt.Sprintf(`%s_connect_duration_seconds{backend="%s"}`, p, np))
	c.connectDurationReplica = c.set.NewHistogram(fmt.Sprintf(`%s_connect_duration_seconds{backend="%s"}`, p, nr))
	c.closeTotal = c.set.NewCounter(fmt.Sprintf(`%s_close_total`, p))

	// Routing metrics
	c.routeTotalPrimary = c.set.NewCounter(fmt.Sprintf(`%s_route_total{backend="%s"}`, p, np))
	c.routeTotalReplica = c.set.NewCounter(fmt.Sprintf(`%s_route_total{backend="%s"}`, p, nr))
	c.txForcedTotal = c.set.NewCounter(fmt.Sprintf(`%s_tx_forced_total`, p))
	c.promotionsTotal = c.set.NewCounter(fmt.Sprintf(`%s_replica_promotions_total`, p))
}

// Set returns the underlying metrics set.
func (c *Collector) Set() *metrics.Set {
	return c.set
}

// Handler returns an HTTP handler that exposes metrics in Prometheus format.
//
// Example:
//
//	http.HandleFunc("/metrics", collector.Handler)
func (c *Collector) Handler(w http.ResponseWriter, _ *http.Request) {
	c.set.WritePrometheus(w)
}

// WritePrometheus writes all metrics in Prometheus format to the given writer.
//
// Parameters:
//   - w: The writer to write metrics to
func (c *Collector) WritePrometheus(w io.Writer) {
	c.set.WritePrometheus(w)
}

// ----------------------
// Connection lifecycle
// ----------------------

// IncConnectTotal increments the backend connect attempt counter.
func (c *Collector) IncConnectTotal(role types.Role) {
	if role == types.RolePrimary {
		c.connectTotalPrimary.Inc()
	} else {
		c.connectTotalReplica.Inc()
	}
}

// IncConnectError increments the backend connect failure counter.
func (c *Collector) IncConnectError(role types.Role) {
	if role == types.RolePrimary {
		c.connectErrorsPrimary.Inc()
	} else {
		c.connectErrorsReplica.Inc()
	}
}

// ObserveConnectDuration records a connect duration in seconds.
func (c *Collector) ObserveConnectDuration(role types.Role, seconds float64) {
	if role == types.RolePrimary {
		c.connectDurationPrimary.Update(seconds)
	} else {
		c.connectDurationReplica.Update(seconds)
	}
}

// IncCloseTotal increments the router close counter.
func (c *Collector) IncCloseTotal() {
	c.closeTotal.Inc()
}

// ----------------------
// Routing
// ----------------------

// IncRouteTotal increments the routing decision counter.
func (c *Collector) IncRouteTotal(role types.Role) {
	if role == types.RolePrimary {
		c.routeTotalPrimary.Inc()
	} else {
		c.routeTotalReplica.Inc()
	}
}

// IncTxForced increments the transaction-forced routing counter.
func (c *Collector) IncTxForced() {
	c.txForcedTotal.Inc()
}

// IncReplicaPromotion increments the replica promotion counter.
func (c *Collector) IncReplicaPromotion() {
	c.promotionsTotal.Inc()
}
