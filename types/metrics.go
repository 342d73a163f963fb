package types

// MetricsCollector defines methods for collecting operational metrics.
//
// All backend-scoped methods accept a Role parameter for labeling.
// Implementations should be thread-safe as methods may be called concurrently
// when multiple routers share a collector.
//
// Example usage with VictoriaMetrics (via contrib/metrics/vm):
//
//	import vmmetrics "github.com/bratiask/dbal/contrib/metrics/vm"
//
//	collector := vmmetrics.New(vmmetrics.WithPrefix("myapp"))
//	conn, _ := dbal.New(driver, cfg,
//	    dbal.WithMetrics(collector),
//	)
//
//	// Expose metrics via HTTP
//	http.HandleFunc("/metrics", collector.Handler)
type MetricsCollector interface {
	// ----------------------
	// Connection lifecycle
	// ----------------------

	// IncConnectTotal increments the backend connect attempt counter.
	IncConnectTotal(role Role)

	// IncConnectError increments the backend connect failure counter.
	IncConnectError(role Role)

	// ObserveConnectDuration records a connect duration in seconds.
	ObserveConnectDuration(role Role, seconds float64)

	// IncCloseTotal increments the router close counter.
	IncCloseTotal()

	// ----------------------
	// Routing
	// ----------------------

	// IncRouteTotal increments the routing decision counter for the
	// effective target of a route call. It counts every explicit routing
	// decision, including re-activations of an already open slot;
	// IncConnectTotal tracks physical connects.
	IncRouteTotal(role Role)

	// IncTxForced increments the counter of replica requests that were
	// forced onto the primary by an open transaction.
	IncTxForced()

	// IncReplicaPromotion increments the counter of replica slots
	// overwritten by the primary handle (keep-replica disabled).
	IncReplicaPromotion()
}
