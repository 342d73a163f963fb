// Package vm provides a VictoriaMetrics-based implementation of the MetricsCollector interface.
//
// This package uses github.com/VictoriaMetrics/metrics for lightweight,
// high-performance Prometheus-compatible metrics collection.
//
// # Basic Usage
//
// Create a collector with default prefix "dbal":
//
//	collector := vm.New()
//	conn, _ := dbal.New(driver, cfg,
//	    dbal.WithMetrics(collector),
//	)
//
// # Custom Prefix
//
// Use WithPrefix to customize the metric name prefix:
//
//	collector := vm.New(vm.WithPrefix("myapp"))
//
// This produces metrics like:
//   - myapp_connect_total{backend="primary"}
//   - myapp_route_total{backend="replica"}
//
// # Exposing Metrics
//
// Use the Handler method to expose metrics via HTTP:
//
//	http.HandleFunc("/metrics", collector.Handler)
//	http.ListenAndServe(":8080", nil)
//
// Or use WritePrometheus to write metrics to a custom writer:
//
//	collector.WritePrometheus(w)
//
// # Metrics Provided
//
// Connection lifecycle:
//   - {prefix}_connect_total{backend} - Counter of connect attempts
//   - {prefix}_connect_errors_total{backend} - Counter of connect failures
//   - {prefix}_connect_duration_seconds{backend} - Histogram of connect durations
//   - {prefix}_close_total - Counter of router closes
//
// Routing:
//   - {prefix}_route_total{backend} - Counter of routing decisions
//   - {prefix}_tx_forced_total - Counter of replica requests forced to the primary by an open transaction
//   - {prefix}_replica_promotions_total - Counter of replica slots overwritten by the primary handle
package vm
