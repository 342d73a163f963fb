// Package metrics provides internal metrics utilities for dbal.
package metrics

import "github.com/bratiask/dbal/types"

// NopMetrics is a no-op metrics collector that discards all metrics.
//
// This is used as the default metrics collector when no collector is
// configured, avoiding nil checks throughout the codebase.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements types.MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNopMetrics creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A collector that discards all metrics
func NewNopMetrics() *NopMetrics {
	return &NopMetrics{}
}

// ----------------------
// Connection lifecycle
// ----------------------

// IncConnectTotal discards the metric.
func (m *NopMetrics) IncConnectTotal(_ types.Role) {}

// IncConnectError discards the metric.
func (m *NopMetrics) IncConnectError(_ types.Role) {}

// ObserveConnectDuration discards the metric.
func (m *NopMetrics) ObserveConnectDuration(_ types.Role, _ float64) {}

// IncCloseTotal discards the metric.
func (m *NopMetrics) IncCloseTotal() {}

// ----------------------
// Routing
// ----------------------

// IncRouteTotal discards the metric.
func (m *NopMetrics) IncRouteTotal(_ types.Role) {}

// IncTxForced discards the metric.
func (m *NopMetrics) IncTxForced() {}

// IncReplicaPromotion discards the metric.
func (m *NopMetrics) IncReplicaPromotion() {}
