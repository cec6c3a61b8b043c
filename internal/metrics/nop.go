// Package metrics provides MetricsCollector implementations for the
// Vigil library: a no-op default and a Prometheus-backed collector.
package metrics

import (
	"time"

	"github.com/arloliu/vigil/types"
)

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external
// metrics collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A new no-op metrics collector instance
//
// Example:
//
//	collector := metrics.NewNop()
//	mon, _ := vigil.NewMonitor(addr, pool, proto, cfg, vigil.WithMetrics(collector))
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// RecordHeartbeat discards the heartbeat metric.
func (n *NopMetrics) RecordHeartbeat(_ /* addr */ string, _ /* rtt */ time.Duration, _ /* success */ bool) {
	// No-op
}

// RecordStateTransition discards the state transition metric.
func (n *NopMetrics) RecordStateTransition(_ /* addr */ string, _ /* from */, _ /* to */ types.ServerState) {
	// No-op
}

// RecordDescriptionChange discards the description change metric.
func (n *NopMetrics) RecordDescriptionChange(_ /* addr */ string, _ /* revision */ uint64) {
	// No-op
}
