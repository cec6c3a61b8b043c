package types

import "time"

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
// All methods are called from the monitor goroutine and must be thread-safe
// when a collector is shared between monitors.
type MetricsCollector interface {
	// RecordHeartbeat records the outcome of one heartbeat cycle.
	// rtt is zero when the cycle failed.
	RecordHeartbeat(addr string, rtt time.Duration, success bool)

	// RecordStateTransition records a server state transition.
	RecordStateTransition(addr string, from, to ServerState)

	// RecordDescriptionChange records an accepted description update.
	RecordDescriptionChange(addr string, revision uint64)
}
