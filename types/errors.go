package types

import (
	"context"
	"errors"
)

// Sentinel errors for the Vigil library.
//
// These errors provide type-safe error checking using errors.Is() and errors.As().
// All components should use these sentinel errors for known error conditions
// and wrap external errors with context using fmt.Errorf("%s: %w", msg, err).

// Monitor errors - Public API errors returned by the Monitor component.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrPoolRequired is returned when the connection pool is nil.
	ErrPoolRequired = errors.New("connection pool is required")

	// ErrProtocolRequired is returned when the protocol is nil.
	ErrProtocolRequired = errors.New("protocol is required")

	// ErrAlreadyStarted is returned when Start is called on a running monitor.
	ErrAlreadyStarted = errors.New("monitor already started")

	// ErrNotStarted is returned when operations require a started monitor.
	ErrNotStarted = errors.New("monitor not started")

	// ErrStopped is returned to readers blocked in WaitForRevision when
	// the monitor shuts down: a stopped monitor can never advance the
	// revision, so waiting further is hopeless. Distinct from both
	// ErrWaitTimeout and the caller's own cancellation.
	ErrStopped = errors.New("monitor stopped")

	// ErrWaitTimeout is returned when WaitForRevision's deadline expires
	// before the description reaches the requested revision. Deliberately
	// distinct from context cancellation and from server unreachability.
	ErrWaitTimeout = errors.New("timed out waiting for description revision")
)

// Heartbeat errors - Internal heartbeat component errors.
var (
	// ErrHeartbeatFailed is returned when a heartbeat cycle exhausted
	// both of its attempts.
	ErrHeartbeatFailed = errors.New("heartbeat failed")

	// ErrConnectionClosed is returned when a command is issued on a
	// closed connection.
	ErrConnectionClosed = errors.New("connection closed")
)

// Pool errors - Returned by Pool implementations.
var (
	// ErrPoolExhausted is returned when no connection can be checked out.
	ErrPoolExhausted = errors.New("connection pool exhausted")

	// ErrPoolClosed is returned when the pool has been shut down.
	ErrPoolClosed = errors.New("connection pool closed")
)

// IsTimeout checks whether an error indicates an expired deadline.
//
// This treats both the library's own ErrWaitTimeout and a wrapped
// context.DeadlineExceeded (as produced by commands that run under a
// sliding deadline) as timeouts. context.Canceled is not a timeout.
//
// Parameters:
//   - err: The error to check
//
// Returns:
//   - bool: true if the error indicates a timeout, false otherwise
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}

	return errors.Is(err, ErrWaitTimeout) || errors.Is(err, context.DeadlineExceeded)
}
