package vigil

import "github.com/arloliu/vigil/types"

// Sentinel errors returned by the Monitor, re-exported from types so
// consumers rarely need to import both packages.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = types.ErrInvalidConfig

	// ErrPoolRequired is returned when the connection pool is nil.
	ErrPoolRequired = types.ErrPoolRequired

	// ErrProtocolRequired is returned when the protocol is nil.
	ErrProtocolRequired = types.ErrProtocolRequired

	// ErrAlreadyStarted is returned when Start is called on a running monitor.
	ErrAlreadyStarted = types.ErrAlreadyStarted

	// ErrNotStarted is returned when operations require a started monitor.
	ErrNotStarted = types.ErrNotStarted

	// ErrWaitTimeout is returned when WaitForRevision times out before
	// the description reaches the requested revision.
	ErrWaitTimeout = types.ErrWaitTimeout

	// ErrStopped is returned to readers blocked in WaitForRevision when
	// the monitor shuts down.
	ErrStopped = types.ErrStopped
)
