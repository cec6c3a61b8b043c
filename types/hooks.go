package types

import (
	"context"
	"time"
)

// HeartbeatResult carries the outcome of a completed heartbeat cycle to
// the OnHeartbeatFinished hook. On failure, RTT is zero, Server and
// Build are nil, and Err holds the final attempt's error.
type HeartbeatResult struct {
	Addr   string
	RTT    time.Duration
	Server *ServerInfo
	Build  *BuildInfo
	Err    error
}

// Hooks defines callbacks for server monitoring events.
//
// All hooks are optional and invoked synchronously from the monitor
// goroutine so that event ordering is preserved (OnHeartbeatStarted is
// always observed before the matching OnHeartbeatFinished). Hook errors
// and panics are logged and swallowed at the call site; a misbehaving
// hook cannot stop the monitor or corrupt its state.
//
// Best practices for hook implementation:
//   - Complete quickly; the monitor does not heartbeat while a hook runs
//   - Respect context cancellation
//   - Don't block on long I/O operations
//   - Handle errors gracefully (return error for logging)
type Hooks struct {
	// OnHeartbeatStarted is called before the first attempt of a cycle.
	OnHeartbeatStarted func(ctx context.Context, addr string) error

	// OnHeartbeatFinished is called after the final attempt of a cycle,
	// whether it succeeded or exhausted its retries.
	OnHeartbeatFinished func(ctx context.Context, result HeartbeatResult) error

	// OnDescriptionChanged is called whenever the stored description's
	// revision advances.
	OnDescriptionChanged func(ctx context.Context, prev, curr Description) error
}
