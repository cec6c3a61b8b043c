package heartbeat

import (
	"context"
	"fmt"
	"time"

	"github.com/arloliu/vigil/types"
)

// Outcome is the transient result of one heartbeat cycle.
//
// Conn is the connection the cycle left behind (possibly newly checked
// out); the monitor adopts it for the next cycle. An Outcome is consumed
// immediately to derive the next server description and then discarded.
type Outcome struct {
	Conn   types.Connection
	RTT    time.Duration
	Server *types.ServerInfo
	Build  *types.BuildInfo
}

// Executor performs one round of the status protocol against an
// established connection.
type Executor struct {
	proto types.Protocol
}

// NewExecutor creates an executor that issues commands via proto.
//
// Parameters:
//   - proto: Wire-protocol collaborator that executes the two commands
//
// Returns:
//   - *Executor: New executor instance
func NewExecutor(proto types.Protocol) *Executor {
	return &Executor{proto: proto}
}

// RunCheck issues the hello and buildInfo commands in sequence over conn
// under one shared deadline.
//
// The deadline is sliding: it is attached to the context once, so the
// buildInfo command gets whatever time remains after hello. The returned
// round-trip time is measured around hello only.
//
// Any failure fails the round as a whole; callers treat a closed
// connection, a protocol error and an expired deadline identically.
//
// Parameters:
//   - ctx: Cancellation for the monitor's lifetime
//   - conn: Established connection to check; not closed on failure
//   - deadline: Absolute deadline shared by both commands
//
// Returns:
//   - Outcome: Connection, round-trip time and parsed results
//   - error: First command failure, or ctx/deadline expiry
func (e *Executor) RunCheck(ctx context.Context, conn types.Connection, deadline time.Time) (Outcome, error) {
	cmdCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	start := time.Now()
	server, err := e.proto.Hello(cmdCtx, conn)
	if err != nil {
		return Outcome{}, fmt.Errorf("hello command failed: %w", err)
	}
	rtt := time.Since(start)

	build, err := e.proto.BuildInfo(cmdCtx, conn)
	if err != nil {
		return Outcome{}, fmt.Errorf("buildInfo command failed: %w", err)
	}

	return Outcome{
		Conn:   conn,
		RTT:    rtt,
		Server: server,
		Build:  build,
	}, nil
}
