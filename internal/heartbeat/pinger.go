package heartbeat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arloliu/vigil/types"
)

// maxAttempts bounds one heartbeat cycle: the original attempt plus one
// retry with a fresh connection.
const maxAttempts = 2

// Pinger wraps the executor with the bounded retry-with-fresh-connection
// rule and emits heartbeat events.
//
// A Pinger is owned by a single monitor loop and is not safe for
// concurrent Ping calls.
type Pinger struct {
	addr    string
	pool    types.Pool
	exec    *Executor
	timeout time.Duration
	hooks   *types.Hooks
	metrics types.MetricsCollector
	logger  types.Logger
}

// NewPinger creates a pinger for one server.
//
// Parameters:
//   - addr: Endpoint identity, used in events and metrics
//   - pool: Connection pool bounded to the same server
//   - proto: Wire-protocol collaborator
//   - timeout: Per-cycle budget shared by checkout and both commands
//   - hooks: Event callbacks, must be non-nil (use hooks.Nop())
//   - metrics: Metrics collector, must be non-nil (use metrics.NewNop())
//   - logger: Logger, must be non-nil (use logger.NewNop())
//
// Returns:
//   - *Pinger: New pinger instance
func NewPinger(
	addr string,
	pool types.Pool,
	proto types.Protocol,
	timeout time.Duration,
	hooks *types.Hooks,
	metrics types.MetricsCollector,
	logger types.Logger,
) *Pinger {
	return &Pinger{
		addr:    addr,
		pool:    pool,
		exec:    NewExecutor(proto),
		timeout: timeout,
		hooks:   hooks,
		metrics: metrics,
		logger:  logger,
	}
}

// Ping produces exactly one heartbeat outcome, trying at most twice.
//
// If conn is nil, a connection is checked out from the pool first,
// bounded by the remaining cycle budget. On any failure (checkout or
// execution) the held connection is closed and discarded, and one more
// attempt is made with a newly checked-out connection. A second failure
// yields ErrHeartbeatFailed and leaves no connection behind.
//
// OnHeartbeatStarted is emitted before the first attempt; after the
// final attempt (success or exhaustion) OnHeartbeatFinished is emitted
// with the round-trip time and parsed results, or nil values plus the
// error on total failure.
//
// Cancellation of ctx aborts the cycle immediately without a retry and
// propagates ctx.Err(); the caller distinguishes it from a failed
// heartbeat.
//
// Parameters:
//   - ctx: Cancellation for the monitor's lifetime
//   - conn: Connection held over from the previous cycle, or nil
//
// Returns:
//   - Outcome: Successful heartbeat outcome with the adopted connection
//   - error: ErrHeartbeatFailed after exhausted attempts, or ctx.Err()
func (p *Pinger) Ping(ctx context.Context, conn types.Connection) (Outcome, error) {
	deadline := time.Now().Add(p.timeout)

	p.emitStarted(ctx)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		outcome, err := p.attempt(ctx, conn, deadline)
		if err == nil {
			p.emitFinished(ctx, outcome, nil)
			p.metrics.RecordHeartbeat(p.addr, outcome.RTT, true)

			return outcome, nil
		}

		// attempt closed whatever connection it used; the retry always
		// starts from a fresh checkout.
		conn = nil

		if ctx.Err() != nil {
			return Outcome{}, ctx.Err()
		}

		lastErr = err
		p.logger.Debug("heartbeat attempt failed",
			"addr", p.addr,
			"attempt", attempt,
			"error", err,
		)
	}

	p.emitFinished(ctx, Outcome{}, lastErr)
	p.metrics.RecordHeartbeat(p.addr, 0, false)

	return Outcome{}, fmt.Errorf("%w: %w", types.ErrHeartbeatFailed, lastErr)
}

// attempt runs a single checkout-and-check attempt. On failure the
// connection (if one was acquired) is closed before returning.
func (p *Pinger) attempt(ctx context.Context, conn types.Connection, deadline time.Time) (Outcome, error) {
	if conn == nil {
		checkoutCtx, cancel := context.WithDeadline(ctx, deadline)
		acquired, err := p.pool.Checkout(checkoutCtx)
		cancel()
		if err != nil {
			return Outcome{}, fmt.Errorf("connection checkout failed: %w", err)
		}
		conn = acquired
	}

	outcome, err := p.exec.RunCheck(ctx, conn, deadline)
	if err != nil {
		_ = conn.Close()

		return Outcome{}, err
	}

	return outcome, nil
}

// emitStarted invokes the OnHeartbeatStarted hook, shielding the monitor
// from hook errors and panics.
func (p *Pinger) emitStarted(ctx context.Context) {
	if p.hooks.OnHeartbeatStarted == nil {
		return
	}

	if err := p.callHook(func() error { return p.hooks.OnHeartbeatStarted(ctx, p.addr) }); err != nil {
		p.logger.Warn("heartbeat started hook error", "addr", p.addr, "error", err)
	}
}

// emitFinished invokes the OnHeartbeatFinished hook with the cycle's
// result, shielding the monitor from hook errors and panics.
func (p *Pinger) emitFinished(ctx context.Context, outcome Outcome, cycleErr error) {
	if p.hooks.OnHeartbeatFinished == nil {
		return
	}

	result := types.HeartbeatResult{
		Addr:   p.addr,
		RTT:    outcome.RTT,
		Server: outcome.Server,
		Build:  outcome.Build,
		Err:    cycleErr,
	}

	if err := p.callHook(func() error { return p.hooks.OnHeartbeatFinished(ctx, result) }); err != nil {
		p.logger.Warn("heartbeat finished hook error", "addr", p.addr, "error", err)
	}
}

// callHook runs fn and converts a panic into an error so a misbehaving
// hook cannot unwind the monitor loop.
func (p *Pinger) callHook(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Join(err, fmt.Errorf("hook panicked: %v", r))
		}
	}()

	return fn()
}
