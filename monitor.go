package vigil

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/arloliu/vigil/internal/delay"
	"github.com/arloliu/vigil/internal/heartbeat"
	"github.com/arloliu/vigil/internal/hooks"
	"github.com/arloliu/vigil/internal/logger"
	"github.com/arloliu/vigil/internal/metrics"
	"github.com/arloliu/vigil/types"
)

// ChangeCallback receives the previous and current descriptions whenever
// the stored revision advances.
//
// Callbacks run synchronously on the monitor goroutine; panics are
// recovered and logged so a misbehaving callback cannot stop the loop.
type ChangeCallback func(prev, curr types.Description)

// Monitor maintains a continuously refreshed, versioned description of a
// single server by running the status protocol against it in the
// background.
//
// Monitor is the externally visible handle of the per-server monitoring
// core. It owns:
//   - the description store (single writer, many concurrent readers)
//   - the monitor loop goroutine and its cancellation
//   - the currently scheduled heartbeat delay, which external code can
//     interrupt to force an immediate recheck
//
// Thread Safety:
//   - All public methods are safe for concurrent use
//   - Descriptions are published atomically; a reader that observes
//     revision R has observed every field of the description at R
//
// Lifecycle:
//   - Create with NewMonitor()
//   - Call Start() to launch the background loop
//   - Read Description(), block on WaitForRevision(), subscribe with
//     RegisterChangeCallback()
//   - Call Stop() for graceful shutdown; the last description remains
//     readable afterwards
type Monitor struct {
	cfg   Config
	addr  string
	pool  types.Pool
	proto types.Protocol

	hooks   *types.Hooks
	metrics types.MetricsCollector
	logger  types.Logger

	store  *descriptionStore
	pinger *heartbeat.Pinger

	// Change-callback fan-out
	callbacks      *xsync.Map[uint64, ChangeCallback]
	nextCallbackID atomic.Uint64

	// Lifecycle management. mu also guards the published heartbeatDelay
	// so an interrupt racing with delay creation lands on a real delay.
	mu             sync.Mutex
	started        bool
	ctx            context.Context
	cancel         context.CancelFunc
	doneCh         chan struct{}
	heartbeatDelay *delay.Delay
	checkPending   bool
}

// NewMonitor creates a monitor for the server at addr.
//
// The pool and protocol are the transport collaborators: the pool hands
// out established connections to addr, and the protocol executes the two
// status commands over them. Both are required; everything else is
// optional.
//
// Returns a concrete *Monitor following the "accept interfaces, return
// structs" principle. Consumers can define their own interfaces for
// testing if needed.
//
// Parameters:
//   - addr: Endpoint identity of the server to monitor
//   - pool: Connection pool bounded to addr
//   - proto: Wire-protocol collaborator
//   - cfg: Runtime configuration with parsed durations
//   - opts: Optional configuration (hooks, metrics, logger)
//
// Returns:
//   - *Monitor: Initialized monitor instance
//   - error: Validation error if configuration or collaborators are invalid
//
// Example:
//
//	cfg := vigil.DefaultConfig()
//	mon, err := vigil.NewMonitor("db-1:5432", pool, proto, cfg)
//	if err != nil {
//	    return err
//	}
//	if err := mon.Start(); err != nil {
//	    return err
//	}
//	defer mon.Stop(context.Background())
func NewMonitor(addr string, pool types.Pool, proto types.Protocol, cfg Config, opts ...Option) (*Monitor, error) {
	if pool == nil {
		return nil, ErrPoolRequired
	}
	if proto == nil {
		return nil, ErrProtocolRequired
	}

	SetDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	options := monitorOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	hooksInstance := options.hooks
	if hooksInstance == nil {
		hooksInstance = hooks.Nop()
	}

	metricsCollector := options.metrics
	if metricsCollector == nil {
		metricsCollector = metrics.NewNop()
	}

	loggerInstance := options.logger
	if loggerInstance == nil {
		loggerInstance = logger.NewNop()
	}

	m := &Monitor{
		cfg:       cfg,
		addr:      addr,
		pool:      pool,
		proto:     proto,
		hooks:     hooksInstance,
		metrics:   metricsCollector,
		logger:    loggerInstance,
		store:     newDescriptionStore(addr),
		callbacks: xsync.NewMap[uint64, ChangeCallback](),
	}

	m.pinger = heartbeat.NewPinger(
		addr, pool, proto, cfg.HeartbeatTimeout,
		hooksInstance, metricsCollector, loggerInstance,
	)

	return m, nil
}

// Start launches the monitor loop in the background.
//
// The loop runs heartbeat cycles indefinitely until Stop is called;
// network failures never stop it, they only affect the description it
// publishes.
//
// Returns:
//   - error: ErrAlreadyStarted if the monitor is already running
func (m *Monitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return ErrAlreadyStarted
	}

	m.started = true
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.doneCh = make(chan struct{})

	go m.run(m.ctx, m.doneCh)

	m.logger.Debug("monitor started", "addr", m.addr)

	return nil
}

// Stop cancels the monitor loop and waits for it to unwind.
//
// The in-flight heartbeat (if any) is aborted through the shared
// cancellation, and the held connection is disposed unconditionally.
// After Stop returns, Description still serves the last stored value but
// no further updates occur. Safe to call once; subsequent calls return
// ErrNotStarted.
//
// Parameters:
//   - ctx: Bounds how long to wait for the loop to unwind; in addition,
//     ShutdownTimeout from the configuration always applies
//
// Returns:
//   - error: ErrNotStarted if not running, or ctx.Err() on timeout
func (m *Monitor) Stop(ctx context.Context) error {
	m.mu.Lock()

	if !m.started {
		m.mu.Unlock()

		return ErrNotStarted
	}

	m.started = false
	m.cancel()
	doneCh := m.doneCh

	m.mu.Unlock()

	shutdownTimer := time.NewTimer(m.cfg.ShutdownTimeout)
	defer shutdownTimer.Stop()

	select {
	case <-doneCh:
		m.logger.Debug("monitor stopped", "addr", m.addr)

		return nil
	case <-shutdownTimer.C:
		return fmt.Errorf("monitor shutdown timed out after %v", m.cfg.ShutdownTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Description returns the latest stored description.
//
// Never blocks beyond the store's critical section.
//
// Returns:
//   - Description: Current description snapshot
func (m *Monitor) Description() types.Description {
	return m.store.description()
}

// WaitForRevision blocks until the stored description's revision reaches
// at least minRevision, the timeout expires, or ctx is cancelled.
//
// The deadline is computed once from timeout and checked at every step
// (sliding), so repeated waits on intermediate revisions cannot together
// exceed the caller's budget. Timeout surfaces ErrWaitTimeout;
// cancellation surfaces ctx.Err(); the two are never conflated.
//
// The revision comparison and the change-token read happen inside the
// same critical section, so an update accepted between the read and the
// wait is observed through the already-completed token: a waiter can
// never miss a concurrent update.
//
// Parameters:
//   - ctx: Cancellation for the waiting caller
//   - minRevision: Revision the description must reach
//   - timeout: Total budget for the wait
//
// Returns:
//   - Description: First observed description with revision >= minRevision
//   - error: ErrWaitTimeout on expiry, ctx.Err() on cancellation
//
// Example:
//
//	stale := mon.Description()
//	fresh, err := mon.WaitForRevision(ctx, stale.Revision+1, 5*time.Second)
func (m *Monitor) WaitForRevision(ctx context.Context, minRevision uint64, timeout time.Duration) (types.Description, error) {
	deadline := time.Now().Add(timeout)

	// Shutdown can never be followed by another update, so a blocked
	// reader is released with ErrStopped instead of hanging until its
	// deadline. A monitor that was never started has a nil doneCh, which
	// blocks forever in the select; the deadline still applies.
	m.mu.Lock()
	doneCh := m.doneCh
	m.mu.Unlock()

	for {
		if err := ctx.Err(); err != nil {
			return types.Description{}, err
		}

		// An already-reached revision succeeds regardless of the
		// remaining budget; the deadline applies only to actual waiting.
		desc, token := m.store.descriptionAndToken()
		if desc.Revision >= minRevision {
			return desc, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return types.Description{}, ErrWaitTimeout
		}

		waitTimer := time.NewTimer(remaining)

		select {
		case <-token:
			waitTimer.Stop()
		case <-waitTimer.C:
			return types.Description{}, ErrWaitTimeout
		case <-ctx.Done():
			waitTimer.Stop()

			return types.Description{}, ctx.Err()
		case <-doneCh:
			waitTimer.Stop()

			// A final update may have landed just before shutdown.
			if desc := m.store.description(); desc.Revision >= minRevision {
				return desc, nil
			}

			return types.Description{}, ErrStopped
		}
	}
}

// RequestCheck asks the monitor to run the next heartbeat immediately
// instead of waiting out the full interval.
//
// Intended for the topology layer, for example after observing a socket
// error for this server on another code path. Forced rechecks are
// rate-limited by MinHeartbeatInterval. No-op when the monitor is not
// running or a heartbeat is already in flight.
func (m *Monitor) RequestCheck() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.checkPending = true
	if m.heartbeatDelay != nil {
		m.heartbeatDelay.Interrupt()
	}
}

// Invalidate marks the server Disconnected with the supplied error and
// forces an immediate recheck.
//
// Used by the topology layer when an operation on another connection
// proved the server unusable: readers see the Disconnected description
// right away instead of after the next scheduled heartbeat.
//
// Parameters:
//   - err: Reason the server is considered unusable
func (m *Monitor) Invalidate(err error) {
	prev, curr, changed := m.store.invalidate(err)
	if changed {
		m.notifyChanged(prev, curr)
	}

	m.RequestCheck()
}

// RegisterChangeCallback subscribes to description changes.
//
// The callback fires with the previous and current description pair
// whenever the revision advances.
//
// Parameters:
//   - cb: Callback to invoke on every accepted update
//
// Returns:
//   - uint64: Subscription id for UnregisterChangeCallback
func (m *Monitor) RegisterChangeCallback(cb ChangeCallback) uint64 {
	id := m.nextCallbackID.Add(1)
	m.callbacks.Store(id, cb)

	return id
}

// UnregisterChangeCallback removes a previously registered callback.
//
// Parameters:
//   - id: Subscription id returned by RegisterChangeCallback
func (m *Monitor) UnregisterChangeCallback(id uint64) {
	m.callbacks.Delete(id)
}

// run is the unattended background loop. It terminates only on
// cancellation; heartbeat failures never propagate out of it.
//
// The loop's context and done channel are captured at Start so that a
// loop still unwinding after a timed-out Stop cannot touch the channels
// of a restarted monitor.
func (m *Monitor) run(ctx context.Context, doneCh chan struct{}) {
	defer close(doneCh)

	var conn types.Connection

	defer func() {
		if conn != nil {
			_ = conn.Close()
		}
	}()

	for {
		if ctx.Err() != nil {
			// Cancellation is the loop's defined termination, not a fault.
			return
		}

		cycleStart := time.Now()

		outcome, err := m.pinger.Ping(ctx, conn)
		conn = outcome.Conn
		if ctx.Err() != nil {
			return
		}

		next := m.deriveDescription(outcome, err)
		prev, curr, changed := m.store.update(next)
		if changed {
			m.notifyChanged(prev, curr)
		}

		if err := m.waitForNextCycle(ctx, cycleStart); err != nil {
			return
		}
	}
}

// deriveDescription builds the next description from one heartbeat
// outcome. Failure clears the handshake results; success carries them
// with the fresh latency sample.
func (m *Monitor) deriveDescription(outcome heartbeat.Outcome, err error) types.Description {
	if err != nil {
		return types.Description{
			Addr:        m.addr,
			State:       types.StateDisconnected,
			LastError:   err,
			LastUpdated: time.Now(),
		}
	}

	return types.Description{
		Addr:        m.addr,
		State:       types.StateConnected,
		RTT:         outcome.RTT,
		Server:      outcome.Server,
		Build:       outcome.Build,
		LastUpdated: time.Now(),
	}
}

// waitForNextCycle publishes a fresh interruptible delay for the full
// heartbeat interval and waits on it. A forced recheck, whether it was
// requested during the previous heartbeat or arrived as an interrupt
// mid-wait, cuts the wait short but never below the MinHeartbeatInterval
// floor measured from the start of the previous cycle; the cycle after a
// forced one is scheduled at the full interval again. Returns an error
// only on cancellation.
func (m *Monitor) waitForNextCycle(ctx context.Context, cycleStart time.Time) error {
	m.mu.Lock()

	pending := m.checkPending
	m.checkPending = false

	var heartbeatDelay *delay.Delay
	if !pending {
		// Publishing the delay under the same lock RequestCheck takes
		// closes the race between interrupt and delay creation.
		m.heartbeatDelay = delay.New(m.cfg.HeartbeatInterval)
		heartbeatDelay = m.heartbeatDelay
	}

	m.mu.Unlock()

	if heartbeatDelay != nil {
		if err := heartbeatDelay.Wait(ctx); err != nil {
			return err
		}

		m.mu.Lock()
		pending = m.checkPending
		m.checkPending = false
		m.mu.Unlock()
	}

	if !pending {
		return nil
	}

	// The floor is not interruptible: repeated RequestCheck calls
	// collapse into one recheck per floor interval.
	remaining := m.cfg.MinHeartbeatInterval - time.Since(cycleStart)
	if remaining <= 0 {
		return nil
	}

	floorTimer := time.NewTimer(remaining)
	defer floorTimer.Stop()

	select {
	case <-floorTimer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// notifyChanged fans the change out to hooks, registered callbacks and
// metrics. Failures are surfaced to the log and swallowed so they cannot
// destabilize the monitor.
func (m *Monitor) notifyChanged(prev, curr types.Description) {
	m.logger.Info("server description changed",
		"addr", m.addr,
		"from", prev.State.String(),
		"to", curr.State.String(),
		"revision", curr.Revision,
	)

	if prev.State != curr.State {
		m.metrics.RecordStateTransition(m.addr, prev.State, curr.State)
	}
	m.metrics.RecordDescriptionChange(m.addr, curr.Revision)

	if m.hooks.OnDescriptionChanged != nil {
		if err := m.safeCallback(func() error {
			return m.hooks.OnDescriptionChanged(context.Background(), prev, curr)
		}); err != nil {
			m.logger.Warn("description changed hook error", "addr", m.addr, "error", err)
		}
	}

	m.callbacks.Range(func(id uint64, cb ChangeCallback) bool {
		if err := m.safeCallback(func() error {
			cb(prev, curr)

			return nil
		}); err != nil {
			m.logger.Warn("change callback panic", "addr", m.addr, "id", id, "error", err)
		}

		return true
	})
}

// safeCallback runs fn, converting a panic into an error.
func (m *Monitor) safeCallback(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("callback panicked: %v", r)
		}
	}()

	return fn()
}
