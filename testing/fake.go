package testing

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arloliu/vigil/types"
)

// FakeConn is an in-memory Connection that records whether it was closed.
type FakeConn struct {
	addr   string
	closed atomic.Bool
}

var _ types.Connection = (*FakeConn)(nil)

// NewFakeConn creates a fake connection bound to addr.
func NewFakeConn(addr string) *FakeConn {
	return &FakeConn{addr: addr}
}

// Address returns the endpoint this connection is bound to.
func (c *FakeConn) Address() string { return c.addr }

// Close marks the connection closed. Idempotent.
func (c *FakeConn) Close() error {
	c.closed.Store(true)

	return nil
}

// Closed reports whether Close was called.
func (c *FakeConn) Closed() bool { return c.closed.Load() }

// FakePool is a scriptable Pool that counts checkouts.
//
// By default every Checkout succeeds with a fresh FakeConn. Errors can
// be queued with QueueError and are consumed one per Checkout before the
// pool returns to the default behavior. Safe for concurrent use.
type FakePool struct {
	addr string

	mu        sync.Mutex
	errs      []error
	checkouts int
	conns     []*FakeConn
}

var _ types.Pool = (*FakePool)(nil)

// NewFakePool creates a fake pool for addr.
func NewFakePool(addr string) *FakePool {
	return &FakePool{addr: addr}
}

// QueueError queues errors to be returned by upcoming Checkout calls, in
// order, before successful checkouts resume.
func (p *FakePool) QueueError(errs ...error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.errs = append(p.errs, errs...)
}

// Checkout returns the next scripted error or a fresh FakeConn.
func (p *FakePool) Checkout(ctx context.Context) (types.Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.checkouts++

	if len(p.errs) > 0 {
		err := p.errs[0]
		p.errs = p.errs[1:]

		return nil, err
	}

	conn := NewFakeConn(p.addr)
	p.conns = append(p.conns, conn)

	return conn, nil
}

// Checkouts returns how many times Checkout was called.
func (p *FakePool) Checkouts() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.checkouts
}

// Conns returns every connection the pool handed out, in order.
func (p *FakePool) Conns() []*FakeConn {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]*FakeConn, len(p.conns))
	copy(out, p.conns)

	return out
}

// FakeProtocol is a scriptable Protocol that counts command executions.
//
// Successful Hello calls return the configured ServerInfo (a default
// standalone server unless SetServerInfo was called); BuildInfo behaves
// likewise. Per-call failures can be queued with QueueHelloError and
// QueueBuildInfoError. An optional per-command latency lets tests drive
// deterministic RTT values and deadline expiry. Safe for concurrent use.
type FakeProtocol struct {
	mu sync.Mutex

	info  *types.ServerInfo
	build *types.BuildInfo

	helloErrs []error
	buildErrs []error

	latency time.Duration

	helloCalls int
	buildCalls int
}

var _ types.Protocol = (*FakeProtocol)(nil)

// NewFakeProtocol creates a fake protocol answering as a standalone server.
func NewFakeProtocol() *FakeProtocol {
	return &FakeProtocol{
		info: &types.ServerInfo{
			Role:           types.RoleStandalone,
			MaxWireVersion: 1,
		},
		build: &types.BuildInfo{Version: "0.0.0-fake"},
	}
}

// SetServerInfo replaces the hello result returned on success.
func (f *FakeProtocol) SetServerInfo(info *types.ServerInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.info = info
}

// SetBuildInfo replaces the buildInfo result returned on success.
func (f *FakeProtocol) SetBuildInfo(build *types.BuildInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.build = build
}

// SetLatency makes every command take d before answering, bounded by the
// command context's deadline.
func (f *FakeProtocol) SetLatency(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.latency = d
}

// QueueHelloError queues errors for upcoming Hello calls.
func (f *FakeProtocol) QueueHelloError(errs ...error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.helloErrs = append(f.helloErrs, errs...)
}

// QueueBuildInfoError queues errors for upcoming BuildInfo calls.
func (f *FakeProtocol) QueueBuildInfoError(errs ...error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.buildErrs = append(f.buildErrs, errs...)
}

// HelloCalls returns how many times Hello was called.
func (f *FakeProtocol) HelloCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.helloCalls
}

// BuildInfoCalls returns how many times BuildInfo was called.
func (f *FakeProtocol) BuildInfoCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.buildCalls
}

// Hello answers the status/handshake command.
func (f *FakeProtocol) Hello(ctx context.Context, _ types.Connection) (*types.ServerInfo, error) {
	f.mu.Lock()
	f.helloCalls++
	var err error
	if len(f.helloErrs) > 0 {
		err = f.helloErrs[0]
		f.helloErrs = f.helloErrs[1:]
	}
	info := f.info
	latency := f.latency
	f.mu.Unlock()

	if waitErr := f.wait(ctx, latency); waitErr != nil {
		return nil, waitErr
	}

	if err != nil {
		return nil, err
	}

	return info, nil
}

// BuildInfo answers the build/version command.
func (f *FakeProtocol) BuildInfo(ctx context.Context, _ types.Connection) (*types.BuildInfo, error) {
	f.mu.Lock()
	f.buildCalls++
	var err error
	if len(f.buildErrs) > 0 {
		err = f.buildErrs[0]
		f.buildErrs = f.buildErrs[1:]
	}
	build := f.build
	latency := f.latency
	f.mu.Unlock()

	if waitErr := f.wait(ctx, latency); waitErr != nil {
		return nil, waitErr
	}

	if err != nil {
		return nil, err
	}

	return build, nil
}

// wait simulates command latency while honoring ctx.
func (f *FakeProtocol) wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
