package natspool

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/arloliu/vigil/types"
)

// defaultCheckoutTimeout bounds a checkout whose context carries no deadline.
const defaultCheckoutTimeout = 10 * time.Second

// Conn is a types.Connection backed by a dedicated NATS connection.
type Conn struct {
	addr string
	nc   *nats.Conn

	closeOnce sync.Once
}

// Compile-time assertion that Conn implements Connection.
var _ types.Connection = (*Conn)(nil)

// Address returns the endpoint identity this connection is bound to.
func (c *Conn) Address() string { return c.addr }

// Close releases the underlying NATS connection. Safe to call more than once.
func (c *Conn) Close() error {
	c.closeOnce.Do(c.nc.Close)

	return nil
}

// Config configures the NATS transport for one monitored server.
type Config struct {
	// URL is the NATS server URL, e.g. "nats://127.0.0.1:4222".
	URL string `yaml:"url"`

	// SubjectPrefix addresses the monitored server's status service,
	// e.g. "vigil.status.db-1". Commands are requested on
	// "<SubjectPrefix>.hello" and "<SubjectPrefix>.buildinfo".
	SubjectPrefix string `yaml:"subjectPrefix"`

	// ReconnectBase is the initial reconnect backoff. Default 50ms.
	ReconnectBase time.Duration `yaml:"reconnectBase"`

	// ReconnectCap bounds the reconnect backoff. Default 2s.
	ReconnectCap time.Duration `yaml:"reconnectCap"`
}

// setDefaults fills in missing transport configuration values.
func (cfg *Config) setDefaults() {
	if cfg.ReconnectBase == 0 {
		cfg.ReconnectBase = 50 * time.Millisecond
	}
	if cfg.ReconnectCap == 0 {
		cfg.ReconnectCap = 2 * time.Second
	}
}

// Pool hands out dedicated NATS connections for heartbeat use.
//
// Each Checkout dials a fresh connection so that a broken one can be
// discarded without affecting other traffic, mirroring how a driver's
// monitoring connection is kept separate from its operation pool.
type Pool struct {
	cfg Config

	mu     sync.Mutex
	closed bool
}

// Compile-time assertion that Pool implements types.Pool.
var _ types.Pool = (*Pool)(nil)

// NewPool creates a pool dialing the configured NATS URL.
//
// Parameters:
//   - cfg: Transport configuration; URL and SubjectPrefix are required
//
// Returns:
//   - *Pool: New pool instance
//   - error: Validation error when URL or SubjectPrefix is missing
func NewPool(cfg Config) (*Pool, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: NATS URL is required", types.ErrInvalidConfig)
	}
	if cfg.SubjectPrefix == "" {
		return nil, fmt.Errorf("%w: subject prefix is required", types.ErrInvalidConfig)
	}

	cfg.setDefaults()

	return &Pool{cfg: cfg}, nil
}

// Checkout dials a new connection, bounded by the deadline on ctx.
//
// Parameters:
//   - ctx: Carries the caller's sliding deadline and cancellation
//
// Returns:
//   - types.Connection: Established connection owned by the caller
//   - error: ErrPoolClosed, a dial failure, or ctx.Err()
func (p *Pool) Checkout(ctx context.Context) (types.Connection, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()

	if closed {
		return nil, types.ErrPoolClosed
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	timeout := defaultCheckoutTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}

	base, capDur := p.cfg.ReconnectBase, p.cfg.ReconnectCap
	nc, err := nats.Connect(p.cfg.URL,
		nats.Timeout(timeout),
		nats.MaxReconnects(-1),
		nats.CustomReconnectDelay(func(attempt int) time.Duration {
			return reconnectDelay(attempt, base, capDur)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to dial NATS: %w", err)
	}

	return &Conn{addr: p.cfg.SubjectPrefix, nc: nc}, nil
}

// Close marks the pool closed; subsequent checkouts fail with
// ErrPoolClosed. Connections already checked out are unaffected.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
}
