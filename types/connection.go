package types

import "context"

// Connection is an established transport-layer connection to a server.
//
// Connection establishment, pooling and lifecycle belong to the Pool
// implementation; the monitor only checks connections out, runs status
// commands over them, and closes them when a heartbeat fails or the
// monitor shuts down.
type Connection interface {
	// Address returns the endpoint this connection is bound to.
	Address() string

	// Close releases the connection. Safe to call more than once.
	Close() error
}

// Pool hands out connections to a single server.
//
// Checkout must honor the deadline and cancellation carried by ctx: the
// monitor passes a context bounded by the remaining heartbeat budget,
// and a blocked checkout past shutdown would stall the monitor loop.
type Pool interface {
	// Checkout acquires a connection.
	//
	// Parameters:
	//   - ctx: Carries the caller's sliding deadline and cancellation
	//
	// Returns:
	//   - Connection: An established connection owned by the caller
	//   - error: ErrPoolExhausted, a timeout, or ctx.Err()
	Checkout(ctx context.Context) (Connection, error)
}

// Protocol executes the two status commands of a heartbeat round over an
// established connection. Implementations own wire-level encoding and
// decoding; the monitor consumes only the parsed results.
//
// Both methods must respect the deadline on ctx. The executor calls them
// sequentially under one shared deadline, so BuildInfo receives whatever
// budget Hello left behind.
type Protocol interface {
	// Hello issues the primary status/handshake command.
	Hello(ctx context.Context, conn Connection) (*ServerInfo, error)

	// BuildInfo issues the build/version command.
	BuildInfo(ctx context.Context, conn Connection) (*BuildInfo, error)
}
