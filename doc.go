// Package vigil provides the per-server monitoring core of a database
// client: a continuously refreshed, versioned description of a server's
// reachability and capabilities, maintained by a background heartbeat
// loop.
//
// Each Monitor runs one unattended goroutine that periodically executes
// a lightweight status protocol (a hello command followed by a
// build/version command) over a pooled connection, publishes the result
// as an immutable Description with a strictly increasing revision, and
// lets any number of concurrent readers either read the latest
// description or block until the revision advances past a value they
// already know is stale.
//
// Vigil deliberately treats transports as collaborators: connection
// establishment and pooling (types.Pool), and wire-level command
// execution (types.Protocol), are injected at construction. The natspool
// package ships a reference implementation over NATS request-reply.
//
// Core behaviors:
//   - Transient network failures are absorbed by a bounded
//     retry-with-fresh-connection policy and reflected only as a
//     Disconnected description, never as an error to readers
//   - The topology layer can force an immediate recheck (RequestCheck)
//     or mark the server unusable (Invalidate) without stopping the loop
//   - All waits use sliding deadlines, so nested operations cannot
//     together exceed the caller's budget
//
// Example:
//
//	cfg := vigil.DefaultConfig()
//	mon, err := vigil.NewMonitor("db-1:5432", pool, proto, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := mon.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer mon.Stop(context.Background())
//
//	desc := mon.Description()
//	fresh, err := mon.WaitForRevision(ctx, desc.Revision+1, 10*time.Second)
package vigil
