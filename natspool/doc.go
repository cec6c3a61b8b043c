// Package natspool provides a reference implementation of the Vigil
// transport collaborators (types.Pool, types.Connection, types.Protocol)
// over NATS request-reply.
//
// Each monitored server is addressed by a subject prefix; the two status
// commands are JSON requests on "<prefix>.hello" and
// "<prefix>.buildinfo". The Responder type serves those subjects, which
// is enough to run a full monitor in tests and examples without a real
// database server.
//
// The package is intentionally small: production drivers will supply
// their own pool and wire protocol. It exists to exercise the monitor
// end to end over a real transport.
package natspool
