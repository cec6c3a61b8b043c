// Package heartbeat implements one round of the server status protocol
// and the retry policy wrapped around it.
//
// # Overview
//
// A heartbeat cycle issues two status commands over one connection under
// one shared sliding deadline: the hello (status/handshake) command,
// whose round-trip time is the latency signal used for routing, followed
// by the build/version command with whatever budget remains.
//
// The Pinger wraps the executor with a bounded retry rule: a failed
// attempt closes and discards the connection, and exactly one more
// attempt is made with a freshly checked-out connection. A single
// dropped or stale pooled connection must not be mistaken for server
// unreachability, while a hard retry bound prevents retry storms.
//
// # Ownership
//
// The connection handed to (and left behind by) Ping is owned
// exclusively by the monitor loop for the duration of one cycle. It is
// never shared with readers of the server description.
package heartbeat
