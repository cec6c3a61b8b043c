package types

// ServerState represents the monitor's view of a server's reachability.
//
// A server starts in StateDisconnected and moves to StateConnected after
// the first successful heartbeat. A failed heartbeat cycle (both attempts
// exhausted) moves it back to StateDisconnected. StateUnknown is reserved
// for descriptions built before any heartbeat has completed, for example
// when the topology layer invalidates a server it has never reached.
type ServerState int

const (
	// StateDisconnected indicates no usable connection to the server.
	StateDisconnected ServerState = iota

	// StateUnknown indicates the server has not been checked yet.
	StateUnknown

	// StateConnected indicates the last heartbeat cycle succeeded.
	StateConnected
)

// String returns the string representation of the state.
func (s ServerState) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateUnknown:
		return "Unknown"
	case StateConnected:
		return "Connected"
	default:
		return "Invalid"
	}
}
