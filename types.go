package vigil

import "github.com/arloliu/vigil/types"

// Type aliases re-exported from the types package for API convenience.
// Consumers can use vigil.Description instead of types.Description.
type (
	// Description is a versioned snapshot of a server's reachability and capabilities.
	Description = types.Description

	// ServerState is the monitor's view of a server's reachability.
	ServerState = types.ServerState

	// ServerInfo is the parsed hello result.
	ServerInfo = types.ServerInfo

	// BuildInfo is the parsed build/version result.
	BuildInfo = types.BuildInfo

	// Connection is an established transport-layer connection.
	Connection = types.Connection

	// Pool hands out connections to a single server.
	Pool = types.Pool

	// Protocol executes the status commands of a heartbeat round.
	Protocol = types.Protocol

	// Hooks defines callbacks for server monitoring events.
	Hooks = types.Hooks

	// HeartbeatResult carries a finished heartbeat's outcome to hooks.
	HeartbeatResult = types.HeartbeatResult

	// Logger defines methods for structured logging.
	Logger = types.Logger

	// MetricsCollector defines methods for recording operational metrics.
	MetricsCollector = types.MetricsCollector
)

// Server state constants re-exported from the types package.
const (
	StateDisconnected = types.StateDisconnected
	StateUnknown      = types.StateUnknown
	StateConnected    = types.StateConnected
)
