package types

import (
	"time"

	"github.com/zeebo/xxh3"
)

// Role describes the role a server reported in its hello response.
type Role string

// Server roles reported by the hello command.
const (
	RoleUnknown    Role = ""
	RolePrimary    Role = "primary"
	RoleSecondary  Role = "secondary"
	RoleStandalone Role = "standalone"
)

// ServerInfo holds the parsed result of the hello (status/handshake) command.
//
// Raw carries the undecoded response payload; equality between two
// ServerInfo values compares the structured fields plus an xxh3
// fingerprint of Raw, so extensions the parser does not model still
// register as changes.
type ServerInfo struct {
	Role           Role
	ReadOnly       bool
	MinWireVersion int32
	MaxWireVersion int32
	MaxBatchSize   int32
	Raw            []byte
}

// Equal reports whether two hello results are interchangeable.
func (s *ServerInfo) Equal(other *ServerInfo) bool {
	if s == nil || other == nil {
		return s == other
	}

	return s.Role == other.Role &&
		s.ReadOnly == other.ReadOnly &&
		s.MinWireVersion == other.MinWireVersion &&
		s.MaxWireVersion == other.MaxWireVersion &&
		s.MaxBatchSize == other.MaxBatchSize &&
		xxh3.Hash(s.Raw) == xxh3.Hash(other.Raw)
}

// BuildInfo holds the parsed result of the build/version command.
type BuildInfo struct {
	Version string
	GitSHA  string
	Raw     []byte
}

// Equal reports whether two build results are interchangeable.
func (b *BuildInfo) Equal(other *BuildInfo) bool {
	if b == nil || other == nil {
		return b == other
	}

	return b.Version == other.Version &&
		b.GitSHA == other.GitSHA &&
		xxh3.Hash(b.Raw) == xxh3.Hash(other.Raw)
}

// Description is an immutable, versioned snapshot of a server's
// last-known reachability and capabilities.
//
// The monitor loop is the only writer; it publishes a complete new value
// under the store lock on every accepted update, so a reader that
// observes Revision R has observed every field at R. Values must not be
// mutated after publication.
//
// Invariants:
//   - Revision strictly increases on every accepted update, starting at 0
//   - A Disconnected description carries no ServerInfo/BuildInfo
//   - RTT is zero while disconnected
type Description struct {
	// Addr is the endpoint identity of the monitored server.
	Addr string

	// State is the reachability state derived from the last heartbeat cycle.
	State ServerState

	// Revision is the monotonically increasing version of this description.
	Revision uint64

	// RTT is the latest measured round-trip time of the hello command.
	// The latest sample is used verbatim; no smoothing is applied.
	RTT time.Duration

	// Server holds the parsed hello result, nil while disconnected.
	Server *ServerInfo

	// Build holds the parsed build/version result, nil while disconnected.
	Build *BuildInfo

	// LastError records why the server became Disconnected, nil otherwise.
	LastError error

	// LastUpdated is when this description was derived.
	LastUpdated time.Time
}

// NewDescription creates the initial description for a server at revision 0.
//
// Parameters:
//   - addr: Endpoint identity of the server
//
// Returns:
//   - Description: Disconnected description at revision 0
func NewDescription(addr string) Description {
	return Description{
		Addr:        addr,
		State:       StateDisconnected,
		LastUpdated: time.Now(),
	}
}

// Equal reports whether two descriptions are structurally identical.
//
// Revision, RTT and LastUpdated are excluded: Revision is bookkeeping,
// and a steady-state heartbeat that only refreshes the latency sample
// must not register as a change (and therefore must not advance the
// revision or wake waiters).
//
// Returns:
//   - bool: true if the descriptions describe the same server condition
func (d Description) Equal(other Description) bool {
	return d.Addr == other.Addr &&
		d.State == other.State &&
		d.Server.Equal(other.Server) &&
		d.Build.Equal(other.Build) &&
		errorsEqual(d.LastError, other.LastError)
}

// errorsEqual compares errors by presence and message. Error values are
// not comparable in general; message equality is sufficient to decide
// whether a repeated failure is the same condition.
func errorsEqual(a, b error) bool {
	if a == nil || b == nil {
		return a == b
	}

	return a.Error() == b.Error()
}
