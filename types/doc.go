// Package types provides core type definitions and interfaces for the Vigil library.
//
// This package contains shared types that are used across multiple packages in the
// Vigil library. By keeping these types in a separate package, we avoid import cycles
// between the main vigil package and its internal implementations.
//
// Key types:
//   - Description: Versioned snapshot of a server's reachability and capabilities
//   - ServerState: Server lifecycle state
//   - Pool, Connection, Protocol: Transport collaborator contracts
//   - Logger: Structured logging interface
//   - MetricsCollector: Metrics recording interface
package types
