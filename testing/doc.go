// Package testing provides test utilities for the Vigil library.
//
// This package offers helpers for exercising monitor behavior without a
// real server, plus an embedded NATS server for integration-testing the
// natspool transport. It follows Go's convention of providing testing
// utilities in a dedicated package (similar to net/http/httptest).
//
// Key utilities:
//   - FakePool / FakeProtocol: Scriptable transport collaborators that
//     count checkouts and command executions
//   - StartEmbeddedNATS: In-process NATS server for natspool tests
//   - NewTestLogger: Logger that writes to testing.T
//
// Example usage:
//
//	import (
//	    "testing"
//	    vigiltest "github.com/arloliu/vigil/testing"
//	)
//
//	func TestMyComponent(t *testing.T) {
//	    pool := vigiltest.NewFakePool("db-1:5432")
//	    proto := vigiltest.NewFakeProtocol()
//	    // Wire pool and proto into a Monitor
//	}
package testing
