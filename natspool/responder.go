package natspool

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
)

// Responder serves the hello and buildinfo subjects for one simulated
// server. It exists for tests and examples; a real deployment answers
// these subjects from the database server itself.
type Responder struct {
	prefix string

	mu    sync.Mutex
	hello helloReply
	build buildInfoReply
	subs  []*nats.Subscription
}

// NewResponder creates a responder answering as a writable standalone
// server with the given version.
//
// Parameters:
//   - prefix: Subject prefix to serve, matching Config.SubjectPrefix
//   - version: Version string answered on the buildinfo subject
//
// Returns:
//   - *Responder: New responder; call Serve to start answering
func NewResponder(prefix, version string) *Responder {
	return &Responder{
		prefix: prefix,
		hello: helloReply{
			Role:           "standalone",
			MinWireVersion: 0,
			MaxWireVersion: 1,
			MaxBatchSize:   1000,
		},
		build: buildInfoReply{Version: version},
	}
}

// SetRole changes the role answered on the hello subject, so tests can
// drive description changes on a live monitor.
func (r *Responder) SetRole(role string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.hello.Role = role
}

// Serve subscribes to the command subjects on nc and answers requests
// until Stop is called or nc closes.
//
// Parameters:
//   - nc: NATS connection to serve on
//
// Returns:
//   - error: Subscription failure
func (r *Responder) Serve(nc *nats.Conn) error {
	helloSub, err := nc.Subscribe(r.prefix+"."+helloSubject, func(msg *nats.Msg) {
		r.mu.Lock()
		body, marshalErr := json.Marshal(r.hello)
		r.mu.Unlock()
		if marshalErr != nil {
			return
		}
		_ = msg.Respond(body)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe hello subject: %w", err)
	}

	buildSub, err := nc.Subscribe(r.prefix+"."+buildInfoSubject, func(msg *nats.Msg) {
		r.mu.Lock()
		body, marshalErr := json.Marshal(r.build)
		r.mu.Unlock()
		if marshalErr != nil {
			return
		}
		_ = msg.Respond(body)
	})
	if err != nil {
		_ = helloSub.Unsubscribe()

		return fmt.Errorf("failed to subscribe buildinfo subject: %w", err)
	}

	r.mu.Lock()
	r.subs = []*nats.Subscription{helloSub, buildSub}
	r.mu.Unlock()

	return nil
}

// Stop unsubscribes from the command subjects.
func (r *Responder) Stop() {
	r.mu.Lock()
	subs := r.subs
	r.subs = nil
	r.mu.Unlock()

	for _, sub := range subs {
		_ = sub.Unsubscribe()
	}
}
