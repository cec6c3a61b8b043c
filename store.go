package vigil

import (
	"sync"
	"time"

	"github.com/arloliu/vigil/types"
)

// descriptionStore owns the server's current description, its revision
// and the pending change token.
//
// The change token is a channel closed exactly once, the instant the
// description changes, then replaced by a fresh open channel for the
// next change. Readers that grab the description and the token inside
// the same critical section can never miss an update: a change accepted
// between the read and the wait is observed through the already-closed
// token.
//
// Single writer (the monitor loop), any number of concurrent readers.
// The lock is held only for the read/compare/swap/signal critical
// section, never across I/O.
type descriptionStore struct {
	mu      sync.Mutex
	current types.Description
	changed chan struct{}
}

// newDescriptionStore creates a store holding the initial Disconnected
// description at revision 0.
func newDescriptionStore(addr string) *descriptionStore {
	return &descriptionStore{
		current: types.NewDescription(addr),
		changed: make(chan struct{}),
	}
}

// description returns the latest stored description.
func (s *descriptionStore) description() types.Description {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current
}

// descriptionAndToken returns the latest description together with the
// pending change token in one critical section.
func (s *descriptionStore) descriptionAndToken() (types.Description, <-chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current, s.changed
}

// update stores next if it differs structurally from the current
// description, bumping the revision and completing the change token.
//
// An equal description still refreshes the stored RTT and LastUpdated so
// readers see fresh latency samples, but keeps the revision and leaves
// the token pending; a repeated identical outcome is not a change.
//
// Returns the previous and stored descriptions and whether the revision
// advanced.
func (s *descriptionStore) update(next types.Description) (prev, curr types.Description, changedOut bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev = s.current

	if prev.Equal(next) {
		next.Revision = prev.Revision
		s.current = next

		return prev, next, false
	}

	next.Revision = prev.Revision + 1
	s.current = next

	close(s.changed)
	s.changed = make(chan struct{})

	return prev, next, true
}

// invalidate transitions the current description to Disconnected with
// the supplied error, clearing results. Used by the topology layer when
// an error on another code path proves the server unusable.
func (s *descriptionStore) invalidate(err error) (prev, curr types.Description, changedOut bool) {
	addr := s.description().Addr

	next := types.Description{
		Addr:        addr,
		State:       types.StateDisconnected,
		LastError:   err,
		LastUpdated: time.Now(),
	}

	return s.update(next)
}
