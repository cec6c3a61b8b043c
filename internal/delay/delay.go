// Package delay provides the single-use interruptible wait used to
// schedule the next heartbeat.
package delay

import (
	"context"
	"sync"
	"time"
)

// Delay is a single-use cancellable wait.
//
// Wait completes when the configured duration elapses or when Interrupt
// is called, whichever happens first. The monitor creates one Delay per
// scheduled wait and publishes it under its lock before waiting, so an
// Interrupt racing with creation either lands on the previous delay or
// on this one; either way the next heartbeat starts early.
//
// Interrupt is safe to call at any time, from any goroutine, any number
// of times, including before Wait or when nobody is waiting.
type Delay struct {
	timer       *time.Timer
	interruptCh chan struct{}
	once        sync.Once
}

// New creates a delay that elapses after d.
//
// Parameters:
//   - d: Duration until the delay completes on its own
//
// Returns:
//   - *Delay: New single-use delay
func New(d time.Duration) *Delay {
	return &Delay{
		timer:       time.NewTimer(d),
		interruptCh: make(chan struct{}),
	}
}

// Interrupt completes the delay early. Idempotent.
func (d *Delay) Interrupt() {
	d.once.Do(func() {
		close(d.interruptCh)
	})
}

// Wait blocks until the duration elapses, Interrupt is called, or ctx is
// cancelled.
//
// Parameters:
//   - ctx: Cancellation for the waiting caller
//
// Returns:
//   - error: nil on elapse or interrupt, ctx.Err() on cancellation
func (d *Delay) Wait(ctx context.Context) error {
	defer d.timer.Stop()

	select {
	case <-d.timer.C:
		return nil
	case <-d.interruptCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
