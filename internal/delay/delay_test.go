package delay

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDelay_Wait(t *testing.T) {
	t.Run("completes when duration elapses", func(t *testing.T) {
		d := New(20 * time.Millisecond)

		start := time.Now()
		err := d.Wait(context.Background())
		require.NoError(t, err)
		require.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	})

	t.Run("completes early on interrupt", func(t *testing.T) {
		d := New(10 * time.Second)

		go func() {
			time.Sleep(10 * time.Millisecond)
			d.Interrupt()
		}()

		start := time.Now()
		err := d.Wait(context.Background())
		require.NoError(t, err)
		require.Less(t, time.Since(start), 5*time.Second)
	})

	t.Run("returns ctx.Err on cancellation", func(t *testing.T) {
		d := New(10 * time.Second)

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()

		err := d.Wait(ctx)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestDelay_Interrupt(t *testing.T) {
	t.Run("interrupt before wait completes immediately", func(t *testing.T) {
		d := New(10 * time.Second)
		d.Interrupt()

		start := time.Now()
		err := d.Wait(context.Background())
		require.NoError(t, err)
		require.Less(t, time.Since(start), time.Second)
	})

	t.Run("interrupt is idempotent", func(t *testing.T) {
		d := New(10 * time.Second)
		d.Interrupt()
		d.Interrupt()
		d.Interrupt()

		require.NoError(t, d.Wait(context.Background()))
	})

	t.Run("interrupt with no waiter does not panic", func(t *testing.T) {
		d := New(time.Millisecond)
		d.Interrupt()
	})
}
