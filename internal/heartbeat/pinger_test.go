package heartbeat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/vigil/internal/hooks"
	"github.com/arloliu/vigil/internal/logger"
	"github.com/arloliu/vigil/internal/metrics"
	vigiltest "github.com/arloliu/vigil/testing"
	"github.com/arloliu/vigil/types"
)

const testAddr = "db-1:5432"

func newTestPinger(pool types.Pool, proto types.Protocol, hk *types.Hooks) *Pinger {
	if hk == nil {
		hk = hooks.Nop()
	}

	return NewPinger(testAddr, pool, proto, time.Second, hk, metrics.NewNop(), logger.NewNop())
}

// eventRecorder captures heartbeat events in order.
type eventRecorder struct {
	mu     sync.Mutex
	events []string
	last   types.HeartbeatResult
}

func (r *eventRecorder) hooks() *types.Hooks {
	return &types.Hooks{
		OnHeartbeatStarted: func(_ context.Context, _ string) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.events = append(r.events, "started")

			return nil
		},
		OnHeartbeatFinished: func(_ context.Context, result types.HeartbeatResult) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.events = append(r.events, "finished")
			r.last = result

			return nil
		},
	}
}

func (r *eventRecorder) recorded() ([]string, types.HeartbeatResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.events...), r.last
}

func TestPinger_Ping(t *testing.T) {
	t.Run("success on first attempt uses one checkout", func(t *testing.T) {
		pool := vigiltest.NewFakePool(testAddr)
		proto := vigiltest.NewFakeProtocol()
		pinger := newTestPinger(pool, proto, nil)

		outcome, err := pinger.Ping(context.Background(), nil)
		require.NoError(t, err)
		require.NotNil(t, outcome.Conn)
		require.Equal(t, 1, pool.Checkouts())
		require.Equal(t, 1, proto.HelloCalls())
	})

	t.Run("reuses the held connection without a checkout", func(t *testing.T) {
		pool := vigiltest.NewFakePool(testAddr)
		proto := vigiltest.NewFakeProtocol()
		pinger := newTestPinger(pool, proto, nil)

		held := vigiltest.NewFakeConn(testAddr)
		outcome, err := pinger.Ping(context.Background(), held)
		require.NoError(t, err)
		require.Same(t, types.Connection(held), outcome.Conn)
		require.Equal(t, 0, pool.Checkouts())
	})

	t.Run("one failure then success retries exactly once", func(t *testing.T) {
		pool := vigiltest.NewFakePool(testAddr)
		proto := vigiltest.NewFakeProtocol()
		proto.QueueHelloError(errors.New("stale connection"))
		pinger := newTestPinger(pool, proto, nil)

		outcome, err := pinger.Ping(context.Background(), nil)
		require.NoError(t, err)
		require.NotNil(t, outcome.Conn)

		// Two checkouts, one failed execution, one successful execution.
		require.Equal(t, 2, pool.Checkouts())
		require.Equal(t, 2, proto.HelloCalls())

		// The failed attempt's connection was closed; the adopted one was not.
		conns := pool.Conns()
		require.Len(t, conns, 2)
		require.True(t, conns[0].Closed())
		require.False(t, conns[1].Closed())
	})

	t.Run("failed held connection is closed before the retry", func(t *testing.T) {
		pool := vigiltest.NewFakePool(testAddr)
		proto := vigiltest.NewFakeProtocol()
		proto.QueueHelloError(errors.New("stale connection"))
		pinger := newTestPinger(pool, proto, nil)

		held := vigiltest.NewFakeConn(testAddr)
		outcome, err := pinger.Ping(context.Background(), held)
		require.NoError(t, err)
		require.True(t, held.Closed())
		require.NotSame(t, types.Connection(held), outcome.Conn)
		require.Equal(t, 1, pool.Checkouts())
	})

	t.Run("two execution failures exhaust the cycle", func(t *testing.T) {
		pool := vigiltest.NewFakePool(testAddr)
		proto := vigiltest.NewFakeProtocol()
		proto.QueueHelloError(errors.New("reset"), errors.New("reset again"))
		pinger := newTestPinger(pool, proto, nil)

		outcome, err := pinger.Ping(context.Background(), nil)
		require.ErrorIs(t, err, types.ErrHeartbeatFailed)
		require.Nil(t, outcome.Conn)
		require.Equal(t, 2, pool.Checkouts())

		for _, conn := range pool.Conns() {
			require.True(t, conn.Closed())
		}
	})

	t.Run("two acquisition failures exhaust the cycle", func(t *testing.T) {
		pool := vigiltest.NewFakePool(testAddr)
		pool.QueueError(types.ErrPoolExhausted, types.ErrPoolExhausted)
		proto := vigiltest.NewFakeProtocol()
		pinger := newTestPinger(pool, proto, nil)

		_, err := pinger.Ping(context.Background(), nil)
		require.ErrorIs(t, err, types.ErrHeartbeatFailed)
		require.Equal(t, 2, pool.Checkouts())
		require.Equal(t, 0, proto.HelloCalls())
	})

	t.Run("cancellation aborts without retry", func(t *testing.T) {
		pool := vigiltest.NewFakePool(testAddr)
		proto := vigiltest.NewFakeProtocol()
		proto.SetLatency(time.Second)
		pinger := newTestPinger(pool, proto, nil)

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()

		_, err := pinger.Ping(ctx, nil)
		require.ErrorIs(t, err, context.Canceled)
		require.Equal(t, 1, pool.Checkouts())
	})
}

func TestPinger_Events(t *testing.T) {
	t.Run("success emits started then finished with results", func(t *testing.T) {
		rec := &eventRecorder{}
		pool := vigiltest.NewFakePool(testAddr)
		proto := vigiltest.NewFakeProtocol()
		pinger := newTestPinger(pool, proto, rec.hooks())

		_, err := pinger.Ping(context.Background(), nil)
		require.NoError(t, err)

		events, last := rec.recorded()
		require.Equal(t, []string{"started", "finished"}, events)
		require.Equal(t, testAddr, last.Addr)
		require.NotNil(t, last.Server)
		require.NotNil(t, last.Build)
		require.NoError(t, last.Err)
	})

	t.Run("exhaustion emits finished with nil results and the error", func(t *testing.T) {
		rec := &eventRecorder{}
		pool := vigiltest.NewFakePool(testAddr)
		proto := vigiltest.NewFakeProtocol()
		proto.QueueHelloError(errors.New("reset"), errors.New("reset"))
		pinger := newTestPinger(pool, proto, rec.hooks())

		_, err := pinger.Ping(context.Background(), nil)
		require.Error(t, err)

		events, last := rec.recorded()
		require.Equal(t, []string{"started", "finished"}, events)
		require.Nil(t, last.Server)
		require.Nil(t, last.Build)
		require.Zero(t, last.RTT)
		require.Error(t, last.Err)
	})

	t.Run("panicking hook does not break the cycle", func(t *testing.T) {
		pool := vigiltest.NewFakePool(testAddr)
		proto := vigiltest.NewFakeProtocol()
		pinger := newTestPinger(pool, proto, &types.Hooks{
			OnHeartbeatStarted: func(_ context.Context, _ string) error {
				panic("listener bug")
			},
		})

		outcome, err := pinger.Ping(context.Background(), nil)
		require.NoError(t, err)
		require.NotNil(t, outcome.Conn)
	})
}
