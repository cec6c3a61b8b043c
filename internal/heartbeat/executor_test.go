package heartbeat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	vigiltest "github.com/arloliu/vigil/testing"
	"github.com/arloliu/vigil/types"
)

func TestExecutor_RunCheck(t *testing.T) {
	t.Run("returns both parsed results and the connection", func(t *testing.T) {
		proto := vigiltest.NewFakeProtocol()
		exec := NewExecutor(proto)
		conn := vigiltest.NewFakeConn("db-1:5432")

		outcome, err := exec.RunCheck(context.Background(), conn, time.Now().Add(time.Second))
		require.NoError(t, err)
		require.Same(t, conn, outcome.Conn)
		require.NotNil(t, outcome.Server)
		require.NotNil(t, outcome.Build)
		require.Equal(t, types.RoleStandalone, outcome.Server.Role)
		require.Equal(t, 1, proto.HelloCalls())
		require.Equal(t, 1, proto.BuildInfoCalls())
	})

	t.Run("measures rtt around hello only", func(t *testing.T) {
		proto := vigiltest.NewFakeProtocol()
		proto.SetLatency(20 * time.Millisecond)
		exec := NewExecutor(proto)
		conn := vigiltest.NewFakeConn("db-1:5432")

		outcome, err := exec.RunCheck(context.Background(), conn, time.Now().Add(time.Second))
		require.NoError(t, err)

		// RTT covers one command's latency, not both.
		require.GreaterOrEqual(t, outcome.RTT, 20*time.Millisecond)
		require.Less(t, outcome.RTT, 40*time.Millisecond)
	})

	t.Run("hello failure fails the round", func(t *testing.T) {
		proto := vigiltest.NewFakeProtocol()
		proto.QueueHelloError(errors.New("connection reset"))
		exec := NewExecutor(proto)

		_, err := exec.RunCheck(context.Background(), vigiltest.NewFakeConn("db-1:5432"), time.Now().Add(time.Second))
		require.Error(t, err)
		require.Contains(t, err.Error(), "hello command failed")
		require.Equal(t, 0, proto.BuildInfoCalls())
	})

	t.Run("buildInfo failure fails the round", func(t *testing.T) {
		proto := vigiltest.NewFakeProtocol()
		proto.QueueBuildInfoError(errors.New("protocol error"))
		exec := NewExecutor(proto)

		_, err := exec.RunCheck(context.Background(), vigiltest.NewFakeConn("db-1:5432"), time.Now().Add(time.Second))
		require.Error(t, err)
		require.Contains(t, err.Error(), "buildInfo command failed")
	})

	t.Run("deadline slides across both commands", func(t *testing.T) {
		proto := vigiltest.NewFakeProtocol()
		proto.SetLatency(40 * time.Millisecond)
		exec := NewExecutor(proto)

		// Budget covers hello but not hello plus buildInfo.
		_, err := exec.RunCheck(context.Background(), vigiltest.NewFakeConn("db-1:5432"), time.Now().Add(60*time.Millisecond))
		require.Error(t, err)
		require.True(t, types.IsTimeout(err))
		require.Equal(t, 1, proto.BuildInfoCalls())
	})

	t.Run("cancellation propagates", func(t *testing.T) {
		proto := vigiltest.NewFakeProtocol()
		proto.SetLatency(time.Second)
		exec := NewExecutor(proto)

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()

		_, err := exec.RunCheck(ctx, vigiltest.NewFakeConn("db-1:5432"), time.Now().Add(time.Minute))
		require.ErrorIs(t, err, context.Canceled)
	})
}
