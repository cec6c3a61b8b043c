package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/vigil/types"
)

func TestNopMetrics(t *testing.T) {
	t.Run("all methods are safe no-ops", func(t *testing.T) {
		m := NewNop()

		m.RecordHeartbeat("db-1:5432", 5*time.Millisecond, true)
		m.RecordHeartbeat("db-1:5432", 0, false)
		m.RecordStateTransition("db-1:5432", types.StateDisconnected, types.StateConnected)
		m.RecordDescriptionChange("db-1:5432", 3)
	})
}

func TestPrometheusCollectorBasic(t *testing.T) {
	t.Run("registers and records without error", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		m := NewPrometheus(reg, "vigiltest")

		m.RecordHeartbeat("db-1:5432", 5*time.Millisecond, true)
		m.RecordHeartbeat("db-1:5432", 0, false)
		m.RecordStateTransition("db-1:5432", types.StateDisconnected, types.StateConnected)
		m.RecordDescriptionChange("db-1:5432", 1)

		families, err := reg.Gather()
		require.NoError(t, err)

		names := make(map[string]bool, len(families))
		for _, f := range families {
			names[f.GetName()] = true
		}

		require.True(t, names["vigiltest_monitor_heartbeats_total"])
		require.True(t, names["vigiltest_monitor_heartbeat_rtt_seconds"])
		require.True(t, names["vigiltest_monitor_state_transitions_total"])
		require.True(t, names["vigiltest_monitor_description_revision"])
	})

	t.Run("defaults are applied", func(t *testing.T) {
		m := NewPrometheus(prometheus.NewRegistry(), "")
		require.Equal(t, "vigil", m.namespace)
	})
}
