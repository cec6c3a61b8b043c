package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/vigil/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	heartbeatsTotal    *prometheus.CounterVec
	heartbeatRTT       *prometheus.HistogramVec
	stateTransitions   *prometheus.CounterVec
	descriptionUpdates *prometheus.CounterVec
	revisionGauge      *prometheus.GaugeVec
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "vigil" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "vigil"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.heartbeatsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "monitor",
			Name:      "heartbeats_total",
			Help:      "Total heartbeat cycles by server address and result.",
		}, []string{"addr", "result"})

		p.heartbeatRTT = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "monitor",
			Name:      "heartbeat_rtt_seconds",
			Help:      "Round-trip time of the hello command in seconds.",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"addr"})

		p.stateTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "monitor",
			Name:      "state_transitions_total",
			Help:      "Total server state transitions by from/to state.",
		}, []string{"addr", "from", "to"})

		p.descriptionUpdates = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "monitor",
			Name:      "description_updates_total",
			Help:      "Total accepted description updates.",
		}, []string{"addr"})

		p.revisionGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "monitor",
			Name:      "description_revision",
			Help:      "Current description revision per server.",
		}, []string{"addr"})

		p.reg.MustRegister(
			p.heartbeatsTotal,
			p.heartbeatRTT,
			p.stateTransitions,
			p.descriptionUpdates,
			p.revisionGauge,
		)
	})
}

// RecordHeartbeat records the outcome of one heartbeat cycle.
func (p *PrometheusCollector) RecordHeartbeat(addr string, rtt time.Duration, success bool) {
	p.ensureRegistered()

	result := "success"
	if !success {
		result = "failure"
	}
	p.heartbeatsTotal.WithLabelValues(addr, result).Inc()

	if success {
		p.heartbeatRTT.WithLabelValues(addr).Observe(rtt.Seconds())
	}
}

// RecordStateTransition records a server state transition.
func (p *PrometheusCollector) RecordStateTransition(addr string, from, to types.ServerState) {
	p.ensureRegistered()

	p.stateTransitions.WithLabelValues(addr, from.String(), to.String()).Inc()
}

// RecordDescriptionChange records an accepted description update.
func (p *PrometheusCollector) RecordDescriptionChange(addr string, revision uint64) {
	p.ensureRegistered()

	p.descriptionUpdates.WithLabelValues(addr).Inc()
	p.revisionGauge.WithLabelValues(addr).Set(float64(revision))
}
