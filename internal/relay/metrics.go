package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes relay state to Prometheus. A nil *Metrics records nothing.
type Metrics struct {
	breakerState prometheus.Gauge
	queueDepth   prometheus.Gauge
	published    *prometheus.CounterVec
	buffered     *prometheus.CounterVec
	dropped      prometheus.Counter
}

// NewMetrics registers the relay collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		breakerState: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "hearme",
			Subsystem: "relay",
			Name:      "breaker_state",
			Help:      "Circuit breaker state: 0 closed, 1 open, 2 half-open.",
		}),
		queueDepth: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "hearme",
			Subsystem: "relay",
			Name:      "backup_queue_depth",
			Help:      "Events waiting in the backup queue.",
		}),
		published: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hearme",
			Subsystem: "relay",
			Name:      "published_total",
			Help:      "Events delivered to the broker.",
		}, []string{"topic", "path"}),
		buffered: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hearme",
			Subsystem: "relay",
			Name:      "buffered_total",
			Help:      "Events diverted to the backup queue.",
		}, []string{"topic", "reason"}),
		dropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: "hearme",
			Subsystem: "relay",
			Name:      "dropped_total",
			Help:      "Events discarded because the backup queue was full.",
		}),
	}
}

func (m *Metrics) setBreakerState(s BreakerState) {
	if m != nil {
		m.breakerState.Set(float64(s))
	}
}

func (m *Metrics) setQueueDepth(n int) {
	if m != nil {
		m.queueDepth.Set(float64(n))
	}
}

func (m *Metrics) incPublished(topic, path string) {
	if m != nil {
		m.published.WithLabelValues(topic, path).Inc()
	}
}

func (m *Metrics) incBuffered(topic, reason string) {
	if m != nil {
		m.buffered.WithLabelValues(topic, reason).Inc()
	}
}

func (m *Metrics) incDropped() {
	if m != nil {
		m.dropped.Inc()
	}
}
