package cache

import "github.com/prometheus/client_golang/prometheus"

const (
	resultLocalHit  = "local_hit"
	resultRemoteHit = "remote_hit"
	resultMiss      = "miss"
)

// Metrics exports cache counters to Prometheus.
type Metrics struct {
	requests  *prometheus.CounterVec
	evictions *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them with reg when it is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flashly_cache_requests_total",
			Help: "Cache lookups by layer and result (local_hit, remote_hit, miss).",
		}, []string{"layer", "result"}),
		evictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flashly_cache_evictions_total",
			Help: "Entries evicted from the local cache to make room.",
		}, []string{"layer"}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.evictions)
	}
	return m
}

func (m *Metrics) request(layer Layer, result string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(string(layer), result).Inc()
}

func (m *Metrics) eviction(layer Layer) {
	if m == nil {
		return
	}
	m.evictions.WithLabelValues(string(layer)).Inc()
}
