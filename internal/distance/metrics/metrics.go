package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics covers the distance cache and the upstream breaker.
type Metrics struct {
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// Upstream lookups by outcome: "ok", "error", "rejected"
	Lookups *prometheus.CounterVec

	BreakerOpen prometheus.Gauge
}

func New() *Metrics {
	return &Metrics{
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medtransit_distance_cache_hits_total",
			Help: "Distance lookups served from Redis",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medtransit_distance_cache_misses_total",
			Help: "Distance lookups not found in Redis",
		}),
		Lookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "medtransit_distance_upstream_lookups_total",
			Help: "Distance API calls by outcome",
		}, []string{"outcome"}),
		BreakerOpen: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "medtransit_distance_breaker_open",
			Help: "1 while the distance API circuit breaker is open",
		}),
	}
}

func (m *Metrics) IncrementCacheHit() {
	if m == nil {
		return
	}
	m.CacheHits.Inc()
}

func (m *Metrics) IncrementCacheMiss() {
	if m == nil {
		return
	}
	m.CacheMisses.Inc()
}

func (m *Metrics) IncrementLookup(outcome string) {
	if m == nil {
		return
	}
	m.Lookups.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SetBreakerOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.BreakerOpen.Set(1)
		return
	}
	m.BreakerOpen.Set(0)
}
