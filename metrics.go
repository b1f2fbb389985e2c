package tolapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects client-level counters. Attach one with [WithMetrics]; a
// nil collector disables instrumentation entirely.
type Metrics struct {
	requestsTotal  *prometheus.CounterVec
	cacheHits      prometheus.Counter
	cacheMisses    prometheus.Counter
	tokenExchanges prometheus.Counter
	tokenRefreshes prometheus.Counter
}

// NewMetrics creates a collector registered against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tolapi",
			Name:      "requests_total",
			Help:      "Requests started, by HTTP method.",
		}, []string{"method"}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "tolapi",
			Name:      "cache_hits_total",
			Help:      "GET requests served from the response cache.",
		}),
		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "tolapi",
			Name:      "cache_misses_total",
			Help:      "Cache-eligible GET requests that reached the transport.",
		}),
		tokenExchanges: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "tolapi",
			Name:      "token_exchanges_total",
			Help:      "Live token acquisitions, excluding cache reads.",
		}),
		tokenRefreshes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "tolapi",
			Name:      "token_refreshes_total",
			Help:      "Token refreshes triggered by expired-token responses.",
		}),
	}
}

func (m *Metrics) recordRequest(method string) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method).Inc()
}

func (m *Metrics) recordCacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

func (m *Metrics) recordCacheMiss() {
	if m == nil {
		return
	}
	m.cacheMisses.Inc()
}

func (m *Metrics) recordTokenExchange() {
	if m == nil {
		return
	}
	m.tokenExchanges.Inc()
}

func (m *Metrics) recordTokenRefresh() {
	if m == nil {
		return
	}
	m.tokenRefreshes.Inc()
}
