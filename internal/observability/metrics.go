package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics - счётчики и гистограммы сервиса поиска мест
type Metrics struct {
	SearchRequests   *prometheus.CounterVec   // labels: outcome={success,error,superseded,skipped}
	SearchCache      *prometheus.CounterVec   // labels: result={hit,miss,error}
	ProviderDuration *prometheus.HistogramVec // labels: operation={search,details}
	DetailsRequests  *prometheus.CounterVec   // labels: outcome={found,absent}
	LocationRequests *prometheus.CounterVec   // labels: outcome={success,permission_denied,unavailable}
	ActiveSessions   prometheus.Gauge
}

// NewMetrics создаёт метрики и регистрирует их в реестре Prometheus по умолчанию
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.SearchRequests,
		m.SearchCache,
		m.ProviderDuration,
		m.DetailsRequests,
		m.LocationRequests,
		m.ActiveSessions,
	)

	return m
}

// NewMetricsForTesting создаёт незарегистрированные метрики,
// чтобы повторные вызовы из тестов не паниковали.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		SearchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nearby_places",
			Name:      "search_total",
			Help:      "Places searches by outcome.",
		}, []string{"outcome"}),
		SearchCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nearby_places",
			Name:      "cache_total",
			Help:      "Search cache lookups by result.",
		}, []string{"result"}),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "nearby_places",
			Name:      "provider_duration_seconds",
			Help:      "Places provider request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation"}),
		DetailsRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nearby_places",
			Name:      "details_total",
			Help:      "Place detail lookups by outcome.",
		}, []string{"outcome"}),
		LocationRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nearby_places",
			Name:      "location_total",
			Help:      "Device location requests by outcome.",
		}, []string{"outcome"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nearby_places",
			Name:      "active_sessions",
			Help:      "Number of live nearby-places sessions.",
		}),
	}
}

// ObserveProvider записывает длительность запроса к провайдеру
func (m *Metrics) ObserveProvider(operation string, start time.Time) {
	if m == nil {
		return
	}
	m.ProviderDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
