package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dispatch outcomes used as the "outcome" label.
const (
	OutcomeOK                 = "ok"
	OutcomeNoRoute            = "no_route"
	OutcomeFallThrough        = "fall_through"
	OutcomeDoubleContinuation = "double_continuation"
	OutcomeHandlerFailure     = "handler_failure"
)

// UnmatchedRoute is the route label for requests that resolved to no
// route, keeping cardinality bounded.
const UnmatchedRoute = "unmatched"

// Metrics holds the Prometheus collectors for request dispatch.
type Metrics struct {
	dispatchTotal    *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
	activeDispatches prometheus.Gauge
	chainErrors      *prometheus.CounterVec
	rateLimitHits    *prometheus.CounterVec
	hitCount         prometheus.Gauge
	routes           prometheus.Gauge
	reloads          *prometheus.CounterVec
	buildInfo        *prometheus.GaugeVec
	registry         *prometheus.Registry
}

// NewMetrics creates a Metrics instance with its own registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "avarouter"
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}

	m.dispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_total",
			Help:      "Total number of dispatched requests by outcome",
		},
		[]string{"method", "route", "outcome"},
	)

	m.dispatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Time spent resolving and executing a handler chain",
			Buckets: []float64{
				.0005, .001, .005, .01, .025, .05,
				.1, .25, .5, 1, 2.5, 5,
			},
		},
		[]string{"method", "route", "outcome"},
	)

	m.activeDispatches = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_dispatches",
		Help:      "Number of chains currently executing",
	})

	m.chainErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chain_errors_total",
			Help:      "Chain execution errors by kind and handler",
		},
		[]string{"kind", "handler"},
	)

	m.rateLimitHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_hits_total",
			Help:      "Requests rejected by the rate limiter",
		},
		[]string{"route"},
	)

	m.hitCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "hit_count",
		Help:      "Last value returned by the shared hit counter",
	})

	m.routes = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "routes",
		Help:      "Number of top-level routes in the active table",
	})

	m.reloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "config_reloads_total",
			Help:      "Route table reload attempts by result",
		},
		[]string{"result"},
	)

	m.buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_info",
			Help:      "Build information",
		},
		[]string{"version", "commit", "build_time"},
	)

	m.registry.MustRegister(
		m.dispatchTotal,
		m.dispatchDuration,
		m.activeDispatches,
		m.chainErrors,
		m.rateLimitHits,
		m.hitCount,
		m.routes,
		m.reloads,
		m.buildInfo,
	)

	return m
}

// RecordDispatch records one resolved-and-executed request. route must
// be the route name, never the raw path.
func (m *Metrics) RecordDispatch(method, route, outcome string, duration time.Duration) {
	if route == "" {
		route = UnmatchedRoute
	}
	m.dispatchTotal.WithLabelValues(method, route, outcome).Inc()
	m.dispatchDuration.WithLabelValues(method, route, outcome).Observe(duration.Seconds())
}

// IncrementActive increments the active dispatch gauge.
func (m *Metrics) IncrementActive() {
	m.activeDispatches.Inc()
}

// DecrementActive decrements the active dispatch gauge.
func (m *Metrics) DecrementActive() {
	m.activeDispatches.Dec()
}

// RecordChainError records a chain error attributed to a handler.
func (m *Metrics) RecordChainError(kind, handler string) {
	m.chainErrors.WithLabelValues(kind, handler).Inc()
}

// RecordRateLimitHit records a request rejected by the limiter.
func (m *Metrics) RecordRateLimitHit(route string) {
	m.rateLimitHits.WithLabelValues(route).Inc()
}

// SetHitCount publishes the latest hit counter value.
func (m *Metrics) SetHitCount(n int64) {
	m.hitCount.Set(float64(n))
}

// SetRoutes publishes the size of the active route table.
func (m *Metrics) SetRoutes(n int) {
	m.routes.Set(float64(n))
}

// RecordReload records a reload attempt; result is "success" or "failure".
func (m *Metrics) RecordReload(result string) {
	m.reloads.WithLabelValues(result).Inc()
}

// SetBuildInfo sets the build information metric.
func (m *Metrics) SetBuildInfo(version, commit, buildTime string) {
	m.buildInfo.WithLabelValues(version, commit, buildTime).Set(1)
}

// Registry returns the Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// MustRegisterCollector registers an additional collector with the
// custom registry, panicking on error.
func (m *Metrics) MustRegisterCollector(c prometheus.Collector) {
	m.registry.MustRegister(c)
}

// Handler returns an HTTP handler exposing this registry together with
// the default registry (runtime and regex cache collectors).
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(
		prometheus.Gatherers{m.registry, prometheus.DefaultGatherer},
		promhttp.HandlerOpts{EnableOpenMetrics: true},
	)
}
