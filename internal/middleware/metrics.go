package middleware

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MiddlewareMetrics holds Prometheus metrics for chain handlers.
type MiddlewareMetrics struct {
	rateLimitAllowed  *prometheus.CounterVec
	rateLimitRejected *prometheus.CounterVec
	panicsRecovered   prometheus.Counter
	bodyParseFailures *prometheus.CounterVec
	staticRequests    *prometheus.CounterVec
}

var (
	middlewareMetrics     *MiddlewareMetrics
	middlewareMetricsOnce sync.Once
)

// GetMiddlewareMetrics returns the singleton middleware metrics
// instance registered with the default registry.
func GetMiddlewareMetrics() *MiddlewareMetrics {
	middlewareMetricsOnce.Do(func() {
		middlewareMetrics = newMiddlewareMetrics()
	})
	return middlewareMetrics
}

func newMiddlewareMetrics() *MiddlewareMetrics {
	return &MiddlewareMetrics{
		rateLimitAllowed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "avarouter",
				Subsystem: "middleware",
				Name:      "rate_limit_allowed_total",
				Help:      "Total number of requests allowed by the rate limiter",
			},
			[]string{"route"},
		),
		rateLimitRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "avarouter",
				Subsystem: "middleware",
				Name:      "rate_limit_rejected_total",
				Help:      "Total number of requests rejected by the rate limiter",
			},
			[]string{"route"},
		),
		panicsRecovered: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: "avarouter",
				Subsystem: "middleware",
				Name:      "panics_recovered_total",
				Help:      "Total number of panics recovered in handler chains",
			},
		),
		bodyParseFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "avarouter",
				Subsystem: "middleware",
				Name:      "body_parse_failures_total",
				Help:      "Total number of request bodies that could not be decoded",
			},
			[]string{"reason"},
		),
		staticRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "avarouter",
				Subsystem: "middleware",
				Name:      "static_requests_total",
				Help:      "Static file lookups by result",
			},
			[]string{"result"},
		),
	}
}

func routeLabel(route string) string {
	if route == "" {
		return unknownRoute
	}
	return route
}
