package router

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// regexSetMetrics tracks expression reuse across route-table builds.
type regexSetMetrics struct {
	compiled prometheus.Counter
	reused   prometheus.Counter
	dropped  prometheus.Counter
	size     prometheus.Gauge
}

var (
	regexSetMetricsInstance *regexSetMetrics
	regexSetMetricsOnce     sync.Once
)

// getRegexSetMetrics returns the singleton metrics instance. The
// collectors live in the default Prometheus registry.
func getRegexSetMetrics() *regexSetMetrics {
	regexSetMetricsOnce.Do(func() {
		regexSetMetricsInstance = &regexSetMetrics{
			compiled: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: "avarouter",
				Subsystem: "router",
				Name:      "regex_compiled_total",
				Help:      "Total number of route expressions compiled",
			}),
			reused: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: "avarouter",
				Subsystem: "router",
				Name:      "regex_reused_total",
				Help:      "Total number of route expressions reused from an earlier build",
			}),
			dropped: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: "avarouter",
				Subsystem: "router",
				Name:      "regex_dropped_total",
				Help:      "Total number of expressions dropped after a rebuild stopped using them",
			}),
			size: promauto.NewGauge(prometheus.GaugeOpts{
				Namespace: "avarouter",
				Subsystem: "router",
				Name:      "regex_set_size",
				Help:      "Number of compiled expressions held for the live route table",
			}),
		}
	})
	return regexSetMetricsInstance
}
