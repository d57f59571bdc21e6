package health

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	checksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "avarouter",
			Subsystem: "health",
			Name:      "checks_total",
			Help:      "Total number of readiness checks by result",
		},
		[]string{"check", "status"},
	)

	checkDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "avarouter",
			Subsystem: "health",
			Name:      "check_duration_seconds",
			Help:      "Duration of readiness checks in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"check"},
	)
)

func recordCheck(name string, status Status, d time.Duration) {
	checksTotal.WithLabelValues(name, string(status)).Inc()
	checkDuration.WithLabelValues(name).Observe(d.Seconds())
}
