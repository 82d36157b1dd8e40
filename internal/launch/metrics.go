package launch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	launchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "surge_launches_total",
		Help: "Total number of completed kernel invocations",
	})

	launchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "surge_launch_duration_seconds",
		Help:    "Wall time of a kernel invocation including the completion wait",
		Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1.0},
	})
)
