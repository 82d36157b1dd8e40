package kernels

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	selectorHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "surge_selector_cache_hits_total",
		Help: "Total number of kernel lookups served from the selector cache",
	})

	selectorMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "surge_selector_cache_misses_total",
		Help: "Total number of kernel lookups that required catalog resolution",
	})
)
