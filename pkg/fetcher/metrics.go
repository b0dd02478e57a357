package fetcher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchResultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bankbridge_fetch_results_total",
		Help: "Total remote fetch results by outcome",
	}, []string{"outcome"})

	fetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bankbridge_fetch_duration_seconds",
		Help:    "Wall-clock duration of a full remote fan-out",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
	})

	fetchInterruptedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bankbridge_fetch_interrupted_total",
		Help: "Total remote fetches interrupted by the caller",
	})
)
