package snapshot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SnapshotRecords tracks the number of records in the last built store
	SnapshotRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bankbridge_snapshot_records",
			Help: "Number of bank records held by the static snapshot",
		},
	)

	// SnapshotLoadErrors tracks failed snapshot loads
	SnapshotLoadErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bankbridge_snapshot_load_errors_total",
			Help: "Total number of failed snapshot loads",
		},
	)
)
