package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

var (
	LifecycleOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "account_lifecycle_operations_total",
			Help: "Total lifecycle operations by flow and outcome",
		},
		[]string{"flow", "outcome"},
	)
	OrphanedPrincipals = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "account_lifecycle_orphaned_principals_total",
			Help: "Identity-provider accounts left without an employee row, requiring manual reconciliation",
		},
	)
	TeardownDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "restaurant_teardown_duration_seconds",
			Help:    "Duration of restaurant teardown in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
	)
)

func InitMetrics() {
	for _, c := range []prometheus.Collector{LifecycleOperations, OrphanedPrincipals, TeardownDuration} {
		if err := prometheus.Register(c); err != nil {
			log.Error().Err(err).Msg("Failed to register metric")
		}
	}
}
