package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// tierHits counts field reads answered by each tier.
	tierHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foundry_tier_hits_total",
			Help: "Field reads resolved per storage tier",
		},
		[]string{"tier"},
	)

	// tierMisses counts field reads that fell through a tier.
	tierMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foundry_tier_misses_total",
			Help: "Field reads that missed per storage tier",
		},
		[]string{"tier"},
	)

	// softFailures counts degraded (non-fatal) tier errors.
	softFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foundry_tier_soft_failures_total",
			Help: "Cache tier errors degraded to the next tier",
		},
		[]string{"tier"},
	)

	// cascadeLatency measures end-to-end cascading operation latency.
	cascadeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foundry_cascade_duration_seconds",
			Help:    "Latency of cascading storage operations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	// RegistrySize tracks live records per entity collection.
	RegistrySize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "foundry_registry_records",
			Help: "Live entity records held by each registry",
		},
		[]string{"collection"},
	)
)

// TierReads records hit/miss counts for one tier consultation.
func TierReads(tier string, hits, misses int) {
	if hits > 0 {
		tierHits.WithLabelValues(tier).Add(float64(hits))
	}
	if misses > 0 {
		tierMisses.WithLabelValues(tier).Add(float64(misses))
	}
}

// SoftFailure records a degraded tier error.
func SoftFailure(tier string) {
	softFailures.WithLabelValues(tier).Inc()
}

// CascadeTimer starts a latency observation for one cascading operation.
func CascadeTimer(op string) *prometheus.Timer {
	return prometheus.NewTimer(cascadeLatency.WithLabelValues(op))
}
