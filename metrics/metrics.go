// Package metrics exposes the process-wide prometheus collectors the
// lease manager updates as it runs. Collectors are package-level, in the
// promauto style: the controller updates them directly rather than
// threading a registry through its constructor.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// lease acquisition attempts, by outcome (acquired/version_mismatch/transport_error)
	// watch version_mismatch under a single replica: it means something
	// else believes it owns the lease.
	LeaseAcquireTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tsoleased_lease_acquire_total",
			Help: "total lease acquisition attempts, by outcome",
		},
		[]string{"outcome"},
	)

	// lease renewal attempts, by outcome (renewed/version_mismatch/transport_error/stale)
	LeaseRenewTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tsoleased_lease_renew_total",
			Help: "total lease renewal attempts, by outcome",
		},
		[]string{"outcome"},
	)

	// 1 while this replica believes it is master, 0 otherwise. Sampled at
	// each control-loop tick, not continuously.
	Mastership = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tsoleased_mastership",
			Help: "1 if this replica currently holds the lease, 0 otherwise",
		},
	)

	// current epoch published by this replica's most recent promotion.
	Epoch = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tsoleased_epoch",
			Help: "epoch published in this replica's most recent promotion",
		},
	)

	// time spent in promote(): state reset plus coordinate publication.
	PromoteDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tsoleased_promote_duration_seconds",
			Help:    "time spent resetting TSO state and publishing coordinates on promotion",
			Buckets: prometheus.DefBuckets,
		},
	)

	// count of escalations to the Panicker, by cause. Any increment here
	// means the process is about to exit.
	PanicTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tsoleased_panic_total",
			Help: "total escalations to the panicker, by cause",
		},
		[]string{"cause"},
	)
)
