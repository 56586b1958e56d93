package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MintsTotal counts minted assets by mint kind
	MintsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "payperview",
			Subsystem: "core",
			Name:      "mints_total",
			Help:      "Total assets minted",
		},
		[]string{"kind"},
	)

	// SettlementsTotal counts addViewer outcomes
	SettlementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "payperview",
			Subsystem: "core",
			Name:      "settlements_total",
			Help:      "Total viewing purchases by result",
		},
		[]string{"result"},
	)

	// DisbursedTotal sums native subunits paid out to royalty recipients
	DisbursedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "payperview",
			Subsystem: "core",
			Name:      "disbursed_native_total",
			Help:      "Native subunits disbursed to royalty recipients",
		},
	)

	// OracleFailuresTotal counts unusable price quotes
	OracleFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "payperview",
			Subsystem: "oracle",
			Name:      "failures_total",
			Help:      "Price reads rejected as unavailable",
		},
	)

	// RequestsTotal counts HTTP requests
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "payperview",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration observes HTTP latency
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "payperview",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)
