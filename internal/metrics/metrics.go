package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BackendCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "estateluxe_backend_calls_total",
			Help: "Total pricing backend calls",
		},
		[]string{"endpoint", "status"},
	)

	BackendLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "estateluxe_backend_latency_seconds",
			Help:    "Pricing backend call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	ValuationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "estateluxe_valuations_total",
			Help: "Valuations computed, by value source",
		},
		[]string{"source"},
	)

	ReportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "estateluxe_reports_total",
			Help: "PDF report downloads, by outcome",
		},
		[]string{"status"},
	)

	SavedPropertiesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "estateluxe_saved_properties_total",
			Help: "Properties saved to the comparables list",
		},
	)
)
