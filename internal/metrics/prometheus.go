package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MeasurementsIngested counts persisted measurements by fault category.
	MeasurementsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fiberwatch_measurements_ingested_total",
			Help: "Total number of measurements ingested",
		},
		[]string{"fault_type"},
	)

	// GateDecisions counts notification gate outcomes.
	GateDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fiberwatch_gate_decisions_total",
			Help: "Total number of notification gate decisions",
		},
		[]string{"outcome"},
	)

	// NotificationsDispatched counts dispatch attempts by final status.
	NotificationsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fiberwatch_notifications_total",
			Help: "Total number of notification dispatch attempts",
		},
		[]string{"status"},
	)

	// DispatchQueueFull counts alerts dropped due to queue backpressure.
	DispatchQueueFull = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fiberwatch_dispatch_queue_full_total",
			Help: "Total number of alerts rejected because the dispatch queue was full",
		},
	)

	// RequestDuration observes HTTP handler latency.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fiberwatch_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

// Gate decision outcomes.
const (
	OutcomeNoFault       = "no_fault"
	OutcomeBelowThresh   = "below_threshold"
	OutcomeCooldown      = "cooldown"
	OutcomeNoRecipients  = "no_recipients"
	OutcomeDispatch      = "dispatch"
	OutcomeQueueRejected = "queue_rejected"
)
