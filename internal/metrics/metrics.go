package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Hook delivery metrics
	HookRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "idpsync_hook_requests_total",
			Help: "Total number of webhook deliveries received",
		},
		[]string{"source", "status"},
	)

	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "idpsync_events_total",
			Help: "Total number of IdP events processed",
		},
		[]string{"source", "operation", "outcome"},
	)

	DuplicateEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "idpsync_duplicate_events_total",
			Help: "Total number of redelivered events skipped",
		},
		[]string{"source"},
	)

	// Recipient directory metrics
	DuoRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "idpsync_duo_requests_total",
			Help: "Total number of Duo Admin API calls",
		},
		[]string{"method", "status"},
	)
)

// Event outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeFailed      = "failed"
	OutcomeSkipped     = "skipped"
	OutcomeUnsupported = "unsupported"
)
