// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_http_requests_total",
			Help: "Total HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "booking_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Reservations
	ReservationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_reservations_created_total",
			Help: "Reservations committed in pending state",
		},
		[]string{"domain"},
	)

	ReservationRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_reservation_rejections_total",
			Help: "Reservation requests rejected by rule",
		},
		[]string{"domain", "reason"},
	)

	ReservationTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_reservation_transitions_total",
			Help: "Status transitions applied, labelled by target status",
		},
		[]string{"domain", "status"},
	)

	// Storage
	TxRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_tx_retries_total",
			Help: "Units of work retried after serialization or lock failures",
		},
		[]string{"reason"},
	)

	AvailabilityCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_availability_cache_lookups_total",
			Help: "Availability cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	// Events
	EventPublishFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_event_publish_failures_total",
			Help: "Domain events that could not be published",
		},
		[]string{"topic"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "booking_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)
