// Package metrics holds the Prometheus collectors for the reservation path.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Reservation outcomes
const (
	OutcomeReserved    = "reserved"
	OutcomeInvalid     = "invalid_input"
	OutcomeNotFound    = "not_found"
	OutcomeUnavailable = "seats_unavailable"
	OutcomeConflict    = "integrity_conflict"
	OutcomeError       = "error"
)

var (
	// ReservationsTotal counts reservation attempts by allocation kind and outcome.
	ReservationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "servetix_reservations_total",
			Help: "Total number of reservation attempts",
		},
		[]string{"kind", "outcome"},
	)

	// ReservationDuration tracks the latency of the reservation transaction,
	// lock waits included.
	ReservationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "servetix_reservation_duration_seconds",
			Help:    "Duration of reservation transactions in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"kind"},
	)

	SeatsBookedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "servetix_seats_booked_total",
			Help: "Total number of seats marked booked",
		},
	)

	SeatsReleasedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "servetix_seats_released_total",
			Help: "Total number of seats released back to availability",
		},
		[]string{"reason"},
	)

	// OrderIDCollisionsTotal counts generated order ids that already existed.
	OrderIDCollisionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "servetix_order_id_collisions_total",
			Help: "Total number of order id collisions during generation",
		},
	)

	NotificationsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "servetix_notifications_published_total",
			Help: "Total number of notification publish attempts",
		},
		[]string{"type", "result"},
	)
)
