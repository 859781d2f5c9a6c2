// Package monitoring exposes Prometheus collectors for the booking
// workflow and the HTTP surface.
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bookingsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookings_created_total",
			Help: "Total bookings created in pending state",
		},
	)

	bookingsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookings_rejected_total",
			Help: "Booking attempts rejected before a row was written",
		},
		[]string{"reason"},
	)

	paymentOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_outcomes_total",
			Help: "Simulated payment outcomes by result code",
		},
		[]string{"outcome"},
	)

	ticketsIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tickets_issued_total",
			Help: "Ticket artifacts generated for paid bookings",
		},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// TrackBookingCreated counts a successful pending-booking insert.
func TrackBookingCreated() { bookingsCreated.Inc() }

// TrackBookingRejected counts a booking attempt rejected for the given reason.
func TrackBookingRejected(reason string) { bookingsRejected.WithLabelValues(reason).Inc() }

// TrackPaymentOutcome counts a simulated payment result.
func TrackPaymentOutcome(outcome string) { paymentOutcomes.WithLabelValues(outcome).Inc() }

// TrackTicketIssued counts a generated ticket artifact.
func TrackTicketIssued() { ticketsIssued.Inc() }

// ObserveRequest records one HTTP request's latency.
func ObserveRequest(method, route, status string, elapsed time.Duration) {
	httpDuration.WithLabelValues(method, route, status).Observe(elapsed.Seconds())
}
