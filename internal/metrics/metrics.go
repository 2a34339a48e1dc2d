// Package metrics exposes the prometheus collectors of the booking
// service.
package metrics

import (
    "net/http"
    "time"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promauto"
    "github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
    httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
        Name: "roombooking_http_requests_total",
        Help: "Total number of HTTP requests",
    }, []string{"method", "path", "status"})

    httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
        Name:    "roombooking_http_request_duration_seconds",
        Help:    "Duration of HTTP requests",
        Buckets: prometheus.DefBuckets,
    }, []string{"method", "path", "status"})

    bookingsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
        Name: "roombooking_bookings_created_total",
        Help: "Bookings created by type",
    }, []string{"type"})

    reservationsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
        Name: "roombooking_reservations_rejected_total",
        Help: "Room reservations refused by the availability guard",
    }, []string{"reason"})

    transitions = promauto.NewCounterVec(prometheus.CounterOpts{
        Name: "roombooking_booking_transitions_total",
        Help: "Booking status transitions by target status",
    }, []string{"to"})

    rateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
        Name: "roombooking_http_rate_limited_total",
        Help: "Requests refused by the token bucket",
    }, []string{"path"})

    eventPublishFailures = promauto.NewCounter(prometheus.CounterOpts{
        Name: "roombooking_event_publish_failures_total",
        Help: "Booking events that could not be published",
    })
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
    httpRequestsTotal.WithLabelValues(method, path, status).Inc()
    httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveBookingCreated counts a committed booking.
func ObserveBookingCreated(bookingType string) {
    bookingsCreated.WithLabelValues(bookingType).Inc()
}

// ObserveReservationRejected counts a refused reservation with the
// refusal kind: capacity, unavailable or not_found.
func ObserveReservationRejected(reason string) {
    reservationsRejected.WithLabelValues(reason).Inc()
}

func ObserveTransition(to string) {
    transitions.WithLabelValues(to).Inc()
}

func ObserveRateLimited(path string) {
    rateLimited.WithLabelValues(path).Inc()
}

func ObservePublishFailure() {
    eventPublishFailures.Inc()
}

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }
