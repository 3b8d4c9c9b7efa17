package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bookings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventhub_bookings_total",
			Help: "Booking attempts by result",
		},
		[]string{"result"},
	)

	authEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventhub_auth_events_total",
			Help: "Authentication transitions by kind",
		},
		[]string{"event"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventhub_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

func RecordBooking(result string) {
	bookings.WithLabelValues(result).Inc()
}

func RecordAuthEvent(event string) {
	authEvents.WithLabelValues(event).Inc()
}

func ObserveRequest(method, path, status string, seconds float64) {
	requestDuration.WithLabelValues(method, path, status).Observe(seconds)
}
