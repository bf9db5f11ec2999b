package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stayvista_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stayvista_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	AccessDenied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stayvista_access_denied_total",
			Help: "Requests rejected by an access gate",
		},
		[]string{"code"},
	)

	Notifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stayvista_notifications_total",
			Help: "Notification delivery outcomes",
		},
		[]string{"result"}, // "sent", "failed", "dropped"
	)

	EventPublishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stayvista_event_publish_errors_total",
			Help: "Domain events that could not be published",
		},
		[]string{"subject"},
	)

	PaymentIntents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stayvista_payment_intents_total",
			Help: "Payment intent creation outcomes",
		},
		[]string{"result"},
	)

	PaymentBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "stayvista_payment_breaker_state",
			Help: "Payment circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	IdempotentReplays = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stayvista_idempotent_replays_total",
			Help: "Responses replayed for a repeated Idempotency-Key",
		},
	)
)

func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func RecordNotification(result string) {
	Notifications.WithLabelValues(result).Inc()
}

func RecordEventPublishError(subject string) {
	EventPublishErrors.WithLabelValues(subject).Inc()
}

func RecordPaymentIntent(err error) {
	if err != nil {
		PaymentIntents.WithLabelValues("error").Inc()
		return
	}
	PaymentIntents.WithLabelValues("ok").Inc()
}
