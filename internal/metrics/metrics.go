package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtclub_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "courtclub_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtclub_bookings_total",
			Help: "Total number of court bookings settled",
		},
		[]string{"kind"},
	)

	BookingCancellationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtclub_booking_cancellations_total",
			Help: "Total number of booking cancellations",
		},
		[]string{"refunded"},
	)

	LedgerEntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtclub_ledger_entries_total",
			Help: "Total number of wallet ledger entries appended",
		},
		[]string{"kind", "direction"},
	)

	ChallengesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtclub_challenges_total",
			Help: "Total number of challenge transitions",
		},
		[]string{"transition"},
	)

	TournamentJoinsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "courtclub_tournament_joins_total",
			Help: "Total number of tournament entries settled",
		},
	)

	NotificationsQueuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtclub_notifications_queued_total",
			Help: "Total number of notifications queued for delivery",
		},
		[]string{"category", "status"},
	)

	NotificationQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "courtclub_notification_queue_length",
			Help: "Current length of the notification delivery queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordBooking(kind string) {
	BookingsTotal.WithLabelValues(kind).Inc()
}

func RecordBookingCancellation(refunded bool) {
	if refunded {
		BookingCancellationsTotal.WithLabelValues("yes").Inc()
		return
	}
	BookingCancellationsTotal.WithLabelValues("no").Inc()
}

func RecordLedgerEntry(kind string, amount int64) {
	direction := "credit"
	if amount < 0 {
		direction = "debit"
	}
	LedgerEntriesTotal.WithLabelValues(kind, direction).Inc()
}

func RecordChallengeTransition(transition string) {
	ChallengesTotal.WithLabelValues(transition).Inc()
}

func RecordTournamentJoin() {
	TournamentJoinsTotal.Inc()
}

func RecordNotification(category, status string) {
	NotificationsQueuedTotal.WithLabelValues(category, status).Inc()
}
