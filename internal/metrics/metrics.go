package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ==================== HTTP METRICS ====================

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portfolio_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "portfolio_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// ==================== ANALYTICS METRICS ====================

	VisitsRecordedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "portfolio_visits_recorded_total",
			Help: "Total number of page visits recorded",
		},
	)

	UniqueVisitorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "portfolio_unique_visitors_total",
			Help: "Total number of first visits of the day",
		},
	)

	VisitErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "portfolio_visit_errors_total",
			Help: "Total number of failed visit recordings",
		},
	)

	VisitorsPurgedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "portfolio_visitors_purged_total",
			Help: "Total number of visitor records removed by retention",
		},
	)

	// ==================== EMAIL METRICS ====================

	EmailsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_emails_total",
			Help: "Email send outcomes by kind of message and status",
		},
		[]string{"kind", "status", "code"},
	)

	EmailSendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portfolio_email_send_duration_seconds",
			Help:    "Duration of email provider calls in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 15, 30},
		},
		[]string{"kind"},
	)

	// ==================== CONTACT METRICS ====================

	ContactsReceivedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "portfolio_contacts_received_total",
			Help: "Total number of contact messages stored",
		},
	)

	RateLimitedRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_rate_limited_requests_total",
			Help: "Total number of rate-limited requests",
		},
		[]string{"route"},
	)
)

// RecordVisit incrémente les compteurs de visites
func RecordVisit(unique bool) {
	VisitsRecordedTotal.Inc()
	if unique {
		UniqueVisitorsTotal.Inc()
	}
}

func RecordVisitError() {
	VisitErrorsTotal.Inc()
}

func RecordVisitorsPurged(n int64) {
	VisitorsPurgedTotal.Add(float64(n))
}

// RecordEmail enregistre le résultat d'un envoi (status sent/skipped/failed)
func RecordEmail(kind, status, code string) {
	EmailsTotal.WithLabelValues(kind, status, code).Inc()
}

func ObserveEmailDuration(kind string, seconds float64) {
	EmailSendDuration.WithLabelValues(kind).Observe(seconds)
}

func RecordContactReceived() {
	ContactsReceivedTotal.Inc()
}

func RecordRateLimited(route string) {
	RateLimitedRequestsTotal.WithLabelValues(route).Inc()
}
