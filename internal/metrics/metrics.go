package metrics

import "github.com/prometheus/client_golang/prometheus"

// Prometheus metrics for monitoring service health and performance
var (
	PaymentsRecordedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payments_recorded_total",
			Help: "Total number of payments successfully recorded",
		},
	)

	DuplicateTransactionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payments_duplicate_transactions_total",
			Help: "Total number of payment requests rejected as duplicate transactions",
		},
	)

	OrphanedPaymentsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payments_orphaned_total",
			Help: "Payments where the parcel was marked paid but the record insert failed; requires manual reconciliation",
		},
	)

	ParcelsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "parcels_created_total",
			Help: "Total number of parcels created",
		},
	)

	TrackingEventsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tracking_events_total",
			Help: "Total number of tracking events appended",
		},
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"handler", "method", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"handler", "method"},
	)
)

func init() {
	prometheus.MustRegister(PaymentsRecordedTotal)
	prometheus.MustRegister(DuplicateTransactionsTotal)
	prometheus.MustRegister(OrphanedPaymentsTotal)
	prometheus.MustRegister(ParcelsCreatedTotal)
	prometheus.MustRegister(TrackingEventsTotal)
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
}
