package monitoring

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	orderSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_submissions_total",
			Help: "Order intake outcomes by result",
		},
		[]string{"result"},
	)

	ticketsIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tickets_issued_total",
			Help: "Total individual tickets minted",
		},
	)

	ticketValidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_validations_total",
			Help: "Ticket validation outcomes by result",
		},
		[]string{"result"},
	)

	orderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "order_processing_duration_seconds",
			Help:    "End-to-end duration of order intake including issuance",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
	)
)

// TrackOrder records an intake outcome: "accepted" or a rejection reason.
func TrackOrder(result string) {
	orderSubmissions.WithLabelValues(result).Inc()
}

func TrackIssuedTickets(n int) {
	ticketsIssued.Add(float64(n))
}

// TrackValidation records a scan outcome: "valid", "already_used",
// "not_found", or "error" when storage failed before an outcome was known.
func TrackValidation(result string) {
	ticketValidations.WithLabelValues(result).Inc()
}

func ObserveOrderDuration(d time.Duration) {
	orderDuration.Observe(d.Seconds())
}

// Serve exposes /metrics on its own port. Blocks; run in a goroutine.
func Serve(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	slog.Info("metrics server listening", "port", port)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		slog.Error("metrics server stopped", "error", err)
	}
}
