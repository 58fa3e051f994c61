package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		receiptVerifyRequests,
		receiptVerifyDuration,
	)
}

var (
	// Count of store verification calls grouped by platform and result.
	// platform: ios|android
	// result: ok|invalid|expired|error
	receiptVerifyRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "receipt_verify_requests_total",
			Help: "Count of store receipt verification calls by platform and result.",
		},
		[]string{"platform", "result"},
	)

	// Latency of the store round-trip grouped by platform.
	receiptVerifyDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "receipt_verify_duration_seconds",
			Help:    "Duration of store receipt verification calls in seconds.",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"platform"},
	)
)

func IncReceiptVerify(platform, result string) {
	receiptVerifyRequests.WithLabelValues(norm(platform), norm(result)).Inc()
}

func ObserveReceiptVerify(platform string, seconds float64) {
	receiptVerifyDuration.WithLabelValues(norm(platform)).Observe(seconds)
}
