package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VouchersIssued counts vouchers written by generation calls.
	VouchersIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vouchers_issued_total",
			Help: "Total number of vouchers created by generation calls",
		},
	)

	// RedemptionDuration tracks the latency of validate/redeem calls by outcome.
	RedemptionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "voucher_redemption_duration_seconds",
			Help: "Duration of voucher validate and redeem calls in seconds",
			Buckets: []float64{
				0.001, // 1ms
				0.005, // 5ms
				0.01,  // 10ms
				0.025, // 25ms
				0.05,  // 50ms
				0.1,   // 100ms
				0.25,  // 250ms
				0.5,   // 500ms
				1.0,   // 1s
				2.5,   // 2.5s
			},
		},
		[]string{"outcome"}, // accepted, rejected or error
	)
)

// RecordIssued records the number of vouchers written by a generation call.
func RecordIssued(count int) {
	VouchersIssued.Add(float64(count))
}

// RecordRedemption records the duration and outcome of a validate/redeem call.
func RecordRedemption(outcome string, duration float64) {
	RedemptionDuration.WithLabelValues(outcome).Observe(duration)
}
