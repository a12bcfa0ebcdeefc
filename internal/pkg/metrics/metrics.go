package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "orbix"

var (
	// TransfersSubmitted counts transfers handed to the wallet, by kind and outcome.
	TransfersSubmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transfers_submitted_total",
		Help:      "Transfers submitted to the wallet provider.",
	}, []string{"kind", "outcome"})

	// FeeLegFailures counts platform fee legs that failed and were swallowed or aborted.
	FeeLegFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fee_leg_failures_total",
		Help:      "Platform fee transfers that failed.",
	}, []string{"policy"})

	// FeesCollected sums platform fees that reached the fee address, in MON.
	FeesCollected = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "platform_fees_collected_mon_total",
		Help:      "Platform fees successfully transferred, in whole MON.",
	})

	// SubmissionWait observes how long a submission waited in the queue.
	SubmissionWait = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "submission_queue_wait_seconds",
		Help:      "Time a transfer spent waiting for its submission slot.",
		Buckets:   []float64{0, 0.1, 0.5, 1, 2, 5, 10},
	})

	// ReceiptExtractions counts AI extractions by confidence band.
	ReceiptExtractions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "receipt_extractions_total",
		Help:      "Receipt extractions by confidence band.",
	}, []string{"band"})

	// WalletConnected is 1 while a session holds an account.
	WalletConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "wallet_connected",
		Help:      "Whether a wallet account is connected.",
	})

	registerOnce sync.Once
)

// MustRegisterMetrics registers all collectors with the default registry. Safe to call more than once.
func MustRegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			TransfersSubmitted,
			FeeLegFailures,
			FeesCollected,
			SubmissionWait,
			ReceiptExtractions,
			WalletConnected,
		)
	})
}
