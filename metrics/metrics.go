package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "xbit_build_info",
			Help: "Build information of the Xbit engine",
		},
		[]string{"version", "commit"},
	)

	VaultOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xbit_vault_operations_total",
			Help: "Total number of vault deposits and withdrawals",
		},
		[]string{"operation", "status"},
	)

	LotteryRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xbit_lottery_requests_total",
			Help: "Total number of lottery requests by path and outcome",
		},
		[]string{"path", "status"},
	)

	LotteryDrawsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xbit_lottery_draws_total",
			Help: "Total number of resolved ticket draws per reward tier",
		},
		[]string{"tier"},
	)

	RevealDelayBlocks = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "xbit_lottery_reveal_delay_blocks",
			Help:    "Blocks elapsed between commit and a successful reveal",
			Buckets: prometheus.ExponentialBuckets(4, 2, 8), // 4 to 512 blocks
		},
	)

	SwapsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xbit_swaps_total",
			Help: "Total number of stable-to-reserve pool swaps",
		},
		[]string{"status"},
	)
)

// Status returns the status label for an operation result.
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
