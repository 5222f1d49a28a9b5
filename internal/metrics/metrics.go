package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settlement_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "settlement_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	PrizeDistributionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settlement_prize_distributions_total",
			Help: "Total number of prize distribution runs",
		},
		[]string{"outcome"},
	)

	PrizePayoutsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "settlement_prize_payouts_total",
			Help: "Total number of individual prize payouts credited",
		},
	)

	PrizePayoutAmount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "settlement_prize_payout_amount",
			Help: "Total currency credited as prize money",
		},
	)

	FundingDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settlement_funding_decisions_total",
			Help: "Total number of deposit and withdrawal decisions",
		},
		[]string{"kind", "outcome"},
	)

	WalletMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settlement_wallet_mutations_total",
			Help: "Total number of wallet credits and debits",
		},
		[]string{"direction", "outcome"},
	)

	ReconciliationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settlement_reconciliations_total",
			Help: "Total number of ledger reconciliation attempts",
		},
		[]string{"kind", "result"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// RecordDistribution counts a distribution run and, when it paid out, the payouts it made
func RecordDistribution(outcome string, payouts int, total decimal.Decimal) {
	PrizeDistributionsTotal.WithLabelValues(outcome).Inc()
	if payouts == 0 {
		return
	}
	PrizePayoutsTotal.Add(float64(payouts))
	amount, _ := total.Float64()
	PrizePayoutAmount.Add(amount)
}

func RecordFundingDecision(kind, outcome string) {
	FundingDecisionsTotal.WithLabelValues(kind, outcome).Inc()
}

func RecordWalletMutation(direction, outcome string) {
	WalletMutationsTotal.WithLabelValues(direction, outcome).Inc()
}

func RecordReconciliation(kind, result string) {
	ReconciliationsTotal.WithLabelValues(kind, result).Inc()
}
