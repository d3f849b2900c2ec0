// Package metrics exposes Prometheus instrumentation for the gateway.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"banner-earn-client/internal/domain/session"
)

var (
	// BannerClicksGranted counts rewards confirmed by the ledger service.
	BannerClicksGranted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bannerearn_banner_clicks_granted_total",
		Help: "Banner click rewards confirmed by the ledger service.",
	})

	// BannerClicksRejected counts rejected claims by reason
	// ("local_duplicate" never reached the network; "remote" did).
	BannerClicksRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bannerearn_banner_clicks_rejected_total",
		Help: "Banner click claims rejected, by reason.",
	}, []string{"reason"})

	// WithdrawalsSubmitted counts withdrawal requests accepted by the ledger.
	WithdrawalsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bannerearn_withdrawals_submitted_total",
		Help: "Withdrawal requests accepted by the ledger service.",
	})

	// WithdrawalsRejected counts rejected withdrawal requests by reason.
	WithdrawalsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bannerearn_withdrawals_rejected_total",
		Help: "Withdrawal requests rejected, by reason.",
	}, []string{"reason"})

	// WalletBalance tracks the last server-reported wallet balance.
	WalletBalance = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bannerearn_wallet_balance_rupees",
		Help: "Last wallet balance reported by the ledger service.",
	})

	// LedgerRequestDuration observes round trips to the ledger service.
	LedgerRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bannerearn_ledger_request_duration_seconds",
		Help:    "Duration of ledger service round trips.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "outcome"})
)

// ObserveSnapshot is a wallet observer that keeps the balance gauge in sync
// with the current snapshot. A nil snapshot (logout) resets the gauge.
func ObserveSnapshot(s *session.UserSession) {
	if s == nil {
		WalletBalance.Set(0)
		return
	}
	WalletBalance.Set(s.WalletBalance)
}
