package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		subscriptionsGrantedTotal,
		subscriptionsExpiredTotal,
		refundsTotal,
		purchaseFailuresTotal,
	)
}

var (
	subscriptionsGrantedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscriptions_granted_total",
			Help: "Subscriptions granted, by platform and verification source.",
		},
		[]string{"platform", "verified_by"},
	)

	subscriptionsExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subscriptions_expired_total",
			Help: "Subscription entries explicitly marked expired.",
		},
	)

	refundsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscription_refunds_total",
			Help: "Refund requests by outcome (completed/ineligible/error).",
		},
		[]string{"outcome"},
	)

	purchaseFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "purchase_failures_total",
			Help: "Purchase confirmation attempts recorded as failures.",
		},
	)
)

func IncSubscriptionGranted(platform, verifiedBy string) {
	subscriptionsGrantedTotal.WithLabelValues(norm(platform), norm(verifiedBy)).Inc()
}

func IncSubscriptionExpired() {
	subscriptionsExpiredTotal.Inc()
}

func IncRefund(outcome string) {
	refundsTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncPurchaseFailure() {
	purchaseFailuresTotal.Inc()
}
