// Package metrics exposes the prometheus counters the checkout pipeline
// reports: terminal checkout outcomes, optimistic-lock conflicts absorbed by
// the retry policy, payment gateway outcomes, and post-commit inconsistencies
// (deduct failures after a successful charge).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	CheckoutsTotal          *prometheus.CounterVec
	StockConflictsTotal     prometheus.Counter
	PaymentRequestsTotal    *prometheus.CounterVec
	PostCommitInconsistency prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CheckoutsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "checkout",
			Name:      "checkouts_total",
			Help:      "Checkout requests by terminal order status.",
		}, []string{"status"}),
		StockConflictsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "checkout",
			Name:      "stock_conflicts_total",
			Help:      "Optimistic-lock conflicts absorbed by the ledger retry policy.",
		}),
		PaymentRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "checkout",
			Name:      "payment_requests_total",
			Help:      "Payment gateway calls by outcome (success, denied, unreachable).",
		}, []string{"outcome"}),
		PostCommitInconsistency: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "checkout",
			Name:      "post_commit_inconsistencies_total",
			Help:      "Deduct failures observed after a successful charge.",
		}),
	}
}

// NewNop returns metrics backed by a throwaway registry, for tests.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
