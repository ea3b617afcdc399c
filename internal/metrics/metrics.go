// Package metrics exposes Prometheus counters for the ledger hot paths.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector records business events. Services take this interface so
// tests can run with the no-op implementation.
type Collector interface {
	TransactionCreated(amount float64)
	TransactionPaid(amount float64)
	PaymentProcessed(method string)
	PaymentFailed(reason string)
	LockContention()
}

// NoopCollector discards all measurements.
type NoopCollector struct{}

func (NoopCollector) TransactionCreated(amount float64) {}
func (NoopCollector) TransactionPaid(amount float64)    {}
func (NoopCollector) PaymentProcessed(method string)    {}
func (NoopCollector) PaymentFailed(reason string)       {}
func (NoopCollector) LockContention()                   {}

// PrometheusCollector implements Collector over promauto counters.
type PrometheusCollector struct {
	transactionsCreated prometheus.Counter
	transactionsPaid    prometheus.Counter
	transactionVolume   prometheus.Counter
	paymentsProcessed   *prometheus.CounterVec
	paymentsFailed      *prometheus.CounterVec
	lockContention      prometheus.Counter
}

func NewPrometheusCollector() *PrometheusCollector {
	return &PrometheusCollector{
		transactionsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bariq_transactions_created_total",
			Help: "Number of credit transactions created.",
		}),
		transactionsPaid: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bariq_transactions_paid_total",
			Help: "Number of transactions fully repaid.",
		}),
		transactionVolume: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bariq_transaction_volume_sar_total",
			Help: "Total transaction volume in SAR.",
		}),
		paymentsProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bariq_payments_processed_total",
			Help: "Payments applied, by method.",
		}, []string{"method"}),
		paymentsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bariq_payments_failed_total",
			Help: "Payments rejected, by reason.",
		}, []string{"reason"}),
		lockContention: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bariq_payment_lock_contention_total",
			Help: "Payment processing lock acquisitions that lost the race.",
		}),
	}
}

func (c *PrometheusCollector) TransactionCreated(amount float64) {
	c.transactionsCreated.Inc()
	c.transactionVolume.Add(amount)
}

func (c *PrometheusCollector) TransactionPaid(amount float64) {
	c.transactionsPaid.Inc()
}

func (c *PrometheusCollector) PaymentProcessed(method string) {
	c.paymentsProcessed.WithLabelValues(method).Inc()
}

func (c *PrometheusCollector) PaymentFailed(reason string) {
	c.paymentsFailed.WithLabelValues(reason).Inc()
}

func (c *PrometheusCollector) LockContention() {
	c.lockContention.Inc()
}
