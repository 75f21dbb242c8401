package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the ledger.
type Metrics struct {
	Operations        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	ActorsRegistered  *prometheus.CounterVec
	DonationsCreated  prometheus.Counter
	BidsAccepted      prometheus.Counter
	AuctionsSettled   *prometheus.CounterVec
	EscrowCredited    *prometheus.CounterVec
	EscrowWithdrawn   *prometheus.CounterVec
}

// New registers ledger metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Operations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "givekindly_ledger_operations_total",
			Help: "Ledger operations by name and outcome (ok or error code)",
		}, []string{"operation", "outcome"}),
		OperationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "givekindly_ledger_operation_duration_seconds",
			Help:    "Ledger operation latency including transaction wait",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		ActorsRegistered: f.NewCounterVec(prometheus.CounterOpts{
			Name: "givekindly_ledger_actors_registered_total",
			Help: "Identities registered, by role",
		}, []string{"role"}),
		DonationsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "givekindly_ledger_donations_created_total",
			Help: "Donations recorded",
		}),
		BidsAccepted: f.NewCounter(prometheus.CounterOpts{
			Name: "givekindly_ledger_bids_accepted_total",
			Help: "Bids that took the lead",
		}),
		AuctionsSettled: f.NewCounterVec(prometheus.CounterOpts{
			Name: "givekindly_ledger_auctions_settled_total",
			Help: "Auctions ended, by outcome (sold or unsold)",
		}, []string{"outcome"}),
		EscrowCredited: f.NewCounterVec(prometheus.CounterOpts{
			Name: "givekindly_ledger_escrow_credited_units_total",
			Help: "Value credited to escrow balances in smallest units, by account kind",
		}, []string{"kind"}),
		EscrowWithdrawn: f.NewCounterVec(prometheus.CounterOpts{
			Name: "givekindly_ledger_escrow_withdrawn_units_total",
			Help: "Value withdrawn from escrow balances in smallest units, by account kind",
		}, []string{"kind"}),
	}
}

// ObserveOperation records one operation's outcome and latency.
func (m *Metrics) ObserveOperation(operation, outcome string, elapsed time.Duration) {
	m.Operations.WithLabelValues(operation, outcome).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}
