package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "energy_vault_ledger_operations_total",
			Help: "Ledger operations by outcome.",
		},
		[]string{"operation", "result"},
	)

	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "energy_vault_ledger_operation_duration_seconds",
			Help:    "Ledger operation latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	creditsIssuedKWh = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "energy_vault_credits_issued_kwh_total",
			Help: "kWh of credit issued, by source.",
		},
		[]string{"source"},
	)

	creditsConsumedKWh = promauto.NewCounter(prometheus.CounterOpts{
		Name: "energy_vault_credits_consumed_kwh_total",
		Help: "kWh of credit consumed against invoices.",
	})

	creditsExpiredKWh = promauto.NewCounter(prometheus.CounterOpts{
		Name: "energy_vault_credits_expired_kwh_total",
		Help: "kWh of credit expired by the sweep.",
	})

	shortfallKWh = promauto.NewCounter(prometheus.CounterOpts{
		Name: "energy_vault_consumption_shortfall_kwh_total",
		Help: "kWh requested for consumption that no active credit covered.",
	})

	conflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "energy_vault_ledger_conflicts_total",
		Help: "Commits rejected because the vault version moved.",
	})
)
