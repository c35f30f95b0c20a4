// Package metrics exposes the Prometheus collectors of the license backend.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "receiptpanel"

type Metrics struct {
	LicenseChecks   *prometheus.CounterVec
	ReceiptsLogged  prometheus.Counter
	ReceiptAmount   prometheus.Counter
	SessionsStarted prometheus.Counter
	SessionsEnded   prometheus.Counter
	LicensesIssued  prometheus.Counter
	SweepRuns       *prometheus.CounterVec
	SweepAffected   *prometheus.CounterVec
}

// New registers every collector on reg. Pass a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		LicenseChecks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "license_checks_total",
			Help:      "License checks by resulting status.",
		}, []string{"status"}),
		ReceiptsLogged: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "receipts_logged_total",
			Help:      "Receipts stored.",
		}),
		ReceiptAmount: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "receipt_amount_total",
			Help:      "Sum of stored receipt amounts.",
		}),
		SessionsStarted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Device sessions started.",
		}),
		SessionsEnded: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_ended_total",
			Help:      "Device sessions ended.",
		}),
		LicensesIssued: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "licenses_issued_total",
			Help:      "Licenses issued by administrators.",
		}),
		SweepRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_runs_total",
			Help:      "Background sweep executions by job and result.",
		}, []string{"job", "result"}),
		SweepAffected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_rows_affected_total",
			Help:      "Rows changed by background sweeps.",
		}, []string{"job"}),
	}
}
