// Package metrics defines the Prometheus counters for authentication
// outcomes. They are registered once with the default registry, which
// promhttp serves on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// LoginsTotal counts login attempts by result (success, invalid_credentials, error).
	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edu_auth_logins_total",
			Help: "Total login attempts by result.",
		},
		[]string{"result"},
	)

	// RefreshesTotal counts refresh attempts by result (success, rejected, error).
	RefreshesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edu_auth_refreshes_total",
			Help: "Total refresh token exchanges by result.",
		},
		[]string{"result"},
	)

	LogoutsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "edu_auth_logouts_total",
			Help: "Total logout requests.",
		},
	)

	// GateDenialsTotal counts requests turned away by the authorization gate.
	GateDenialsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edu_auth_gate_denials_total",
			Help: "Requests rejected by the authorization gate, by status.",
		},
		[]string{"status"},
	)

	// LedgerErrorsTotal counts storage failures in the refresh ledger and denylist by operation.
	LedgerErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edu_auth_ledger_errors_total",
			Help: "Storage errors in the token ledger by operation.",
		},
		[]string{"op"},
	)

	PurgedTokensTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "edu_auth_purged_tokens_total",
			Help: "Expired ledger and denylist rows removed by the janitor.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		LoginsTotal,
		RefreshesTotal,
		LogoutsTotal,
		GateDenialsTotal,
		LedgerErrorsTotal,
		PurgedTokensTotal,
	)
}

func RecordLogin(result string) { LoginsTotal.WithLabelValues(result).Inc() }

func RecordRefresh(result string) { RefreshesTotal.WithLabelValues(result).Inc() }

func RecordLogout() { LogoutsTotal.Inc() }

func RecordGateDenial(status string) { GateDenialsTotal.WithLabelValues(status).Inc() }

func RecordLedgerError(op string) { LedgerErrorsTotal.WithLabelValues(op).Inc() }

func RecordPurged(n int64) { PurgedTokensTotal.Add(float64(n)) }
