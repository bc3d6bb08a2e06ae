package shared

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SettlementMetrics holds the prometheus instruments for the settlement pipeline.
type SettlementMetrics struct {
	SettlementAttempts  *prometheus.CounterVec
	SettlementFailures  *prometheus.CounterVec
	SettlementDuration  prometheus.Histogram
	PointsAwarded       prometheus.Counter
	SubstitutionsMade   prometheus.Counter
	SnapshotExports     prometheus.Counter
	SnapshotExportFails prometheus.Counter
}

// NewSettlementMetrics creates and registers the settlement instruments.
func NewSettlementMetrics(registry *prometheus.Registry) *SettlementMetrics {
	m := &SettlementMetrics{
		SettlementAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tourpoule_settlement_attempts_total",
			Help: "Settlement attempts, labeled by outcome.",
		}, []string{"outcome"}),
		SettlementFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tourpoule_settlement_failures_total",
			Help: "Settlement failures, labeled by step.",
		}, []string{"step"}),
		SettlementDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tourpoule_settlement_duration_seconds",
			Help:    "Duration of a full stage settlement.",
			Buckets: prometheus.DefBuckets,
		}),
		PointsAwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tourpoule_points_awarded_total",
			Help: "Total rider points awarded across settlements.",
		}),
		SubstitutionsMade: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tourpoule_substitutions_total",
			Help: "Backup substitutions recorded.",
		}),
		SnapshotExports: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tourpoule_snapshot_exports_total",
			Help: "Snapshot document exports completed.",
		}),
		SnapshotExportFails: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tourpoule_snapshot_export_failures_total",
			Help: "Snapshot document exports that failed.",
		}),
	}

	if registry != nil {
		registry.MustRegister(
			m.SettlementAttempts,
			m.SettlementFailures,
			m.SettlementDuration,
			m.PointsAwarded,
			m.SubstitutionsMade,
			m.SnapshotExports,
			m.SnapshotExportFails,
		)
	}

	return m
}
