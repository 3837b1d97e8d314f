// Package metrics exposes the service's prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CleanupRuns counts finished cleanup passes by terminal status.
	CleanupRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backup_cleanup_runs_total",
		Help: "Finished cleanup passes by status.",
	}, []string{"status"})

	// CleanupDeletedFiles counts files removed by cleanup.
	CleanupDeletedFiles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "backup_cleanup_deleted_files_total",
		Help: "Backup files removed by cleanup.",
	})

	// CleanupFreedMb counts megabytes reclaimed by cleanup.
	CleanupFreedMb = promauto.NewCounter(prometheus.CounterOpts{
		Name: "backup_cleanup_freed_megabytes_total",
		Help: "Megabytes reclaimed by cleanup.",
	})

	// SyncRuns counts finished sync runs by terminal status.
	SyncRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backup_sync_runs_total",
		Help: "Finished archive sync runs by status.",
	}, []string{"status"})

	// SyncPhaseSeconds observes per-phase durations of the sync engine.
	SyncPhaseSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "backup_sync_phase_seconds",
		Help:    "Archive sync phase durations.",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	}, []string{"phase"})

	// ScheduledJobs tracks the number of registered cron triggers.
	ScheduledJobs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "backup_scheduled_jobs",
		Help: "Currently registered cron triggers.",
	})

	// JobRuns counts finished backup job executions by status.
	JobRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backup_job_runs_total",
		Help: "Finished backup job executions by status.",
	}, []string{"status"})
)
