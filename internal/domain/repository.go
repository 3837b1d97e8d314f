package domain

import (
	"context"
	"time"
)

// SettingRepository is the generic persisted key/value settings store with
// typed accessors for the policy blocks built on top of it.
type SettingRepository interface {
	// Get returns the raw value for key, "" when unset.
	Get(ctx context.Context, key string) (string, error)

	// Set persists one key.
	Set(ctx context.Context, key string, value string) error

	// GetCleanupSettings loads the retention policy.
	GetCleanupSettings(ctx context.Context) (*CleanupSettings, error)

	// SaveCleanupSettings persists the retention policy.
	SaveCleanupSettings(ctx context.Context, s *CleanupSettings) error

	// SaveCleanupLastRun persists only the last-run outcome fields.
	SaveCleanupLastRun(ctx context.Context, status, message string, at time.Time) error

	// GetSyncSettings loads the sync trigger policy.
	GetSyncSettings(ctx context.Context) (*SyncSettings, error)

	// SaveSyncSettings persists the sync trigger policy.
	SaveSyncSettings(ctx context.Context, s *SyncSettings) error

	// GetBandwidthSettings loads the transfer ceiling policy.
	GetBandwidthSettings(ctx context.Context) (*BandwidthSettings, error)

	// SaveBandwidthSettings persists the transfer ceiling policy.
	SaveBandwidthSettings(ctx context.Context, s *BandwidthSettings) error
}

// JobRepository stores configured backup and maintenance jobs.
type JobRepository interface {
	// GetByID returns the job or nil when missing.
	GetByID(ctx context.Context, id int64) (*BackupJob, error)

	// List returns every configured job.
	List(ctx context.Context) ([]*BackupJob, error)

	// ListEnabled returns every enabled job of the given category.
	ListEnabled(ctx context.Context, category JobCategory) ([]*BackupJob, error)

	// Save creates or updates a job.
	Save(ctx context.Context, job *BackupJob) (*BackupJob, error)

	// Delete removes a job.
	Delete(ctx context.Context, id int64) error
}

// HistoryRepository stores execution history for jobs, cleanup passes and
// sync runs.
type HistoryRepository interface {
	// CreateJobRun inserts a running history row and returns it with its ID.
	CreateJobRun(ctx context.Context, run *JobHistory) (*JobHistory, error)

	// FinishJobRun marks a run terminal.
	FinishJobRun(ctx context.Context, id int64, status JobRunStatus, message string, filePath string, sizeMb float64) error

	// ListJobRunsBetween returns runs started inside [from, to).
	ListJobRunsBetween(ctx context.Context, from, to time.Time) ([]*JobHistory, error)

	// FindJobRunByFilePath returns the newest run that produced filePath,
	// nil when none.
	FindJobRunByFilePath(ctx context.Context, filePath string) (*JobHistory, error)

	// MarkFileDeleted flags the run's artifact as removed by cleanup.
	MarkFileDeleted(ctx context.Context, id int64) error

	// CreateCleanupRun persists one cleanup outcome.
	CreateCleanupRun(ctx context.Context, run *CleanupRun) (*CleanupRun, error)

	// CreateSyncRun persists one sync outcome.
	CreateSyncRun(ctx context.Context, run *SyncRun) (*SyncRun, error)

	// ListCleanupRuns returns the newest cleanup outcomes.
	ListCleanupRuns(ctx context.Context, limit int) ([]*CleanupRun, error)

	// ListSyncRuns returns the newest sync outcomes.
	ListSyncRuns(ctx context.Context, limit int) ([]*SyncRun, error)
}

// BackupExecutor produces the actual backup artifact for a job. The SQL
// engine side is a collaborator; implementations only report the produced
// file and its size.
type BackupExecutor interface {
	// Execute runs the job and returns the artifact path and size in MB.
	Execute(ctx context.Context, job *BackupJob) (filePath string, sizeMb float64, err error)
}

// ReportSender delivers the rendered daily report.
type ReportSender interface {
	Send(subject, body string) error
}
