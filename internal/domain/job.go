package domain

import (
	"fmt"
	"time"
)

// JobCategory separates database backup jobs from maintenance jobs.
type JobCategory string

const (
	JobCategoryBackup      JobCategory = "backup"
	JobCategoryMaintenance JobCategory = "maintenance"
)

// JobCadence is how often a job recurs.
type JobCadence string

const (
	JobCadenceDaily   JobCadence = "daily"
	JobCadenceWeekly  JobCadence = "weekly"
	JobCadenceMonthly JobCadence = "monthly"
)

// BackupJob is a configured recurring job. Hour and Minute are the trigger
// time; Weekday and MonthDay only apply to weekly/monthly cadences.
type BackupJob struct {
	ID        int64
	Name      string
	Database  string
	Category  JobCategory
	Kind      BackupKind
	Cadence   JobCadence
	Hour      int
	Minute    int
	Weekday   int
	MonthDay  int
	IsEnabled bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ScheduleKey is the job's identity inside the trigger registry.
func (j *BackupJob) ScheduleKey() string {
	return fmt.Sprintf("%s:%d", j.Category, j.ID)
}

// CronExpression renders the job's trigger as a standard 5-field cron
// expression.
func (j *BackupJob) CronExpression() string {
	switch j.Cadence {
	case JobCadenceWeekly:
		return fmt.Sprintf("%d %d * * %d", j.Minute, j.Hour, j.Weekday)
	case JobCadenceMonthly:
		return fmt.Sprintf("%d %d %d * *", j.Minute, j.Hour, j.MonthDay)
	default:
		return fmt.Sprintf("%d %d * * *", j.Minute, j.Hour)
	}
}

// DueToday reports whether the job's cadence schedules a run on now's
// date at all. Weekly jobs are due on their weekday, monthly jobs on
// their day of month.
func (j *BackupJob) DueToday(now time.Time) bool {
	switch j.Cadence {
	case JobCadenceWeekly:
		return int(now.Weekday()) == j.Weekday
	case JobCadenceMonthly:
		return now.Day() == j.MonthDay
	default:
		return true
	}
}

// ScheduledToday reports whether the job's trigger time for today has
// already passed at now.
func (j *BackupJob) ScheduledToday(now time.Time) bool {
	due := time.Date(now.Year(), now.Month(), now.Day(), j.Hour, j.Minute, 0, 0, now.Location())
	return !due.After(now)
}

// JobRunStatus is the lifecycle state of one job execution.
type JobRunStatus string

const (
	JobRunStatusRunning JobRunStatus = "running"
	JobRunStatusSuccess JobRunStatus = "success"
	JobRunStatusFailed  JobRunStatus = "failed"
)

// Terminal reports whether the run has finished, successfully or not.
func (s JobRunStatus) Terminal() bool {
	return s == JobRunStatusSuccess || s == JobRunStatusFailed
}

// JobHistory is one execution record of a backup or maintenance job.
type JobHistory struct {
	ID      int64
	JobID   int64
	JobName string
	Status  JobRunStatus
	Message string
	// FilePath backup artifact produced by the run, when any.
	FilePath string
	SizeMb   float64
	// IsDeleted marks the artifact as removed by a later cleanup pass.
	IsDeleted  bool
	StartedAt  time.Time
	FinishedAt time.Time
}

// CleanupRun is the persisted outcome of one cleanup pass.
type CleanupRun struct {
	ID            int64
	Status        string
	DeletedFiles  int
	DeletedSizeMb float64
	Error         string
	// Detail truncated per-file report, newline separated.
	Detail     string
	Duration   time.Duration
	StartedAt  time.Time
	FinishedAt time.Time
}

// SyncRun is the persisted outcome of one archive sync run.
type SyncRun struct {
	ID         int64
	Status     string
	Archive    string
	FilesTotal int64
	SizeMb     float64
	Error      string
	Duration   time.Duration
	StartedAt  time.Time
	FinishedAt time.Time
}

// PendingReason classifies a backup job that has no terminal run today.
type PendingReason string

const (
	// PendingReasonRunning a run is in flight.
	PendingReasonRunning PendingReason = "running"
	// PendingReasonNotStarted the trigger time passed but no run exists.
	PendingReasonNotStarted PendingReason = "not started"
	// PendingReasonScheduledLater the trigger time is still ahead today.
	PendingReasonScheduledLater PendingReason = "scheduled for later"
)

// PendingJob is one incomplete job in a completion check.
type PendingJob struct {
	JobID  int64         `json:"jobId"`
	Name   string        `json:"name"`
	Reason PendingReason `json:"reason"`
}

// CompletionCheck is the result of "have all of today's backups finished".
type CompletionCheck struct {
	AllComplete   bool         `json:"allComplete"`
	TotalJobs     int          `json:"totalJobs"`
	CompletedJobs int          `json:"completedJobs"`
	PendingJobs   []PendingJob `json:"pendingJobs"`
}
