package model

import (
	"github.com/haierkeys/db-backup-sync-service/pkg/timex"
)

// JobHistory is one execution record of a job.
type JobHistory struct {
	ID         int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	JobID      int64      `gorm:"column:job_id;index" json:"jobId"`
	JobName    string     `gorm:"column:job_name;size:128" json:"jobName"`
	Status     string     `gorm:"column:status;size:16;index" json:"status"`
	Message    string     `gorm:"column:message" json:"message"`
	FilePath   string     `gorm:"column:file_path;size:512;index" json:"filePath"`
	SizeMb     float64    `gorm:"column:size_mb" json:"sizeMb"`
	IsDeleted  int        `gorm:"column:is_deleted;default:0" json:"isDeleted"`
	StartedAt  timex.Time `gorm:"column:started_at;type:datetime;default:NULL;index" json:"startedAt"`
	FinishedAt timex.Time `gorm:"column:finished_at;type:datetime;default:NULL" json:"finishedAt"`
}

func (*JobHistory) TableName() string {
	return "job_history"
}

// CleanupRun is one persisted cleanup outcome.
type CleanupRun struct {
	ID            int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Status        string     `gorm:"column:status;size:16" json:"status"`
	DeletedFiles  int        `gorm:"column:deleted_files" json:"deletedFiles"`
	DeletedSizeMb float64    `gorm:"column:deleted_size_mb" json:"deletedSizeMb"`
	Error         string     `gorm:"column:error" json:"error"`
	Detail        string     `gorm:"column:detail" json:"detail"`
	DurationMs    int64      `gorm:"column:duration_ms" json:"durationMs"`
	StartedAt     timex.Time `gorm:"column:started_at;type:datetime;default:NULL;index" json:"startedAt"`
	FinishedAt    timex.Time `gorm:"column:finished_at;type:datetime;default:NULL" json:"finishedAt"`
}

func (*CleanupRun) TableName() string {
	return "cleanup_run"
}

// SyncRun is one persisted archive sync outcome.
type SyncRun struct {
	ID         int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Status     string     `gorm:"column:status;size:16" json:"status"`
	Archive    string     `gorm:"column:archive;size:256" json:"archive"`
	FilesTotal int64      `gorm:"column:files_total" json:"filesTotal"`
	SizeMb     float64    `gorm:"column:size_mb" json:"sizeMb"`
	Error      string     `gorm:"column:error" json:"error"`
	DurationMs int64      `gorm:"column:duration_ms" json:"durationMs"`
	StartedAt  timex.Time `gorm:"column:started_at;type:datetime;default:NULL;index" json:"startedAt"`
	FinishedAt timex.Time `gorm:"column:finished_at;type:datetime;default:NULL" json:"finishedAt"`
}

func (*SyncRun) TableName() string {
	return "sync_run"
}
