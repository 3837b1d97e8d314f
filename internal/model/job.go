package model

import (
	"github.com/haierkeys/db-backup-sync-service/pkg/timex"
)

// BackupJob is one configured recurring backup or maintenance job.
type BackupJob struct {
	ID        int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name      string     `gorm:"column:name;size:128" json:"name"`
	Database  string     `gorm:"column:database_name;size:128;index" json:"database"`
	Category  string     `gorm:"column:category;size:16;index" json:"category"`
	Kind      string     `gorm:"column:kind;size:8" json:"kind"`
	Cadence   string     `gorm:"column:cadence;size:16" json:"cadence"`
	Hour      int        `gorm:"column:hour" json:"hour"`
	Minute    int        `gorm:"column:minute" json:"minute"`
	Weekday   int        `gorm:"column:weekday" json:"weekday"`
	MonthDay  int        `gorm:"column:month_day" json:"monthDay"`
	IsEnabled int        `gorm:"column:is_enabled;index" json:"isEnabled"`
	CreatedAt timex.Time `gorm:"column:created_at;type:datetime;default:NULL;autoCreateTime:false" json:"createdAt"`
	UpdatedAt timex.Time `gorm:"column:updated_at;type:datetime;default:NULL;autoUpdateTime:false" json:"updatedAt"`
}

func (*BackupJob) TableName() string {
	return "backup_job"
}
