package model

import (
	"github.com/haierkeys/db-backup-sync-service/pkg/timex"
)

// Setting is one persisted key/value settings entry.
type Setting struct {
	ID        int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Key       string     `gorm:"column:key;uniqueIndex;size:128" json:"key"`
	Value     string     `gorm:"column:value" json:"value"`
	CreatedAt timex.Time `gorm:"column:created_at;type:datetime;default:NULL;autoCreateTime:false" json:"createdAt"`
	UpdatedAt timex.Time `gorm:"column:updated_at;type:datetime;default:NULL;autoUpdateTime:false" json:"updatedAt"`
}

func (*Setting) TableName() string {
	return "setting"
}
