// Package model defines the database models.
package model

import (
	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB, key string) error {
	switch key {

	case "Setting":
		return db.AutoMigrate(Setting{})

	case "BackupJob":
		return db.AutoMigrate(BackupJob{})

	case "JobHistory":
		return db.AutoMigrate(JobHistory{})

	case "CleanupRun":
		return db.AutoMigrate(CleanupRun{})

	case "SyncRun":
		return db.AutoMigrate(SyncRun{})
	}
	return nil
}

// AutoMigrateAll migrates every model.
func AutoMigrateAll(db *gorm.DB) error {
	for _, key := range []string{"Setting", "BackupJob", "JobHistory", "CleanupRun", "SyncRun"} {
		if err := AutoMigrate(db, key); err != nil {
			return err
		}
	}
	return nil
}
