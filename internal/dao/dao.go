// Package dao implements the data access layer over gorm.
package dao

import (
	"time"

	"github.com/haierkeys/db-backup-sync-service/internal/model"
	"github.com/haierkeys/db-backup-sync-service/pkg/fileurl"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Dao struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Config is the subset of database configuration the dao needs.
type Config struct {
	Path            string
	AutoMigrate     bool
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// New opens the sqlite database and optionally migrates the schema.
func New(cfg Config, logger *zap.Logger) (*Dao, error) {
	if err := fileurl.CreatePath(cfg.Path, 0o755); err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if cfg.AutoMigrate {
		if err := model.AutoMigrateAll(db); err != nil {
			return nil, err
		}
	}

	return &Dao{db: db, logger: logger}, nil
}

// NewWithDB wraps an already opened connection, used by tests.
func NewWithDB(db *gorm.DB, logger *zap.Logger) *Dao {
	return &Dao{db: db, logger: logger}
}

func (d *Dao) DB() *gorm.DB {
	return d.db
}

// Close closes the underlying connection pool.
func (d *Dao) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
