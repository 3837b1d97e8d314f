// Package app provides the application container wiring configuration,
// persistence and services together.
package app

import (
	"os"
	"path/filepath"
	"time"

	"github.com/haierkeys/db-backup-sync-service/pkg/mailer"

	"github.com/creasty/defaults"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// AppConfig is the full service configuration.
type AppConfig struct {
	File     string         `yaml:"-"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Backup   BackupConfig   `yaml:"backup"`
	Sync     SyncConfig     `yaml:"sync"`
	Report   ReportConfig   `yaml:"report"`
	Smtp     mailer.Config  `yaml:"smtp"`
}

// LogConfig log output settings.
type LogConfig struct {
	// Level see zapcore.ParseLevel
	Level string `yaml:"level" default:"info"`
	// File log file path, stderr when empty
	File string `yaml:"file" default:"storage/logs/log.log"`
	// Production enables JSON output
	Production bool `yaml:"production" default:"true"`
}

// ServerConfig HTTP server settings.
type ServerConfig struct {
	RunMode      string `yaml:"run-mode" default:"release"`
	HttpPort     string `yaml:"http-port" default:":9000"`
	ReadTimeout  int    `yaml:"read-timeout" default:"60"`
	WriteTimeout int    `yaml:"write-timeout" default:"60"`
	// PrivateHttpListen serves pprof and metrics
	PrivateHttpListen string `yaml:"private-http-listen" default:":9001"`
}

// DatabaseConfig sqlite settings.
type DatabaseConfig struct {
	Path            string `yaml:"path" default:"storage/database/db.sqlite3"`
	AutoMigrate     bool   `yaml:"auto-migrate" default:"true"`
	MaxIdleConns    int    `yaml:"max-idle-conns" default:"10"`
	MaxOpenConns    int    `yaml:"max-open-conns" default:"100"`
	ConnMaxLifetime string `yaml:"conn-max-lifetime" default:"30m"`
}

// BackupConfig local backup layout and job execution settings.
type BackupConfig struct {
	// BasePath root of the <KIND>/<date>/<file> backup layout
	BasePath string `yaml:"base-path" default:"storage/backups"`
	// Command template executed per job run. Placeholders: {database},
	// {kind}, {path}. Empty disables execution; runs then fail with a
	// history record.
	Command string `yaml:"command"`
	// CommandTimeout per-run deadline, full backups can take hours
	CommandTimeout string `yaml:"command-timeout" default:"4h"`
	// Stagger window defaults used when recomputing trigger times
	StaggerStartHour   int `yaml:"stagger-start-hour" default:"2"`
	StaggerWindowHours int `yaml:"stagger-window-hours" default:"6"`
}

// SyncConfig archive sync engine settings. Remote credentials are read
// from the environment, never from this file.
type SyncConfig struct {
	// SourcePath directory replicated to the remote repository; defaults
	// to the backup base path when empty
	SourcePath string `yaml:"source-path"`
	// CreateTimeout archive creation deadline
	CreateTimeout string `yaml:"create-timeout" default:"6h"`
	// PhaseTimeout init/prune/compact deadline
	PhaseTimeout string `yaml:"phase-timeout" default:"15m"`
	KeepDaily    int    `yaml:"keep-daily" default:"7"`
	KeepWeekly   int    `yaml:"keep-weekly" default:"4"`
	KeepMonthly  int    `yaml:"keep-monthly" default:"6"`
}

// ReportConfig daily report settings.
type ReportConfig struct {
	// Cron trigger for the daily summary, empty disables it
	Cron string `yaml:"cron" default:"0 7 * * *"`
}

// LoadConfig loads configuration from f, applying struct defaults before
// and after parsing so empty YAML fields still get their defaults.
func LoadConfig(f string) (*AppConfig, string, error) {
	realpath, err := filepath.Abs(f)
	if err != nil {
		return nil, "", err
	}
	realpath = filepath.Clean(realpath)

	c := new(AppConfig)
	c.File = realpath

	if err := defaults.Set(c); err != nil {
		return nil, realpath, errors.Wrap(err, "set default config failed")
	}

	file, err := os.ReadFile(realpath)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "read config file failed")
	}

	if err := yaml.Unmarshal(file, c); err != nil {
		return nil, realpath, errors.Wrap(err, "parse config file failed")
	}

	if err := defaults.Set(c); err != nil {
		return nil, realpath, errors.Wrap(err, "re-set default config failed")
	}

	return c, realpath, nil
}

// Save writes the configuration back to its file.
func (c *AppConfig) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config failed")
	}
	if err := os.WriteFile(c.File, data, 0644); err != nil {
		return errors.Wrap(err, "write config file failed")
	}
	return nil
}

// SyncSourcePath resolves the sync source, falling back to the backup
// layout root.
func (c *AppConfig) SyncSourcePath() string {
	if c.Sync.SourcePath != "" {
		return c.Sync.SourcePath
	}
	return c.Backup.BasePath
}

// CommandTimeoutDuration parses the executor deadline.
func (c *AppConfig) CommandTimeoutDuration() time.Duration {
	if d, err := time.ParseDuration(c.Backup.CommandTimeout); err == nil {
		return d
	}
	return 4 * time.Hour
}

// CreateTimeoutDuration parses the archive creation deadline.
func (c *AppConfig) CreateTimeoutDuration() time.Duration {
	if d, err := time.ParseDuration(c.Sync.CreateTimeout); err == nil {
		return d
	}
	return 6 * time.Hour
}

// PhaseTimeoutDuration parses the init/prune/compact deadline.
func (c *AppConfig) PhaseTimeoutDuration() time.Duration {
	if d, err := time.ParseDuration(c.Sync.PhaseTimeout); err == nil {
		return d
	}
	return 15 * time.Minute
}
