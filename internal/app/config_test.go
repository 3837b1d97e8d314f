package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  http-port: \":8080\"\n")

	cfg, realpath, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, realpath, cfg.File)

	// Explicit value wins, everything else falls back to defaults.
	assert.Equal(t, ":8080", cfg.Server.HttpPort)
	assert.Equal(t, "release", cfg.Server.RunMode)
	assert.Equal(t, "storage/backups", cfg.Backup.BasePath)
	assert.Equal(t, 2, cfg.Backup.StaggerStartHour)
	assert.Equal(t, 6, cfg.Backup.StaggerWindowHours)
	assert.Equal(t, 7, cfg.Sync.KeepDaily)
	assert.Equal(t, "0 7 * * *", cfg.Report.Cron)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestConfigTimeoutHelpers(t *testing.T) {
	cfg := &AppConfig{}
	cfg.Backup.CommandTimeout = "30m"
	cfg.Sync.CreateTimeout = "bogus"
	cfg.Sync.PhaseTimeout = "90s"

	assert.Equal(t, 30*time.Minute, cfg.CommandTimeoutDuration())
	// Unparsable values fall back so a bad edit cannot zero a deadline.
	assert.Equal(t, 6*time.Hour, cfg.CreateTimeoutDuration())
	assert.Equal(t, 90*time.Second, cfg.PhaseTimeoutDuration())
}

func TestSyncSourcePathFallback(t *testing.T) {
	cfg := &AppConfig{}
	cfg.Backup.BasePath = "/data/backups"
	assert.Equal(t, "/data/backups", cfg.SyncSourcePath())

	cfg.Sync.SourcePath = "/data/export"
	assert.Equal(t, "/data/export", cfg.SyncSourcePath())
}

func TestConfigSaveRoundTrip(t *testing.T) {
	path := writeConfig(t, "backup:\n  command: \"backup.sh {database} {kind} {path}\"\n")

	cfg, _, err := LoadConfig(path)
	require.NoError(t, err)

	cfg.Backup.StaggerStartHour = 4
	require.NoError(t, cfg.Save())

	reloaded, _, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 4, reloaded.Backup.StaggerStartHour)
	assert.Equal(t, "backup.sh {database} {kind} {path}", reloaded.Backup.Command)
}
