package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/haierkeys/db-backup-sync-service/internal/domain"
	"github.com/haierkeys/db-backup-sync-service/pkg/logger"

	"go.uber.org/zap"
)

const backupFileExt = ".bak"

// ScanService discovers backup artifacts under the configured base path.
// Layout: <base>/<FULL|DIFF|LOG>/<YYYY-MM-DD>/<Database>_<TYPE>_<YYYYMMDD>_<HHMMSS>.bak
// with a legacy fallback of <Database>_<TYPE>_<HHMMSS>.bak where the date
// comes from the folder. Entries that do not parse are skipped, never an
// error.
type ScanService struct {
	basePath    string
	historyRepo domain.HistoryRepository
	logger      *zap.Logger
}

func NewScanService(basePath string, historyRepo domain.HistoryRepository, lg *zap.Logger) *ScanService {
	return &ScanService{
		basePath:    basePath,
		historyRepo: historyRepo,
		logger:      lg,
	}
}

// Scan walks the backup tree and returns every parseable artifact. The
// result carries no persistent identity beyond the path and is rebuilt on
// every call.
func (s *ScanService) Scan(ctx context.Context) ([]*domain.BackupFileInfo, error) {
	var files []*domain.BackupFileInfo

	for _, kind := range []domain.BackupKind{domain.BackupKindFull, domain.BackupKindDiff, domain.BackupKindLog} {
		kindDir := filepath.Join(s.basePath, string(kind))
		entries, err := os.ReadDir(kindDir)
		if err != nil {
			// A missing kind directory just means no backups of that kind.
			continue
		}

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			folderDate, ok := parseFolderDate(entry.Name())
			if !ok {
				continue
			}

			dateDir := filepath.Join(kindDir, entry.Name())
			dateEntries, err := os.ReadDir(dateDir)
			if err != nil {
				s.logger.Warn("scan: unreadable date directory",
					zap.String(logger.FieldPath, dateDir), zap.Error(err))
				continue
			}

			for _, fe := range dateEntries {
				if fe.IsDir() {
					continue
				}
				info := s.parseFile(ctx, filepath.Join(dateDir, fe.Name()), kind, folderDate)
				if info != nil {
					files = append(files, info)
				}
			}
		}
	}

	return files, nil
}

// DateBucketDirs returns the date-level directories under every kind
// directory, used by cleanup to drop emptied buckets.
func (s *ScanService) DateBucketDirs() []string {
	var dirs []string
	for _, kind := range []domain.BackupKind{domain.BackupKindFull, domain.BackupKindDiff, domain.BackupKindLog} {
		kindDir := filepath.Join(s.basePath, string(kind))
		entries, err := os.ReadDir(kindDir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				if _, ok := parseFolderDate(entry.Name()); ok {
					dirs = append(dirs, filepath.Join(kindDir, entry.Name()))
				}
			}
		}
	}
	return dirs
}

func (s *ScanService) parseFile(ctx context.Context, path string, kind domain.BackupKind, folderDate time.Time) *domain.BackupFileInfo {
	name := filepath.Base(path)
	if !strings.EqualFold(filepath.Ext(name), backupFileExt) {
		return nil
	}

	database, ts, ok := parseBackupFileName(name, folderDate)
	if !ok {
		s.logger.Debug("scan: skipping unparseable file name",
			zap.String(logger.FieldPath, path))
		return nil
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil
	}

	info := &domain.BackupFileInfo{
		Path:      path,
		FileName:  name,
		Database:  database,
		Kind:      kind,
		Timestamp: ts,
		SizeMb:    float64(stat.Size()) / 1024.0 / 1024.0,
	}

	if s.historyRepo != nil {
		if run, err := s.historyRepo.FindJobRunByFilePath(ctx, path); err == nil && run != nil {
			info.HistoryID = run.ID
		}
	}
	return info
}

func parseFolderDate(name string) (time.Time, bool) {
	t, err := time.ParseInLocation("2006-01-02", name, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// parseBackupFileName extracts the database name and timestamp. Database
// names may themselves contain underscores, so tokens are consumed from the
// right: time, then date (modern form only), then the kind token.
func parseBackupFileName(name string, folderDate time.Time) (string, time.Time, bool) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	parts := strings.Split(base, "_")

	// Modern: <Database>_<TYPE>_<YYYYMMDD>_<HHMMSS>
	if len(parts) >= 4 {
		datePart, timePart := parts[len(parts)-2], parts[len(parts)-1]
		if _, ok := domain.ParseBackupKind(parts[len(parts)-3]); ok {
			if ts, err := time.ParseInLocation("20060102_150405", datePart+"_"+timePart, time.Local); err == nil {
				return strings.Join(parts[:len(parts)-3], "_"), ts, true
			}
		}
	}

	// Legacy: <Database>_<TYPE>_<HHMMSS>, date taken from the folder.
	if len(parts) >= 3 {
		timePart := parts[len(parts)-1]
		if _, ok := domain.ParseBackupKind(parts[len(parts)-2]); ok {
			if clock, err := time.ParseInLocation("150405", timePart, time.Local); err == nil {
				ts := time.Date(folderDate.Year(), folderDate.Month(), folderDate.Day(),
					clock.Hour(), clock.Minute(), clock.Second(), 0, time.Local)
				return strings.Join(parts[:len(parts)-2], "_"), ts, true
			}
		}
	}

	return "", time.Time{}, false
}
