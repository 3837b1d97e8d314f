package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/haierkeys/db-backup-sync-service/internal/domain"
	"github.com/haierkeys/db-backup-sync-service/internal/metrics"
	"github.com/haierkeys/db-backup-sync-service/pkg/logger"

	"go.uber.org/zap"
)

// cleanupDetailMaxLines caps the per-file detail persisted with a run.
const cleanupDetailMaxLines = 200

// CleanupService applies the chain analyzer's retention decision to the
// filesystem. Deletion is best effort: per-file failures are collected and
// reported, never abort the batch.
type CleanupService struct {
	scanner     *ScanService
	analyzer    *ChainAnalyzer
	settingRepo domain.SettingRepository
	historyRepo domain.HistoryRepository
	logger      *zap.Logger
}

func NewCleanupService(
	scanner *ScanService,
	analyzer *ChainAnalyzer,
	settingRepo domain.SettingRepository,
	historyRepo domain.HistoryRepository,
	lg *zap.Logger,
) *CleanupService {
	return &CleanupService{
		scanner:     scanner,
		analyzer:    analyzer,
		settingRepo: settingRepo,
		historyRepo: historyRepo,
		logger:      lg,
	}
}

// Analyze scans the backup tree and computes the keep/delete decision. Safe
// to call repeatedly; it never touches the filesystem beyond reading.
func (s *CleanupService) Analyze(ctx context.Context) (*domain.CleanupAnalysis, error) {
	settings, err := s.settingRepo.GetCleanupSettings(ctx)
	if err != nil {
		return nil, err
	}
	files, err := s.scanner.Scan(ctx)
	if err != nil {
		return nil, err
	}
	return s.analyzer.Analyze(files, settings), nil
}

// Execute runs one cleanup pass. With dryRun no file is removed; the
// prospective numbers are recorded instead. A terminal outcome is always
// persisted, dry run or not.
func (s *CleanupService) Execute(ctx context.Context, dryRun bool) (*domain.CleanupResult, error) {
	startedAt := time.Now()

	analysis, err := s.Analyze(ctx)
	if err != nil {
		return nil, err
	}

	result := &domain.CleanupResult{DryRun: dryRun}

	for _, f := range analysis.Delete {
		detail := domain.CleanupFileResult{
			Path:     f.Path,
			Database: f.Database,
			SizeMb:   f.SizeMb,
		}

		if dryRun {
			detail.Deleted = false
			result.DeletedFiles++
			result.DeletedSizeMb += f.SizeMb
			result.Detail = append(result.Detail, detail)
			continue
		}

		if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
			// Already-missing files count as satisfied; anything else is a
			// per-file failure.
			detail.Error = err.Error()
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", f.Path, err))
			result.Detail = append(result.Detail, detail)
			s.logger.Warn("cleanup: delete failed",
				zap.String(logger.FieldPath, f.Path), zap.Error(err))
			continue
		}

		detail.Deleted = true
		result.DeletedFiles++
		result.DeletedSizeMb += f.SizeMb
		result.Detail = append(result.Detail, detail)

		if f.HistoryID > 0 {
			if err := s.historyRepo.MarkFileDeleted(ctx, f.HistoryID); err != nil {
				s.logger.Warn("cleanup: history mark failed",
					zap.Int64("historyId", f.HistoryID), zap.Error(err))
			}
		}
	}

	if !dryRun {
		s.removeEmptyDateDirs()
	}

	result.Success = len(result.Errors) == 0
	result.Duration = time.Since(startedAt)

	s.record(ctx, result, startedAt)

	s.logger.Info("cleanup finished",
		zap.Bool("dryRun", dryRun),
		zap.Int(logger.FieldFiles, result.DeletedFiles),
		zap.Float64(logger.FieldSizeMb, result.DeletedSizeMb),
		zap.Int("errors", len(result.Errors)),
		zap.Duration(logger.FieldDuration, result.Duration))

	return result, nil
}

// removeEmptyDateDirs drops date buckets that the pass emptied out.
func (s *CleanupService) removeEmptyDateDirs() {
	for _, dir := range s.scanner.DateBucketDirs() {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			continue
		}
		if err := os.Remove(dir); err != nil {
			s.logger.Warn("cleanup: empty dir remove failed",
				zap.String(logger.FieldPath, dir), zap.Error(err))
		}
	}
}

// record persists the run outcome and the settings last-run fields. Both
// happen for dry runs too, with a "would delete" message.
func (s *CleanupService) record(ctx context.Context, result *domain.CleanupResult, startedAt time.Time) {
	status := "success"
	if !result.Success {
		status = "failed"
	}

	message := fmt.Sprintf("deleted %d files, freed %.1f MB", result.DeletedFiles, result.DeletedSizeMb)
	if result.DryRun {
		message = fmt.Sprintf("would delete %d files, freeing %.1f MB", result.DeletedFiles, result.DeletedSizeMb)
	}
	if len(result.Errors) > 0 {
		message += fmt.Sprintf(" (%d errors)", len(result.Errors))
	}

	if err := s.settingRepo.SaveCleanupLastRun(ctx, status, message, startedAt); err != nil {
		s.logger.Error("cleanup: last-run save failed", zap.Error(err))
	}

	run := &domain.CleanupRun{
		Status:        status,
		DeletedFiles:  result.DeletedFiles,
		DeletedSizeMb: result.DeletedSizeMb,
		Error:         strings.Join(result.Errors, "; "),
		Detail:        renderCleanupDetail(result.Detail),
		Duration:      result.Duration,
		StartedAt:     startedAt,
		FinishedAt:    time.Now(),
	}
	if _, err := s.historyRepo.CreateCleanupRun(ctx, run); err != nil {
		s.logger.Error("cleanup: run record failed", zap.Error(err))
	}

	metrics.CleanupRuns.WithLabelValues(status).Inc()
	if !result.DryRun {
		metrics.CleanupDeletedFiles.Add(float64(result.DeletedFiles))
		metrics.CleanupFreedMb.Add(result.DeletedSizeMb)
	}
}

func renderCleanupDetail(detail []domain.CleanupFileResult) string {
	var b strings.Builder
	for i, d := range detail {
		if i >= cleanupDetailMaxLines {
			fmt.Fprintf(&b, "... %d more", len(detail)-i)
			break
		}
		line := d.Path
		if d.Error != "" {
			line += " ERROR " + d.Error
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
