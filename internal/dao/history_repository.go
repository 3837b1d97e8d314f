package dao

import (
	"context"
	"errors"
	"time"

	"github.com/haierkeys/db-backup-sync-service/internal/domain"
	"github.com/haierkeys/db-backup-sync-service/internal/model"
	"github.com/haierkeys/db-backup-sync-service/pkg/timex"

	"gorm.io/gorm"
)

type historyRepository struct {
	dao *Dao
}

// NewHistoryRepository creates the HistoryRepository implementation.
func NewHistoryRepository(dao *Dao) domain.HistoryRepository {
	return &historyRepository{dao: dao}
}

func (r *historyRepository) jobRunToDomain(m *model.JobHistory) *domain.JobHistory {
	return &domain.JobHistory{
		ID:         m.ID,
		JobID:      m.JobID,
		JobName:    m.JobName,
		Status:     domain.JobRunStatus(m.Status),
		Message:    m.Message,
		FilePath:   m.FilePath,
		SizeMb:     m.SizeMb,
		IsDeleted:  m.IsDeleted == 1,
		StartedAt:  time.Time(m.StartedAt),
		FinishedAt: time.Time(m.FinishedAt),
	}
}

func (r *historyRepository) CreateJobRun(ctx context.Context, run *domain.JobHistory) (*domain.JobHistory, error) {
	m := &model.JobHistory{
		JobID:     run.JobID,
		JobName:   run.JobName,
		Status:    string(run.Status),
		Message:   run.Message,
		FilePath:  run.FilePath,
		SizeMb:    run.SizeMb,
		StartedAt: timex.Time(run.StartedAt),
	}
	if err := r.dao.DB().WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return r.jobRunToDomain(m), nil
}

func (r *historyRepository) FinishJobRun(ctx context.Context, id int64, status domain.JobRunStatus, message string, filePath string, sizeMb float64) error {
	return r.dao.DB().WithContext(ctx).
		Model(&model.JobHistory{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":      string(status),
			"message":     message,
			"file_path":   filePath,
			"size_mb":     sizeMb,
			"finished_at": timex.Now(),
		}).Error
}

func (r *historyRepository) ListJobRunsBetween(ctx context.Context, from, to time.Time) ([]*domain.JobHistory, error) {
	var ms []*model.JobHistory
	err := r.dao.DB().WithContext(ctx).
		Where("started_at >= ? AND started_at < ?", from, to).
		Order("started_at desc").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	runs := make([]*domain.JobHistory, 0, len(ms))
	for _, m := range ms {
		runs = append(runs, r.jobRunToDomain(m))
	}
	return runs, nil
}

func (r *historyRepository) FindJobRunByFilePath(ctx context.Context, filePath string) (*domain.JobHistory, error) {
	var m model.JobHistory
	err := r.dao.DB().WithContext(ctx).
		Where("file_path = ?", filePath).
		Order("started_at desc").
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.jobRunToDomain(&m), nil
}

func (r *historyRepository) MarkFileDeleted(ctx context.Context, id int64) error {
	return r.dao.DB().WithContext(ctx).
		Model(&model.JobHistory{}).
		Where("id = ?", id).
		Update("is_deleted", 1).Error
}

func (r *historyRepository) CreateCleanupRun(ctx context.Context, run *domain.CleanupRun) (*domain.CleanupRun, error) {
	m := &model.CleanupRun{
		Status:        run.Status,
		DeletedFiles:  run.DeletedFiles,
		DeletedSizeMb: run.DeletedSizeMb,
		Error:         run.Error,
		Detail:        run.Detail,
		DurationMs:    run.Duration.Milliseconds(),
		StartedAt:     timex.Time(run.StartedAt),
		FinishedAt:    timex.Time(run.FinishedAt),
	}
	if err := r.dao.DB().WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	run.ID = m.ID
	return run, nil
}

func (r *historyRepository) CreateSyncRun(ctx context.Context, run *domain.SyncRun) (*domain.SyncRun, error) {
	m := &model.SyncRun{
		Status:     run.Status,
		Archive:    run.Archive,
		FilesTotal: run.FilesTotal,
		SizeMb:     run.SizeMb,
		Error:      run.Error,
		DurationMs: run.Duration.Milliseconds(),
		StartedAt:  timex.Time(run.StartedAt),
		FinishedAt: timex.Time(run.FinishedAt),
	}
	if err := r.dao.DB().WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	run.ID = m.ID
	return run, nil
}

func (r *historyRepository) ListCleanupRuns(ctx context.Context, limit int) ([]*domain.CleanupRun, error) {
	var ms []*model.CleanupRun
	err := r.dao.DB().WithContext(ctx).
		Order("started_at desc").
		Limit(limit).
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	runs := make([]*domain.CleanupRun, 0, len(ms))
	for _, m := range ms {
		runs = append(runs, &domain.CleanupRun{
			ID:            m.ID,
			Status:        m.Status,
			DeletedFiles:  m.DeletedFiles,
			DeletedSizeMb: m.DeletedSizeMb,
			Error:         m.Error,
			Detail:        m.Detail,
			Duration:      time.Duration(m.DurationMs) * time.Millisecond,
			StartedAt:     time.Time(m.StartedAt),
			FinishedAt:    time.Time(m.FinishedAt),
		})
	}
	return runs, nil
}

func (r *historyRepository) ListSyncRuns(ctx context.Context, limit int) ([]*domain.SyncRun, error) {
	var ms []*model.SyncRun
	err := r.dao.DB().WithContext(ctx).
		Order("started_at desc").
		Limit(limit).
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	runs := make([]*domain.SyncRun, 0, len(ms))
	for _, m := range ms {
		runs = append(runs, &domain.SyncRun{
			ID:         m.ID,
			Status:     m.Status,
			Archive:    m.Archive,
			FilesTotal: m.FilesTotal,
			SizeMb:     m.SizeMb,
			Error:      m.Error,
			Duration:   time.Duration(m.DurationMs) * time.Millisecond,
			StartedAt:  time.Time(m.StartedAt),
			FinishedAt: time.Time(m.FinishedAt),
		})
	}
	return runs, nil
}
