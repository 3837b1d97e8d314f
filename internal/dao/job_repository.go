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

type jobRepository struct {
	dao *Dao
}

// NewJobRepository creates the JobRepository implementation.
func NewJobRepository(dao *Dao) domain.JobRepository {
	return &jobRepository{dao: dao}
}

func (r *jobRepository) toDomain(m *model.BackupJob) *domain.BackupJob {
	if m == nil {
		return nil
	}
	return &domain.BackupJob{
		ID:        m.ID,
		Name:      m.Name,
		Database:  m.Database,
		Category:  domain.JobCategory(m.Category),
		Kind:      domain.BackupKind(m.Kind),
		Cadence:   domain.JobCadence(m.Cadence),
		Hour:      m.Hour,
		Minute:    m.Minute,
		Weekday:   m.Weekday,
		MonthDay:  m.MonthDay,
		IsEnabled: m.IsEnabled == 1,
		CreatedAt: time.Time(m.CreatedAt),
		UpdatedAt: time.Time(m.UpdatedAt),
	}
}

func (r *jobRepository) toModel(d *domain.BackupJob) *model.BackupJob {
	enabled := 0
	if d.IsEnabled {
		enabled = 1
	}
	return &model.BackupJob{
		ID:        d.ID,
		Name:      d.Name,
		Database:  d.Database,
		Category:  string(d.Category),
		Kind:      string(d.Kind),
		Cadence:   string(d.Cadence),
		Hour:      d.Hour,
		Minute:    d.Minute,
		Weekday:   d.Weekday,
		MonthDay:  d.MonthDay,
		IsEnabled: enabled,
	}
}

func (r *jobRepository) GetByID(ctx context.Context, id int64) (*domain.BackupJob, error) {
	var m model.BackupJob
	err := r.dao.DB().WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

func (r *jobRepository) List(ctx context.Context) ([]*domain.BackupJob, error) {
	var ms []*model.BackupJob
	if err := r.dao.DB().WithContext(ctx).Order("id asc").Find(&ms).Error; err != nil {
		return nil, err
	}
	jobs := make([]*domain.BackupJob, 0, len(ms))
	for _, m := range ms {
		jobs = append(jobs, r.toDomain(m))
	}
	return jobs, nil
}

func (r *jobRepository) ListEnabled(ctx context.Context, category domain.JobCategory) ([]*domain.BackupJob, error) {
	var ms []*model.BackupJob
	err := r.dao.DB().WithContext(ctx).
		Where("category = ? AND is_enabled = 1", string(category)).
		Order("id asc").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	jobs := make([]*domain.BackupJob, 0, len(ms))
	for _, m := range ms {
		jobs = append(jobs, r.toDomain(m))
	}
	return jobs, nil
}

func (r *jobRepository) Save(ctx context.Context, job *domain.BackupJob) (*domain.BackupJob, error) {
	db := r.dao.DB().WithContext(ctx)
	m := r.toModel(job)
	if m.ID == 0 {
		m.CreatedAt = timex.Now()
		m.UpdatedAt = timex.Now()
		if err := db.Create(m).Error; err != nil {
			return nil, err
		}
	} else {
		// Save writes every column, so the original created_at has to be
		// carried over from the stored row.
		var existing model.BackupJob
		if err := db.Where("id = ?", m.ID).First(&existing).Error; err != nil {
			return nil, err
		}
		m.CreatedAt = existing.CreatedAt
		m.UpdatedAt = timex.Now()
		if err := db.Save(m).Error; err != nil {
			return nil, err
		}
	}
	return r.toDomain(m), nil
}

func (r *jobRepository) Delete(ctx context.Context, id int64) error {
	return r.dao.DB().WithContext(ctx).Where("id = ?", id).Delete(&model.BackupJob{}).Error
}
