package service

import (
	"context"
	"sync"
	"time"

	"github.com/haierkeys/db-backup-sync-service/internal/domain"
)

// mockSettingRepo overrides only the funcs a test sets; everything else
// panics through the embedded nil interface.
type mockSettingRepo struct {
	domain.SettingRepository
	cleanup   *domain.CleanupSettings
	sync      *domain.SyncSettings
	bandwidth *domain.BandwidthSettings

	lastRunStatus  string
	lastRunMessage string
}

func (m *mockSettingRepo) GetCleanupSettings(ctx context.Context) (*domain.CleanupSettings, error) {
	return m.cleanup, nil
}

func (m *mockSettingRepo) GetSyncSettings(ctx context.Context) (*domain.SyncSettings, error) {
	return m.sync, nil
}

func (m *mockSettingRepo) GetBandwidthSettings(ctx context.Context) (*domain.BandwidthSettings, error) {
	if m.bandwidth == nil {
		return &domain.BandwidthSettings{}, nil
	}
	return m.bandwidth, nil
}

func (m *mockSettingRepo) SaveCleanupLastRun(ctx context.Context, status, message string, at time.Time) error {
	m.lastRunStatus = status
	m.lastRunMessage = message
	return nil
}

type mockJobRepo struct {
	domain.JobRepository
	jobs []*domain.BackupJob
}

func (m *mockJobRepo) GetByID(ctx context.Context, id int64) (*domain.BackupJob, error) {
	for _, j := range m.jobs {
		if j.ID == id {
			return j, nil
		}
	}
	return nil, nil
}

func (m *mockJobRepo) Save(ctx context.Context, job *domain.BackupJob) (*domain.BackupJob, error) {
	for i, j := range m.jobs {
		if j.ID == job.ID {
			m.jobs[i] = job
			return job, nil
		}
	}
	m.jobs = append(m.jobs, job)
	return job, nil
}

func (m *mockJobRepo) ListEnabled(ctx context.Context, category domain.JobCategory) ([]*domain.BackupJob, error) {
	var out []*domain.BackupJob
	for _, j := range m.jobs {
		if j.IsEnabled && j.Category == category {
			out = append(out, j)
		}
	}
	return out, nil
}

type mockHistoryRepo struct {
	domain.HistoryRepository
	mu          sync.Mutex
	jobRuns     []*domain.JobHistory
	cleanupRuns []*domain.CleanupRun
	syncRuns    []*domain.SyncRun
	deletedIDs  []int64
	nextID      int64
}

func (m *mockHistoryRepo) CreateJobRun(ctx context.Context, run *domain.JobHistory) (*domain.JobHistory, error) {
	m.nextID++
	run.ID = m.nextID
	m.jobRuns = append(m.jobRuns, run)
	return run, nil
}

func (m *mockHistoryRepo) FinishJobRun(ctx context.Context, id int64, status domain.JobRunStatus, message string, filePath string, sizeMb float64) error {
	for _, run := range m.jobRuns {
		if run.ID == id {
			run.Status = status
			run.Message = message
			run.FilePath = filePath
			run.SizeMb = sizeMb
			run.FinishedAt = time.Now()
		}
	}
	return nil
}

func (m *mockHistoryRepo) ListJobRunsBetween(ctx context.Context, from, to time.Time) ([]*domain.JobHistory, error) {
	var out []*domain.JobHistory
	for _, run := range m.jobRuns {
		if !run.StartedAt.Before(from) && run.StartedAt.Before(to) {
			out = append(out, run)
		}
	}
	return out, nil
}

func (m *mockHistoryRepo) FindJobRunByFilePath(ctx context.Context, filePath string) (*domain.JobHistory, error) {
	for _, run := range m.jobRuns {
		if run.FilePath == filePath {
			return run, nil
		}
	}
	return nil, nil
}

func (m *mockHistoryRepo) MarkFileDeleted(ctx context.Context, id int64) error {
	m.deletedIDs = append(m.deletedIDs, id)
	return nil
}

func (m *mockHistoryRepo) CreateCleanupRun(ctx context.Context, run *domain.CleanupRun) (*domain.CleanupRun, error) {
	m.cleanupRuns = append(m.cleanupRuns, run)
	return run, nil
}

func (m *mockHistoryRepo) CreateSyncRun(ctx context.Context, run *domain.SyncRun) (*domain.SyncRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncRuns = append(m.syncRuns, run)
	return run, nil
}

// syncRunCount is safe against runs recorded from background goroutines.
func (m *mockHistoryRepo) syncRunCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.syncRuns)
}

func (m *mockHistoryRepo) ListCleanupRuns(ctx context.Context, limit int) ([]*domain.CleanupRun, error) {
	return m.cleanupRuns, nil
}

func (m *mockHistoryRepo) ListSyncRuns(ctx context.Context, limit int) ([]*domain.SyncRun, error) {
	return m.syncRuns, nil
}
