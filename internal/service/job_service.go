package service

import (
	"context"
	"time"

	"github.com/haierkeys/db-backup-sync-service/internal/domain"
	"github.com/haierkeys/db-backup-sync-service/internal/metrics"
	"github.com/haierkeys/db-backup-sync-service/pkg/code"
	"github.com/haierkeys/db-backup-sync-service/pkg/logger"

	"go.uber.org/zap"
)

// JobService executes configured backup jobs and records their history.
// The artifact production itself is delegated to a BackupExecutor; this
// service owns the run lifecycle and the post-run hooks.
type JobService struct {
	jobRepo     domain.JobRepository
	historyRepo domain.HistoryRepository
	executor    domain.BackupExecutor
	trigger     *SyncTrigger
	logger      *zap.Logger
}

func NewJobService(
	jobRepo domain.JobRepository,
	historyRepo domain.HistoryRepository,
	executor domain.BackupExecutor,
	trigger *SyncTrigger,
	lg *zap.Logger,
) *JobService {
	return &JobService{
		jobRepo:     jobRepo,
		historyRepo: historyRepo,
		executor:    executor,
		trigger:     trigger,
		logger:      lg,
	}
}

// RunJob executes one job end to end: a running history row first, then
// the executor, then the terminal update. Executor failures land in the
// history as failed runs, never as missing rows.
func (s *JobService) RunJob(ctx context.Context, jobID int64) error {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if job == nil {
		return code.ErrorJobNotFound
	}
	return s.run(ctx, job)
}

func (s *JobService) run(ctx context.Context, job *domain.BackupJob) error {
	start := time.Now()
	running, err := s.historyRepo.CreateJobRun(ctx, &domain.JobHistory{
		JobID:     job.ID,
		JobName:   job.Name,
		Status:    domain.JobRunStatusRunning,
		StartedAt: start,
	})
	if err != nil {
		return err
	}

	s.logger.Info("job started",
		zap.String(logger.FieldJob, job.Name),
		zap.String(logger.FieldDatabase, job.Database),
		zap.String("kind", string(job.Kind)))

	filePath, sizeMb, execErr := s.executor.Execute(ctx, job)

	status := domain.JobRunStatusSuccess
	message := ""
	if execErr != nil {
		status = domain.JobRunStatusFailed
		message = execErr.Error()
	}
	if err := s.historyRepo.FinishJobRun(ctx, running.ID, status, message, filePath, sizeMb); err != nil {
		s.logger.Error("job: history update failed",
			zap.String(logger.FieldJob, job.Name), zap.Error(err))
	}
	metrics.JobRuns.WithLabelValues(string(status)).Inc()

	if execErr != nil {
		s.logger.Error("job failed",
			zap.String(logger.FieldJob, job.Name),
			zap.Duration(logger.FieldDuration, time.Since(start)),
			zap.Error(execErr))
	} else {
		s.logger.Info("job finished",
			zap.String(logger.FieldJob, job.Name),
			zap.String(logger.FieldPath, filePath),
			zap.Float64(logger.FieldSizeMb, sizeMb),
			zap.Duration(logger.FieldDuration, time.Since(start)))
	}

	// The trigger only cares that a run reached a terminal state; it
	// re-checks completion itself.
	if s.trigger != nil && job.Category == domain.JobCategoryBackup {
		s.trigger.OnJobFinished(ctx)
	}
	return execErr
}
