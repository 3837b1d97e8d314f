package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/haierkeys/db-backup-sync-service/internal/domain"
	"github.com/haierkeys/db-backup-sync-service/internal/scheduler"
	"github.com/haierkeys/db-backup-sync-service/pkg/code"
	"github.com/haierkeys/db-backup-sync-service/pkg/logger"

	"go.uber.org/zap"
)

const (
	scheduleKeyCleanup = "system:cleanup"
	scheduleKeyReport  = "system:report"
	scheduleKeySync    = "system:sync"
)

// ScheduleService wires the configured jobs and system tasks into the cron
// registry and keeps the registry in step with configuration changes.
type ScheduleService struct {
	scheduler   *scheduler.Scheduler
	jobRepo     domain.JobRepository
	settingRepo domain.SettingRepository
	jobs        *JobService
	cleanup     *CleanupService
	sync        *SyncService
	report      *ReportService
	logger      *zap.Logger

	// ReportCron trigger for the daily report, from config.
	ReportCron string
}

func NewScheduleService(
	sched *scheduler.Scheduler,
	jobRepo domain.JobRepository,
	settingRepo domain.SettingRepository,
	jobs *JobService,
	cleanup *CleanupService,
	syncService *SyncService,
	report *ReportService,
	reportCron string,
	lg *zap.Logger,
) *ScheduleService {
	return &ScheduleService{
		scheduler:   sched,
		jobRepo:     jobRepo,
		settingRepo: settingRepo,
		jobs:        jobs,
		cleanup:     cleanup,
		sync:        syncService,
		report:      report,
		logger:      lg,
		ReportCron:  reportCron,
	}
}

// RegisterAll installs every enabled job plus the cleanup, report and
// scheduled-sync triggers. Individual registration failures are logged and
// skipped so one bad row cannot keep the rest offline.
func (s *ScheduleService) RegisterAll(ctx context.Context) error {
	for _, category := range []domain.JobCategory{domain.JobCategoryBackup, domain.JobCategoryMaintenance} {
		enabled, err := s.jobRepo.ListEnabled(ctx, category)
		if err != nil {
			return err
		}
		for _, job := range enabled {
			if err := s.scheduleJob(job); err != nil {
				s.logger.Error("schedule: job registration skipped",
					zap.String(logger.FieldJob, job.Name), zap.Error(err))
			}
		}
	}

	if err := s.RefreshCleanup(ctx); err != nil {
		s.logger.Error("schedule: cleanup trigger registration failed", zap.Error(err))
	}
	if err := s.RefreshSync(ctx); err != nil {
		s.logger.Error("schedule: sync trigger registration failed", zap.Error(err))
	}
	if s.report != nil && s.ReportCron != "" {
		if err := s.scheduler.Schedule(scheduleKeyReport, s.ReportCron, s.runReport); err != nil {
			s.logger.Error("schedule: report trigger registration failed", zap.Error(err))
		}
	}
	return nil
}

// ReloadJob re-reads one job and installs or removes its trigger. Called
// after every job create, update, enable, disable or delete.
func (s *ScheduleService) ReloadJob(ctx context.Context, jobID int64) error {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if job == nil || !job.IsEnabled {
		s.scheduler.Remove(fmt.Sprintf("%s:%d", domain.JobCategoryBackup, jobID))
		s.scheduler.Remove(fmt.Sprintf("%s:%d", domain.JobCategoryMaintenance, jobID))
		return nil
	}
	return s.scheduleJob(job)
}

func (s *ScheduleService) scheduleJob(job *domain.BackupJob) error {
	id := job.ID
	return s.scheduler.Schedule(job.ScheduleKey(), job.CronExpression(), func() {
		ctx := context.Background()
		if err := s.jobs.RunJob(ctx, id); err != nil {
			s.logger.Error("scheduled job run failed",
				zap.Int64("jobId", id), zap.Error(err))
		}
	})
}

// RefreshCleanup re-reads the retention policy and installs or removes the
// cleanup trigger accordingly.
func (s *ScheduleService) RefreshCleanup(ctx context.Context) error {
	settings, err := s.settingRepo.GetCleanupSettings(ctx)
	if err != nil {
		return err
	}
	if !settings.Enabled {
		s.scheduler.Remove(scheduleKeyCleanup)
		return nil
	}
	return s.scheduler.Schedule(scheduleKeyCleanup, settings.Cron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
		defer cancel()
		if _, err := s.cleanup.Execute(ctx, false); err != nil {
			s.logger.Error("scheduled cleanup failed", zap.Error(err))
		}
	})
}

// RefreshSync re-reads the sync policy and installs the scheduled trigger
// when mode is scheduled, removing it otherwise.
func (s *ScheduleService) RefreshSync(ctx context.Context) error {
	settings, err := s.settingRepo.GetSyncSettings(ctx)
	if err != nil {
		return err
	}
	if settings.Mode != domain.SyncModeScheduled {
		s.scheduler.Remove(scheduleKeySync)
		return nil
	}
	expr, err := cronFromClock(settings.ScheduleTime)
	if err != nil {
		return err
	}
	return s.scheduler.Schedule(scheduleKeySync, expr, func() {
		if err := s.sync.Trigger(context.Background(), domain.SyncModeScheduled); err != nil {
			s.logger.Error("scheduled sync failed", zap.Error(err))
		}
	})
}

// StaggerJobs recomputes trigger times for every enabled backup job,
// spreading them evenly across the window, persists the new times and
// reinstalls the triggers.
func (s *ScheduleService) StaggerJobs(ctx context.Context, startHour, windowHours int) error {
	enabled, err := s.jobRepo.ListEnabled(ctx, domain.JobCategoryBackup)
	if err != nil {
		return err
	}
	slots := scheduler.StaggerSlots(len(enabled), startHour, windowHours)
	for i, job := range enabled {
		job.Hour = slots[i].Hour
		job.Minute = slots[i].Minute
		if _, err := s.jobRepo.Save(ctx, job); err != nil {
			return err
		}
		if err := s.scheduleJob(job); err != nil {
			s.logger.Error("schedule: staggered job registration failed",
				zap.String(logger.FieldJob, job.Name), zap.Error(err))
		}
	}
	s.logger.Info("schedule: staggered triggers installed",
		zap.Int("jobs", len(enabled)),
		zap.Int("startHour", startHour),
		zap.Int("windowHours", windowHours))
	return nil
}

func (s *ScheduleService) runReport() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := s.report.SendDaily(ctx); err != nil {
		s.logger.Error("daily report failed", zap.Error(err))
	}
}

// cronFromClock turns "HH:MM" into a daily 5-field cron expression.
func cronFromClock(clock string) (string, error) {
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 {
		return "", code.ErrorCronInvalid.WithDetails("want HH:MM, got " + clock)
	}
	hour, err1 := strconv.Atoi(parts[0])
	minute, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", code.ErrorCronInvalid.WithDetails("want HH:MM, got " + clock)
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}
