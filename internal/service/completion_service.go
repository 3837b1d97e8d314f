package service

import (
	"context"
	"time"

	"github.com/haierkeys/db-backup-sync-service/internal/domain"
	"github.com/haierkeys/db-backup-sync-service/pkg/util"

	"go.uber.org/zap"
)

// CompletionService decides whether all of today's scheduled backups have
// finished. It is invoked after every backup job completion rather than on
// a timer, so the follow-up sync can start as early as possible.
type CompletionService struct {
	jobRepo     domain.JobRepository
	historyRepo domain.HistoryRepository
	logger      *zap.Logger
	// now is injectable for tests.
	now func() time.Time
}

func NewCompletionService(jobRepo domain.JobRepository, historyRepo domain.HistoryRepository, lg *zap.Logger) *CompletionService {
	return &CompletionService{
		jobRepo:     jobRepo,
		historyRepo: historyRepo,
		logger:      lg,
		now:         time.Now,
	}
}

// CheckAllDailyBackupsComplete classifies every enabled backup job for the
// local day. A job is complete once a terminal (success or failed) run
// exists today. Jobs whose cadence does not fall on today are skipped, and
// zero due jobs count as vacuously complete.
func (s *CompletionService) CheckAllDailyBackupsComplete(ctx context.Context) (*domain.CompletionCheck, error) {
	jobs, err := s.jobRepo.ListEnabled(ctx, domain.JobCategoryBackup)
	if err != nil {
		return nil, err
	}

	now := s.now()
	dayStart := util.GetZeroTime(now)

	runs, err := s.historyRepo.ListJobRunsBetween(ctx, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	terminal := map[int64]bool{}
	running := map[int64]bool{}
	for _, run := range runs {
		if run.Status.Terminal() {
			terminal[run.JobID] = true
		} else if run.Status == domain.JobRunStatusRunning {
			running[run.JobID] = true
		}
	}

	check := &domain.CompletionCheck{}
	for _, job := range jobs {
		// A weekly or monthly job on an off day has nothing scheduled
		// today and must not gate completion.
		if !job.DueToday(now) {
			continue
		}
		check.TotalJobs++

		if terminal[job.ID] {
			check.CompletedJobs++
			continue
		}

		pending := domain.PendingJob{JobID: job.ID, Name: job.Name}
		switch {
		case running[job.ID]:
			pending.Reason = domain.PendingReasonRunning
		case job.ScheduledToday(now):
			// The trigger time passed with no run at all; the job should
			// have fired but did not.
			pending.Reason = domain.PendingReasonNotStarted
		default:
			pending.Reason = domain.PendingReasonScheduledLater
		}
		check.PendingJobs = append(check.PendingJobs, pending)
	}

	check.AllComplete = len(check.PendingJobs) == 0

	s.logger.Debug("completion check",
		zap.Bool("allComplete", check.AllComplete),
		zap.Int("total", check.TotalJobs),
		zap.Int("completed", check.CompletedJobs),
		zap.Int("pending", len(check.PendingJobs)))

	return check, nil
}
