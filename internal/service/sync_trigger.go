package service

import (
	"context"
	"sync"
	"time"

	"github.com/haierkeys/db-backup-sync-service/internal/domain"
	"github.com/haierkeys/db-backup-sync-service/pkg/util"

	"go.uber.org/zap"
)

// SyncTrigger arms a delayed sync after the day's backups complete. The
// buffer absorbs late finishers: every completion signal while armed
// resets the timer. Once a sync fires it stays disarmed until local
// midnight.
type SyncTrigger struct {
	settingRepo domain.SettingRepository
	completion  *CompletionService
	sync        *SyncService
	logger      *zap.Logger

	mu         sync.Mutex
	timer      *time.Timer
	firedToday bool
	// resetAt next local midnight, after which firedToday clears.
	resetAt time.Time

	now func() time.Time
}

func NewSyncTrigger(
	settingRepo domain.SettingRepository,
	completion *CompletionService,
	syncService *SyncService,
	lg *zap.Logger,
) *SyncTrigger {
	return &SyncTrigger{
		settingRepo: settingRepo,
		completion:  completion,
		sync:        syncService,
		logger:      lg,
		now:         time.Now,
	}
}

// OnJobFinished is called after every backup job run reaches a terminal
// state. It checks completion and arms or re-arms the buffer timer.
func (t *SyncTrigger) OnJobFinished(ctx context.Context) {
	settings, err := t.settingRepo.GetSyncSettings(ctx)
	if err != nil {
		t.logger.Error("sync trigger: settings load failed", zap.Error(err))
		return
	}
	if settings.Mode != domain.SyncModeAfterBackups {
		return
	}

	check, err := t.completion.CheckAllDailyBackupsComplete(ctx)
	if err != nil {
		t.logger.Error("sync trigger: completion check failed", zap.Error(err))
		return
	}
	if !check.AllComplete {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.rollDayLocked(now)
	if t.firedToday {
		return
	}

	buffer := time.Duration(settings.BufferMinutes) * time.Minute
	if t.timer != nil {
		// A late finisher while armed restarts the countdown.
		t.timer.Stop()
	}
	t.logger.Info("sync trigger armed",
		zap.Duration("buffer", buffer),
		zap.Int("jobs", check.TotalJobs))
	t.timer = time.AfterFunc(buffer, t.fire)
}

func (t *SyncTrigger) fire() {
	t.mu.Lock()
	now := t.now()
	t.rollDayLocked(now)
	if t.firedToday {
		t.mu.Unlock()
		return
	}
	t.firedToday = true
	t.timer = nil
	t.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Completion can regress between arming and firing when a job is
	// re-run, so re-check before starting.
	check, err := t.completion.CheckAllDailyBackupsComplete(ctx)
	if err != nil || !check.AllComplete {
		t.mu.Lock()
		t.firedToday = false
		t.mu.Unlock()
		return
	}

	go func() {
		if err := t.sync.Trigger(context.Background(), domain.SyncModeAfterBackups); err != nil {
			t.logger.Error("sync trigger: run failed", zap.Error(err))
		}
	}()
}

// rollDayLocked clears the fired flag when the local day has rolled over.
func (t *SyncTrigger) rollDayLocked(now time.Time) {
	if t.resetAt.IsZero() || !now.Before(t.resetAt) {
		t.firedToday = false
		t.resetAt = util.NextMidnight(now)
	}
}

// Stop cancels a pending armed timer.
func (t *SyncTrigger) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
