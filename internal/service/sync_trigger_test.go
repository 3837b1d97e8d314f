package service

import (
	"context"
	"testing"
	"time"

	"github.com/haierkeys/db-backup-sync-service/internal/domain"
	"github.com/haierkeys/db-backup-sync-service/pkg/borg"

	"go.uber.org/zap"
)

func newTriggerFixture(t *testing.T, mode domain.SyncMode, allComplete bool) (*SyncTrigger, *mockHistoryRepo) {
	t.Helper()

	now := time.Date(2026, 5, 12, 22, 0, 0, 0, time.Local)
	jobs := []*domain.BackupJob{
		{ID: 1, Name: "orders full", Category: domain.JobCategoryBackup, Hour: 3, IsEnabled: true},
	}

	historyRepo := &mockHistoryRepo{}
	if allComplete {
		historyRepo.jobRuns = []*domain.JobHistory{
			{ID: 1, JobID: 1, Status: domain.JobRunStatusSuccess, StartedAt: now.Add(-time.Hour)},
		}
	}

	settingRepo := &mockSettingRepo{
		sync:      &domain.SyncSettings{Mode: mode, ArchivePrefix: "backups"},
		bandwidth: &domain.BandwidthSettings{},
	}

	completion := NewCompletionService(&mockJobRepo{jobs: jobs}, historyRepo, zap.NewNop())
	completion.now = func() time.Time { return now }

	syncSvc := NewSyncService(SyncConfig{SourcePath: t.TempDir()},
		settingRepo, historyRepo, &fakeArchiver{}, zap.NewNop())
	syncSvc.repoConfig = func() borg.Config {
		return borg.Config{Host: "test", User: "sync", Port: "22", RepoPath: "/repo"}
	}

	trigger := NewSyncTrigger(settingRepo, completion, syncSvc, zap.NewNop())
	trigger.now = func() time.Time { return now }
	return trigger, historyRepo
}

func TestTriggerIgnoresOtherModes(t *testing.T) {
	trigger, _ := newTriggerFixture(t, domain.SyncModeManual, true)

	trigger.OnJobFinished(context.Background())

	trigger.mu.Lock()
	defer trigger.mu.Unlock()
	if trigger.timer != nil {
		t.Error("manual mode must never arm the timer")
	}
}

func TestTriggerWaitsForCompletion(t *testing.T) {
	trigger, _ := newTriggerFixture(t, domain.SyncModeAfterBackups, false)

	trigger.OnJobFinished(context.Background())

	trigger.mu.Lock()
	defer trigger.mu.Unlock()
	if trigger.timer != nil {
		t.Error("incomplete backups must not arm the timer")
	}
}

func TestTriggerFiresOnceAfterBuffer(t *testing.T) {
	trigger, historyRepo := newTriggerFixture(t, domain.SyncModeAfterBackups, true)

	// Zero buffer fires the armed timer immediately.
	trigger.OnJobFinished(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for historyRepo.syncRunCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("armed trigger never started a sync")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// Further completion signals on the same day stay disarmed.
	trigger.OnJobFinished(context.Background())
	trigger.mu.Lock()
	armed := trigger.timer != nil
	fired := trigger.firedToday
	trigger.mu.Unlock()
	if armed || !fired {
		t.Errorf("trigger should stay disarmed until midnight, armed=%v fired=%v", armed, fired)
	}
}

func TestTriggerRearmsOnLateFinisher(t *testing.T) {
	trigger, _ := newTriggerFixture(t, domain.SyncModeAfterBackups, true)
	trigger.settingRepo.(*mockSettingRepo).sync.BufferMinutes = 30

	trigger.OnJobFinished(context.Background())
	trigger.mu.Lock()
	first := trigger.timer
	trigger.mu.Unlock()
	if first == nil {
		t.Fatal("trigger should be armed")
	}

	trigger.OnJobFinished(context.Background())
	trigger.mu.Lock()
	second := trigger.timer
	trigger.mu.Unlock()
	if second == nil || second == first {
		t.Error("a late finisher must restart the countdown with a fresh timer")
	}
	trigger.Stop()
}
