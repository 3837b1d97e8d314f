package service

import (
	"context"
	"testing"

	"github.com/haierkeys/db-backup-sync-service/internal/domain"
	"github.com/haierkeys/db-backup-sync-service/internal/scheduler"

	"go.uber.org/zap"
)

func newScheduleFixture(jobRepo *mockJobRepo, settingRepo *mockSettingRepo) *ScheduleService {
	return NewScheduleService(
		scheduler.New(zap.NewNop()),
		jobRepo,
		settingRepo,
		nil, nil, nil, nil,
		"",
		zap.NewNop(),
	)
}

func TestCronFromClock(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "03:30", want: "30 3 * * *"},
		{in: "0:0", want: "0 0 * * *"},
		{in: "23:59", want: "59 23 * * *"},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "noon", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := cronFromClock(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("cronFromClock(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("cronFromClock(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRegisterAllInstallsTriggers(t *testing.T) {
	jobRepo := &mockJobRepo{jobs: []*domain.BackupJob{
		{ID: 1, Name: "orders full", Category: domain.JobCategoryBackup,
			Cadence: domain.JobCadenceDaily, Hour: 3, IsEnabled: true},
		{ID: 2, Name: "verify", Category: domain.JobCategoryMaintenance,
			Cadence: domain.JobCadenceWeekly, Hour: 5, Weekday: 0, IsEnabled: true},
		{ID: 3, Name: "disabled", Category: domain.JobCategoryBackup, IsEnabled: false},
	}}
	settingRepo := &mockSettingRepo{
		cleanup: &domain.CleanupSettings{Enabled: true, Cron: "0 6 * * *"},
		sync:    &domain.SyncSettings{Mode: domain.SyncModeScheduled, ScheduleTime: "04:30"},
	}
	svc := newScheduleFixture(jobRepo, settingRepo)

	if err := svc.RegisterAll(context.Background()); err != nil {
		t.Fatal(err)
	}

	want := []string{"backup:1", "maintenance:2", "system:cleanup", "system:sync"}
	got := svc.scheduler.JobIDs()
	if len(got) != len(want) {
		t.Fatalf("registry = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("registry = %v, want %v", got, want)
		}
	}
}

func TestReloadJobRemovesDisabled(t *testing.T) {
	job := &domain.BackupJob{ID: 1, Name: "orders full", Category: domain.JobCategoryBackup,
		Cadence: domain.JobCadenceDaily, Hour: 3, IsEnabled: true}
	jobRepo := &mockJobRepo{jobs: []*domain.BackupJob{job}}
	svc := newScheduleFixture(jobRepo, &mockSettingRepo{})

	if err := svc.ReloadJob(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	if !svc.scheduler.IsScheduled("backup:1") {
		t.Fatal("enabled job should be scheduled")
	}

	job.IsEnabled = false
	if err := svc.ReloadJob(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	if svc.scheduler.IsScheduled("backup:1") {
		t.Error("disabling a job must remove its trigger")
	}
}

func TestRefreshSyncRemovesNonScheduledMode(t *testing.T) {
	settingRepo := &mockSettingRepo{
		sync: &domain.SyncSettings{Mode: domain.SyncModeScheduled, ScheduleTime: "04:30"},
	}
	svc := newScheduleFixture(&mockJobRepo{}, settingRepo)

	if err := svc.RefreshSync(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !svc.scheduler.IsScheduled(scheduleKeySync) {
		t.Fatal("scheduled mode should install the sync trigger")
	}

	settingRepo.sync.Mode = domain.SyncModeAfterBackups
	if err := svc.RefreshSync(context.Background()); err != nil {
		t.Fatal(err)
	}
	if svc.scheduler.IsScheduled(scheduleKeySync) {
		t.Error("leaving scheduled mode must remove the sync trigger")
	}
}

func TestStaggerJobsPersistsAndReschedules(t *testing.T) {
	var jobs []*domain.BackupJob
	for i := int64(1); i <= 12; i++ {
		jobs = append(jobs, &domain.BackupJob{
			ID: i, Name: "job", Category: domain.JobCategoryBackup,
			Cadence: domain.JobCadenceDaily, Hour: 3, IsEnabled: true,
		})
	}
	jobRepo := &mockJobRepo{jobs: jobs}
	svc := newScheduleFixture(jobRepo, &mockSettingRepo{})

	if err := svc.StaggerJobs(context.Background(), 2, 6); err != nil {
		t.Fatal(err)
	}

	if jobs[0].Hour != 2 || jobs[0].Minute != 0 {
		t.Errorf("job 1 = %02d:%02d, want 02:00", jobs[0].Hour, jobs[0].Minute)
	}
	if jobs[6].Hour != 5 || jobs[6].Minute != 0 {
		t.Errorf("job 7 = %02d:%02d, want 05:00", jobs[6].Hour, jobs[6].Minute)
	}
	for _, job := range jobs {
		if !svc.scheduler.IsScheduled(job.ScheduleKey()) {
			t.Errorf("job %d missing from the registry after staggering", job.ID)
		}
	}
}
