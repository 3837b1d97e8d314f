package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/haierkeys/db-backup-sync-service/internal/domain"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type fakeSender struct {
	subject string
	body    string
	err     error
	sent    int
}

func (f *fakeSender) Send(subject, body string) error {
	f.sent++
	f.subject = subject
	f.body = body
	return f.err
}

func TestSendDailyNoSenderIsNoOp(t *testing.T) {
	svc := NewReportService(&mockHistoryRepo{}, nil, zap.NewNop())
	if err := svc.SendDaily(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestSendDailyCoversYesterday(t *testing.T) {
	now := time.Date(2026, 5, 13, 7, 0, 0, 0, time.Local)
	yesterday := time.Date(2026, 5, 12, 3, 0, 0, 0, time.Local)

	historyRepo := &mockHistoryRepo{
		jobRuns: []*domain.JobHistory{
			{ID: 1, JobID: 1, JobName: "orders full", Status: domain.JobRunStatusSuccess,
				SizeMb: 120.5, StartedAt: yesterday},
			{ID: 2, JobID: 2, JobName: "stock full", Status: domain.JobRunStatusFailed,
				Message: "disk full", StartedAt: yesterday.Add(time.Hour)},
			// Today's runs stay out of yesterday's report.
			{ID: 3, JobID: 1, JobName: "orders full", Status: domain.JobRunStatusSuccess,
				StartedAt: now.Add(-time.Hour)},
		},
		cleanupRuns: []*domain.CleanupRun{
			{Status: "success", DeletedFiles: 4, DeletedSizeMb: 300, StartedAt: yesterday.Add(3 * time.Hour)},
		},
		syncRuns: []*domain.SyncRun{
			{Status: "success", Archive: "backups-2026-05-12-1778899200", SizeMb: 512, StartedAt: yesterday.Add(4 * time.Hour)},
		},
	}

	sender := &fakeSender{}
	svc := NewReportService(historyRepo, sender, zap.NewNop())
	svc.now = func() time.Time { return now }

	if err := svc.SendDaily(context.Background()); err != nil {
		t.Fatal(err)
	}

	if sender.sent != 1 {
		t.Fatalf("sent = %d, want 1", sender.sent)
	}
	if sender.subject != "Backup report 2026-05-12" {
		t.Errorf("subject = %q", sender.subject)
	}
	for _, want := range []string{"2 job runs, 1 succeeded, 1 failed", "orders full", "disk full", "4 files", "backups-2026-05-12"} {
		if !strings.Contains(sender.body, want) {
			t.Errorf("body missing %q", want)
		}
	}
	if strings.Count(sender.body, "orders full") != 1 {
		t.Error("today's run leaked into yesterday's report")
	}
}

func TestSendDailyDeliveryFailureIsSwallowed(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp: connection refused")}
	svc := NewReportService(&mockHistoryRepo{}, sender, zap.NewNop())

	if err := svc.SendDaily(context.Background()); err != nil {
		t.Errorf("delivery failure must not surface, got %v", err)
	}
}
