package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/haierkeys/db-backup-sync-service/internal/domain"
	"github.com/haierkeys/db-backup-sync-service/pkg/util"

	"go.uber.org/zap"
)

// ReportService renders and sends the daily summary covering yesterday's
// backup runs, cleanup passes and sync runs. Delivery failure is logged
// and swallowed; the report must never take the service down.
type ReportService struct {
	historyRepo domain.HistoryRepository
	sender      domain.ReportSender
	logger      *zap.Logger

	now func() time.Time
}

func NewReportService(historyRepo domain.HistoryRepository, sender domain.ReportSender, lg *zap.Logger) *ReportService {
	return &ReportService{
		historyRepo: historyRepo,
		sender:      sender,
		logger:      lg,
		now:         time.Now,
	}
}

// SendDaily builds and delivers the report for the previous local day.
func (s *ReportService) SendDaily(ctx context.Context) error {
	if s.sender == nil {
		return nil
	}

	dayEnd := util.GetZeroTime(s.now())
	dayStart := dayEnd.AddDate(0, 0, -1)

	runs, err := s.historyRepo.ListJobRunsBetween(ctx, dayStart, dayEnd)
	if err != nil {
		return err
	}
	cleanups, err := s.historyRepo.ListCleanupRuns(ctx, 10)
	if err != nil {
		return err
	}
	syncs, err := s.historyRepo.ListSyncRuns(ctx, 10)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Backup report %s", dayStart.Format("2006-01-02"))
	body := s.render(dayStart, runs, filterCleanups(cleanups, dayStart, dayEnd), filterSyncs(syncs, dayStart, dayEnd))

	if err := s.sender.Send(subject, body); err != nil {
		s.logger.Error("daily report delivery failed", zap.Error(err))
		return nil
	}
	s.logger.Info("daily report sent", zap.String("day", dayStart.Format("2006-01-02")))
	return nil
}

func (s *ReportService) render(day time.Time, runs []*domain.JobHistory, cleanups []*domain.CleanupRun, syncs []*domain.SyncRun) string {
	var b strings.Builder

	var ok, failed int
	for _, r := range runs {
		if r.Status == domain.JobRunStatusSuccess {
			ok++
		} else if r.Status == domain.JobRunStatusFailed {
			failed++
		}
	}

	fmt.Fprintf(&b, "<h2>Backup report %s</h2>", day.Format("2006-01-02"))
	fmt.Fprintf(&b, "<p>%d job runs, %d succeeded, %d failed.</p>", len(runs), ok, failed)

	b.WriteString("<h3>Jobs</h3><table border=\"1\" cellpadding=\"4\"><tr><th>Job</th><th>Status</th><th>Size MB</th><th>Message</th></tr>")
	for _, r := range runs {
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%.1f</td><td>%s</td></tr>",
			html.EscapeString(r.JobName), r.Status, r.SizeMb, html.EscapeString(r.Message))
	}
	b.WriteString("</table>")

	b.WriteString("<h3>Cleanup</h3>")
	if len(cleanups) == 0 {
		b.WriteString("<p>No cleanup runs.</p>")
	}
	for _, c := range cleanups {
		fmt.Fprintf(&b, "<p>%s: %s, %d files, %.1f MB freed</p>",
			c.StartedAt.Format("15:04"), c.Status, c.DeletedFiles, c.DeletedSizeMb)
	}

	b.WriteString("<h3>Archive sync</h3>")
	if len(syncs) == 0 {
		b.WriteString("<p>No sync runs.</p>")
	}
	for _, r := range syncs {
		line := fmt.Sprintf("%s: %s, archive %s, %.1f MB in %s",
			r.StartedAt.Format("15:04"), r.Status, html.EscapeString(r.Archive), r.SizeMb, r.Duration.Round(time.Second))
		if r.Error != "" {
			line += ", error: " + html.EscapeString(r.Error)
		}
		fmt.Fprintf(&b, "<p>%s</p>", line)
	}

	return b.String()
}

func filterCleanups(runs []*domain.CleanupRun, from, to time.Time) []*domain.CleanupRun {
	var out []*domain.CleanupRun
	for _, r := range runs {
		if !r.StartedAt.Before(from) && r.StartedAt.Before(to) {
			out = append(out, r)
		}
	}
	return out
}

func filterSyncs(runs []*domain.SyncRun, from, to time.Time) []*domain.SyncRun {
	var out []*domain.SyncRun
	for _, r := range runs {
		if !r.StartedAt.Before(from) && r.StartedAt.Before(to) {
			out = append(out, r)
		}
	}
	return out
}
