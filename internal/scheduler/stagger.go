package scheduler

import (
	"fmt"

	"github.com/haierkeys/db-backup-sync-service/internal/domain"
)

// StaggerSlot is one computed trigger time in a staggered batch.
type StaggerSlot struct {
	Index  int
	Hour   int
	Minute int
}

// StaggerSlots spreads totalJobs trigger times evenly across the window
// starting at startHour. The interval is floor(windowHours*60/totalJobs)
// minutes and the hour wraps modulo 24.
//
// When totalJobs exceeds the window's minutes the floor rounds the interval
// to 0 and jobs overlap at one-minute granularity; that is a known
// limitation of the scheme, kept as is.
func StaggerSlots(totalJobs, startHour, windowHours int) []StaggerSlot {
	if totalJobs <= 0 {
		return nil
	}

	intervalMinutes := windowHours * 60 / totalJobs

	slots := make([]StaggerSlot, totalJobs)
	for i := 0; i < totalJobs; i++ {
		total := startHour*60 + i*intervalMinutes
		slots[i] = StaggerSlot{
			Index:  i,
			Hour:   (total / 60) % 24,
			Minute: total % 60,
		}
	}
	return slots
}

// CronExpression renders the slot for the given cadence: a fixed weekday
// for weekly, a day-of-month for monthly, neither for daily.
func (s StaggerSlot) CronExpression(cadence domain.JobCadence, weekday int, monthDay int) string {
	switch cadence {
	case domain.JobCadenceWeekly:
		return fmt.Sprintf("%d %d * * %d", s.Minute, s.Hour, weekday)
	case domain.JobCadenceMonthly:
		return fmt.Sprintf("%d %d %d * *", s.Minute, s.Hour, monthDay)
	default:
		return fmt.Sprintf("%d %d * * *", s.Minute, s.Hour)
	}
}
