package domain

import (
	"testing"
	"time"
)

func TestDueToday(t *testing.T) {
	// A Sunday, the 10th.
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.Local)

	tests := []struct {
		name string
		job  BackupJob
		want bool
	}{
		{"daily always due", BackupJob{Cadence: JobCadenceDaily}, true},
		{"empty cadence treated as daily", BackupJob{}, true},
		{"weekly on matching weekday", BackupJob{Cadence: JobCadenceWeekly, Weekday: 0}, true},
		{"weekly on other weekday", BackupJob{Cadence: JobCadenceWeekly, Weekday: 3}, false},
		{"monthly on matching day", BackupJob{Cadence: JobCadenceMonthly, MonthDay: 10}, true},
		{"monthly on other day", BackupJob{Cadence: JobCadenceMonthly, MonthDay: 15}, false},
	}
	for _, tt := range tests {
		if got := tt.job.DueToday(now); got != tt.want {
			t.Errorf("%s: DueToday = %v, want %v", tt.name, got, tt.want)
		}
	}
}
