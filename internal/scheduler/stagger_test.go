package scheduler

import (
	"testing"

	"github.com/haierkeys/db-backup-sync-service/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestStaggerSlotsSpreadsWindow(t *testing.T) {
	slots := StaggerSlots(12, 2, 6)
	if len(slots) != 12 {
		t.Fatalf("slots = %d, want 12", len(slots))
	}
	// 6h / 12 jobs = 30 minute interval.
	if slots[0].Hour != 2 || slots[0].Minute != 0 {
		t.Errorf("slot 0 = %02d:%02d, want 02:00", slots[0].Hour, slots[0].Minute)
	}
	if slots[1].Hour != 2 || slots[1].Minute != 30 {
		t.Errorf("slot 1 = %02d:%02d, want 02:30", slots[1].Hour, slots[1].Minute)
	}
	if slots[6].Hour != 5 || slots[6].Minute != 0 {
		t.Errorf("slot 6 = %02d:%02d, want 05:00", slots[6].Hour, slots[6].Minute)
	}
	if slots[11].Hour != 7 || slots[11].Minute != 30 {
		t.Errorf("slot 11 = %02d:%02d, want 07:30", slots[11].Hour, slots[11].Minute)
	}
}

func TestStaggerSlotsWrapsMidnight(t *testing.T) {
	slots := StaggerSlots(4, 22, 8)
	wants := []StaggerSlot{
		{Index: 0, Hour: 22, Minute: 0},
		{Index: 1, Hour: 0, Minute: 0},
		{Index: 2, Hour: 2, Minute: 0},
		{Index: 3, Hour: 4, Minute: 0},
	}
	for i, want := range wants {
		if slots[i] != want {
			t.Errorf("slot %d = %+v, want %+v", i, slots[i], want)
		}
	}
}

func TestStaggerSlotsZeroJobs(t *testing.T) {
	if slots := StaggerSlots(0, 2, 6); slots != nil {
		t.Errorf("zero jobs should yield no slots, got %v", slots)
	}
}

func TestStaggerSlotsDegenerateInterval(t *testing.T) {
	// More jobs than window minutes floors the interval to 0; every slot
	// lands on the start time.
	slots := StaggerSlots(100, 2, 1)
	for _, s := range slots {
		if s.Hour != 2 || s.Minute != 0 {
			t.Fatalf("slot %d = %02d:%02d, want 02:00", s.Index, s.Hour, s.Minute)
		}
	}
}

func TestStaggerSlotsProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("every slot is a valid clock time", prop.ForAll(
		func(total, start, window int) bool {
			for _, s := range StaggerSlots(total, start, window) {
				if s.Hour < 0 || s.Hour > 23 || s.Minute < 0 || s.Minute > 59 {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 64), gen.IntRange(0, 23), gen.IntRange(1, 24),
	))

	properties.Property("slot count matches the job count", prop.ForAll(
		func(total, start, window int) bool {
			return len(StaggerSlots(total, start, window)) == total
		},
		gen.IntRange(1, 64), gen.IntRange(0, 23), gen.IntRange(1, 24),
	))

	properties.TestingRun(t)
}

func TestStaggerSlotCronExpression(t *testing.T) {
	slot := StaggerSlot{Index: 0, Hour: 3, Minute: 30}
	tests := []struct {
		cadence  domain.JobCadence
		weekday  int
		monthDay int
		want     string
	}{
		{domain.JobCadenceDaily, 0, 0, "30 3 * * *"},
		{domain.JobCadenceWeekly, 6, 0, "30 3 * * 6"},
		{domain.JobCadenceMonthly, 0, 15, "30 3 15 * *"},
	}
	for _, tt := range tests {
		if got := slot.CronExpression(tt.cadence, tt.weekday, tt.monthDay); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.cadence, got, tt.want)
		}
	}
}
