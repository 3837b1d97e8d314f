package domain

import (
	"testing"
	"time"
)

func TestBandwidthLimitAt(t *testing.T) {
	settings := BandwidthSettings{
		Enabled:          true,
		PeakLimitKbps:    256,
		OffpeakLimitKbps: 1024,
		PeakStartHour:    8,
		PeakEndHour:      18,
		WeekendUnlimited: true,
	}

	tests := []struct {
		name string
		at   time.Time
		cfg  BandwidthSettings
		want int
	}{
		{
			name: "disabled is always unlimited",
			at:   time.Date(2026, 5, 12, 10, 0, 0, 0, time.Local),
			cfg:  BandwidthSettings{PeakLimitKbps: 256},
			want: 0,
		},
		{
			name: "saturday with weekend carve-out",
			at:   time.Date(2026, 5, 16, 10, 0, 0, 0, time.Local),
			cfg:  settings,
			want: 0,
		},
		{
			name: "tuesday inside the peak window",
			at:   time.Date(2026, 5, 12, 10, 0, 0, 0, time.Local),
			cfg:  settings,
			want: 256,
		},
		{
			name: "tuesday late evening is off-peak",
			at:   time.Date(2026, 5, 12, 23, 0, 0, 0, time.Local),
			cfg:  settings,
			want: 1024,
		},
		{
			name: "peak end hour is exclusive",
			at:   time.Date(2026, 5, 12, 18, 0, 0, 0, time.Local),
			cfg:  settings,
			want: 1024,
		},
		{
			name: "peak start hour is inclusive",
			at:   time.Date(2026, 5, 12, 8, 0, 0, 0, time.Local),
			cfg:  settings,
			want: 256,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.LimitAt(tt.at); got != tt.want {
				t.Errorf("LimitAt() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSyncStateTerminal(t *testing.T) {
	terminal := []SyncState{SyncStateIdle, SyncStateCompleted, SyncStateFailed}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("%s should allow a new run", s)
		}
	}
	active := []SyncState{SyncStateInitializing, SyncStateSyncing, SyncStatePruning, SyncStateCompacting}
	for _, s := range active {
		if s.Terminal() {
			t.Errorf("%s must block a new run", s)
		}
	}
}
