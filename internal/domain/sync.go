package domain

import "time"

// SyncState is the archive sync engine's phase.
type SyncState string

const (
	SyncStateIdle         SyncState = "idle"
	SyncStateInitializing SyncState = "initializing"
	SyncStateSyncing      SyncState = "syncing"
	SyncStatePruning      SyncState = "pruning"
	SyncStateCompacting   SyncState = "compacting"
	SyncStateCompleted    SyncState = "completed"
	SyncStateFailed       SyncState = "failed"
)

// Terminal reports whether a new sync may start from this state.
func (s SyncState) Terminal() bool {
	return s == SyncStateIdle || s == SyncStateCompleted || s == SyncStateFailed
}

// SyncStatusLogLines is the size of the bounded status log ring.
const SyncStatusLogLines = 100

// SyncStatus describes the current sync run. The engine owns the single
// mutable instance; callers only ever see copies.
type SyncStatus struct {
	State       SyncState `json:"state"`
	StartedAt   time.Time `json:"startedAt"`
	CompletedAt time.Time `json:"completedAt"`
	CurrentFile string    `json:"currentFile"`
	BytesDone   int64     `json:"bytesDone"`
	BytesTotal  int64     `json:"bytesTotal"`
	FilesTotal  int64     `json:"filesTotal"`
	// SpeedBps instantaneous transfer speed, bytes per second.
	SpeedBps float64 `json:"speedBps"`
	// EtaSeconds estimated remaining transfer time, -1 when unknown.
	EtaSeconds int64 `json:"etaSeconds"`
	// LimitKbps active bandwidth ceiling, 0 means unlimited.
	LimitKbps int    `json:"limitKbps"`
	Error     string `json:"error,omitempty"`
	// Logs is a bounded ring of the most recent human-readable lines.
	Logs []string `json:"logs"`
}

// SyncMode decides what triggers a sync run.
type SyncMode string

const (
	SyncModeManual       SyncMode = "manual"
	SyncModeScheduled    SyncMode = "scheduled"
	SyncModeAfterBackups SyncMode = "after_backups"
)

// SyncSettings is the persisted sync policy.
type SyncSettings struct {
	Mode SyncMode
	// ScheduleTime "HH:MM", used when Mode is scheduled.
	ScheduleTime string
	// BufferMinutes wait after "all backups complete" before the sync
	// starts, absorbing late-finishing jobs.
	BufferMinutes int
	ArchivePrefix string
}

// BandwidthSettings describes the transfer ceiling policy.
type BandwidthSettings struct {
	Enabled bool
	// PeakLimitKbps ceiling inside the peak window.
	PeakLimitKbps int
	// OffpeakLimitKbps ceiling outside the peak window, 0 means unlimited.
	OffpeakLimitKbps int
	PeakStartHour    int
	PeakEndHour      int
	// WeekendUnlimited short-circuits to unlimited on Saturday and Sunday.
	WeekendUnlimited bool
}

// LimitAt resolves the active ceiling in KiB/s for the given local time.
// 0 always means unlimited.
func (b BandwidthSettings) LimitAt(t time.Time) int {
	if !b.Enabled {
		return 0
	}
	if b.WeekendUnlimited {
		if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
			return 0
		}
	}
	hour := t.Hour()
	if hour >= b.PeakStartHour && hour < b.PeakEndHour {
		return b.PeakLimitKbps
	}
	return b.OffpeakLimitKbps
}
