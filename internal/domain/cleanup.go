package domain

import "time"

// CleanupSettings is the retention policy, loaded from the key/value
// settings store at the start of every cleanup invocation and never cached
// across restarts.
type CleanupSettings struct {
	Enabled bool
	Cron    string
	// KeepFullCount chains retained per database, newest first.
	KeepFullCount int
	// KeepDiffPerFull DIFFs retained per retained chain, newest first.
	KeepDiffPerFull int
	// KeepOrphanDiff controls whether unattached DIFFs survive.
	KeepOrphanDiff bool

	LastRunStatus  string
	LastRunMessage string
	LastRunTime    time.Time
}

// DatabaseRollup is the per-database summary of a cleanup analysis.
type DatabaseRollup struct {
	Database     string  `json:"database"`
	TotalFiles   int     `json:"totalFiles"`
	KeepFiles    int     `json:"keepFiles"`
	DeleteFiles  int     `json:"deleteFiles"`
	DeleteSizeMb float64 `json:"deleteSizeMb"`
}

// CleanupAnalysis is the derived keep/delete decision. It is recomputed on
// every call and never mutated in place.
type CleanupAnalysis struct {
	TotalFiles  int
	TotalSizeMb float64
	Delete      []*BackupFileInfo
	Keep        []*BackupFileInfo
	Databases   []*DatabaseRollup
}

// DeleteSizeMb sums the size of all files marked for deletion.
func (a *CleanupAnalysis) DeleteSizeMb() float64 {
	var total float64
	for _, f := range a.Delete {
		total += f.SizeMb
	}
	return total
}

// CleanupFileResult is one per-file outcome of a cleanup pass.
type CleanupFileResult struct {
	Path     string  `json:"path"`
	Database string  `json:"database"`
	SizeMb   float64 `json:"sizeMb"`
	Deleted  bool    `json:"deleted"`
	Error    string  `json:"error,omitempty"`
}

// CleanupResult is the terminal outcome of one cleanup pass. Success is true
// only when no per-file error occurred.
type CleanupResult struct {
	Success       bool
	DryRun        bool
	DeletedFiles  int
	DeletedSizeMb float64
	Errors        []string
	Detail        []CleanupFileResult
	Duration      time.Duration
}
