// Package domain defines the domain models and repository interfaces.
package domain

import "time"

// BackupKind is the kind of a backup artifact.
type BackupKind string

const (
	BackupKindFull BackupKind = "FULL"
	BackupKindDiff BackupKind = "DIFF"
	BackupKindLog  BackupKind = "LOG"
)

// ParseBackupKind maps a raw token onto a BackupKind.
func ParseBackupKind(s string) (BackupKind, bool) {
	switch BackupKind(s) {
	case BackupKindFull, BackupKindDiff, BackupKindLog:
		return BackupKind(s), true
	}
	return "", false
}

// BackupFileInfo is one discovered backup artifact. Instances are immutable
// once discovered and recreated on every scan; the path is the only identity.
type BackupFileInfo struct {
	Path      string
	FileName  string
	Database  string
	Kind      BackupKind
	Timestamp time.Time
	SizeMb    float64
	// HistoryID links back to the history row written when the backup was
	// produced, 0 when no row matches.
	HistoryID int64
}

// BackupChain is one FULL backup and the DIFFs that depend on it, newest
// DIFF first.
type BackupChain struct {
	Full  *BackupFileInfo
	Diffs []*BackupFileInfo
}

// SizeMb is the total size of the chain.
func (c *BackupChain) SizeMb() float64 {
	total := c.Full.SizeMb
	for _, d := range c.Diffs {
		total += d.SizeMb
	}
	return total
}

// FileCount is the number of files in the chain including the FULL.
func (c *BackupChain) FileCount() int {
	return 1 + len(c.Diffs)
}

// DatabaseChains holds the reconstructed chains of one database, newest FULL
// first, plus the DIFFs that matched no FULL.
type DatabaseChains struct {
	Database string
	Chains   []*BackupChain
	Orphans  []*BackupFileInfo
}
