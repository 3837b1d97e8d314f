// Package service implements the business services.
package service

import (
	"sort"

	"github.com/haierkeys/db-backup-sync-service/internal/domain"
)

// ChainAnalyzer reconstructs FULL→DIFF dependency chains from a flat scan
// result and computes keep/delete decisions under a retention policy. It is
// pure: the same input always produces the same output and nothing is
// mutated in place.
type ChainAnalyzer struct{}

func NewChainAnalyzer() *ChainAnalyzer {
	return &ChainAnalyzer{}
}

// BuildChains partitions files by database and reconstructs each database's
// chains, newest FULL first. Every DIFF lands in exactly one chain or in the
// orphan set. LOG files take no part in chain membership.
func (a *ChainAnalyzer) BuildChains(files []*domain.BackupFileInfo) []*domain.DatabaseChains {
	byDatabase := map[string][]*domain.BackupFileInfo{}
	for _, f := range files {
		byDatabase[f.Database] = append(byDatabase[f.Database], f)
	}

	names := make([]string, 0, len(byDatabase))
	for name := range byDatabase {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]*domain.DatabaseChains, 0, len(names))
	for _, name := range names {
		result = append(result, a.buildDatabaseChains(name, byDatabase[name]))
	}
	return result
}

func (a *ChainAnalyzer) buildDatabaseChains(database string, files []*domain.BackupFileInfo) *domain.DatabaseChains {
	var fulls, diffs []*domain.BackupFileInfo
	for _, f := range files {
		switch f.Kind {
		case domain.BackupKindFull:
			fulls = append(fulls, f)
		case domain.BackupKindDiff:
			diffs = append(diffs, f)
		}
	}

	// Newest first on both sides so chains claim DIFFs newest-chain-first.
	sort.Slice(fulls, func(i, j int) bool {
		return fulls[i].Timestamp.After(fulls[j].Timestamp)
	})
	sort.Slice(diffs, func(i, j int) bool {
		return diffs[i].Timestamp.After(diffs[j].Timestamp)
	})

	dc := &domain.DatabaseChains{Database: database}
	claimed := make(map[*domain.BackupFileInfo]bool, len(diffs))

	for i, full := range fulls {
		chain := &domain.BackupChain{Full: full}

		// The boundary is the next newer FULL's timestamp; the newest chain
		// has no boundary. A DIFF belongs here iff it is at or after this
		// FULL (inclusive) and strictly before the boundary, and no newer
		// chain claimed it already.
		hasBoundary := i > 0
		var boundary = full.Timestamp
		if hasBoundary {
			boundary = fulls[i-1].Timestamp
		}

		for _, diff := range diffs {
			if claimed[diff] {
				continue
			}
			if diff.Timestamp.Before(full.Timestamp) {
				continue
			}
			if hasBoundary && !diff.Timestamp.Before(boundary) {
				continue
			}
			claimed[diff] = true
			chain.Diffs = append(chain.Diffs, diff)
		}

		dc.Chains = append(dc.Chains, chain)
	}

	for _, diff := range diffs {
		if !claimed[diff] {
			dc.Orphans = append(dc.Orphans, diff)
		}
	}
	return dc
}

// Analyze computes the retention decision over the full scan result. The
// newest keepFullCount chains per database survive with their newest
// keepDiffPerFull DIFFs; older chains are deleted whole. Orphan DIFFs are
// deleted unless the policy keeps them.
func (a *ChainAnalyzer) Analyze(files []*domain.BackupFileInfo, settings *domain.CleanupSettings) *domain.CleanupAnalysis {
	analysis := &domain.CleanupAnalysis{}

	deleteSet := map[string]bool{}
	markDelete := func(f *domain.BackupFileInfo) {
		// Idempotent union keyed by path; a file can be nominated through
		// more than one route.
		if !deleteSet[f.Path] {
			deleteSet[f.Path] = true
			analysis.Delete = append(analysis.Delete, f)
		}
	}

	byDatabaseDelete := map[string]*domain.DatabaseRollup{}
	rollup := func(database string) *domain.DatabaseRollup {
		if r, ok := byDatabaseDelete[database]; ok {
			return r
		}
		r := &domain.DatabaseRollup{Database: database}
		byDatabaseDelete[database] = r
		analysis.Databases = append(analysis.Databases, r)
		return r
	}

	for _, f := range files {
		analysis.TotalFiles++
		analysis.TotalSizeMb += f.SizeMb
		rollup(f.Database).TotalFiles++
	}

	for _, dc := range a.BuildChains(files) {
		r := rollup(dc.Database)

		for i, chain := range dc.Chains {
			if i < settings.KeepFullCount {
				analysis.Keep = append(analysis.Keep, chain.Full)
				for d, diff := range chain.Diffs {
					if d < settings.KeepDiffPerFull {
						analysis.Keep = append(analysis.Keep, diff)
					} else {
						markDelete(diff)
						r.DeleteFiles++
						r.DeleteSizeMb += diff.SizeMb
					}
				}
				continue
			}

			// Chains beyond the retention threshold are deleted whole, the
			// FULL included.
			markDelete(chain.Full)
			r.DeleteFiles++
			r.DeleteSizeMb += chain.Full.SizeMb
			for _, diff := range chain.Diffs {
				markDelete(diff)
				r.DeleteFiles++
				r.DeleteSizeMb += diff.SizeMb
			}
		}

		for _, orphan := range dc.Orphans {
			if settings.KeepOrphanDiff {
				analysis.Keep = append(analysis.Keep, orphan)
				continue
			}
			if !deleteSet[orphan.Path] {
				markDelete(orphan)
				r.DeleteFiles++
				r.DeleteSizeMb += orphan.SizeMb
			}
		}
	}

	// Files outside chain membership (LOG segments) are always kept.
	for _, f := range files {
		if f.Kind == domain.BackupKindLog {
			analysis.Keep = append(analysis.Keep, f)
		}
	}

	for _, r := range analysis.Databases {
		r.KeepFiles = r.TotalFiles - r.DeleteFiles
	}
	return analysis
}
