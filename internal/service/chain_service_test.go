package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/haierkeys/db-backup-sync-service/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func mkFile(db string, kind domain.BackupKind, ts time.Time) *domain.BackupFileInfo {
	return &domain.BackupFileInfo{
		Path:      fmt.Sprintf("/backups/%s/%s_%s_%s.bak", kind, db, kind, ts.Format("20060102_150405")),
		FileName:  fmt.Sprintf("%s_%s_%s.bak", db, kind, ts.Format("20060102_150405")),
		Database:  db,
		Kind:      kind,
		Timestamp: ts,
		SizeMb:    1,
	}
}

// filesFromSeeds derives a deterministic backup tree from random seeds.
// Paths are made unique per index so the delete-set union stays keyed
// correctly even when timestamps collide.
func filesFromSeeds(seeds []int) []*domain.BackupFileInfo {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local)
	files := make([]*domain.BackupFileInfo, 0, len(seeds))
	for i, seed := range seeds {
		db := fmt.Sprintf("db%d", seed%3)
		kind := domain.BackupKindDiff
		if seed%4 == 0 {
			kind = domain.BackupKindFull
		}
		f := mkFile(db, kind, base.Add(time.Duration(seed)*time.Hour))
		f.Path = fmt.Sprintf("%s#%d", f.Path, i)
		files = append(files, f)
	}
	return files
}

func TestAnalyzePartitionProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	// Every FULL and DIFF lands in exactly one of Keep or Delete.
	properties.Property("keep and delete partition the scan", prop.ForAll(
		func(seeds []int, keepFull, keepDiff int, keepOrphans bool) bool {
			files := filesFromSeeds(seeds)
			analyzer := NewChainAnalyzer()
			analysis := analyzer.Analyze(files, &domain.CleanupSettings{
				KeepFullCount:   keepFull,
				KeepDiffPerFull: keepDiff,
				KeepOrphanDiff:  keepOrphans,
			})

			seen := map[string]int{}
			for _, f := range analysis.Keep {
				seen[f.Path]++
			}
			for _, f := range analysis.Delete {
				seen[f.Path]++
			}
			for _, f := range files {
				if seen[f.Path] != 1 {
					t.Logf("file %s appeared %d times", f.Path, seen[f.Path])
					return false
				}
			}
			return len(analysis.Delete)+len(analysis.Keep) == len(files)
		},
		gen.SliceOf(gen.IntRange(0, 2000)),
		gen.IntRange(1, 5),
		gen.IntRange(0, 5),
		gen.Bool(),
	))

	// Retaining everything deletes nothing.
	properties.Property("generous retention deletes nothing", prop.ForAll(
		func(seeds []int) bool {
			files := filesFromSeeds(seeds)
			analyzer := NewChainAnalyzer()
			analysis := analyzer.Analyze(files, &domain.CleanupSettings{
				KeepFullCount:   len(files) + 1,
				KeepDiffPerFull: len(files) + 1,
				KeepOrphanDiff:  true,
			})
			return len(analysis.Delete) == 0
		},
		gen.SliceOf(gen.IntRange(0, 2000)),
	))

	properties.TestingRun(t)
}

func TestBuildChainsBoundary(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2026, 6, d, 3, 0, 0, 0, time.Local)
	}

	fullOld := mkFile("Orders", domain.BackupKindFull, day(1))
	fullNew := mkFile("Orders", domain.BackupKindFull, day(8))
	// A DIFF at exactly the older FULL's timestamp belongs to it.
	diffAtFull := mkFile("Orders", domain.BackupKindDiff, day(1))
	diffMid := mkFile("Orders", domain.BackupKindDiff, day(4))
	// A DIFF at exactly the boundary belongs to the newer chain.
	diffAtBoundary := mkFile("Orders", domain.BackupKindDiff, day(8))
	diffAfter := mkFile("Orders", domain.BackupKindDiff, day(9))

	chains := NewChainAnalyzer().BuildChains([]*domain.BackupFileInfo{
		fullOld, fullNew, diffAtFull, diffMid, diffAtBoundary, diffAfter,
	})

	if len(chains) != 1 {
		t.Fatalf("want 1 database, got %d", len(chains))
	}
	dc := chains[0]
	if len(dc.Chains) != 2 {
		t.Fatalf("want 2 chains, got %d", len(dc.Chains))
	}
	if dc.Chains[0].Full != fullNew {
		t.Errorf("newest chain should come first")
	}
	if got := len(dc.Chains[0].Diffs); got != 2 {
		t.Errorf("newest chain diffs = %d, want 2", got)
	}
	if got := len(dc.Chains[1].Diffs); got != 2 {
		t.Errorf("older chain diffs = %d, want 2", got)
	}
	if len(dc.Orphans) != 0 {
		t.Errorf("unexpected orphans: %d", len(dc.Orphans))
	}
}

func TestBuildChainsOrphans(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2026, 6, d, 3, 0, 0, 0, time.Local)
	}

	full := mkFile("Orders", domain.BackupKindFull, day(10))
	orphan := mkFile("Orders", domain.BackupKindDiff, day(5))

	chains := NewChainAnalyzer().BuildChains([]*domain.BackupFileInfo{full, orphan})
	dc := chains[0]
	if len(dc.Orphans) != 1 || dc.Orphans[0] != orphan {
		t.Fatalf("diff older than every full should be an orphan")
	}
}

func TestAnalyzeRetentionScenario(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2026, 6, d, 3, 0, 0, 0, time.Local)
	}

	full1 := mkFile("Orders", domain.BackupKindFull, day(1))
	full8 := mkFile("Orders", domain.BackupKindFull, day(8))
	full15 := mkFile("Orders", domain.BackupKindFull, day(15))
	diff9 := mkFile("Orders", domain.BackupKindDiff, day(9))
	diff10 := mkFile("Orders", domain.BackupKindDiff, day(10))
	diff16 := mkFile("Orders", domain.BackupKindDiff, day(16))
	logSeg := mkFile("Orders", domain.BackupKindLog, day(16))

	files := []*domain.BackupFileInfo{full1, full8, full15, diff9, diff10, diff16, logSeg}

	analysis := NewChainAnalyzer().Analyze(files, &domain.CleanupSettings{
		KeepFullCount:   1,
		KeepDiffPerFull: 1,
		KeepOrphanDiff:  false,
	})

	deleted := map[string]bool{}
	for _, f := range analysis.Delete {
		deleted[f.Path] = true
	}

	for _, want := range []*domain.BackupFileInfo{full1, full8, diff9, diff10} {
		if !deleted[want.Path] {
			t.Errorf("expected delete of %s", want.FileName)
		}
	}
	for _, keep := range []*domain.BackupFileInfo{full15, diff16, logSeg} {
		if deleted[keep.Path] {
			t.Errorf("unexpected delete of %s", keep.FileName)
		}
	}

	if analysis.TotalFiles != len(files) {
		t.Errorf("TotalFiles = %d, want %d", analysis.TotalFiles, len(files))
	}
	if len(analysis.Databases) != 1 {
		t.Fatalf("want 1 database rollup, got %d", len(analysis.Databases))
	}
	r := analysis.Databases[0]
	if r.DeleteFiles != 4 {
		t.Errorf("rollup DeleteFiles = %d, want 4", r.DeleteFiles)
	}
	if r.KeepFiles != 3 {
		t.Errorf("rollup KeepFiles = %d, want 3", r.KeepFiles)
	}
}

func TestAnalyzeKeepOrphanDiff(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2026, 6, d, 3, 0, 0, 0, time.Local)
	}
	full := mkFile("Sales", domain.BackupKindFull, day(10))
	orphan := mkFile("Sales", domain.BackupKindDiff, day(2))

	analysis := NewChainAnalyzer().Analyze(
		[]*domain.BackupFileInfo{full, orphan},
		&domain.CleanupSettings{KeepFullCount: 1, KeepDiffPerFull: 6, KeepOrphanDiff: true},
	)
	if len(analysis.Delete) != 0 {
		t.Fatalf("keepOrphanDiff should keep the orphan, delete = %d", len(analysis.Delete))
	}
}
