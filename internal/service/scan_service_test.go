package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/haierkeys/db-backup-sync-service/internal/domain"

	"go.uber.org/zap"
)

func TestParseBackupFileName(t *testing.T) {
	folderDate := time.Date(2026, 5, 12, 0, 0, 0, 0, time.Local)

	tests := []struct {
		name     string
		file     string
		wantDB   string
		wantTime time.Time
		wantOK   bool
	}{
		{
			name:     "modern form",
			file:     "Orders_FULL_20260512_031500.bak",
			wantDB:   "Orders",
			wantTime: time.Date(2026, 5, 12, 3, 15, 0, 0, time.Local),
			wantOK:   true,
		},
		{
			name:     "database name with underscores",
			file:     "net_shop_archive_DIFF_20260512_041000.bak",
			wantDB:   "net_shop_archive",
			wantTime: time.Date(2026, 5, 12, 4, 10, 0, 0, time.Local),
			wantOK:   true,
		},
		{
			name:     "legacy form takes date from folder",
			file:     "Orders_FULL_031500.bak",
			wantDB:   "Orders",
			wantTime: time.Date(2026, 5, 12, 3, 15, 0, 0, time.Local),
			wantOK:   true,
		},
		{
			name:   "missing kind token",
			file:   "Orders_20260512_031500.bak",
			wantOK: false,
		},
		{
			name:   "garbage",
			file:   "thumbs.bak",
			wantOK: false,
		},
		{
			name:   "bad time digits",
			file:   "Orders_FULL_9999999.bak",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, ts, ok := parseBackupFileName(tt.file, folderDate)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if db != tt.wantDB {
				t.Errorf("db = %q, want %q", db, tt.wantDB)
			}
			if !ts.Equal(tt.wantTime) {
				t.Errorf("ts = %v, want %v", ts, tt.wantTime)
			}
		})
	}
}

func TestScanWalksLayout(t *testing.T) {
	base := t.TempDir()

	write := func(rel string) {
		full := filepath.Join(base, rel)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte("data"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	write("FULL/2026-05-12/Orders_FULL_20260512_031500.bak")
	write("DIFF/2026-05-13/Orders_DIFF_20260513_031500.bak")
	write("LOG/2026-05-13/Orders_LOG_20260513_120000.bak")
	// Skipped entries: wrong extension, malformed name, non-date folder.
	write("FULL/2026-05-12/readme.txt")
	write("FULL/2026-05-12/garbage.bak")
	write("FULL/not-a-date/Orders_FULL_20260512_031500.bak")

	svc := NewScanService(base, nil, zap.NewNop())
	files, err := svc.Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(files) != 3 {
		t.Fatalf("scanned %d files, want 3", len(files))
	}

	kinds := map[domain.BackupKind]int{}
	for _, f := range files {
		kinds[f.Kind]++
		if f.Database != "Orders" {
			t.Errorf("database = %q, want Orders", f.Database)
		}
		if f.SizeMb <= 0 {
			t.Errorf("size should be positive for %s", f.Path)
		}
	}
	if kinds[domain.BackupKindFull] != 1 || kinds[domain.BackupKindDiff] != 1 || kinds[domain.BackupKindLog] != 1 {
		t.Errorf("kind split = %v", kinds)
	}
}

func TestScanLinksHistory(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "FULL", "2026-05-12", "Orders_FULL_20260512_031500.bak")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}

	history := &mockHistoryRepo{}
	history.jobRuns = append(history.jobRuns, &domain.JobHistory{ID: 42, FilePath: path})

	svc := NewScanService(base, history, zap.NewNop())
	files, err := svc.Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Fatalf("scanned %d files, want 1", len(files))
	}
	if files[0].HistoryID != 42 {
		t.Errorf("HistoryID = %d, want 42", files[0].HistoryID)
	}
}

func TestScanMissingBasePath(t *testing.T) {
	svc := NewScanService(filepath.Join(t.TempDir(), "absent"), nil, zap.NewNop())
	files, err := svc.Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 0 {
		t.Fatalf("want empty scan, got %d", len(files))
	}
}
