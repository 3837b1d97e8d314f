package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/haierkeys/db-backup-sync-service/internal/domain"
	"github.com/haierkeys/db-backup-sync-service/internal/metrics"
	"github.com/haierkeys/db-backup-sync-service/pkg/borg"
	"github.com/haierkeys/db-backup-sync-service/pkg/code"
	"github.com/haierkeys/db-backup-sync-service/pkg/logger"

	"go.uber.org/zap"
)

const (
	// speedRecomputeInterval caps how often speed and ETA are recalculated
	// from the progress stream.
	speedRecomputeInterval = 500 * time.Millisecond
	// statusLogInterval caps how often a progress line lands in the status
	// log ring.
	statusLogInterval = 30 * time.Second
)

// SyncConfig carries the engine's static configuration.
type SyncConfig struct {
	// SourcePath directory replicated to the remote repository.
	SourcePath string
	// CreateTimeout deadline for the archive creation phase.
	CreateTimeout time.Duration
	// PhaseTimeout deadline for init, prune and compact.
	PhaseTimeout time.Duration
	// Retention for remote pruning.
	KeepDaily   int
	KeepWeekly  int
	KeepMonthly int
}

// archiverClient is the slice of the borg client the engine needs.
type archiverClient interface {
	CheckInstalled() error
	InitRepo(ctx context.Context, cfg borg.Config, timeout time.Duration) error
	CreateArchive(ctx context.Context, cfg borg.Config, archive, sourceDir string, limitKbps int, timeout time.Duration, onLine func(string)) error
	Prune(ctx context.Context, cfg borg.Config, prefix string, daily, weekly, monthly int, timeout time.Duration) error
	Compact(ctx context.Context, cfg borg.Config, timeout time.Duration) error
}

// SyncService is the archive sync engine: a state machine that checks
// prerequisites, initializes the remote repository, creates an archive with
// live progress and bandwidth ceiling, then prunes and compacts. At most
// one sync is ever active; the status gate makes re-entrant triggers
// no-ops.
type SyncService struct {
	cfg         SyncConfig
	settingRepo domain.SettingRepository
	historyRepo domain.HistoryRepository
	client      archiverClient
	parser      *borg.ProgressParser
	logger      *zap.Logger

	statusMu sync.RWMutex
	status   domain.SyncStatus

	// now and repoConfig are injectable for tests.
	now        func() time.Time
	repoConfig func() borg.Config
}

func NewSyncService(
	cfg SyncConfig,
	settingRepo domain.SettingRepository,
	historyRepo domain.HistoryRepository,
	client archiverClient,
	lg *zap.Logger,
) *SyncService {
	return &SyncService{
		cfg:         cfg,
		settingRepo: settingRepo,
		historyRepo: historyRepo,
		client:      client,
		parser:      borg.NewProgressParser(),
		logger:      lg,
		status:      domain.SyncStatus{State: domain.SyncStateIdle, EtaSeconds: -1},
		now:         time.Now,
		repoConfig:  borg.ConfigFromEnv,
	}
}

// Status returns a read-only snapshot of the current run.
func (s *SyncService) Status() domain.SyncStatus {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	snapshot := s.status
	snapshot.Logs = append([]string(nil), s.status.Logs...)
	return snapshot
}

// Trigger starts a sync run. A trigger while a run is active is a no-op and
// does not alter the status.
func (s *SyncService) Trigger(ctx context.Context, mode domain.SyncMode) error {
	s.statusMu.Lock()
	if !s.status.State.Terminal() {
		s.statusMu.Unlock()
		s.logger.Info("sync trigger ignored, run active",
			zap.String("mode", string(mode)),
			zap.String(logger.FieldPhase, string(s.Status().State)))
		return code.ErrorSyncActive
	}
	s.status = domain.SyncStatus{
		State:     domain.SyncStateInitializing,
		StartedAt: s.now(),
		EtaSeconds: -1,
	}
	s.statusMu.Unlock()

	s.logger.Info("sync triggered", zap.String("mode", string(mode)))
	return s.run(ctx)
}

// run executes the phase sequence. The first failing phase is terminal; the
// remaining phases do not run.
func (s *SyncService) run(ctx context.Context) error {
	startedAt := s.Status().StartedAt

	archive, filesTotal, bytesTotal, err := s.runPhases(ctx)

	finishedAt := s.now()
	run := &domain.SyncRun{
		Archive:    archive,
		FilesTotal: filesTotal,
		SizeMb:     float64(bytesTotal) / 1024.0 / 1024.0,
		Duration:   finishedAt.Sub(startedAt),
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
	}

	if err != nil {
		run.Status = "failed"
		run.Error = err.Error()
		s.setState(domain.SyncStateFailed)
		s.updateStatus(func(st *domain.SyncStatus) {
			st.Error = err.Error()
			st.CompletedAt = finishedAt
		})
		s.logger.Error("sync failed", zap.Error(err))
	} else {
		run.Status = "success"
		s.setState(domain.SyncStateCompleted)
		s.updateStatus(func(st *domain.SyncStatus) {
			st.CompletedAt = finishedAt
		})
		s.logger.Info("sync completed",
			zap.String(logger.FieldArchive, archive),
			zap.Int64(logger.FieldFiles, filesTotal),
			zap.Duration(logger.FieldDuration, run.Duration))
	}

	metrics.SyncRuns.WithLabelValues(run.Status).Inc()
	if _, herr := s.historyRepo.CreateSyncRun(ctx, run); herr != nil {
		s.logger.Error("sync: run record failed", zap.Error(herr))
	}
	return err
}

func (s *SyncService) runPhases(ctx context.Context) (archive string, filesTotal, bytesTotal int64, err error) {
	// Phase 1: prerequisites. Missing tooling fails fast with no partial
	// state.
	if err = s.client.CheckInstalled(); err != nil {
		return "", 0, 0, code.ErrorSyncToolMissing.WithDetails(err.Error())
	}

	// Phase 2: establish the progress denominator.
	filesTotal, bytesTotal, err = s.measureSource()
	if err != nil {
		return "", 0, 0, err
	}
	s.updateStatus(func(st *domain.SyncStatus) {
		st.FilesTotal = filesTotal
		st.BytesTotal = bytesTotal
	})
	s.appendLog(fmt.Sprintf("source: %d files, %.1f MB", filesTotal, float64(bytesTotal)/1024.0/1024.0))

	repoCfg := s.repoConfig()

	// Phase 3: idempotent repository init.
	phaseStart := s.now()
	if err = s.client.InitRepo(ctx, repoCfg, s.cfg.PhaseTimeout); err != nil {
		return "", filesTotal, bytesTotal, err
	}
	metrics.SyncPhaseSeconds.WithLabelValues("init").Observe(s.now().Sub(phaseStart).Seconds())

	// Phase 4: resolve the bandwidth ceiling for right now.
	bandwidth, err := s.settingRepo.GetBandwidthSettings(ctx)
	if err != nil {
		return "", filesTotal, bytesTotal, err
	}
	limit := bandwidth.LimitAt(s.now())
	s.updateStatus(func(st *domain.SyncStatus) {
		st.LimitKbps = limit
	})
	if limit > 0 {
		s.appendLog(fmt.Sprintf("bandwidth ceiling %d KiB/s", limit))
	} else {
		s.appendLog("bandwidth unlimited")
	}

	// Phase 5: create the archive, streaming progress.
	syncSettings, err := s.settingRepo.GetSyncSettings(ctx)
	if err != nil {
		return "", filesTotal, bytesTotal, err
	}
	now := s.now()
	archive = fmt.Sprintf("%s-%s-%d", syncSettings.ArchivePrefix, now.Format("2006-01-02"), now.Unix())

	s.setState(domain.SyncStateSyncing)
	s.appendLog("creating archive " + archive)

	phaseStart = s.now()
	err = s.client.CreateArchive(ctx, repoCfg, archive, s.cfg.SourcePath, limit,
		s.cfg.CreateTimeout, s.progressSink())
	metrics.SyncPhaseSeconds.WithLabelValues("create").Observe(s.now().Sub(phaseStart).Seconds())
	if err != nil {
		return archive, filesTotal, bytesTotal, err
	}

	// Phase 6: prune old archives.
	s.setState(domain.SyncStatePruning)
	phaseStart = s.now()
	err = s.client.Prune(ctx, repoCfg, syncSettings.ArchivePrefix,
		s.cfg.KeepDaily, s.cfg.KeepWeekly, s.cfg.KeepMonthly, s.cfg.PhaseTimeout)
	metrics.SyncPhaseSeconds.WithLabelValues("prune").Observe(s.now().Sub(phaseStart).Seconds())
	if err != nil {
		return archive, filesTotal, bytesTotal, err
	}

	// Phase 7: compact the repository.
	s.setState(domain.SyncStateCompacting)
	phaseStart = s.now()
	err = s.client.Compact(ctx, repoCfg, s.cfg.PhaseTimeout)
	metrics.SyncPhaseSeconds.WithLabelValues("compact").Observe(s.now().Sub(phaseStart).Seconds())
	if err != nil {
		return archive, filesTotal, bytesTotal, err
	}

	return archive, filesTotal, bytesTotal, nil
}

// progressSink returns the line handler for the archiver's stream. Speed
// and ETA recompute at most every 500ms; the status log ring gets a line at
// most every 30s.
func (s *SyncService) progressSink() func(string) {
	var (
		lastCompute   time.Time
		lastComputeAt int64
		lastLogged    time.Time
	)

	return func(line string) {
		progress, ok := s.parser.Parse(line)
		if !ok {
			return
		}

		now := s.now()
		s.updateStatus(func(st *domain.SyncStatus) {
			st.BytesDone = progress.BytesDone
			st.CurrentFile = progress.CurrentFile

			if !lastCompute.IsZero() && now.Sub(lastCompute) < speedRecomputeInterval {
				return
			}
			if !lastCompute.IsZero() {
				elapsed := now.Sub(lastCompute).Seconds()
				if elapsed > 0 {
					st.SpeedBps = float64(progress.BytesDone-lastComputeAt) / elapsed
				}
			}
			if st.SpeedBps > 0 && st.BytesTotal > progress.BytesDone {
				st.EtaSeconds = int64(float64(st.BytesTotal-progress.BytesDone) / st.SpeedBps)
			} else {
				st.EtaSeconds = -1
			}
			lastCompute = now
			lastComputeAt = progress.BytesDone
		})

		if lastLogged.IsZero() || now.Sub(lastLogged) >= statusLogInterval {
			lastLogged = now
			s.appendLog(fmt.Sprintf("transferred %.1f MB, current %s",
				float64(progress.BytesDone)/1024.0/1024.0, progress.CurrentFile))
		}
	}
}

// measureSource counts files and bytes under the source directory.
func (s *SyncService) measureSource() (int64, int64, error) {
	if stat, err := os.Stat(s.cfg.SourcePath); err != nil || !stat.IsDir() {
		return 0, 0, code.ErrorSyncSourceMissing
	}

	var files, bytes int64
	err := filepath.WalkDir(s.cfg.SourcePath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries reduce the denominator instead of failing
			// the run.
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if info, ierr := d.Info(); ierr == nil {
			files++
			bytes += info.Size()
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return files, bytes, nil
}

func (s *SyncService) setState(state domain.SyncState) {
	s.updateStatus(func(st *domain.SyncStatus) {
		st.State = state
	})
	s.logger.Info("sync phase", zap.String(logger.FieldPhase, string(state)))
}

func (s *SyncService) updateStatus(f func(*domain.SyncStatus)) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	f(&s.status)
}

// appendLog pushes a line onto the bounded status log ring.
func (s *SyncService) appendLog(line string) {
	stamped := s.now().Format("15:04:05") + " " + line
	s.updateStatus(func(st *domain.SyncStatus) {
		st.Logs = append(st.Logs, stamped)
		if len(st.Logs) > domain.SyncStatusLogLines {
			st.Logs = st.Logs[len(st.Logs)-domain.SyncStatusLogLines:]
		}
	})
}
