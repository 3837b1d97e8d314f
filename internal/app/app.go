package app

import (
	"context"
	"fmt"
	"time"

	"github.com/haierkeys/db-backup-sync-service/internal/dao"
	"github.com/haierkeys/db-backup-sync-service/internal/domain"
	"github.com/haierkeys/db-backup-sync-service/internal/scheduler"
	"github.com/haierkeys/db-backup-sync-service/internal/service"
	pkgapp "github.com/haierkeys/db-backup-sync-service/pkg/app"
	"github.com/haierkeys/db-backup-sync-service/pkg/borg"
	"github.com/haierkeys/db-backup-sync-service/pkg/mailer"

	"go.uber.org/zap"
)

// App is the application container. It owns the dao, the repositories and
// every service, wired once at startup.
type App struct {
	config *AppConfig
	logger *zap.Logger
	Dao    *dao.Dao

	SettingRepo domain.SettingRepository
	JobRepo     domain.JobRepository
	HistoryRepo domain.HistoryRepository

	Scheduler         *scheduler.Scheduler
	ScanService       *service.ScanService
	CleanupService    *service.CleanupService
	CompletionService *service.CompletionService
	SyncService       *service.SyncService
	SyncTrigger       *service.SyncTrigger
	JobService        *service.JobService
	ReportService     *service.ReportService
	ScheduleService   *service.ScheduleService

	shutdownCh chan struct{}
}

// NewApp wires the full container from configuration.
func NewApp(cfg *AppConfig, logger *zap.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	lifetime, err := time.ParseDuration(cfg.Database.ConnMaxLifetime)
	if err != nil {
		lifetime = 30 * time.Minute
	}
	d, err := dao.New(dao.Config{
		Path:            cfg.Database.Path,
		AutoMigrate:     cfg.Database.AutoMigrate,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: lifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	a := &App{
		config:     cfg,
		logger:     logger,
		Dao:        d,
		shutdownCh: make(chan struct{}),
	}

	a.SettingRepo = dao.NewSettingRepository(d)
	a.JobRepo = dao.NewJobRepository(d)
	a.HistoryRepo = dao.NewHistoryRepository(d)

	a.ScanService = service.NewScanService(cfg.Backup.BasePath, a.HistoryRepo, logger)
	a.CleanupService = service.NewCleanupService(a.ScanService, service.NewChainAnalyzer(), a.SettingRepo, a.HistoryRepo, logger)
	a.CompletionService = service.NewCompletionService(a.JobRepo, a.HistoryRepo, logger)

	a.SyncService = service.NewSyncService(service.SyncConfig{
		SourcePath:    cfg.SyncSourcePath(),
		CreateTimeout: cfg.CreateTimeoutDuration(),
		PhaseTimeout:  cfg.PhaseTimeoutDuration(),
		KeepDaily:     cfg.Sync.KeepDaily,
		KeepWeekly:    cfg.Sync.KeepWeekly,
		KeepMonthly:   cfg.Sync.KeepMonthly,
	}, a.SettingRepo, a.HistoryRepo, borg.NewClient(logger), logger)

	a.SyncTrigger = service.NewSyncTrigger(a.SettingRepo, a.CompletionService, a.SyncService, logger)

	executor := &service.CommandExecutor{
		Template: cfg.Backup.Command,
		BasePath: cfg.Backup.BasePath,
		Timeout:  cfg.CommandTimeoutDuration(),
		Logger:   logger,
	}
	a.JobService = service.NewJobService(a.JobRepo, a.HistoryRepo, executor, a.SyncTrigger, logger)

	var sender domain.ReportSender
	if cfg.Smtp.Enabled() {
		sender = mailer.New(cfg.Smtp)
	}
	a.ReportService = service.NewReportService(a.HistoryRepo, sender, logger)

	a.Scheduler = scheduler.New(logger)
	a.ScheduleService = service.NewScheduleService(
		a.Scheduler, a.JobRepo, a.SettingRepo,
		a.JobService, a.CleanupService, a.SyncService, a.ReportService,
		cfg.Report.Cron, logger,
	)

	logger.Info("app container initialized",
		zap.String("backupPath", cfg.Backup.BasePath),
		zap.String("database", cfg.Database.Path))
	return a, nil
}

// Start installs every configured trigger and starts the cron runner.
func (a *App) Start(ctx context.Context) error {
	if err := a.ScheduleService.RegisterAll(ctx); err != nil {
		return err
	}
	a.Scheduler.Start()
	return nil
}

func (a *App) Config() *AppConfig {
	return a.config
}

func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Version returns build identification.
func (a *App) Version() pkgapp.VersionInfo {
	return pkgapp.VersionInfo{
		Version:   Version,
		GitTag:    GitTag,
		BuildTime: BuildTime,
	}
}

// DefaultShutdownTimeout bounds graceful shutdown.
const DefaultShutdownTimeout = 30 * time.Second

// Shutdown stops the scheduler, cancels a pending sync trigger and closes
// the database. In-flight cron invocations get the remaining deadline.
func (a *App) Shutdown(ctx context.Context) error {
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
	}

	select {
	case <-a.shutdownCh:
		return nil
	default:
		close(a.shutdownCh)
	}

	a.logger.Info("app container shutting down")
	a.SyncTrigger.Stop()

	done := make(chan struct{})
	go func() {
		a.Scheduler.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		a.logger.Warn("shutdown timeout waiting for scheduler")
	}

	if err := a.Dao.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	a.logger.Info("app container shutdown completed")
	return nil
}

// IsShuttingDown reports whether Shutdown has begun.
func (a *App) IsShuttingDown() bool {
	select {
	case <-a.shutdownCh:
		return true
	default:
		return false
	}
}
