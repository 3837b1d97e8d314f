package dao

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/haierkeys/db-backup-sync-service/internal/domain"
	"github.com/haierkeys/db-backup-sync-service/internal/model"
	"github.com/haierkeys/db-backup-sync-service/pkg/timex"

	"gorm.io/gorm"
)

// Persisted settings keys. Values are stored as strings and converted by the
// typed accessors.
const (
	KeyCleanupEnabled        = "cleanup.enabled"
	KeyCleanupCron           = "cleanup.cron"
	KeyCleanupKeepFull       = "cleanup.keep_full_count"
	KeyCleanupKeepDiff       = "cleanup.keep_diff_per_full"
	KeyCleanupKeepOrphan     = "cleanup.keep_orphan_diff"
	KeyCleanupLastRunStatus  = "cleanup.last_run_status"
	KeyCleanupLastRunMessage = "cleanup.last_run_message"
	KeyCleanupLastRunTime    = "cleanup.last_run_time"

	KeySyncMode          = "sync.mode"
	KeySyncScheduleTime  = "sync.schedule_time"
	KeySyncBufferMinutes = "sync.buffer_minutes"
	KeySyncArchivePrefix = "sync.archive_prefix"

	KeyBandwidthEnabled          = "bandwidth.enabled"
	KeyBandwidthPeakLimit        = "bandwidth.peak_limit_kbps"
	KeyBandwidthOffpeakLimit     = "bandwidth.offpeak_limit_kbps"
	KeyBandwidthPeakStart        = "bandwidth.peak_start_hour"
	KeyBandwidthPeakEnd          = "bandwidth.peak_end_hour"
	KeyBandwidthWeekendUnlimited = "bandwidth.weekend_unlimited"
)

type settingRepository struct {
	dao *Dao
}

// NewSettingRepository creates the SettingRepository implementation.
func NewSettingRepository(dao *Dao) domain.SettingRepository {
	return &settingRepository{dao: dao}
}

func (r *settingRepository) Get(ctx context.Context, key string) (string, error) {
	var m model.Setting
	err := r.dao.DB().WithContext(ctx).Where("key = ?", key).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return m.Value, nil
}

func (r *settingRepository) Set(ctx context.Context, key string, value string) error {
	db := r.dao.DB().WithContext(ctx)
	var m model.Setting
	err := db.Where("key = ?", key).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Create(&model.Setting{
			Key:       key,
			Value:     value,
			CreatedAt: timex.Now(),
			UpdatedAt: timex.Now(),
		}).Error
	}
	if err != nil {
		return err
	}
	return db.Model(&m).Updates(map[string]any{
		"value":      value,
		"updated_at": timex.Now(),
	}).Error
}

func (r *settingRepository) getBool(ctx context.Context, key string, def bool) (bool, error) {
	v, err := r.Get(ctx, key)
	if err != nil {
		return def, err
	}
	if v == "" {
		return def, nil
	}
	return v == "1" || v == "true", nil
}

func (r *settingRepository) getInt(ctx context.Context, key string, def int) (int, error) {
	v, err := r.Get(ctx, key)
	if err != nil {
		return def, err
	}
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, nil
	}
	return n, nil
}

func (r *settingRepository) getString(ctx context.Context, key string, def string) (string, error) {
	v, err := r.Get(ctx, key)
	if err != nil {
		return def, err
	}
	if v == "" {
		return def, nil
	}
	return v, nil
}

func boolValue(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func (r *settingRepository) GetCleanupSettings(ctx context.Context) (*domain.CleanupSettings, error) {
	s := &domain.CleanupSettings{}
	var err error
	if s.Enabled, err = r.getBool(ctx, KeyCleanupEnabled, false); err != nil {
		return nil, err
	}
	if s.Cron, err = r.getString(ctx, KeyCleanupCron, "0 6 * * *"); err != nil {
		return nil, err
	}
	if s.KeepFullCount, err = r.getInt(ctx, KeyCleanupKeepFull, 4); err != nil {
		return nil, err
	}
	if s.KeepDiffPerFull, err = r.getInt(ctx, KeyCleanupKeepDiff, 6); err != nil {
		return nil, err
	}
	if s.KeepOrphanDiff, err = r.getBool(ctx, KeyCleanupKeepOrphan, false); err != nil {
		return nil, err
	}
	if s.LastRunStatus, err = r.getString(ctx, KeyCleanupLastRunStatus, ""); err != nil {
		return nil, err
	}
	if s.LastRunMessage, err = r.getString(ctx, KeyCleanupLastRunMessage, ""); err != nil {
		return nil, err
	}
	raw, err := r.Get(ctx, KeyCleanupLastRunTime)
	if err != nil {
		return nil, err
	}
	if raw != "" {
		if ts, perr := strconv.ParseInt(raw, 10, 64); perr == nil {
			s.LastRunTime = time.Unix(ts, 0)
		}
	}
	return s, nil
}

func (r *settingRepository) SaveCleanupSettings(ctx context.Context, s *domain.CleanupSettings) error {
	pairs := map[string]string{
		KeyCleanupEnabled:    boolValue(s.Enabled),
		KeyCleanupCron:       s.Cron,
		KeyCleanupKeepFull:   strconv.Itoa(s.KeepFullCount),
		KeyCleanupKeepDiff:   strconv.Itoa(s.KeepDiffPerFull),
		KeyCleanupKeepOrphan: boolValue(s.KeepOrphanDiff),
	}
	for k, v := range pairs {
		if err := r.Set(ctx, k, v); err != nil {
			return err
		}
	}
	return nil
}

func (r *settingRepository) SaveCleanupLastRun(ctx context.Context, status, message string, at time.Time) error {
	pairs := map[string]string{
		KeyCleanupLastRunStatus:  status,
		KeyCleanupLastRunMessage: message,
		KeyCleanupLastRunTime:    strconv.FormatInt(at.Unix(), 10),
	}
	for k, v := range pairs {
		if err := r.Set(ctx, k, v); err != nil {
			return err
		}
	}
	return nil
}

func (r *settingRepository) GetSyncSettings(ctx context.Context) (*domain.SyncSettings, error) {
	s := &domain.SyncSettings{}
	mode, err := r.getString(ctx, KeySyncMode, string(domain.SyncModeManual))
	if err != nil {
		return nil, err
	}
	s.Mode = domain.SyncMode(mode)
	if s.ScheduleTime, err = r.getString(ctx, KeySyncScheduleTime, "03:00"); err != nil {
		return nil, err
	}
	if s.BufferMinutes, err = r.getInt(ctx, KeySyncBufferMinutes, 15); err != nil {
		return nil, err
	}
	if s.ArchivePrefix, err = r.getString(ctx, KeySyncArchivePrefix, "backup"); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *settingRepository) SaveSyncSettings(ctx context.Context, s *domain.SyncSettings) error {
	pairs := map[string]string{
		KeySyncMode:          string(s.Mode),
		KeySyncScheduleTime:  s.ScheduleTime,
		KeySyncBufferMinutes: strconv.Itoa(s.BufferMinutes),
		KeySyncArchivePrefix: s.ArchivePrefix,
	}
	for k, v := range pairs {
		if err := r.Set(ctx, k, v); err != nil {
			return err
		}
	}
	return nil
}

func (r *settingRepository) GetBandwidthSettings(ctx context.Context) (*domain.BandwidthSettings, error) {
	s := &domain.BandwidthSettings{}
	var err error
	if s.Enabled, err = r.getBool(ctx, KeyBandwidthEnabled, false); err != nil {
		return nil, err
	}
	if s.PeakLimitKbps, err = r.getInt(ctx, KeyBandwidthPeakLimit, 0); err != nil {
		return nil, err
	}
	if s.OffpeakLimitKbps, err = r.getInt(ctx, KeyBandwidthOffpeakLimit, 0); err != nil {
		return nil, err
	}
	if s.PeakStartHour, err = r.getInt(ctx, KeyBandwidthPeakStart, 8); err != nil {
		return nil, err
	}
	if s.PeakEndHour, err = r.getInt(ctx, KeyBandwidthPeakEnd, 20); err != nil {
		return nil, err
	}
	if s.WeekendUnlimited, err = r.getBool(ctx, KeyBandwidthWeekendUnlimited, true); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *settingRepository) SaveBandwidthSettings(ctx context.Context, s *domain.BandwidthSettings) error {
	pairs := map[string]string{
		KeyBandwidthEnabled:          boolValue(s.Enabled),
		KeyBandwidthPeakLimit:        strconv.Itoa(s.PeakLimitKbps),
		KeyBandwidthOffpeakLimit:     strconv.Itoa(s.OffpeakLimitKbps),
		KeyBandwidthPeakStart:        strconv.Itoa(s.PeakStartHour),
		KeyBandwidthPeakEnd:          strconv.Itoa(s.PeakEndHour),
		KeyBandwidthWeekendUnlimited: boolValue(s.WeekendUnlimited),
	}
	for k, v := range pairs {
		if err := r.Set(ctx, k, v); err != nil {
			return err
		}
	}
	return nil
}
