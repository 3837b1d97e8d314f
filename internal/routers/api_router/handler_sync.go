package api_router

import (
	"context"

	"github.com/haierkeys/db-backup-sync-service/internal/app"
	"github.com/haierkeys/db-backup-sync-service/internal/domain"
	pkgapp "github.com/haierkeys/db-backup-sync-service/pkg/app"
	"github.com/haierkeys/db-backup-sync-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// SyncHandler exposes the archive sync engine: status snapshot, manual
// trigger and the sync/bandwidth policies.
type SyncHandler struct {
	*Handler
}

func NewSyncHandler(a *app.App) *SyncHandler {
	return &SyncHandler{Handler: NewHandler(a)}
}

// Status returns a read-only snapshot of the current or last run.
func (h *SyncHandler) Status(c *gin.Context) {
	pkgapp.NewResponse(c).ToResponseData(h.App.SyncService.Status())
}

// Trigger starts a manual sync. While a run is active this is a no-op
// reported as a conflict.
func (h *SyncHandler) Trigger(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	if !h.App.SyncService.Status().State.Terminal() {
		response.ToResponse(code.ErrorSyncActive)
		return
	}

	go func() {
		// The run outlives the request; its error lands in the status
		// snapshot and the run history.
		_ = h.App.SyncService.Trigger(context.Background(), domain.SyncModeManual)
	}()

	response.ToResponse(code.Success)
}

type syncSettingsRequest struct {
	Mode          string `json:"mode" binding:"required,oneof=manual scheduled after_backups"`
	ScheduleTime  string `json:"scheduleTime"`
	BufferMinutes int    `json:"bufferMinutes" binding:"gte=0"`
	ArchivePrefix string `json:"archivePrefix"`
}

// GetSettings returns the persisted sync policy.
func (h *SyncHandler) GetSettings(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	settings, err := h.App.SettingRepo.GetSyncSettings(c.Request.Context())
	if err != nil {
		response.ToResponse(code.ErrorServer.WithDetails(err.Error()))
		return
	}
	response.ToResponseData(settings)
}

// SaveSettings persists the sync policy and refreshes the scheduled
// trigger.
func (h *SyncHandler) SaveSettings(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	var req syncSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(err.Error()))
		return
	}

	settings := &domain.SyncSettings{
		Mode:          domain.SyncMode(req.Mode),
		ScheduleTime:  req.ScheduleTime,
		BufferMinutes: req.BufferMinutes,
		ArchivePrefix: req.ArchivePrefix,
	}
	if err := h.App.SettingRepo.SaveSyncSettings(c.Request.Context(), settings); err != nil {
		response.ToResponse(code.ErrorSettingSave.WithDetails(err.Error()))
		return
	}
	if err := h.App.ScheduleService.RefreshSync(c.Request.Context()); err != nil {
		response.ToResponse(code.ErrorCronInvalid.WithDetails(err.Error()))
		return
	}
	response.ToResponseData(settings)
}

type bandwidthSettingsRequest struct {
	Enabled          bool `json:"enabled"`
	PeakLimitKbps    int  `json:"peakLimitKbps" binding:"gte=0"`
	OffpeakLimitKbps int  `json:"offpeakLimitKbps" binding:"gte=0"`
	PeakStartHour    int  `json:"peakStartHour" binding:"gte=0,lte=23"`
	PeakEndHour      int  `json:"peakEndHour" binding:"gte=0,lte=24"`
	WeekendUnlimited bool `json:"weekendUnlimited"`
}

// GetBandwidth returns the transfer ceiling policy.
func (h *SyncHandler) GetBandwidth(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	settings, err := h.App.SettingRepo.GetBandwidthSettings(c.Request.Context())
	if err != nil {
		response.ToResponse(code.ErrorServer.WithDetails(err.Error()))
		return
	}
	response.ToResponseData(settings)
}

// SaveBandwidth persists the transfer ceiling policy.
func (h *SyncHandler) SaveBandwidth(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	var req bandwidthSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(err.Error()))
		return
	}

	settings := &domain.BandwidthSettings{
		Enabled:          req.Enabled,
		PeakLimitKbps:    req.PeakLimitKbps,
		OffpeakLimitKbps: req.OffpeakLimitKbps,
		PeakStartHour:    req.PeakStartHour,
		PeakEndHour:      req.PeakEndHour,
		WeekendUnlimited: req.WeekendUnlimited,
	}
	if err := h.App.SettingRepo.SaveBandwidthSettings(c.Request.Context(), settings); err != nil {
		response.ToResponse(code.ErrorSettingSave.WithDetails(err.Error()))
		return
	}
	response.ToResponseData(settings)
}

// Runs lists recent sync outcomes.
func (h *SyncHandler) Runs(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	runs, err := h.App.HistoryRepo.ListSyncRuns(c.Request.Context(), 50)
	if err != nil {
		response.ToResponse(code.ErrorServer.WithDetails(err.Error()))
		return
	}
	response.ToResponseData(runs)
}
