package api_router

import (
	"github.com/haierkeys/db-backup-sync-service/internal/app"
	"github.com/haierkeys/db-backup-sync-service/internal/domain"
	pkgapp "github.com/haierkeys/db-backup-sync-service/pkg/app"
	"github.com/haierkeys/db-backup-sync-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// CleanupHandler exposes retention analysis, cleanup execution and the
// retention policy.
type CleanupHandler struct {
	*Handler
}

func NewCleanupHandler(a *app.App) *CleanupHandler {
	return &CleanupHandler{Handler: NewHandler(a)}
}

// Analyze returns keep/delete decisions without touching any file.
func (h *CleanupHandler) Analyze(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	analysis, err := h.App.CleanupService.Analyze(c.Request.Context())
	if err != nil {
		response.ToResponse(code.ErrorServer.WithDetails(err.Error()))
		return
	}
	response.ToResponseData(analysis)
}

type cleanupExecuteRequest struct {
	DryRun bool `json:"dryRun"`
}

// Execute runs a cleanup pass. With dryRun the full pass is reported but
// no file is removed.
func (h *CleanupHandler) Execute(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	var req cleanupExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(err.Error()))
		return
	}

	result, err := h.App.CleanupService.Execute(c.Request.Context(), req.DryRun)
	if err != nil {
		response.ToResponse(code.ErrorServer.WithDetails(err.Error()))
		return
	}
	response.ToResponseData(result)
}

type cleanupSettingsRequest struct {
	Enabled         bool   `json:"enabled"`
	Cron            string `json:"cron" binding:"required"`
	KeepFullCount   int    `json:"keepFullCount" binding:"gte=1"`
	KeepDiffPerFull int    `json:"keepDiffPerFull" binding:"gte=0"`
	KeepOrphanDiff  bool   `json:"keepOrphanDiff"`
}

// GetSettings returns the persisted retention policy.
func (h *CleanupHandler) GetSettings(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	settings, err := h.App.SettingRepo.GetCleanupSettings(c.Request.Context())
	if err != nil {
		response.ToResponse(code.ErrorServer.WithDetails(err.Error()))
		return
	}
	response.ToResponseData(settings)
}

// SaveSettings persists the retention policy and refreshes the cleanup
// trigger. The cron expression is validated before anything is stored.
func (h *CleanupHandler) SaveSettings(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	var req cleanupSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(err.Error()))
		return
	}
	if err := h.App.Scheduler.Validate(req.Cron); err != nil {
		response.ToResponse(code.ErrorCronInvalid.WithDetails(req.Cron))
		return
	}

	settings := &domain.CleanupSettings{
		Enabled:         req.Enabled,
		Cron:            req.Cron,
		KeepFullCount:   req.KeepFullCount,
		KeepDiffPerFull: req.KeepDiffPerFull,
		KeepOrphanDiff:  req.KeepOrphanDiff,
	}
	if err := h.App.SettingRepo.SaveCleanupSettings(c.Request.Context(), settings); err != nil {
		response.ToResponse(code.ErrorSettingSave.WithDetails(err.Error()))
		return
	}
	if err := h.App.ScheduleService.RefreshCleanup(c.Request.Context()); err != nil {
		response.ToResponse(code.ErrorCronInvalid.WithDetails(err.Error()))
		return
	}
	response.ToResponseData(settings)
}

// Runs lists recent cleanup outcomes.
func (h *CleanupHandler) Runs(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	runs, err := h.App.HistoryRepo.ListCleanupRuns(c.Request.Context(), 50)
	if err != nil {
		response.ToResponse(code.ErrorServer.WithDetails(err.Error()))
		return
	}
	response.ToResponseData(runs)
}
