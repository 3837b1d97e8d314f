package api_router

import (
	"time"

	"github.com/haierkeys/db-backup-sync-service/internal/app"
	pkgapp "github.com/haierkeys/db-backup-sync-service/pkg/app"
	"github.com/haierkeys/db-backup-sync-service/pkg/code"
	"github.com/haierkeys/db-backup-sync-service/pkg/util"

	"github.com/gin-gonic/gin"
)

// HistoryHandler exposes run history and the daily completion check.
type HistoryHandler struct {
	*Handler
}

func NewHistoryHandler(a *app.App) *HistoryHandler {
	return &HistoryHandler{Handler: NewHandler(a)}
}

// JobRuns lists job runs for one local day, today by default.
func (h *HistoryHandler) JobRuns(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	day := util.GetZeroTime(time.Now())
	if q := c.Query("date"); q != "" {
		parsed, err := time.ParseInLocation("2006-01-02", q, time.Local)
		if err != nil {
			response.ToResponse(code.ErrorInvalidParams.WithDetails(q))
			return
		}
		day = parsed
	}

	runs, err := h.App.HistoryRepo.ListJobRunsBetween(c.Request.Context(), day, day.AddDate(0, 0, 1))
	if err != nil {
		response.ToResponse(code.ErrorServer.WithDetails(err.Error()))
		return
	}
	response.ToResponseData(runs)
}

// Completion reports whether every enabled daily backup has finished
// today, with per-job pending reasons.
func (h *HistoryHandler) Completion(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	check, err := h.App.CompletionService.CheckAllDailyBackupsComplete(c.Request.Context())
	if err != nil {
		response.ToResponse(code.ErrorServer.WithDetails(err.Error()))
		return
	}
	response.ToResponseData(check)
}
