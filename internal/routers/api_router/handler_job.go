package api_router

import (
	"context"
	"strconv"

	"github.com/haierkeys/db-backup-sync-service/internal/app"
	"github.com/haierkeys/db-backup-sync-service/internal/domain"
	pkgapp "github.com/haierkeys/db-backup-sync-service/pkg/app"
	"github.com/haierkeys/db-backup-sync-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// JobHandler exposes backup/maintenance job CRUD and manual execution.
type JobHandler struct {
	*Handler
}

func NewJobHandler(a *app.App) *JobHandler {
	return &JobHandler{Handler: NewHandler(a)}
}

// List returns every configured job.
func (h *JobHandler) List(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	jobs, err := h.App.JobRepo.List(c.Request.Context())
	if err != nil {
		response.ToResponse(code.ErrorServer.WithDetails(err.Error()))
		return
	}
	response.ToResponseData(jobs)
}

type jobRequest struct {
	ID        int64  `json:"id"`
	Name      string `json:"name" binding:"required"`
	Database  string `json:"database" binding:"required"`
	Category  string `json:"category" binding:"required,oneof=backup maintenance"`
	Kind      string `json:"kind" binding:"required,oneof=FULL DIFF LOG"`
	Cadence   string `json:"cadence" binding:"required,oneof=daily weekly monthly"`
	Hour      int    `json:"hour" binding:"gte=0,lte=23"`
	Minute    int    `json:"minute" binding:"gte=0,lte=59"`
	Weekday   int    `json:"weekday" binding:"gte=0,lte=6"`
	MonthDay  int    `json:"monthDay" binding:"gte=0,lte=28"`
	IsEnabled bool   `json:"isEnabled"`
}

// Save creates or updates a job and reconciles its trigger.
func (h *JobHandler) Save(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(err.Error()))
		return
	}

	job := &domain.BackupJob{
		ID:        req.ID,
		Name:      req.Name,
		Database:  req.Database,
		Category:  domain.JobCategory(req.Category),
		Kind:      domain.BackupKind(req.Kind),
		Cadence:   domain.JobCadence(req.Cadence),
		Hour:      req.Hour,
		Minute:    req.Minute,
		Weekday:   req.Weekday,
		MonthDay:  req.MonthDay,
		IsEnabled: req.IsEnabled,
	}
	saved, err := h.App.JobRepo.Save(c.Request.Context(), job)
	if err != nil {
		response.ToResponse(code.ErrorServer.WithDetails(err.Error()))
		return
	}
	if err := h.App.ScheduleService.ReloadJob(c.Request.Context(), saved.ID); err != nil {
		response.ToResponse(code.ErrorCronInvalid.WithDetails(err.Error()))
		return
	}
	response.ToResponseData(saved)
}

// Delete removes a job and its trigger.
func (h *JobHandler) Delete(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(c.Param("id")))
		return
	}
	if err := h.App.JobRepo.Delete(c.Request.Context(), id); err != nil {
		response.ToResponse(code.ErrorServer.WithDetails(err.Error()))
		return
	}
	if err := h.App.ScheduleService.ReloadJob(c.Request.Context(), id); err != nil {
		response.ToResponse(code.ErrorServer.WithDetails(err.Error()))
		return
	}
	response.ToResponse(code.Success)
}

// Run executes a job immediately, outside its schedule.
func (h *JobHandler) Run(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(c.Param("id")))
		return
	}

	go func() {
		// Backup runs can take hours; detach from the request.
		_ = h.App.JobService.RunJob(context.Background(), id)
	}()
	response.ToResponse(code.Success)
}

type staggerRequest struct {
	StartHour   int `json:"startHour" binding:"gte=0,lte=23"`
	WindowHours int `json:"windowHours" binding:"gte=1,lte=24"`
}

// Stagger recomputes trigger times for every enabled backup job across
// the given window.
func (h *JobHandler) Stagger(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	var req staggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(err.Error()))
		return
	}
	if err := h.App.ScheduleService.StaggerJobs(c.Request.Context(), req.StartHour, req.WindowHours); err != nil {
		response.ToResponse(code.ErrorServer.WithDetails(err.Error()))
		return
	}
	response.ToResponse(code.Success)
}
