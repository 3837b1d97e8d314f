package api_router

import (
	"time"

	"github.com/haierkeys/db-backup-sync-service/internal/app"
	pkgapp "github.com/haierkeys/db-backup-sync-service/pkg/app"
	"github.com/haierkeys/db-backup-sync-service/pkg/code"
	"github.com/haierkeys/db-backup-sync-service/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// HealthHandler serves liveness plus basic host information.
type HealthHandler struct {
	*Handler
	startTime time.Time
}

func NewHealthHandler(a *app.App) *HealthHandler {
	return &HealthHandler{Handler: NewHandler(a), startTime: time.Now()}
}

type HealthResponse struct {
	Status   string  `json:"status"`
	Version  string  `json:"version"`
	Uptime   float64 `json:"uptime"`
	Database string  `json:"database"`
	OS       string  `json:"os"`
	// HostUptime seconds since host boot
	HostUptime uint64 `json:"hostUptime"`
	// MemUsedPercent host memory utilization
	MemUsedPercent float64 `json:"memUsedPercent"`
}

// Check reports service health including the database connection.
func (h *HealthHandler) Check(c *gin.Context) {
	response := HealthResponse{
		Status:   "healthy",
		Version:  h.App.Version().Version,
		Uptime:   time.Since(h.startTime).Seconds(),
		Database: "connected",
		OS:       util.GetOSPrettyName(),
	}

	if up, err := host.Uptime(); err == nil {
		response.HostUptime = up
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		response.MemUsedPercent = vm.UsedPercent
	}

	if err := h.App.Dao.DB().Raw("SELECT 1").Error; err != nil {
		response.Status = "unhealthy"
		response.Database = "error"
		pkgapp.NewResponse(c).ToResponse(code.ErrorServer.WithData(response))
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(response))
}
