package api_router

import (
	"github.com/haierkeys/db-backup-sync-service/internal/app"
	pkgapp "github.com/haierkeys/db-backup-sync-service/pkg/app"

	"github.com/gin-gonic/gin"
)

// VersionHandler serves build identification.
type VersionHandler struct {
	*Handler
}

func NewVersionHandler(a *app.App) *VersionHandler {
	return &VersionHandler{Handler: NewHandler(a)}
}

// ServerVersion returns version, git tag and build time.
func (h *VersionHandler) ServerVersion(c *gin.Context) {
	pkgapp.NewResponse(c).ToResponseData(h.App.Version())
}
