package routers

import (
	"time"

	"github.com/haierkeys/db-backup-sync-service/internal/app"
	"github.com/haierkeys/db-backup-sync-service/internal/middleware"
	"github.com/haierkeys/db-backup-sync-service/internal/routers/api_router"
	"github.com/haierkeys/db-backup-sync-service/pkg/limiter"

	"github.com/gin-gonic/gin"
)

var methodLimiters = limiter.NewMethodLimiter().AddBuckets(
	limiter.BucketRule{
		Key:          "/api",
		FillInterval: time.Second,
		Capacity:     10,
		Quantum:      10,
	},
)

func NewRouter(appContainer *app.App) *gin.Engine {
	r := gin.New()

	api := r.Group("/api")
	{
		api.Use(middleware.RateLimiter(methodLimiters))
		api.Use(middleware.ContextTimeout(60 * time.Second))
		api.Use(middleware.AccessLog())
		api.Use(middleware.RecoveryWithLogger(appContainer.Logger()))

		healthHandler := api_router.NewHealthHandler(appContainer)
		versionHandler := api_router.NewVersionHandler(appContainer)
		jobHandler := api_router.NewJobHandler(appContainer)
		cleanupHandler := api_router.NewCleanupHandler(appContainer)
		syncHandler := api_router.NewSyncHandler(appContainer)
		historyHandler := api_router.NewHistoryHandler(appContainer)

		api.GET("/health", healthHandler.Check)
		api.GET("/version", versionHandler.ServerVersion)

		api.GET("/jobs", jobHandler.List)
		api.POST("/jobs", jobHandler.Save)
		api.DELETE("/jobs/:id", jobHandler.Delete)
		api.POST("/jobs/:id/run", jobHandler.Run)
		api.POST("/jobs/stagger", jobHandler.Stagger)

		api.GET("/cleanup/analyze", cleanupHandler.Analyze)
		api.POST("/cleanup/execute", cleanupHandler.Execute)
		api.GET("/cleanup/settings", cleanupHandler.GetSettings)
		api.POST("/cleanup/settings", cleanupHandler.SaveSettings)
		api.GET("/cleanup/runs", cleanupHandler.Runs)

		api.GET("/sync/status", syncHandler.Status)
		api.POST("/sync/trigger", syncHandler.Trigger)
		api.GET("/sync/settings", syncHandler.GetSettings)
		api.POST("/sync/settings", syncHandler.SaveSettings)
		api.GET("/sync/bandwidth", syncHandler.GetBandwidth)
		api.POST("/sync/bandwidth", syncHandler.SaveBandwidth)
		api.GET("/sync/runs", syncHandler.Runs)

		api.GET("/history/jobs", historyHandler.JobRuns)
		api.GET("/history/completion", historyHandler.Completion)
	}

	r.NoRoute(middleware.NoFound())

	return r
}
