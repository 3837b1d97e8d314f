package middleware

import (
	"github.com/haierkeys/db-backup-sync-service/pkg/app"
	"github.com/haierkeys/db-backup-sync-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// NoFound 404 handler
func NoFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		response := app.NewResponse(c)
		response.ToResponse(code.ErrorNotFound)
		c.Abort()
	}
}
