// Package api_router provides the HTTP API route handlers.
package api_router

import (
	"github.com/haierkeys/db-backup-sync-service/internal/app"
)

// Handler is the base handler embedding the app container. Every API
// handler embeds it for dependency access.
type Handler struct {
	App *app.App
}

func NewHandler(a *app.App) *Handler {
	return &Handler{App: a}
}
