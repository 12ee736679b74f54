package sync

import (
	"go-listings/internal/common/api"

	"github.com/gofiber/fiber/v2"
)

type SyncApi struct {
	controller *SyncController
}

func NewSyncApi(controller *SyncController) api.Route {
	return &SyncApi{
		controller: controller,
	}
}

// Setup registers all sync routes
func (h *SyncApi) Setup(app *fiber.App) {
	group := app.Group("/api/sync")

	group.Post("/integrations/:id/run", h.controller.RunSync)
	group.Post("/run", h.controller.RunAllSyncs)
	group.Post("/webhook/:id", h.controller.ReceiveWebhook)
	group.Get("/logs", h.controller.ListSyncLogs)
	group.Get("/logs/export", h.controller.ExportSyncLogs)
}
