package retention

import (
	"go-listings/internal/common/api"

	"github.com/gofiber/fiber/v2"
)

type RetentionApi struct {
	controller *RetentionController
}

func NewRetentionApi(controller *RetentionController) api.Route {
	return &RetentionApi{
		controller: controller,
	}
}

// Setup registers all retention routes
func (h *RetentionApi) Setup(app *fiber.App) {
	group := app.Group("/api/retention")

	group.Post("/integrations/:id/retire", h.controller.RetireOld)
	group.Post("/sweep", h.controller.RunSweep)
}
