package property

import (
	"go-listings/internal/common/api"

	"github.com/gofiber/fiber/v2"
)

type PropertyApi struct {
	controller *PropertyController
}

func NewPropertyApi(controller *PropertyController) api.Route {
	return &PropertyApi{
		controller: controller,
	}
}

// Setup registers the operator-side read routes for synced listings
func (h *PropertyApi) Setup(app *fiber.App) {
	group := app.Group("/api/properties")

	group.Get("/", h.controller.ListProperties)
	group.Get("/:id", h.controller.GetProperty)
}
