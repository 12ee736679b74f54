package integration

import (
	"go-listings/internal/common/api"

	"github.com/gofiber/fiber/v2"
)

type IntegrationApi struct {
	controller *IntegrationController
}

func NewIntegrationApi(controller *IntegrationController) api.Route {
	return &IntegrationApi{
		controller: controller,
	}
}

// Setup registers all integration routes
func (h *IntegrationApi) Setup(app *fiber.App) {
	group := app.Group("/api/integrations")

	group.Post("/", h.controller.CreateIntegration)
	group.Get("/", h.controller.ListIntegrations)
	group.Get("/:id", h.controller.GetIntegration)
	group.Put("/:id", h.controller.UpdateIntegration)
	group.Delete("/:id", h.controller.DeleteIntegration)
	group.Post("/:id/test", h.controller.TestIntegration)
}
