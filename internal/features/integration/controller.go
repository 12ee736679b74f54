package integration

import (
	"github.com/gofiber/fiber/v2"
)

type IntegrationController struct {
	Service IntegrationService
}

func NewIntegrationController(service IntegrationService) *IntegrationController {
	return &IntegrationController{
		Service: service,
	}
}

// CreateIntegration godoc
func (ctrl *IntegrationController) CreateIntegration(c *fiber.Ctx) error {
	var cfg Integration
	if err := c.BodyParser(&cfg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := ctrl.Service.Create(c.Context(), &cfg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Integration created successfully",
		"data":    cfg,
	})
}

// ListIntegrations godoc
func (ctrl *IntegrationController) ListIntegrations(c *fiber.Ctx) error {
	configs, err := ctrl.Service.List(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"data": configs,
	})
}

// GetIntegration godoc
func (ctrl *IntegrationController) GetIntegration(c *fiber.Ctx) error {
	id := c.Params("id")

	cfg, err := ctrl.Service.Get(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(cfg)
}

// UpdateIntegration godoc
func (ctrl *IntegrationController) UpdateIntegration(c *fiber.Ctx) error {
	id := c.Params("id")

	var updates map[string]interface{}
	if err := c.BodyParser(&updates); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := ctrl.Service.Update(c.Context(), id, updates); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Integration updated successfully",
	})
}

// DeleteIntegration godoc
func (ctrl *IntegrationController) DeleteIntegration(c *fiber.Ctx) error {
	id := c.Params("id")

	if err := ctrl.Service.Delete(c.Context(), id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Integration deleted successfully",
	})
}

// TestIntegration godoc
func (ctrl *IntegrationController) TestIntegration(c *fiber.Ctx) error {
	id := c.Params("id")

	result, err := ctrl.Service.TestConnection(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(result)
}
