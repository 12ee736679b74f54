package retention

import (
	"github.com/gofiber/fiber/v2"
)

type RetentionController struct {
	Service RetentionService
}

func NewRetentionController(service RetentionService) *RetentionController {
	return &RetentionController{
		Service: service,
	}
}

type retireRequest struct {
	OlderThanDays int `json:"older_than_days"`
}

// RetireOld godoc
func (ctrl *RetentionController) RetireOld(c *fiber.Ctx) error {
	id := c.Params("id")

	var req retireRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	summary, err := ctrl.Service.Retire(c.Context(), id, req.OlderThanDays)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Retention pass finished",
		"data":    summary,
	})
}

// RunSweep godoc
func (ctrl *RetentionController) RunSweep(c *fiber.Ctx) error {
	if err := ctrl.Service.Sweep(c.Context()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Retention sweep finished",
	})
}
