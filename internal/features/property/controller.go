package property

import (
	"github.com/gofiber/fiber/v2"
)

type PropertyController struct {
	Repo PropertyRepository
}

func NewPropertyController(repo PropertyRepository) *PropertyController {
	return &PropertyController{
		Repo: repo,
	}
}

// ListProperties godoc
func (ctrl *PropertyController) ListProperties(c *fiber.Ctx) error {
	sourceID := c.Query("source_id")
	limit := int64(c.QueryInt("limit", 50))

	props, err := ctrl.Repo.List(c.Context(), sourceID, limit)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"data": props,
	})
}

// GetProperty godoc
func (ctrl *PropertyController) GetProperty(c *fiber.Ctx) error {
	id := c.Params("id")

	p, err := ctrl.Repo.Get(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(p)
}
