package sync

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

type SyncController struct {
	Service SyncService
}

func NewSyncController(service SyncService) *SyncController {
	return &SyncController{
		Service: service,
	}
}

// RunSync godoc
func (ctrl *SyncController) RunSync(c *fiber.Ctx) error {
	id := c.Params("id")

	result, err := ctrl.Service.RunOne(c.Context(), id)
	if err != nil && result == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Sync run finished",
		"data":    result,
	})
}

// RunAllSyncs godoc
func (ctrl *SyncController) RunAllSyncs(c *fiber.Ctx) error {
	results, err := ctrl.Service.RunAll(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Sync sweep finished",
		"data":    results,
	})
}

// ReceiveWebhook godoc
func (ctrl *SyncController) ReceiveWebhook(c *fiber.Ctx) error {
	id := c.Params("id")
	signature := c.Get("X-Listing-Signature")

	result, err := ctrl.Service.RunWebhook(c.Context(), id, c.Body(), signature)
	if err != nil {
		if errors.Is(err, ErrBadSignature) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		if result == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
			"data":  result,
		})
	}

	return c.JSON(fiber.Map{
		"message": "Webhook processed",
		"data":    result,
	})
}

// ListSyncLogs godoc
func (ctrl *SyncController) ListSyncLogs(c *fiber.Ctx) error {
	sourceID := c.Query("source_id")
	limit := int64(c.QueryInt("limit", 50))

	logs, err := ctrl.Service.ListLogs(c.Context(), sourceID, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"data": logs,
	})
}

// ExportSyncLogs godoc
func (ctrl *SyncController) ExportSyncLogs(c *fiber.Ctx) error {
	sourceID := c.Query("source_id")

	data, filename, err := ctrl.Service.ExportLogs(c.Context(), sourceID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", "attachment; filename="+filename)
	return c.Send(data)
}
