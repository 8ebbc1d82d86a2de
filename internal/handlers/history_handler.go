package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/alexmontero/ocr-pipeline-be/internal/services"
)

// HistoryHandler serves the processing history endpoints.
type HistoryHandler struct {
	history *services.HistoryService
}

func NewHistoryHandler(history *services.HistoryService) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// ListJobs handles GET /api/history.
func (h *HistoryHandler) ListJobs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	jobs, err := h.history.List(c.UserContext(), limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "failed to load history",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(jobs),
		"jobs":    jobs,
	})
}
