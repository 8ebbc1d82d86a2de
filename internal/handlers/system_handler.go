package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/alexmontero/ocr-pipeline-be/internal/core/pipeline"
	"github.com/alexmontero/ocr-pipeline-be/internal/services"
)

// SystemHandler serves health, provider and statistics endpoints.
type SystemHandler struct {
	pipe    *pipeline.Pipeline
	history *services.HistoryService
	started time.Time
}

func NewSystemHandler(pipe *pipeline.Pipeline, history *services.HistoryService) *SystemHandler {
	return &SystemHandler{pipe: pipe, history: history, started: time.Now()}
}

// Health handles GET /health.
func (h *SystemHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
	})
}

// Providers handles GET /api/providers.
func (h *SystemHandler) Providers(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success":              true,
		"providers":            h.pipe.Providers(),
		"confidence_threshold": h.pipe.Threshold(),
	})
}

// Stats handles GET /api/stats: in-process counters plus the
// persistent aggregates when the history store answers in time.
func (h *SystemHandler) Stats(c *fiber.Ctx) error {
	payload := fiber.Map{
		"success":    true,
		"runtime":    h.pipe.Stats(),
		"cache_size": h.pipe.CacheLen(),
	}

	if h.history != nil {
		if stats, err := h.history.Statistics(c.UserContext()); err == nil {
			payload["history"] = stats
		}
	}

	return c.JSON(payload)
}
