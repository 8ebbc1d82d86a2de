package handlers

import (
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	imgproc "github.com/alexmontero/ocr-pipeline-be/internal/core/imaging"
	"github.com/alexmontero/ocr-pipeline-be/internal/core/pipeline"
	"github.com/alexmontero/ocr-pipeline-be/internal/services"
)

const maxUploadSize = 10 * 1024 * 1024

// OCRHandler serves the document processing endpoint.
type OCRHandler struct {
	pipe    *pipeline.Pipeline
	history *services.HistoryService
}

func NewOCRHandler(pipe *pipeline.Pipeline, history *services.HistoryService) *OCRHandler {
	return &OCRHandler{pipe: pipe, history: history}
}

// ProcessOCR handles POST /api/process-ocr. The image arrives as a
// multipart file under "image"; options come as form fields. The
// pipeline reports failures inside its response, so this handler only
// returns non-200 for malformed uploads.
func (h *OCRHandler) ProcessOCR(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "missing image file",
		})
	}
	if fileHeader.Size > maxUploadSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"success": false,
			"error":   "image exceeds 10MB limit",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "failed to read image file",
		})
	}
	defer file.Close()

	imageData, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "failed to read image file",
		})
	}

	opts := pipeline.Options{
		DocType:    c.FormValue("doc_type", "auto"),
		Language:   c.FormValue("language"),
		UseCache:   parseBool(c.FormValue("use_cache", "true")),
		DigitsOnly: parseBool(c.FormValue("digits_only", "false")),
		Params:     parseParams(c, c.FormValue("doc_type", "auto")),
	}

	resp := h.pipe.Run(c.UserContext(), imageData, opts)

	if h.history != nil {
		h.history.RecordJob(c.UserContext(), pipeline.CacheKey(imageData), opts, resp)
	}

	log.Info().
		Str("doc_type", opts.DocType).
		Bool("success", resp.Success).
		Bool("from_cache", resp.FromCache).
		Msg("process-ocr request served")

	return c.JSON(resp)
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false
	}
	return b
}

// parseParams builds a manual preprocessing override from form fields.
// Absent fields keep the document profile's value; when no tuning
// field is sent at all, nil lets the pipeline auto-detect instead.
func parseParams(c *fiber.Ctx, docType string) *imgproc.Params {
	fields := []string{"brightness", "contrast", "sharpen"}
	present := false
	for _, f := range fields {
		if c.FormValue(f) != "" {
			present = true
			break
		}
	}
	if !present {
		return nil
	}

	params := imgproc.ProfileParams(docType)
	if v, err := strconv.ParseFloat(c.FormValue("brightness"), 64); err == nil {
		params.Brightness = v
	}
	if v, err := strconv.ParseFloat(c.FormValue("contrast"), 64); err == nil {
		params.Contrast = v
	}
	if v, err := strconv.ParseFloat(c.FormValue("sharpen"), 64); err == nil {
		params.Sharpen = v
	}
	return &params
}
