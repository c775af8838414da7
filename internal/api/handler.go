package api

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ecomlens/reviewradar/pkg/model"
)

// BatchScraper defines the scrape operation the handler needs.
type BatchScraper interface {
	Run(ctx context.Context, asins []string, locale string) *model.BatchReport
}

// ScrapeHandler handles HTTP API requests for scrape batches.
type ScrapeHandler struct {
	logger        *zap.Logger
	scraper       BatchScraper
	defaultLocale string
}

// NewScrapeHandler creates a new ScrapeHandler.
func NewScrapeHandler(logger *zap.Logger, scraper BatchScraper, defaultLocale string) *ScrapeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScrapeHandler{
		logger:        logger,
		scraper:       scraper,
		defaultLocale: defaultLocale,
	}
}

// Scrape handles batch submissions. The batch itself cannot fail — the
// orchestrator reconciles all fetch failures internally — so anything past
// request validation responds 200 with whatever ASINs survived.
func (h *ScrapeHandler) Scrape(c *fiber.Ctx) error {
	var req ScrapeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	locale := req.CountryCode
	if locale == "" {
		locale = h.defaultLocale
	}

	h.logger.Info("api.scrape_request",
		zap.Int("asins", len(req.ASINs)),
		zap.String("locale", locale))

	report := h.scraper.Run(c.Context(), req.ASINs, locale)
	return c.Status(fiber.StatusOK).JSON(report)
}
