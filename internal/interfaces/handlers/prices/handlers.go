package prices

import (
	pricesvc "aurum-backend/internal/application/prices"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *pricesvc.Service
}

// Regional GET /api/v1/prices/regional. Raw shape {"prices": [...]}, fixed by
// the frontend contract, not the standard envelope.
func (h *Handlers) Regional(c *fiber.Ctx) error {
	prices, err := h.Service.ListRegionalPrices(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch gold prices"})
	}
	return c.JSON(fiber.Map{"prices": prices})
}

// Buying GET /api/v1/prices/buying. Raw shape {buyingPrice, changePercentage, lastUpdated}.
func (h *Handlers) Buying(c *fiber.Ctx) error {
	price, err := h.Service.GetBuyingPrice(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch buying price"})
	}
	return c.JSON(price)
}
