package trading

import (
	"context"

	pricesvc "aurum-backend/internal/application/prices"
	tradesvc "aurum-backend/internal/application/trading"
	"aurum-backend/internal/middleware"
	"aurum-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Handlers struct {
	Service *tradesvc.Service
	Quoter  PriceQuoter
}

// PriceQuoter supplies the current per-gram price used for buys and sells.
type PriceQuoter interface {
	QuotePerGram(ctx context.Context) (decimal.Decimal, error)
}

// LivePriceQuoter quotes from the scraped buying price.
type LivePriceQuoter struct {
	Prices *pricesvc.Service
}

func (q *LivePriceQuoter) QuotePerGram(ctx context.Context) (decimal.Decimal, error) {
	bp, err := q.Prices.GetBuyingPrice(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromFloat(bp.BuyingPrice), nil
}

// BuyGold POST /api/v1/trading/buy — debit wallet at the live price, create a locked holding.
func (h *Handlers) BuyGold(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	var body struct {
		Grams float64 `json:"grams"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	if body.Grams <= 0 {
		return response.Error(c, "Grams must be a positive number", 400, nil)
	}

	price, err := h.Quoter.QuotePerGram(c.Context())
	if err != nil {
		return response.Error(c, "Gold price unavailable", 503, nil)
	}

	holding, err := h.Service.BuyGold(c.Context(), userID, decimal.NewFromFloat(body.Grams), price)
	if err != nil {
		statusMap := map[string]int{
			"Wallet not found":                        404,
			"Insufficient wallet balance to buy gold": 400,
			"Grams must be a positive number":         400,
			"Price must be a positive number":         400,
		}
		if code, ok := statusMap[err.Error()]; ok {
			return response.Error(c, err.Error(), code, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.SuccessCreated(c, "Gold purchased successfully", fiber.Map{"holding": holding}, nil)
}

// SellGold POST /api/v1/trading/sell — sell a mature holding at the live price.
func (h *Handlers) SellGold(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	var body struct {
		HoldingID string `json:"holding_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	holdingID, err := uuid.Parse(body.HoldingID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for holding_id", 400, nil)
	}

	price, err := h.Quoter.QuotePerGram(c.Context())
	if err != nil {
		return response.Error(c, "Gold price unavailable", 503, nil)
	}

	result, err := h.Service.SellGold(c.Context(), userID, holdingID, price)
	if err != nil {
		statusMap := map[string]int{
			"Holding not found":                404,
			"Unauthorized access to holding":   403,
			"Holding is still locked":          400,
			"Holding is not available to sell": 400,
			"Wallet not found":                 404,
		}
		if code, ok := statusMap[err.Error()]; ok {
			return response.Error(c, err.Error(), code, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Gold sold successfully", result, nil)
}

func actorID(c *fiber.Ctx) (uuid.UUID, error) {
	u := middleware.GetUser(c)
	m, ok := u.(map[string]interface{})
	if !ok {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	id, _ := m["user_id"].(string)
	return uuid.Parse(id)
}
