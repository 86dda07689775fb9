package settlement

import (
	settlementsvc "aurum-backend/internal/application/settlement"

	"github.com/gofiber/fiber/v2"
)

// Handlers exposes the sweep trigger. The route is mounted for every method so
// an external scheduler can hit it with GET or POST alike.
type Handlers struct {
	Service *settlementsvc.Service
	// TriggerKey, when set, must match the key query param. Empty disables the check.
	TriggerKey string
}

// Sweep runs one settlement pass. OPTIONS gets an empty 200 (CORS preflight);
// any other method runs the sweep. Raw response shapes, not the standard
// envelope: callers parse {"message", "processed"} / {"error"}.
func (h *Handlers) Sweep(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodOptions {
		return c.SendStatus(fiber.StatusOK)
	}
	if h.TriggerKey != "" && c.Query("key") != h.TriggerKey {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	summary, err := h.Service.Run(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{
		"message":               "Settlement sweep complete",
		"processed":             summary.Processed(),
		"holdings_matured":      summary.HoldingsMatured,
		"investments_completed": summary.InvestmentsCompleted,
		"items":                 summary.Items,
	})
}
