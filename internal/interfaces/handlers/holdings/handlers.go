package holdings

import (
	holdingsvc "aurum-backend/internal/application/holdings"
	"aurum-backend/internal/middleware"
	"aurum-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *holdingsvc.Service
}

// List GET /api/v1/holdings — the session user's gold holdings.
func (h *Handlers) List(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	items, err := h.Service.ViewHoldings(c.Context(), userID)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Holdings found", fiber.Map{"holdings": items}, nil)
}

// View GET /api/v1/holdings/:id — one holding, owner only.
func (h *Handlers) View(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	holdingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for holding id", 400, nil)
	}
	holding, err := h.Service.ViewHolding(c.Context(), holdingID, userID)
	if err != nil {
		statusMap := map[string]int{
			"Holding not found":              404,
			"Unauthorized access to holding": 403,
		}
		if code, ok := statusMap[err.Error()]; ok {
			return response.Error(c, err.Error(), code, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Holding found", fiber.Map{"holding": holding}, nil)
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
