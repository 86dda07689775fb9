package investments

import (
	"strings"

	investsvc "aurum-backend/internal/application/investments"
	"aurum-backend/internal/middleware"
	"aurum-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Handlers struct {
	Service *investsvc.Service
}

// ListPlans GET /api/v1/investments/plans — active plans, public to signed-in users.
func (h *Handlers) ListPlans(c *fiber.Ctx) error {
	plans, err := h.Service.ListPlans(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Plans found", fiber.Map{"plans": plans}, nil)
}

// Subscribe POST /api/v1/investments — subscribe the session user to a plan.
func (h *Handlers) Subscribe(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	var body struct {
		PlanID string  `json:"plan_id"`
		Amount float64 `json:"amount"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	planID, err := uuid.Parse(body.PlanID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for plan_id", 400, nil)
	}
	if body.Amount <= 0 {
		return response.Error(c, "Amount must be a positive number", 400, nil)
	}

	inv, err := h.Service.Subscribe(c.Context(), userID, planID, decimal.NewFromFloat(body.Amount))
	if err != nil {
		msg := err.Error()
		switch {
		case msg == "Plan not found", msg == "Wallet not found":
			return response.Error(c, msg, 404, nil)
		case msg == "Plan is no longer offered",
			msg == "Insufficient wallet balance to invest",
			msg == "Amount must be a positive number",
			strings.HasPrefix(msg, "Amount is below the plan minimum"),
			strings.HasPrefix(msg, "Amount is above the plan maximum"):
			return response.Error(c, msg, 400, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.SuccessCreated(c, "Investment created successfully", fiber.Map{"investment": inv}, nil)
}

// List GET /api/v1/investments — the session user's investments with plans.
func (h *Handlers) List(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	items, err := h.Service.ListInvestments(c.Context(), userID)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Investments found", fiber.Map{"investments": items}, nil)
}

// CreatePlan POST /api/v1/investments/plans — admin only (MANAGE_PLANS on route).
func (h *Handlers) CreatePlan(c *fiber.Ctx) error {
	var body struct {
		Name              string  `json:"name"`
		ReturnsPercentage float64 `json:"returns_percentage"`
		DurationDays      int     `json:"duration_days"`
		MinAmount         float64 `json:"min_amount"`
		MaxAmount         float64 `json:"max_amount"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}

	plan, err := h.Service.CreatePlan(c.Context(), investsvc.CreatePlanInput{
		Name:              body.Name,
		ReturnsPercentage: decimal.NewFromFloat(body.ReturnsPercentage),
		DurationDays:      body.DurationDays,
		MinAmount:         decimal.NewFromFloat(body.MinAmount),
		MaxAmount:         decimal.NewFromFloat(body.MaxAmount),
	})
	if err != nil {
		return response.Error(c, err.Error(), 400, nil)
	}
	return response.SuccessCreated(c, "Plan created successfully", fiber.Map{"plan": plan}, nil)
}

// RetirePlan DELETE /api/v1/investments/plans/:id — admin only; existing investments keep running.
func (h *Handlers) RetirePlan(c *fiber.Ctx) error {
	planID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for plan id", 400, nil)
	}
	if err := h.Service.RetirePlan(c.Context(), planID); err != nil {
		if err.Error() == "Plan not found" {
			return response.Error(c, err.Error(), 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Plan retired successfully", nil, nil)
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
