package admin

import (
	adminsvc "aurum-backend/internal/application/admin"
	"aurum-backend/internal/domain"
	"aurum-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *adminsvc.Service
}

// ListCustomers GET /api/v1/admin/customers — MANAGE_CUSTOMERS on route.
func (h *Handlers) ListCustomers(c *fiber.Ctx) error {
	customers, err := h.Service.ListCustomers(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	out := make([]fiber.Map, 0, len(customers))
	for i := range customers {
		out = append(out, safeCustomer(&customers[i]))
	}
	return response.Success(c, "Customers found", fiber.Map{"customers": out}, nil)
}

// SetCustomerStatus PATCH /api/v1/admin/customers/:id/status — activate or suspend.
func (h *Handlers) SetCustomerStatus(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for user id", 400, nil)
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil || body.Status == "" {
		return response.Error(c, "status is required", 400, nil)
	}

	u, err := h.Service.SetCustomerStatus(c.Context(), userID, body.Status)
	if err != nil {
		statusMap := map[string]int{
			"Invalid status":                        400,
			"User not found":                        404,
			"Only customer accounts can be updated": 400,
		}
		if code, ok := statusMap[err.Error()]; ok {
			return response.Error(c, err.Error(), code, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Customer status updated", fiber.Map{"user": safeCustomer(u)}, nil)
}

// CreatePaymentMethod POST /api/v1/admin/payment-methods — MANAGE_PAYMENT_METHODS on route.
func (h *Handlers) CreatePaymentMethod(c *fiber.Ctx) error {
	var in adminsvc.PaymentMethodInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	m, err := h.Service.CreatePaymentMethod(c.Context(), in)
	if err != nil {
		return response.Error(c, err.Error(), 400, nil)
	}
	return response.SuccessCreated(c, "Payment method created", fiber.Map{"payment_method": m}, nil)
}

// UpdatePaymentMethod PUT /api/v1/admin/payment-methods/:id.
func (h *Handlers) UpdatePaymentMethod(c *fiber.Ctx) error {
	methodID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for method id", 400, nil)
	}
	var in adminsvc.PaymentMethodInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	m, err := h.Service.UpdatePaymentMethod(c.Context(), methodID, in)
	if err != nil {
		if err.Error() == "Payment method not found" {
			return response.Error(c, err.Error(), 404, nil)
		}
		return response.Error(c, err.Error(), 400, nil)
	}
	return response.Success(c, "Payment method updated", fiber.Map{"payment_method": m}, nil)
}

// DeletePaymentMethod DELETE /api/v1/admin/payment-methods/:id.
func (h *Handlers) DeletePaymentMethod(c *fiber.Ctx) error {
	methodID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for method id", 400, nil)
	}
	if err := h.Service.DeletePaymentMethod(c.Context(), methodID); err != nil {
		if err.Error() == "Payment method not found" {
			return response.Error(c, err.Error(), 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Payment method deleted", nil, nil)
}

// ListAllPaymentMethods GET /api/v1/admin/payment-methods — includes inactive.
func (h *Handlers) ListAllPaymentMethods(c *fiber.Ctx) error {
	methods, err := h.Service.ListPaymentMethods(c.Context(), false)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Payment methods found", fiber.Map{"payment_methods": methods}, nil)
}

// ListActivePaymentMethods GET /api/v1/payment-methods — customer-facing, active only.
func (h *Handlers) ListActivePaymentMethods(c *fiber.Ctx) error {
	methods, err := h.Service.ListPaymentMethods(c.Context(), true)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Payment methods found", fiber.Map{"payment_methods": methods}, nil)
}

func safeCustomer(u *domain.User) fiber.Map {
	phone := interface{}(nil)
	if u.Phone != nil {
		phone = *u.Phone
	}
	return fiber.Map{
		"user_id":    u.UserID.String(),
		"fullname":   u.Fullname,
		"email":      u.Email,
		"phone":      phone,
		"role":       u.Role,
		"status":     u.Status,
		"created_at": u.CreatedAt,
		"updated_at": u.UpdatedAt,
	}
}
