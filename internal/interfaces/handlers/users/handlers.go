package users

import (
	usersvc "aurum-backend/internal/application/user"
	"aurum-backend/internal/domain"
	"aurum-backend/internal/middleware"
	"aurum-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const userSessionsPrefix = "user_sessions:"

// Handlers holds the user service and session config for register (session + cookie).
type Handlers struct {
	Service *usersvc.Service
	Config  middleware.SessionConfig
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Fullname string `json:"fullname"`
	Phone    string `json:"phone"`
}

// Register POST /api/v1/users/register — create customer + wallet, start a
// session, SAdd user_sessions, set cookie, return 201 with data.user.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	if req.Email == "" || req.Password == "" || req.Fullname == "" {
		return response.Error(c, "Missing required fields", 400, nil)
	}

	u, err := h.Service.Register(c.Context(), usersvc.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Fullname: req.Fullname,
		Phone:    req.Phone,
	})
	if err != nil {
		return mapRegisterError(c, err)
	}

	sid := middleware.RegenerateSessionID(c)
	middleware.SetSessionUser(c, middleware.SessionUser{
		UserID:   u.UserID.String(),
		Fullname: u.Fullname,
		Email:    u.Email,
		Role:     u.Role,
		Status:   u.Status,
	})
	if h.Service.Rdb != nil {
		_ = h.Service.Rdb.SAdd(c.Context(), userSessionsPrefix+u.UserID.String(), sid).Err()
	}

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = "s:" + sid
	c.Cookie(&cookie)

	return response.SuccessCreated(c, "User created successfully", fiber.Map{"user": safeUser(u)}, nil)
}

// ViewProfile GET /api/v1/users/me — returns the session user's profile.
func (h *Handlers) ViewProfile(c *fiber.Ctx) error {
	actor := getSessionActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	userID, err := uuid.Parse(actor.UserID)
	if err != nil {
		return response.Error(c, "Invalid user ID format (must be a valid UUID)", 400, nil)
	}

	u, err := h.Service.ViewUser(c.Context(), userID)
	if err != nil {
		if err.Error() == "User not found" {
			return response.Error(c, err.Error(), 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "User found", fiber.Map{"user": safeUser(u)}, nil)
}

type UpdateProfileRequest struct {
	Fullname *string `json:"fullname"`
	Phone    *string `json:"phone"`
}

// UpdateProfile PUT /api/v1/users/me — updates the session user's own fields.
func (h *Handlers) UpdateProfile(c *fiber.Ctx) error {
	actor := getSessionActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	userID, err := uuid.Parse(actor.UserID)
	if err != nil {
		return response.Error(c, "Invalid user ID format (must be a valid UUID)", 400, nil)
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Missing update fields", 400, nil)
	}
	if req.Fullname == nil && req.Phone == nil {
		return response.Error(c, "Missing update fields", 400, nil)
	}

	u, err := h.Service.UpdateProfile(c.Context(), userID, usersvc.UpdateProfileInput{
		Fullname: req.Fullname,
		Phone:    req.Phone,
	})
	if err != nil {
		msg := err.Error()
		switch msg {
		case "User not found":
			return response.Error(c, msg, 404, nil)
		case "Full name contains invalid characters (only letters, spaces, hyphens, and apostrophes allowed)":
			return response.Error(c, msg, 400, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "User updated successfully", fiber.Map{"user": safeUser(u)}, nil)
}

type sessionActor struct {
	UserID string
	Role   string
}

func getSessionActor(c *fiber.Ctx) *sessionActor {
	u := middleware.GetUser(c)
	if u == nil {
		return nil
	}
	m, ok := u.(map[string]interface{})
	if !ok {
		return nil
	}
	userID, _ := m["user_id"].(string)
	role, _ := m["role"].(string)
	if userID == "" || role == "" {
		return nil
	}
	return &sessionActor{UserID: userID, Role: role}
}

func safeUser(u *domain.User) fiber.Map {
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

func mapRegisterError(c *fiber.Ctx, err error) error {
	msg := err.Error()
	status := 500
	switch msg {
	case "Invalid email format", "Invalid password format",
		"Full name is required and must be a non-empty string",
		"Full name contains invalid characters (only letters, spaces, hyphens, and apostrophes allowed)":
		status = 400
	case "Email already registered":
		status = 409
	}
	return response.Error(c, msg, status, nil)
}
