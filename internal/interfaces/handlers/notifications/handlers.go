package notifications

import (
	notifsvc "aurum-backend/internal/application/notifications"
	"aurum-backend/internal/middleware"
	"aurum-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *notifsvc.Service
}

// List GET /api/v1/notifications — the session user's feed, newest first.
func (h *Handlers) List(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	items, err := h.Service.List(c.Context(), userID)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Notifications found", fiber.Map{"notifications": items}, nil)
}

// UnreadCount GET /api/v1/notifications/unread-count.
func (h *Handlers) UnreadCount(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	count, err := h.Service.UnreadCount(c.Context(), userID)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Unread count", fiber.Map{"count": count}, nil)
}

// MarkRead PATCH /api/v1/notifications/:id/read — owner-scoped.
func (h *Handlers) MarkRead(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	notificationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for notification id", 400, nil)
	}
	if err := h.Service.MarkRead(c.Context(), userID, notificationID); err != nil {
		if err.Error() == "Notification not found" {
			return response.Error(c, err.Error(), 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Notification marked as read", nil, nil)
}

// MarkAllRead PATCH /api/v1/notifications/read-all.
func (h *Handlers) MarkAllRead(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	if err := h.Service.MarkAllRead(c.Context(), userID); err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "All notifications marked as read", nil, nil)
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
