package chat

import (
	chatsvc "aurum-backend/internal/application/chat"
	"aurum-backend/internal/middleware"
	"aurum-backend/internal/pkg/constants"
	"aurum-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *chatsvc.Service
}

// Open POST /api/v1/chat/conversations — get or create the session user's open conversation.
func (h *Handlers) Open(c *fiber.Ctx) error {
	actor := getActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	var body struct {
		Subject string `json:"subject"`
	}
	_ = c.BodyParser(&body)

	var err error
	var conv interface{}
	if body.Subject != "" {
		conv, err = h.Service.GetOrCreateConversation(c.Context(), actor.userID, body.Subject)
	} else {
		conv, err = h.Service.OpenConversation(c.Context(), actor.userID)
	}
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Conversation ready", fiber.Map{"conversation": conv}, nil)
}

// List GET /api/v1/chat/conversations — the session user's conversations.
func (h *Handlers) List(c *fiber.Ctx) error {
	actor := getActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	items, err := h.Service.ListConversations(c.Context(), actor.userID)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Conversations found", fiber.Map{"conversations": items}, nil)
}

// Messages GET /api/v1/chat/conversations/:id/messages — owner or staff.
func (h *Handlers) Messages(c *fiber.Ctx) error {
	actor := getActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	conversationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for conversation id", 400, nil)
	}

	items, err := h.Service.ListMessages(c.Context(), conversationID, actor.userID, actor.staff)
	if err != nil {
		statusMap := map[string]int{
			"Conversation not found":              404,
			"Unauthorized access to conversation": 403,
		}
		if code, ok := statusMap[err.Error()]; ok {
			return response.Error(c, err.Error(), code, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Messages found", fiber.Map{"messages": items}, nil)
}

// Send POST /api/v1/chat/conversations/:id/messages — owner or staff reply.
func (h *Handlers) Send(c *fiber.Ctx) error {
	actor := getActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	conversationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for conversation id", 400, nil)
	}

	var body struct {
		Message       string  `json:"message"`
		AttachmentURL *string `json:"attachment_url"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Message body is required", 400, nil)
	}

	msg, err := h.Service.AppendMessage(c.Context(), conversationID, actor.userID, body.Message, body.AttachmentURL, actor.staff)
	if err != nil {
		statusMap := map[string]int{
			"Message body is required":            400,
			"Conversation not found":              404,
			"Unauthorized access to conversation": 403,
		}
		if code, ok := statusMap[err.Error()]; ok {
			return response.Error(c, err.Error(), code, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.SuccessCreated(c, "Message sent", fiber.Map{"chat_message": msg}, nil)
}

// Close PATCH /api/v1/chat/conversations/:id/close — staff only (REPLY_SUPPORT on route).
func (h *Handlers) Close(c *fiber.Ctx) error {
	conversationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for conversation id", 400, nil)
	}
	if err := h.Service.CloseConversation(c.Context(), conversationID); err != nil {
		if err.Error() == "Conversation not found" {
			return response.Error(c, err.Error(), 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Conversation closed", nil, nil)
}

type chatActor struct {
	userID uuid.UUID
	staff  bool
}

func getActor(c *fiber.Ctx) *chatActor {
	u := middleware.GetUser(c)
	m, ok := u.(map[string]interface{})
	if !ok {
		return nil
	}
	idStr, _ := m["user_id"].(string)
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil
	}
	role, _ := m["role"].(string)
	return &chatActor{
		userID: id,
		staff:  role == constants.Support || role == constants.Admin,
	}
}
