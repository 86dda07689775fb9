package uploads

import (
	uploadsvc "aurum-backend/internal/application/uploads"
	"aurum-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Handlers bundles upload handlers with the service.
type Handlers struct {
	Service *uploadsvc.Service
}

type uploadRequest struct {
	ConversationID string `json:"conversation_id"`
	FileName       string `json:"file_name"`
}

// ChatAttachment POST /api/v1/uploads/chat-attachment — signed upload slot for
// a support-chat attachment, namespaced under the conversation.
func (h *Handlers) ChatAttachment(c *fiber.Ctx) error {
	var req uploadRequest
	if err := c.BodyParser(&req); err != nil || req.FileName == "" {
		return response.Error(c, "file_name is required", 400, nil)
	}
	if _, err := uuid.Parse(req.ConversationID); err != nil {
		return response.Error(c, "Invalid UUID format for conversation_id", 400, nil)
	}

	res, err := h.Service.GetChatAttachmentUploadURL(c.Context(), req.ConversationID, req.FileName)
	if err != nil {
		log.Error().Err(err).Str("bucket", uploadsvc.ChatAttachmentBucket).Msg("upload: failed to generate signed URL")
		return response.Error(c, "Failed to generate upload URL", 500, nil)
	}
	return response.Success(c, "Upload URL generated", res, nil)
}
