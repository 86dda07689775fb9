package chat

import (
	"context"
	"errors"

	"aurum-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultSubject is used when a customer opens support chat without a topic.
const DefaultSubject = "Support"

// Service encapsulates support-chat operations.
type Service struct {
	DB *gorm.DB
}

// GetOrCreateConversation returns the conversation for (user, subject),
// creating it if missing. The insert uses ON CONFLICT DO NOTHING against the
// unique (user_id, subject) index, so concurrent callers converge on one row
// instead of racing a read-then-insert.
func (s *Service) GetOrCreateConversation(ctx context.Context, userID uuid.UUID, subject string) (*domain.Conversation, error) {
	if userID == uuid.Nil {
		return nil, errors.New("user_id is required")
	}
	if subject == "" {
		subject = DefaultSubject
	}

	conv := domain.Conversation{
		UserID:  userID,
		Subject: subject,
		Status:  domain.ConversationStatusOpen,
	}
	if err := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "subject"}},
			DoNothing: true,
		}).
		Create(&conv).Error; err != nil {
		return nil, err
	}

	// Fetch the winning row; on conflict the local struct keeps its own
	// generated ID, not the stored one.
	var out domain.Conversation
	if err := s.DB.WithContext(ctx).
		Where("user_id = ? AND subject = ?", userID, subject).
		First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// OpenConversation returns the user's open conversation (any subject),
// creating one under the default subject if none exists.
func (s *Service) OpenConversation(ctx context.Context, userID uuid.UUID) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, domain.ConversationStatusOpen).
		Order("created_at ASC").
		First(&conv).Error
	if err == nil {
		return &conv, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	return s.GetOrCreateConversation(ctx, userID, DefaultSubject)
}

// ListConversations returns a user's conversations, newest first.
func (s *Service) ListConversations(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error) {
	var out []domain.Conversation
	if err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// AppendMessage appends a message to a conversation. Messages are append-only.
// The sender must own the conversation unless staff is true.
func (s *Service) AppendMessage(ctx context.Context, conversationID, senderID uuid.UUID, body string, attachmentURL *string, staff bool) (*domain.ChatMessage, error) {
	if body == "" && attachmentURL == nil {
		return nil, errors.New("Message body is required")
	}
	var conv domain.Conversation
	if err := s.DB.WithContext(ctx).Where("conversation_id = ?", conversationID).First(&conv).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New("Conversation not found")
		}
		return nil, err
	}
	if !staff && conv.UserID != senderID {
		return nil, errors.New("Unauthorized access to conversation")
	}

	msg := domain.ChatMessage{
		ConversationID: conversationID,
		SenderID:       senderID,
		Body:           body,
		AttachmentURL:  attachmentURL,
	}
	if err := s.DB.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListMessages returns a conversation's messages in creation order. The
// requesting user must own the conversation unless staff is true.
func (s *Service) ListMessages(ctx context.Context, conversationID, userID uuid.UUID, staff bool) ([]domain.ChatMessage, error) {
	var conv domain.Conversation
	if err := s.DB.WithContext(ctx).Where("conversation_id = ?", conversationID).First(&conv).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New("Conversation not found")
		}
		return nil, err
	}
	if !staff && conv.UserID != userID {
		return nil, errors.New("Unauthorized access to conversation")
	}

	var out []domain.ChatMessage
	if err := s.DB.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// CloseConversation marks a conversation closed.
func (s *Service) CloseConversation(ctx context.Context, conversationID uuid.UUID) error {
	res := s.DB.WithContext(ctx).Model(&domain.Conversation{}).
		Where("conversation_id = ?", conversationID).
		Update("status", domain.ConversationStatusClosed)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.New("Conversation not found")
	}
	return nil
}
