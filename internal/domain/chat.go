package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Conversation statuses.
const (
	ConversationStatusOpen   = "open"
	ConversationStatusClosed = "closed"
)

// Conversation is a support thread. The composite unique index on
// (user_id, subject) lets get-or-create run as an atomic upsert instead of
// read-then-insert, so concurrent callers cannot create duplicate threads.
type Conversation struct {
	ConversationID uuid.UUID `gorm:"column:conversation_id;type:uuid;primaryKey" json:"conversation_id"`
	UserID         uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_conversation_user_subject" json:"user_id"`
	Subject        string    `gorm:"column:subject;not null;uniqueIndex:idx_conversation_user_subject" json:"subject"`
	Status         string    `gorm:"column:status;type:varchar(10);not null;default:open" json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (Conversation) TableName() string {
	return "Conversations"
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ConversationID == uuid.Nil {
		c.ConversationID = uuid.New()
	}
	return nil
}

// ChatMessage is an append-only message in a conversation, ordered by
// created_at, optionally carrying a storage attachment URL.
type ChatMessage struct {
	MessageID      uuid.UUID `gorm:"column:message_id;type:uuid;primaryKey" json:"message_id"`
	ConversationID uuid.UUID `gorm:"column:conversation_id;type:uuid;not null;index" json:"conversation_id"`
	SenderID       uuid.UUID `gorm:"column:sender_id;type:uuid;not null" json:"sender_id"`
	Body           string    `gorm:"column:body;not null" json:"body"`
	AttachmentURL  *string   `gorm:"column:attachment_url" json:"attachment_url"`
	CreatedAt      time.Time `gorm:"index" json:"createdAt"`
}

func (ChatMessage) TableName() string {
	return "ChatMessages"
}

func (m *ChatMessage) BeforeCreate(tx *gorm.DB) error {
	if m.MessageID == uuid.Nil {
		m.MessageID = uuid.New()
	}
	return nil
}
