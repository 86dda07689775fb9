package chat

import (
	"context"
	"testing"

	"aurum-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupChatTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Conversation{}, &domain.ChatMessage{}))
	return &Service{DB: db}, db
}

func TestGetOrCreateConversation_ReusesExisting(t *testing.T) {
	svc, db := setupChatTest(t)
	userID := uuid.New()

	first, err := svc.GetOrCreateConversation(context.Background(), userID, "Gold Maturity Notification")
	require.NoError(t, err)

	second, err := svc.GetOrCreateConversation(context.Background(), userID, "Gold Maturity Notification")
	require.NoError(t, err)
	assert.Equal(t, first.ConversationID, second.ConversationID)

	var count int64
	require.NoError(t, db.Model(&domain.Conversation{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGetOrCreateConversation_DistinctPerSubject(t *testing.T) {
	svc, _ := setupChatTest(t)
	userID := uuid.New()

	a, err := svc.GetOrCreateConversation(context.Background(), userID, "Gold Maturity Notification")
	require.NoError(t, err)
	b, err := svc.GetOrCreateConversation(context.Background(), userID, "Investment Maturity Notification")
	require.NoError(t, err)
	assert.NotEqual(t, a.ConversationID, b.ConversationID)
}

func TestGetOrCreateConversation_DefaultsSubject(t *testing.T) {
	svc, _ := setupChatTest(t)

	conv, err := svc.GetOrCreateConversation(context.Background(), uuid.New(), "")
	require.NoError(t, err)
	assert.Equal(t, DefaultSubject, conv.Subject)
	assert.Equal(t, domain.ConversationStatusOpen, conv.Status)
}

func TestOpenConversation_PrefersExistingOpen(t *testing.T) {
	svc, _ := setupChatTest(t)
	userID := uuid.New()

	existing, err := svc.GetOrCreateConversation(context.Background(), userID, "Billing question")
	require.NoError(t, err)

	got, err := svc.OpenConversation(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, existing.ConversationID, got.ConversationID)
}

func TestAppendAndListMessages(t *testing.T) {
	svc, _ := setupChatTest(t)
	userID := uuid.New()

	conv, err := svc.GetOrCreateConversation(context.Background(), userID, "Support")
	require.NoError(t, err)

	_, err = svc.AppendMessage(context.Background(), conv.ConversationID, userID, "first", nil, false)
	require.NoError(t, err)
	url := "https://cdn.example.com/receipt.png"
	_, err = svc.AppendMessage(context.Background(), conv.ConversationID, userID, "second", &url, false)
	require.NoError(t, err)

	msgs, err := svc.ListMessages(context.Background(), conv.ConversationID, userID, false)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Body)
	assert.Equal(t, "second", msgs[1].Body)
	require.NotNil(t, msgs[1].AttachmentURL)
	assert.Equal(t, url, *msgs[1].AttachmentURL)
}

func TestAppendMessage_RejectsNonOwner(t *testing.T) {
	svc, _ := setupChatTest(t)
	owner := uuid.New()
	stranger := uuid.New()

	conv, err := svc.GetOrCreateConversation(context.Background(), owner, "Support")
	require.NoError(t, err)

	_, err = svc.AppendMessage(context.Background(), conv.ConversationID, stranger, "hi", nil, false)
	require.EqualError(t, err, "Unauthorized access to conversation")

	// Staff replies land regardless of ownership
	_, err = svc.AppendMessage(context.Background(), conv.ConversationID, stranger, "hello, how can we help?", nil, true)
	require.NoError(t, err)
}

func TestListMessages_RejectsNonOwner(t *testing.T) {
	svc, _ := setupChatTest(t)
	owner := uuid.New()

	conv, err := svc.GetOrCreateConversation(context.Background(), owner, "Support")
	require.NoError(t, err)

	_, err = svc.ListMessages(context.Background(), conv.ConversationID, uuid.New(), false)
	require.EqualError(t, err, "Unauthorized access to conversation")

	_, err = svc.ListMessages(context.Background(), conv.ConversationID, uuid.New(), true)
	require.NoError(t, err)
}

func TestCloseConversation(t *testing.T) {
	svc, db := setupChatTest(t)
	userID := uuid.New()

	conv, err := svc.GetOrCreateConversation(context.Background(), userID, "Support")
	require.NoError(t, err)

	require.NoError(t, svc.CloseConversation(context.Background(), conv.ConversationID))

	var got domain.Conversation
	require.NoError(t, db.Where("conversation_id = ?", conv.ConversationID).First(&got).Error)
	assert.Equal(t, domain.ConversationStatusClosed, got.Status)

	err = svc.CloseConversation(context.Background(), uuid.New())
	require.EqualError(t, err, "Conversation not found")
}
