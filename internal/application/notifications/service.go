package notifications

import (
	"context"
	"errors"

	"aurum-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service encapsulates notification operations. Create is the single
// choke-point for inserting feed entries; everything that notifies a
// customer goes through it.
type Service struct {
	DB *gorm.DB
}

// Create appends a notification for a user.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, title, message, typ string) (*domain.Notification, error) {
	if userID == uuid.Nil {
		return nil, errors.New("user_id is required")
	}
	n := domain.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    typ,
	}
	if err := s.DB.WithContext(ctx).Create(&n).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

// List returns a user's notifications, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error) {
	var out []domain.Notification
	if err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// UnreadCount returns the number of unread notifications for a user.
func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&domain.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkRead flags one notification as read. Scoped to the owner.
func (s *Service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	res := s.DB.WithContext(ctx).Model(&domain.Notification{}).
		Where("notification_id = ? AND user_id = ?", notificationID, userID).
		Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.New("Notification not found")
	}
	return nil
}

// MarkAllRead flags every unread notification for a user as read.
func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.DB.WithContext(ctx).Model(&domain.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true).Error
}
