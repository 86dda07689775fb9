package holdings

import (
	"context"
	"errors"

	"aurum-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service encapsulates holdings read operations.
type Service struct {
	DB *gorm.DB
}

// ViewHoldings returns a user's gold holdings, newest first.
func (s *Service) ViewHoldings(ctx context.Context, userID uuid.UUID) ([]domain.GoldHolding, error) {
	if userID == uuid.Nil {
		return nil, errors.New("user_id is required")
	}
	var holdings []domain.GoldHolding
	if err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&holdings).Error; err != nil {
		return nil, err
	}
	return holdings, nil
}

// ViewHolding returns one holding; only the owner may view it.
func (s *Service) ViewHolding(ctx context.Context, holdingID, userID uuid.UUID) (*domain.GoldHolding, error) {
	if holdingID == uuid.Nil {
		return nil, errors.New("holding_id is required")
	}
	var holding domain.GoldHolding
	if err := s.DB.WithContext(ctx).Where("holding_id = ?", holdingID).First(&holding).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New("Holding not found")
		}
		return nil, err
	}
	if holding.UserID != userID {
		return nil, errors.New("Unauthorized access to holding")
	}
	return &holding, nil
}
