package trading

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aurum-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultLockPeriodDays is how long bought gold stays locked before the
// settlement sweep matures it.
const DefaultLockPeriodDays = 30

// Service encapsulates gold buy/sell operations.
type Service struct {
	DB             *gorm.DB
	LockPeriodDays int
}

func (s *Service) lockPeriod() time.Duration {
	days := s.LockPeriodDays
	if days <= 0 {
		days = DefaultLockPeriodDays
	}
	return time.Duration(days) * 24 * time.Hour
}

// BuyGold debits the wallet at the given price and creates a locked holding
// maturing after the lock period. Atomic: wallet debit, ledger entry and
// holding creation share one transaction.
func (s *Service) BuyGold(ctx context.Context, userID uuid.UUID, grams, pricePerGram decimal.Decimal) (*domain.GoldHolding, error) {
	if grams.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("Grams must be a positive number")
	}
	if pricePerGram.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("Price must be a positive number")
	}
	cost := grams.Mul(pricePerGram).Round(2)

	var holding domain.GoldHolding
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var wallet domain.Wallet
		if err := tx.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.New("Wallet not found")
			}
			return err
		}
		if wallet.Balance.LessThan(cost) {
			return errors.New("Insufficient wallet balance to buy gold")
		}
		wallet.Balance = wallet.Balance.Sub(cost)
		if err := tx.Save(&wallet).Error; err != nil {
			return err
		}

		holding = domain.GoldHolding{
			UserID:       userID,
			Grams:        grams,
			BuyPrice:     pricePerGram,
			MaturityDate: time.Now().Add(s.lockPeriod()),
			Status:       domain.HoldingStatusLocked,
		}
		if err := tx.Create(&holding).Error; err != nil {
			return err
		}

		return tx.Create(&domain.WalletTransaction{
			UserID:      userID,
			Type:        domain.TxTypeGoldBuy,
			Amount:      cost.Neg(),
			Description: fmt.Sprintf("Bought %s g gold @ %s/g", grams.String(), pricePerGram.StringFixed(2)),
			ReferenceID: &holding.HoldingID,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &holding, nil
}

// SellGold sells a mature holding at the given price, crediting the proceeds
// to the wallet. Only the owner's mature holdings are sellable; the guarded
// status update keeps a holding from being sold twice.
func (s *Service) SellGold(ctx context.Context, userID, holdingID uuid.UUID, pricePerGram decimal.Decimal) (map[string]interface{}, error) {
	if pricePerGram.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("Price must be a positive number")
	}

	var result map[string]interface{}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var holding domain.GoldHolding
		if err := tx.Where("holding_id = ?", holdingID).First(&holding).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.New("Holding not found")
			}
			return err
		}
		if holding.UserID != userID {
			return errors.New("Unauthorized access to holding")
		}
		if holding.Status == domain.HoldingStatusLocked {
			return errors.New("Holding is still locked")
		}

		upd := tx.Model(&domain.GoldHolding{}).
			Where("holding_id = ? AND status = ?", holdingID, domain.HoldingStatusMature).
			Update("status", domain.HoldingStatusSold)
		if upd.Error != nil {
			return upd.Error
		}
		if upd.RowsAffected == 0 {
			return errors.New("Holding is not available to sell")
		}

		proceeds := holding.Grams.Mul(pricePerGram).Round(2)

		var wallet domain.Wallet
		if err := tx.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.New("Wallet not found")
			}
			return err
		}
		wallet.Balance = wallet.Balance.Add(proceeds)
		if err := tx.Save(&wallet).Error; err != nil {
			return err
		}

		if err := tx.Create(&domain.WalletTransaction{
			UserID:      userID,
			Type:        domain.TxTypeGoldSell,
			Amount:      proceeds,
			Description: fmt.Sprintf("Sold %s g gold @ %s/g", holding.Grams.String(), pricePerGram.StringFixed(2)),
			ReferenceID: &holding.HoldingID,
		}).Error; err != nil {
			return err
		}

		result = map[string]interface{}{
			"holding_id": holding.HoldingID,
			"grams":      holding.Grams,
			"proceeds":   proceeds,
			"balance":    wallet.Balance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
