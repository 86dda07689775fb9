package wallet

import (
	"context"
	"errors"

	"aurum-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrInsufficientFunds is returned when a debit would take the balance negative.
var ErrInsufficientFunds = errors.New("Insufficient wallet balance")

// Service encapsulates wallet operations.
type Service struct {
	DB *gorm.DB
}

// Balance returns the user's wallet row.
func (s *Service) Balance(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	var w domain.Wallet
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&w).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New("Wallet not found")
		}
		return nil, err
	}
	return &w, nil
}

// Credit adds amount to the wallet and appends a ledger entry, in one
// transaction. The balance is fetched inside the transaction immediately
// before the write.
func (s *Service) Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, txType, description string, refID *uuid.UUID) (*domain.Wallet, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("Amount must be a positive number")
	}
	var wallet domain.Wallet
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.New("Wallet not found")
			}
			return err
		}
		wallet.Balance = wallet.Balance.Add(amount)
		if err := tx.Save(&wallet).Error; err != nil {
			return err
		}
		return tx.Create(&domain.WalletTransaction{
			UserID:      userID,
			Type:        txType,
			Amount:      amount,
			Description: description,
			ReferenceID: refID,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// Debit subtracts amount from the wallet and appends a ledger entry, in one
// transaction. Fails with ErrInsufficientFunds rather than going negative.
func (s *Service) Debit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, txType, description string, refID *uuid.UUID) (*domain.Wallet, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("Amount must be a positive number")
	}
	var wallet domain.Wallet
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.New("Wallet not found")
			}
			return err
		}
		if wallet.Balance.LessThan(amount) {
			return ErrInsufficientFunds
		}
		wallet.Balance = wallet.Balance.Sub(amount)
		if err := tx.Save(&wallet).Error; err != nil {
			return err
		}
		return tx.Create(&domain.WalletTransaction{
			UserID:      userID,
			Type:        txType,
			Amount:      amount.Neg(),
			Description: description,
			ReferenceID: refID,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// History returns the user's ledger entries, newest first.
func (s *Service) History(ctx context.Context, userID uuid.UUID) ([]domain.WalletTransaction, error) {
	var txs []domain.WalletTransaction
	if err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}
