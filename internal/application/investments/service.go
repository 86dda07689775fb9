package investments

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

// Service encapsulates investment plan and subscription operations.
type Service struct {
	DB *gorm.DB
}

// ListPlans returns active plans ordered by duration.
func (s *Service) ListPlans(ctx context.Context) ([]domain.InvestmentPlan, error) {
	var plans []domain.InvestmentPlan
	if err := s.DB.WithContext(ctx).
		Where("active = ?", true).
		Order("duration_days ASC").
		Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

// Subscribe debits the principal from the wallet and creates an active
// investment. The end date is fixed here, at creation, and never changes.
func (s *Service) Subscribe(ctx context.Context, userID, planID uuid.UUID, principal decimal.Decimal) (*domain.Investment, error) {
	if principal.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("Amount must be a positive number")
	}

	var investment domain.Investment
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var plan domain.InvestmentPlan
		if err := tx.Where("plan_id = ?", planID).First(&plan).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.New("Plan not found")
			}
			return err
		}
		if !plan.Active {
			return errors.New("Plan is no longer offered")
		}
		if principal.LessThan(plan.MinAmount) {
			return fmt.Errorf("Amount is below the plan minimum of %s", plan.MinAmount.StringFixed(2))
		}
		if plan.MaxAmount.GreaterThan(decimal.Zero) && principal.GreaterThan(plan.MaxAmount) {
			return fmt.Errorf("Amount is above the plan maximum of %s", plan.MaxAmount.StringFixed(2))
		}

		var wallet domain.Wallet
		if err := tx.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.New("Wallet not found")
			}
			return err
		}
		if wallet.Balance.LessThan(principal) {
			return errors.New("Insufficient wallet balance to invest")
		}
		wallet.Balance = wallet.Balance.Sub(principal)
		if err := tx.Save(&wallet).Error; err != nil {
			return err
		}

		start := time.Now()
		investment = domain.Investment{
			UserID:    userID,
			PlanID:    plan.PlanID,
			Principal: principal,
			StartDate: start,
			EndDate:   start.Add(time.Duration(plan.DurationDays) * 24 * time.Hour),
			Status:    domain.InvestmentStatusActive,
		}
		if err := tx.Create(&investment).Error; err != nil {
			return err
		}

		return tx.Create(&domain.WalletTransaction{
			UserID:      userID,
			Type:        domain.TxTypeInvestment,
			Amount:      principal.Neg(),
			Description: fmt.Sprintf("Subscribed to %s plan", plan.Name),
			ReferenceID: &investment.InvestmentID,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &investment, nil
}

// ListInvestments returns a user's investments with their plans, newest first.
func (s *Service) ListInvestments(ctx context.Context, userID uuid.UUID) ([]domain.Investment, error) {
	var out []domain.Investment
	if err := s.DB.WithContext(ctx).
		Preload("Plan").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// CreatePlanInput for admin plan creation.
type CreatePlanInput struct {
	Name              string          `json:"name"`
	ReturnsPercentage decimal.Decimal `json:"returns_percentage"`
	DurationDays      int             `json:"duration_days"`
	MinAmount         decimal.Decimal `json:"min_amount"`
	MaxAmount         decimal.Decimal `json:"max_amount"`
}

// CreatePlan adds a plan (admin only, enforced at the route).
func (s *Service) CreatePlan(ctx context.Context, in CreatePlanInput) (*domain.InvestmentPlan, error) {
	if in.Name == "" {
		return nil, errors.New("Plan name is required")
	}
	if in.ReturnsPercentage.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("Returns percentage must be a positive number")
	}
	if in.DurationDays <= 0 {
		return nil, errors.New("Duration must be a positive number of days")
	}
	plan := domain.InvestmentPlan{
		Name:              in.Name,
		ReturnsPercentage: in.ReturnsPercentage,
		DurationDays:      in.DurationDays,
		MinAmount:         in.MinAmount,
		MaxAmount:         in.MaxAmount,
		Active:            true,
	}
	if err := s.DB.WithContext(ctx).Create(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

// RetirePlan marks a plan inactive; running investments are unaffected.
func (s *Service) RetirePlan(ctx context.Context, planID uuid.UUID) error {
	res := s.DB.WithContext(ctx).Model(&domain.InvestmentPlan{}).
		Where("plan_id = ?", planID).
		Update("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.New("Plan not found")
	}
	return nil
}
