package admin

import (
	"context"
	"errors"
	"strings"

	"aurum-backend/internal/application/notifications"
	"aurum-backend/internal/domain"
	"aurum-backend/internal/pkg/constants"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service encapsulates admin operations: customer status management and
// manual payment-method management.
type Service struct {
	DB            *gorm.DB
	Notifications *notifications.Service
}

// ListCustomers returns all customer accounts, newest first.
func (s *Service) ListCustomers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := s.DB.WithContext(ctx).
		Where("role = ?", constants.Customer).
		Order("created_at DESC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// SetCustomerStatus activates or suspends a customer and notifies them.
func (s *Service) SetCustomerStatus(ctx context.Context, userID uuid.UUID, status string) (*domain.User, error) {
	if status != domain.UserStatusActive && status != domain.UserStatusSuspended {
		return nil, errors.New("Invalid status")
	}
	var u domain.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New("User not found")
		}
		return nil, err
	}
	if u.Role != constants.Customer {
		return nil, errors.New("Only customer accounts can be updated")
	}
	u.Status = status
	if err := s.DB.WithContext(ctx).Save(&u).Error; err != nil {
		return nil, err
	}

	if s.Notifications != nil {
		msg := "Your account has been reactivated."
		if status == domain.UserStatusSuspended {
			msg = "Your account has been suspended. Contact support for details."
		}
		_, _ = s.Notifications.Create(ctx, u.UserID, "Account status updated", msg, domain.NotificationTypeAccount)
	}
	return &u, nil
}

// PaymentMethodInput for create/update of a manual top-up channel.
type PaymentMethodInput struct {
	Name          string  `json:"name"`
	Kind          string  `json:"kind"`
	AccountName   string  `json:"account_name"`
	AccountNumber string  `json:"account_number"`
	Instructions  *string `json:"instructions"`
	Active        *bool   `json:"active"`
}

func (in *PaymentMethodInput) validate() error {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.AccountName) == "" || strings.TrimSpace(in.AccountNumber) == "" {
		return errors.New("Missing required fields")
	}
	switch in.Kind {
	case "bank", "ewallet":
		return nil
	}
	return errors.New("Kind must be bank or ewallet")
}

// CreatePaymentMethod adds a manual top-up channel.
func (s *Service) CreatePaymentMethod(ctx context.Context, in PaymentMethodInput) (*domain.PaymentMethod, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	m := domain.PaymentMethod{
		Name:          strings.TrimSpace(in.Name),
		Kind:          in.Kind,
		AccountName:   strings.TrimSpace(in.AccountName),
		AccountNumber: strings.TrimSpace(in.AccountNumber),
		Instructions:  in.Instructions,
		Active:        true,
	}
	if in.Active != nil {
		m.Active = *in.Active
	}
	if err := s.DB.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdatePaymentMethod edits a manual top-up channel.
func (s *Service) UpdatePaymentMethod(ctx context.Context, methodID uuid.UUID, in PaymentMethodInput) (*domain.PaymentMethod, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var m domain.PaymentMethod
	if err := s.DB.WithContext(ctx).Where("method_id = ?", methodID).First(&m).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New("Payment method not found")
		}
		return nil, err
	}
	m.Name = strings.TrimSpace(in.Name)
	m.Kind = in.Kind
	m.AccountName = strings.TrimSpace(in.AccountName)
	m.AccountNumber = strings.TrimSpace(in.AccountNumber)
	m.Instructions = in.Instructions
	if in.Active != nil {
		m.Active = *in.Active
	}
	if err := s.DB.WithContext(ctx).Save(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// DeletePaymentMethod soft-deletes a manual top-up channel.
func (s *Service) DeletePaymentMethod(ctx context.Context, methodID uuid.UUID) error {
	res := s.DB.WithContext(ctx).Where("method_id = ?", methodID).Delete(&domain.PaymentMethod{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.New("Payment method not found")
	}
	return nil
}

// ListPaymentMethods returns all methods (admin view includes inactive).
func (s *Service) ListPaymentMethods(ctx context.Context, activeOnly bool) ([]domain.PaymentMethod, error) {
	q := s.DB.WithContext(ctx).Order("created_at DESC")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var methods []domain.PaymentMethod
	if err := q.Find(&methods).Error; err != nil {
		return nil, err
	}
	return methods, nil
}
