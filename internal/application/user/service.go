package user

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"aurum-backend/internal/application/emails"
	"aurum-backend/internal/domain"
	"aurum-backend/internal/pkg/constants"
	"aurum-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service holds DB and Redis for user operations.
type Service struct {
	DB          *gorm.DB
	Rdb         *redis.Client
	EmailSender emails.Sender
}

// RegisterInput for customer registration.
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Fullname string `json:"fullname"`
	Phone    string `json:"phone"`
}

// Register creates a customer and their wallet in one transaction, then sends
// the welcome email best-effort. Returns the created model (caller sanitizes
// password_hash).
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if in.Email == "" || !validation.IsValidEmail(in.Email) {
		return nil, errors.New("Invalid email format")
	}
	if in.Password == "" || !validation.IsValidPassword(in.Password) {
		return nil, errors.New("Invalid password format")
	}
	trimmed := strings.TrimSpace(in.Fullname)
	if trimmed == "" {
		return nil, errors.New("Full name is required and must be a non-empty string")
	}
	if !validation.IsValidFullname(trimmed) {
		return nil, errors.New("Full name contains invalid characters (only letters, spaces, hyphens, and apostrophes allowed)")
	}

	email := strings.TrimSpace(strings.ToLower(in.Email))
	fullname := titleCaseAndNormalize(trimmed)

	var existing domain.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, errors.New("Email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := domain.User{
		Fullname:     fullname,
		Email:        email,
		PasswordHash: string(hash),
		Role:         constants.Customer,
		Status:       domain.UserStatusActive,
	}
	if phone := strings.TrimSpace(in.Phone); phone != "" {
		u.Phone = &phone
	}

	if err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&u).Error; err != nil {
			return err
		}
		return tx.Create(&domain.Wallet{UserID: u.UserID, Currency: "USD"}).Error
	}); err != nil {
		return nil, err
	}

	if s.EmailSender != nil {
		if err := s.EmailSender.SendWelcome(ctx, u.Email, firstName(u.Fullname)); err != nil {
			log.Warn().Err(err).Str("email", u.Email).Msg("welcome email failed")
		}
	}
	return &u, nil
}

// ViewUser returns a user by ID.
func (s *Service) ViewUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	var u domain.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New("User not found")
		}
		return nil, err
	}
	return &u, nil
}

// UpdateProfileInput for profile updates (self-service).
type UpdateProfileInput struct {
	Fullname *string `json:"fullname"`
	Phone    *string `json:"phone"`
}

// UpdateProfile updates a user's own editable fields.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, in UpdateProfileInput) (*domain.User, error) {
	var u domain.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New("User not found")
		}
		return nil, err
	}
	if in.Fullname != nil {
		trimmed := strings.TrimSpace(*in.Fullname)
		if !validation.IsValidFullname(trimmed) {
			return nil, errors.New("Full name contains invalid characters (only letters, spaces, hyphens, and apostrophes allowed)")
		}
		u.Fullname = titleCaseAndNormalize(trimmed)
	}
	if in.Phone != nil {
		phone := strings.TrimSpace(*in.Phone)
		if phone == "" {
			u.Phone = nil
		} else {
			u.Phone = &phone
		}
	}
	if err := s.DB.WithContext(ctx).Save(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// titleCaseAndNormalize collapses whitespace and capitalizes each word.
func titleCaseAndNormalize(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		runes := []rune(strings.ToLower(f))
		if len(runes) > 0 {
			runes[0] = unicode.ToUpper(runes[0])
		}
		fields[i] = string(runes)
	}
	return strings.Join(fields, " ")
}

func firstName(fullname string) string {
	fields := strings.Fields(fullname)
	if len(fields) == 0 {
		return fullname
	}
	return fields[0]
}
