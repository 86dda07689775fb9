package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentMethod is an admin-managed manual top-up channel (bank account,
// e-wallet) shown to customers. Customers only see active methods.
type PaymentMethod struct {
	MethodID      uuid.UUID      `gorm:"column:method_id;type:uuid;primaryKey" json:"method_id"`
	Name          string         `gorm:"column:name;not null" json:"name"`
	Kind          string         `gorm:"column:kind;type:varchar(20);not null" json:"kind"`
	AccountName   string         `gorm:"column:account_name;not null" json:"account_name"`
	AccountNumber string         `gorm:"column:account_number;not null" json:"account_number"`
	Instructions  *string        `gorm:"column:instructions" json:"instructions"`
	Active        bool           `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (PaymentMethod) TableName() string {
	return "PaymentMethods"
}

func (p *PaymentMethod) BeforeCreate(tx *gorm.DB) error {
	if p.MethodID == uuid.Nil {
		p.MethodID = uuid.New()
	}
	return nil
}
