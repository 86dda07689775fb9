package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Gold holding states. Transitions: locked → mature (settlement sweep, once),
// mature → sold (sell flow). Never reversed, rows never deleted.
const (
	HoldingStatusLocked = "locked"
	HoldingStatusMature = "mature"
	HoldingStatusSold   = "sold"
)

// GoldHolding is a locked quantity of gold owned by a customer, pending maturity.
type GoldHolding struct {
	HoldingID    uuid.UUID       `gorm:"column:holding_id;type:uuid;primaryKey" json:"holding_id"`
	UserID       uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	Grams        decimal.Decimal `gorm:"column:grams;type:decimal(12,4);not null" json:"grams"`
	BuyPrice     decimal.Decimal `gorm:"column:buy_price;type:decimal(18,2);not null" json:"buy_price"`
	MaturityDate time.Time       `gorm:"column:maturity_date;not null;index" json:"maturity_date"`
	Status       string          `gorm:"column:status;type:varchar(10);not null;default:locked;index" json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

func (GoldHolding) TableName() string {
	return "GoldHoldings"
}

func (h *GoldHolding) BeforeCreate(tx *gorm.DB) error {
	if h.HoldingID == uuid.Nil {
		h.HoldingID = uuid.New()
	}
	return nil
}
