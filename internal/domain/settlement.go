package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SettlementRecord is the idempotency token for an investment payout. The
// unique index on investment_id makes the credit safe under retries and
// overlapping sweep runs: the record is inserted in the same transaction as
// the wallet credit, so a duplicate-key failure means the payout was already
// applied.
type SettlementRecord struct {
	SettlementID uuid.UUID       `gorm:"column:settlement_id;type:uuid;primaryKey" json:"settlement_id"`
	InvestmentID uuid.UUID       `gorm:"column:investment_id;type:uuid;not null;uniqueIndex" json:"investment_id"`
	UserID       uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	Payout       decimal.Decimal `gorm:"column:payout;type:decimal(18,2);not null" json:"payout"`
	CreditedAt   time.Time       `gorm:"column:credited_at;not null" json:"credited_at"`
	CreatedAt    time.Time       `json:"createdAt"`
}

func (SettlementRecord) TableName() string {
	return "SettlementRecords"
}

func (s *SettlementRecord) BeforeCreate(tx *gorm.DB) error {
	if s.SettlementID == uuid.Nil {
		s.SettlementID = uuid.New()
	}
	return nil
}
