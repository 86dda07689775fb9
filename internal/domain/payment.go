package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Payment records a completed Stripe top-up. Unique indexes on the Stripe IDs
// make webhook processing idempotent under redelivery.
type Payment struct {
	ID                    uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	StripePaymentIntentID string          `gorm:"column:stripe_payment_intent_id;uniqueIndex;not null" json:"stripe_payment_intent_id"`
	StripeEventID         string          `gorm:"column:stripe_event_id;uniqueIndex;not null" json:"stripe_event_id"`
	UserID                uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	Amount                decimal.Decimal `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	AmountPaidCents       int             `gorm:"column:amount_paid_cents;not null" json:"amount_paid_cents"`
	Currency              string          `gorm:"column:currency;not null" json:"currency"`
	Status                string          `gorm:"column:status;not null" json:"status"`
	RawPaymentIntent      datatypes.JSON  `gorm:"column:raw_payment_intent;type:jsonb;not null" json:"raw_payment_intent"`
	CreatedAt             time.Time       `json:"createdAt"`
	UpdatedAt             time.Time       `json:"updatedAt"`
}

func (Payment) TableName() string {
	return "Payments"
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
