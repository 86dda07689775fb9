package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Wallet holds a customer's spendable funds. One row per user, created at
// registration. Balance must never go negative.
type Wallet struct {
	WalletID  uuid.UUID       `gorm:"column:wallet_id;type:uuid;primaryKey" json:"wallet_id"`
	UserID    uuid.UUID       `gorm:"column:user_id;type:uuid;not null;uniqueIndex" json:"user_id"`
	Balance   decimal.Decimal `gorm:"column:balance;type:decimal(18,2);not null;default:0" json:"balance"`
	Currency  string          `gorm:"column:currency;type:char(3);not null;default:USD" json:"currency"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func (Wallet) TableName() string {
	return "Wallets"
}

func (w *Wallet) BeforeCreate(tx *gorm.DB) error {
	if w.WalletID == uuid.Nil {
		w.WalletID = uuid.New()
	}
	return nil
}

// Wallet ledger entry types.
const (
	TxTypeTopup            = "topup"
	TxTypeGoldBuy          = "gold_buy"
	TxTypeGoldSell         = "gold_sell"
	TxTypeInvestment       = "investment"
	TxTypeInvestmentReturn = "investment_return"
)

// WalletTransaction is an append-only ledger of every wallet mutation.
type WalletTransaction struct {
	TxID        uuid.UUID       `gorm:"column:tx_id;type:uuid;primaryKey" json:"tx_id"`
	UserID      uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	Type        string          `gorm:"column:type;type:varchar(20);not null" json:"type"`
	Amount      decimal.Decimal `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	Description string          `gorm:"column:description" json:"description"`
	ReferenceID *uuid.UUID      `gorm:"column:reference_id;type:uuid" json:"reference_id"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func (WalletTransaction) TableName() string {
	return "WalletTransactions"
}

func (t *WalletTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.TxID == uuid.Nil {
		t.TxID = uuid.New()
	}
	return nil
}
