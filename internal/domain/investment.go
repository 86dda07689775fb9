package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvestmentPlan is a fixed-term, fixed-return product offering.
type InvestmentPlan struct {
	PlanID            uuid.UUID       `gorm:"column:plan_id;type:uuid;primaryKey" json:"plan_id"`
	Name              string          `gorm:"column:name;not null;uniqueIndex" json:"name"`
	ReturnsPercentage decimal.Decimal `gorm:"column:returns_percentage;type:decimal(5,2);not null" json:"returns_percentage"`
	DurationDays      int             `gorm:"column:duration_days;not null" json:"duration_days"`
	MinAmount         decimal.Decimal `gorm:"column:min_amount;type:decimal(18,2);not null;default:0" json:"min_amount"`
	MaxAmount         decimal.Decimal `gorm:"column:max_amount;type:decimal(18,2);not null;default:0" json:"max_amount"`
	Active            bool            `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

func (InvestmentPlan) TableName() string {
	return "InvestmentPlans"
}

func (p *InvestmentPlan) BeforeCreate(tx *gorm.DB) error {
	if p.PlanID == uuid.Nil {
		p.PlanID = uuid.New()
	}
	return nil
}

// Investment states. Transitions: active → completed (settlement sweep, once).
const (
	InvestmentStatusActive    = "active"
	InvestmentStatusCompleted = "completed"
)

// Investment is a customer's subscription to a plan. EndDate is fixed at
// creation; payout = principal * (1 + returns_percentage/100), computed once
// at settlement.
type Investment struct {
	InvestmentID uuid.UUID       `gorm:"column:investment_id;type:uuid;primaryKey" json:"investment_id"`
	UserID       uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	PlanID       uuid.UUID       `gorm:"column:plan_id;type:uuid;not null;index" json:"plan_id"`
	Principal    decimal.Decimal `gorm:"column:principal;type:decimal(18,2);not null" json:"principal"`
	StartDate    time.Time       `gorm:"column:start_date;not null" json:"start_date"`
	EndDate      time.Time       `gorm:"column:end_date;not null;index" json:"end_date"`
	Status       string          `gorm:"column:status;type:varchar(10);not null;default:active;index" json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`

	Plan *InvestmentPlan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
}

func (Investment) TableName() string {
	return "Investments"
}

func (i *Investment) BeforeCreate(tx *gorm.DB) error {
	if i.InvestmentID == uuid.Nil {
		i.InvestmentID = uuid.New()
	}
	return nil
}
