package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification type tags used across the app.
const (
	NotificationTypeGoldPurchase = "gold_purchase"
	NotificationTypeInvestment   = "investment"
	NotificationTypeTopup        = "topup"
	NotificationTypeAccount      = "account"
)

// Notification is an append-only per-user feed entry.
type Notification struct {
	NotificationID uuid.UUID `gorm:"column:notification_id;type:uuid;primaryKey" json:"notification_id"`
	UserID         uuid.UUID `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	Title          string    `gorm:"column:title;not null" json:"title"`
	Message        string    `gorm:"column:message;not null" json:"message"`
	Type           string    `gorm:"column:type;type:varchar(20);not null" json:"type"`
	Read           bool      `gorm:"column:read;not null;default:false" json:"read"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (Notification) TableName() string {
	return "Notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.NotificationID == uuid.Nil {
		n.NotificationID = uuid.New()
	}
	return nil
}
