package model

import (
	"time"

	"gorm.io/datatypes"
)

// WebhookLog records every webhook delivery before any processing
// happens, so a bad payload can always be replayed or inspected.
type WebhookLog struct {
	ID         uint   `gorm:"primaryKey"`
	EventType  string `gorm:"index;not null"`
	ProductID  *uint  `gorm:"index"`
	RemoteIP   string
	Payload    datatypes.JSON `gorm:"type:jsonb"`
	StatusCode int            `gorm:"not null"`
	Error      *string
	CreatedAt  time.Time `gorm:"index"`

	Product *TrackedProduct `gorm:"foreignKey:ProductID"`
}
