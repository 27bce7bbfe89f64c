package model

import "time"

// TrackedProduct registers one product funnel for multi-product
// tracking. The webhook URL carries the token, so events can be
// attributed without trusting anything inside the payload.
type TrackedProduct struct {
	ID        uint    `gorm:"primaryKey"`
	Name      string  `gorm:"not null"`
	Slug      string  `gorm:"uniqueIndex;not null"`
	Token     string  `gorm:"uniqueIndex;not null"`
	Network   string  `gorm:"not null;default:'buygoods'"`
	Notes     *string
	IsActive  bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
