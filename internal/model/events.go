package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Post-sale lifecycle events, one table per webhook type. They reference
// orders loosely by the platform's order id — the upstream sends events
// for orders we may never have seen (imports, deleted test data), so no
// FK constraint.

// RecurringCharge is a successful or failed rebill on a subscription.
type RecurringCharge struct {
	ID               uint    `gorm:"primaryKey"`
	ChargeID         string  `gorm:"uniqueIndex;not null"`
	OrderID          *string `gorm:"index"`
	TransactionID    *string
	TrackedProductID *uint `gorm:"index"`
	ProductID        *string
	ProductName      *string
	Amount           decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	CustomerEmail    *string
	CustomerName     *string
	AffiliateID      *string
	Currency         string `gorm:"not null;default:'USD'"`
	// Status: success | failed
	Status    string         `gorm:"not null;default:'success'"`
	RawData   datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"index"`
}

type Refund struct {
	ID               uint    `gorm:"primaryKey"`
	RefundID         string  `gorm:"uniqueIndex;not null"`
	OrderID          *string `gorm:"index"`
	TransactionID    *string
	TrackedProductID *uint           `gorm:"index"`
	Amount           decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Reason           string
	// RefundType: full | partial
	RefundType string         `gorm:"not null;default:'full'"`
	RawData    datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt  time.Time      `gorm:"index"`
}

type Chargeback struct {
	ID               uint    `gorm:"primaryKey"`
	ChargebackID     string  `gorm:"uniqueIndex;not null"`
	OrderID          *string `gorm:"index"`
	TransactionID    *string
	TrackedProductID *uint           `gorm:"index"`
	Amount           decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Reason           string
	RawData          datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt        time.Time      `gorm:"index"`
}

type Cancellation struct {
	ID        uint    `gorm:"primaryKey"`
	CancelID  string  `gorm:"uniqueIndex;not null"`
	OrderID   *string `gorm:"index"`
	Reason    string
	RawData   datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time
}

type Fulfillment struct {
	ID             uint    `gorm:"primaryKey"`
	FulfillmentID  string  `gorm:"uniqueIndex;not null"`
	OrderID        *string `gorm:"index"`
	TrackingNumber *string
	Carrier        *string
	ShippedAt      *time.Time
	RawData        datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt      time.Time
}
