package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product family identifiers stored in pricing_rules.product_type.
const (
	ProductTypeMetaTrim    = "metatrim"
	ProductTypeProstaPrime = "prostaprime"
)

// PricingRule is one row of the versioned price list. Administrators
// create and edit rows; the resolver only ever reads them. For a given
// sku_pattern at most one active rule should match any date — when the
// data drifts and windows overlap, the resolver's tie-break picks one
// deterministically.
type PricingRule struct {
	ID             uint   `gorm:"primaryKey"`
	ProductType    string `gorm:"index;not null"`
	SkuPattern     string `gorm:"index;not null"`
	ProductName    string `gorm:"not null"`
	BottleCount    int    `gorm:"not null"`
	IsUpsell       bool   `gorm:"not null;default:false"`
	IsSubscription bool   `gorm:"not null;default:false"`
	// Inclusive validity window; NULL = unbounded on that side.
	DateFrom  *time.Time      `gorm:"type:date;index:idx_pricing_dates"`
	DateTo    *time.Time      `gorm:"type:date;index:idx_pricing_dates"`
	BasePrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	// RecurringPrice is the charge on subsequent billing cycles; only
	// meaningful for Subscribe & Save rows.
	RecurringPrice *decimal.Decimal `gorm:"type:decimal(10,2)"`
	Shipping       decimal.Decimal  `gorm:"type:decimal(10,2);not null;default:0"`
	Notes          *string
	IsActive       bool `gorm:"index;not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
