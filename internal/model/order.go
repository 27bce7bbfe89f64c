package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Order is one purchase event received from the sales platform, either
// via webhook or CSV import. Financial columns stay NULL until the
// pricing core resolves the SKU — an unresolved order never gets a
// substituted default price.
type Order struct {
	ID               uint    `gorm:"primaryKey"`
	OrderID          string  `gorm:"uniqueIndex;not null"`
	TransactionID    *string `gorm:"index"`
	TrackedProductID *uint   `gorm:"index"`
	ProductID        *string
	ProductName      *string
	// ProductPrice is the total amount collected from the customer,
	// inclusive of tax and shipping.
	ProductPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Quantity        int             `gorm:"not null;default:1"`
	CustomerEmail   *string         `gorm:"index"`
	CustomerName    *string
	CustomerPhone   *string
	CustomerCountry *string
	CustomerState   *string
	CustomerCity    *string
	CustomerAddress *string
	CustomerZip     *string
	AffiliateID     *string `gorm:"index"`
	AffiliateName   *string
	Commission      decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	PaymentMethod   string          `gorm:"not null;default:'card'"`
	Currency        string          `gorm:"not null;default:'USD'"`
	// Status: completed | refunded | cancelled | chargeback | fulfilled
	Status    string `gorm:"index;not null;default:'completed'"`
	IPAddress *string
	RawData   datatypes.JSON `gorm:"type:jsonb"`

	// Derived financials (nullable until resolved).
	SkuPattern    *string          `gorm:"index"`
	BasePrice     *decimal.Decimal `gorm:"type:decimal(10,2)"`
	Taxes         *decimal.Decimal `gorm:"type:decimal(10,2)"`
	ProcessingFee *decimal.Decimal `gorm:"type:decimal(10,2)"`
	AllowanceHold *decimal.Decimal `gorm:"type:decimal(10,2)"`
	NetAmount     *decimal.Decimal `gorm:"type:decimal(10,2)"`
	IsUpsell      *bool

	// IP reputation columns, filled asynchronously by the fraud worker.
	IPCountry    *string
	IPCity       *string
	IPRegion     *string
	IPProxy      bool `gorm:"not null;default:false"`
	IPTor        bool `gorm:"not null;default:false"`
	IPVPN        bool `gorm:"not null;default:false"`
	IPFraudScore *int
	IPAnalyzed   bool `gorm:"index;not null;default:false"`

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time

	TrackedProduct *TrackedProduct `gorm:"foreignKey:TrackedProductID"`
}
