package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreatePricingRuleRequest struct {
	ProductType    string           `json:"product_type"    validate:"required,oneof=metatrim prostaprime"`
	SkuPattern     string           `json:"sku_pattern"     validate:"required,min=3"`
	ProductName    string           `json:"product_name"    validate:"required"`
	BottleCount    int              `json:"bottle_count"    validate:"required,min=1"`
	IsUpsell       bool             `json:"is_upsell"`
	IsSubscription bool             `json:"is_subscription"`
	DateFrom       *string          `json:"date_from"       validate:"omitempty,datetime=2006-01-02"`
	DateTo         *string          `json:"date_to"         validate:"omitempty,datetime=2006-01-02"`
	BasePrice      decimal.Decimal  `json:"base_price"      validate:"required"`
	RecurringPrice *decimal.Decimal `json:"recurring_price"`
	Shipping       decimal.Decimal  `json:"shipping"`
}

// UpdatePricingRuleRequest patches a rule; nil fields are left untouched.
type UpdatePricingRuleRequest struct {
	ProductName    *string          `json:"product_name"`
	DateFrom       *string          `json:"date_from"       validate:"omitempty,datetime=2006-01-02"`
	DateTo         *string          `json:"date_to"         validate:"omitempty,datetime=2006-01-02"`
	BasePrice      *decimal.Decimal `json:"base_price"`
	RecurringPrice *decimal.Decimal `json:"recurring_price"`
	Shipping       *decimal.Decimal `json:"shipping"`
	IsActive       *bool            `json:"is_active"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PricingRuleResponse struct {
	ID             uint             `json:"id"`
	ProductType    string           `json:"product_type"`
	SkuPattern     string           `json:"sku_pattern"`
	ProductName    string           `json:"product_name"`
	BottleCount    int              `json:"bottle_count"`
	IsUpsell       bool             `json:"is_upsell"`
	IsSubscription bool             `json:"is_subscription"`
	DateFrom       *string          `json:"date_from"`
	DateTo         *string          `json:"date_to"`
	BasePrice      decimal.Decimal  `json:"base_price"`
	RecurringPrice *decimal.Decimal `json:"recurring_price"`
	Shipping       decimal.Decimal  `json:"shipping"`
	IsActive       bool             `json:"is_active"`
	CreatedAt      string           `json:"created_at"`
	UpdatedAt      string           `json:"updated_at"`
}

// BasePriceResponse answers GET /v1/pricing/base-price. Fallback is true
// when no rule covered the requested date and the newest rule for the
// pattern was used instead.
type BasePriceResponse struct {
	SkuPattern string          `json:"sku_pattern"`
	Date       string          `json:"date"`
	BasePrice  decimal.Decimal `json:"base_price"`
	Shipping   decimal.Decimal `json:"shipping"`
	TotalBase  decimal.Decimal `json:"total_base"`
	RuleID     uint            `json:"rule_id"`
	Fallback   bool            `json:"fallback"`
}
