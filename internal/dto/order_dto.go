package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// OrderFilter is bound from query string of GET /v1/orders.
type OrderFilter struct {
	Status    string `form:"status"`    // completed | refunded | cancelled | chargeback | fulfilled | all
	StartDate string `form:"startDate"` // YYYY-MM-DD
	EndDate   string `form:"endDate"`   // YYYY-MM-DD
	ProductID string `form:"productId"`
	Page      int    `form:"page,default=1"    validate:"min=1"`
	Limit     int    `form:"limit,default=100" validate:"min=1,max=500"`
}

type OrderListItem struct {
	ID            uint             `json:"id"`
	OrderID       string           `json:"order_id"`
	ProductName   string           `json:"product_name"`
	SkuPattern    *string          `json:"sku_pattern"`
	ProductPrice  decimal.Decimal  `json:"product_price"`
	Quantity      int              `json:"quantity"`
	Commission    decimal.Decimal  `json:"commission"`
	BasePrice     *decimal.Decimal `json:"base_price"`
	Taxes         *decimal.Decimal `json:"taxes"`
	ProcessingFee *decimal.Decimal `json:"processing_fee"`
	AllowanceHold *decimal.Decimal `json:"allowance_hold"`
	NetAmount     *decimal.Decimal `json:"net_amount"`
	IsUpsell      *bool            `json:"is_upsell"`
	CustomerName  *string          `json:"customer_name"`
	CustomerEmail *string          `json:"customer_email"`
	Status        string           `json:"status"`
	IPAddress     *string          `json:"ip_address"`
	IPFraudScore  *int             `json:"ip_fraud_score"`
	CreatedAt     string           `json:"created_at"`
}

type OrderListResponse struct {
	Data  []OrderListItem `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// ─── Recalculation ──────────────────────────────────────────────────────────

// RecalculateResponse summarizes a financial backfill run over stored orders.
type RecalculateResponse struct {
	Updated   int      `json:"updated"`
	Skipped   int      `json:"skipped"`
	NoMatch   int      `json:"no_match"`
	Unmatched []string `json:"unmatched_skus,omitempty"`
}

// ─── CSV import ─────────────────────────────────────────────────────────────

// ImportResult summarizes one CSV import run.
type ImportResult struct {
	Imported    int      `json:"imported"`
	Duplicates  int      `json:"duplicates"`
	SkippedRows int      `json:"skipped_rows"`
	Errors      []string `json:"errors,omitempty"`
}
