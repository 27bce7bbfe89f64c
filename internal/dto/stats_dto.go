package dto

import "github.com/shopspring/decimal"

// ─── Dashboard ──────────────────────────────────────────────────────────────

// StatsFilter bounds dashboard aggregates to a date window; empty means all time.
type StatsFilter struct {
	StartDate string `form:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"endDate"   validate:"omitempty,datetime=2006-01-02"`
}

type OrderStats struct {
	TotalOrders      int64           `json:"total_orders"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	CompletedOrders  int64           `json:"completed_orders"`
	RefundedOrders   int64           `json:"refunded_orders"`
	CancelledOrders  int64           `json:"cancelled_orders"`
	ChargebackOrders int64           `json:"chargeback_orders"`
	FulfilledOrders  int64           `json:"fulfilled_orders"`
}

type RefundStats struct {
	TotalRefunds int64           `json:"total_refunds"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
}

type ChargebackStats struct {
	TotalChargebacks int64           `json:"total_chargebacks"`
	ChargebackAmount decimal.Decimal `json:"chargeback_amount"`
}

type RecurringStats struct {
	TotalRecurring   int64           `json:"total_recurring"`
	RecurringRevenue decimal.Decimal `json:"recurring_revenue"`
}

type StatsSummary struct {
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	NetRevenue      decimal.Decimal `json:"net_revenue"`
}

type DashboardStatsResponse struct {
	Orders      OrderStats      `json:"orders"`
	Refunds     RefundStats     `json:"refunds"`
	Chargebacks ChargebackStats `json:"chargebacks"`
	Recurring   RecurringStats  `json:"recurring"`
	Summary     StatsSummary    `json:"summary"`
}

// ─── Series and leaderboards ────────────────────────────────────────────────

type RevenueByDay struct {
	Date    string          `json:"date"`
	Orders  int64           `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

type TopProduct struct {
	ProductID     *string         `json:"product_id"`
	ProductName   string          `json:"product_name"`
	TotalOrders   int64           `json:"total_orders"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
}

type ActivityItem struct {
	Type        string          `json:"type"` // order | refund | chargeback | recurring
	Ref         string          `json:"ref"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	CreatedAt   string          `json:"created_at"`
}
