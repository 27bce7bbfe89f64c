package repository

import (
	"context"
	"time"

	"github.com/hummafaranpilot-stack/metatrim/internal/dto"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StatsRepository runs the aggregate queries behind the dashboard.
// These are read-only raw SQL; the row volume makes per-row model
// loading pointless.
type StatsRepository interface {
	OrderStats(ctx context.Context, start, end *time.Time) (dto.OrderStats, error)
	RefundStats(ctx context.Context, start, end *time.Time) (dto.RefundStats, error)
	ChargebackStats(ctx context.Context, start, end *time.Time) (dto.ChargebackStats, error)
	RecurringStats(ctx context.Context, start, end *time.Time) (dto.RecurringStats, error)
	RevenueByDay(ctx context.Context, days int) ([]dto.RevenueByDay, error)
	TopProducts(ctx context.Context, limit int) ([]dto.TopProduct, error)
	RecentActivity(ctx context.Context, limit int) ([]dto.ActivityItem, error)
	DB() *gorm.DB
}

type statsRepo struct{ db *gorm.DB }

func NewStatsRepository(db *gorm.DB) StatsRepository { return &statsRepo{db: db} }

func (r *statsRepo) DB() *gorm.DB { return r.db }

func dateWindow(q string, start, end *time.Time) (string, []any) {
	if start != nil && end != nil {
		return q + " AND created_at BETWEEN ? AND ?", []any{*start, *end}
	}
	return q, nil
}

func (r *statsRepo) OrderStats(ctx context.Context, start, end *time.Time) (dto.OrderStats, error) {
	var out dto.OrderStats
	q, args := dateWindow(`
		SELECT
			COUNT(*) AS total_orders,
			COALESCE(SUM(product_price * quantity), 0) AS total_revenue,
			COUNT(*) FILTER (WHERE status = 'completed')  AS completed_orders,
			COUNT(*) FILTER (WHERE status = 'refunded')   AS refunded_orders,
			COUNT(*) FILTER (WHERE status = 'cancelled')  AS cancelled_orders,
			COUNT(*) FILTER (WHERE status = 'chargeback') AS chargeback_orders,
			COUNT(*) FILTER (WHERE status = 'fulfilled')  AS fulfilled_orders
		FROM orders WHERE 1=1`, start, end)
	err := r.db.WithContext(ctx).Raw(q, args...).Scan(&out).Error
	return out, err
}

func (r *statsRepo) RefundStats(ctx context.Context, start, end *time.Time) (dto.RefundStats, error) {
	var out dto.RefundStats
	q, args := dateWindow(`
		SELECT COUNT(*) AS total_refunds, COALESCE(SUM(amount), 0) AS refund_amount
		FROM refunds WHERE 1=1`, start, end)
	err := r.db.WithContext(ctx).Raw(q, args...).Scan(&out).Error
	return out, err
}

func (r *statsRepo) ChargebackStats(ctx context.Context, start, end *time.Time) (dto.ChargebackStats, error) {
	var out dto.ChargebackStats
	q, args := dateWindow(`
		SELECT COUNT(*) AS total_chargebacks, COALESCE(SUM(amount), 0) AS chargeback_amount
		FROM chargebacks WHERE 1=1`, start, end)
	err := r.db.WithContext(ctx).Raw(q, args...).Scan(&out).Error
	return out, err
}

func (r *statsRepo) RecurringStats(ctx context.Context, start, end *time.Time) (dto.RecurringStats, error) {
	var out dto.RecurringStats
	q, args := dateWindow(`
		SELECT COUNT(*) AS total_recurring, COALESCE(SUM(amount), 0) AS recurring_revenue
		FROM recurring_charges WHERE status = 'success'`, start, end)
	err := r.db.WithContext(ctx).Raw(q, args...).Scan(&out).Error
	return out, err
}

func (r *statsRepo) RevenueByDay(ctx context.Context, days int) ([]dto.RevenueByDay, error) {
	var rows []struct {
		Date    time.Time
		Orders  int64
		Revenue decimal.Decimal
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			DATE(created_at) AS date,
			COUNT(*) AS orders,
			COALESCE(SUM(product_price * quantity), 0) AS revenue
		FROM orders
		WHERE created_at >= CURRENT_DATE - make_interval(days => ?)
		GROUP BY DATE(created_at)
		ORDER BY date ASC`, days).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]dto.RevenueByDay, 0, len(rows))
	for _, row := range rows {
		out = append(out, dto.RevenueByDay{
			Date:    row.Date.Format("2006-01-02"),
			Orders:  row.Orders,
			Revenue: row.Revenue,
		})
	}
	return out, nil
}

func (r *statsRepo) TopProducts(ctx context.Context, limit int) ([]dto.TopProduct, error) {
	var out []dto.TopProduct
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			product_id,
			COALESCE(product_name, '') AS product_name,
			COUNT(*) AS total_orders,
			SUM(quantity) AS total_quantity,
			SUM(product_price * quantity) AS total_revenue
		FROM orders
		WHERE status NOT IN ('refunded', 'cancelled', 'chargeback')
		GROUP BY product_id, product_name
		ORDER BY total_revenue DESC
		LIMIT ?`, limit).Scan(&out).Error
	return out, err
}

func (r *statsRepo) RecentActivity(ctx context.Context, limit int) ([]dto.ActivityItem, error) {
	var rows []struct {
		Type        string
		Ref         string
		Description string
		Amount      decimal.Decimal
		CreatedAt   time.Time
	}
	err := r.db.WithContext(ctx).Raw(`
		(SELECT 'order' AS type, order_id AS ref, COALESCE(product_name, '') AS description, product_price AS amount, created_at FROM orders ORDER BY created_at DESC LIMIT ?)
		UNION ALL
		(SELECT 'refund', refund_id, 'Refund for order ' || COALESCE(order_id, '?'), amount, created_at FROM refunds ORDER BY created_at DESC LIMIT ?)
		UNION ALL
		(SELECT 'chargeback', chargeback_id, 'Chargeback for order ' || COALESCE(order_id, '?'), amount, created_at FROM chargebacks ORDER BY created_at DESC LIMIT ?)
		UNION ALL
		(SELECT 'recurring', charge_id, COALESCE(product_name, ''), amount, created_at FROM recurring_charges ORDER BY created_at DESC LIMIT ?)
		ORDER BY created_at DESC
		LIMIT ?`, limit, limit, limit, limit, limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]dto.ActivityItem, 0, len(rows))
	for _, row := range rows {
		out = append(out, dto.ActivityItem{
			Type:        row.Type,
			Ref:         row.Ref,
			Description: row.Description,
			Amount:      row.Amount,
			CreatedAt:   row.CreatedAt.Format(time.RFC3339),
		})
	}
	return out, nil
}
