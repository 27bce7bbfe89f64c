package repository

import (
	"context"
	"errors"

	"github.com/hummafaranpilot-stack/metatrim/internal/dto"
	"github.com/hummafaranpilot-stack/metatrim/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, o *model.Order) error
	// Upsert inserts the order or, when order_id already exists, leaves the
	// stored row untouched. Returns true when a new row was written.
	Upsert(ctx context.Context, o *model.Order) (bool, error)
	FindByID(ctx context.Context, id uint) (*model.Order, error)
	FindByOrderID(ctx context.Context, orderID string) (*model.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status string) error
	UpdateFinancials(ctx context.Context, id uint, fields map[string]any) error
	UpdateFraud(ctx context.Context, id uint, fields map[string]any) error
	List(ctx context.Context, filter dto.OrderFilter) ([]model.Order, int64, error)
	// FindBatch pages through all orders by ascending id, for backfill runs.
	FindBatch(ctx context.Context, afterID uint, limit int) ([]model.Order, error)
	FindUnanalyzed(ctx context.Context, limit int) ([]model.Order, error)
	Delete(ctx context.Context, id uint) error
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) OrderRepository { return &orderRepo{db: db} }

func (r *orderRepo) DB() *gorm.DB { return r.db }

func (r *orderRepo) Create(ctx context.Context, tx *gorm.DB, o *model.Order) error {
	return tx.WithContext(ctx).Create(o).Error
}

func (r *orderRepo) Upsert(ctx context.Context, o *model.Order) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			DoNothing: true,
		}).
		Create(o)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *orderRepo) FindByID(ctx context.Context, id uint) (*model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Preload("TrackedProduct").First(&o, id).Error
	return &o, err
}

func (r *orderRepo) FindByOrderID(ctx context.Context, orderID string) (*model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&o).Error
	return &o, err
}

func (r *orderRepo) UpdateStatus(ctx context.Context, orderID string, status string) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ?", orderID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *orderRepo) UpdateFinancials(ctx context.Context, id uint, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).Updates(fields).Error
}

func (r *orderRepo) UpdateFraud(ctx context.Context, id uint, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).Updates(fields).Error
}

func (r *orderRepo) List(ctx context.Context, filter dto.OrderFilter) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Order{})

	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.StartDate != "" {
		q = q.Where("created_at >= ?", filter.StartDate)
	}
	if filter.EndDate != "" {
		q = q.Where("created_at < ?::date + INTERVAL '1 day'", filter.EndDate)
	}
	if filter.ProductID != "" {
		q = q.Where("product_id = ?", filter.ProductID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&orders).Error

	return orders, total, err
}

func (r *orderRepo) FindBatch(ctx context.Context, afterID uint, limit int) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Where("id > ?", afterID).
		Order("id ASC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

func (r *orderRepo) FindUnanalyzed(ctx context.Context, limit int) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Where("ip_analyzed = ? AND ip_address IS NOT NULL", false).
		Order("id ASC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

func (r *orderRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Order{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IsNotFound reports whether err is the gorm missing-record error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
