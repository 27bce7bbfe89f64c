package repository

import (
	"context"

	"github.com/hummafaranpilot-stack/metatrim/internal/model"

	"gorm.io/gorm"
)

type PricingRepository interface {
	Create(ctx context.Context, rule *model.PricingRule) error
	FindByID(ctx context.Context, id uint) (*model.PricingRule, error)
	List(ctx context.Context, productType string, includeInactive bool) ([]model.PricingRule, error)
	Update(ctx context.Context, id uint, fields map[string]any) error
	SetActive(ctx context.Context, id uint, active bool) error
	Delete(ctx context.Context, id uint) error
	// FindAll loads every rule, active or not, for snapshot construction.
	FindAll(ctx context.Context) ([]model.PricingRule, error)
	DB() *gorm.DB
}

type pricingRepo struct{ db *gorm.DB }

func NewPricingRepository(db *gorm.DB) PricingRepository { return &pricingRepo{db: db} }

func (r *pricingRepo) DB() *gorm.DB { return r.db }

func (r *pricingRepo) Create(ctx context.Context, rule *model.PricingRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

func (r *pricingRepo) FindByID(ctx context.Context, id uint) (*model.PricingRule, error) {
	var rule model.PricingRule
	err := r.db.WithContext(ctx).First(&rule, id).Error
	return &rule, err
}

func (r *pricingRepo) List(ctx context.Context, productType string, includeInactive bool) ([]model.PricingRule, error) {
	var rules []model.PricingRule
	q := r.db.WithContext(ctx).Model(&model.PricingRule{})
	if productType != "" {
		q = q.Where("product_type = ?", productType)
	}
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	err := q.Order("sku_pattern ASC, date_from ASC NULLS FIRST").Find(&rules).Error
	return rules, err
}

func (r *pricingRepo) Update(ctx context.Context, id uint, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&model.PricingRule{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *pricingRepo) SetActive(ctx context.Context, id uint, active bool) error {
	return r.Update(ctx, id, map[string]any{"is_active": active})
}

func (r *pricingRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.PricingRule{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *pricingRepo) FindAll(ctx context.Context) ([]model.PricingRule, error) {
	var rules []model.PricingRule
	err := r.db.WithContext(ctx).Order("id ASC").Find(&rules).Error
	return rules, err
}
