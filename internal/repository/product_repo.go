package repository

import (
	"context"

	"github.com/hummafaranpilot-stack/metatrim/internal/model"

	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(ctx context.Context, p *model.TrackedProduct) error
	FindByToken(ctx context.Context, token string) (*model.TrackedProduct, error)
	FindBySlug(ctx context.Context, slug string) (*model.TrackedProduct, error)
	List(ctx context.Context) ([]model.TrackedProduct, error)
	SetActive(ctx context.Context, id uint, active bool) error
	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) DB() *gorm.DB { return r.db }

func (r *productRepo) Create(ctx context.Context, p *model.TrackedProduct) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) FindByToken(ctx context.Context, token string) (*model.TrackedProduct, error) {
	var p model.TrackedProduct
	err := r.db.WithContext(ctx).Where("token = ? AND is_active = ?", token, true).First(&p).Error
	return &p, err
}

func (r *productRepo) FindBySlug(ctx context.Context, slug string) (*model.TrackedProduct, error) {
	var p model.TrackedProduct
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&p).Error
	return &p, err
}

func (r *productRepo) List(ctx context.Context) ([]model.TrackedProduct, error) {
	var products []model.TrackedProduct
	err := r.db.WithContext(ctx).Order("id ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) SetActive(ctx context.Context, id uint, active bool) error {
	res := r.db.WithContext(ctx).Model(&model.TrackedProduct{}).
		Where("id = ?", id).
		Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
