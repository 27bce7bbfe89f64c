package repository

import (
	"context"

	"github.com/hummafaranpilot-stack/metatrim/internal/model"

	"gorm.io/gorm"
)

type WebhookLogRepository interface {
	Insert(ctx context.Context, l *model.WebhookLog) error
	List(ctx context.Context, eventType string, limit int) ([]model.WebhookLog, error)
	DB() *gorm.DB
}

type webhookLogRepo struct{ db *gorm.DB }

func NewWebhookLogRepository(db *gorm.DB) WebhookLogRepository { return &webhookLogRepo{db: db} }

func (r *webhookLogRepo) DB() *gorm.DB { return r.db }

func (r *webhookLogRepo) Insert(ctx context.Context, l *model.WebhookLog) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *webhookLogRepo) List(ctx context.Context, eventType string, limit int) ([]model.WebhookLog, error) {
	var logs []model.WebhookLog
	q := r.db.WithContext(ctx).Model(&model.WebhookLog{})
	if eventType != "" {
		q = q.Where("event_type = ?", eventType)
	}
	err := q.Order("created_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
