package repository

import (
	"context"

	"github.com/hummafaranpilot-stack/metatrim/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventRepository persists the non-order webhook events. Inserts are
// keyed on the network's event id so redelivered webhooks stay idempotent.
type EventRepository interface {
	InsertRecurringCharge(ctx context.Context, c *model.RecurringCharge) error
	InsertRefund(ctx context.Context, rf *model.Refund) error
	InsertChargeback(ctx context.Context, cb *model.Chargeback) error
	InsertCancellation(ctx context.Context, cn *model.Cancellation) error
	InsertFulfillment(ctx context.Context, f *model.Fulfillment) error
	DB() *gorm.DB
}

type eventRepo struct{ db *gorm.DB }

func NewEventRepository(db *gorm.DB) EventRepository { return &eventRepo{db: db} }

func (r *eventRepo) DB() *gorm.DB { return r.db }

func (r *eventRepo) insertIgnoringConflict(ctx context.Context, conflictCol string, value any) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: conflictCol}},
			DoNothing: true,
		}).
		Create(value).Error
}

func (r *eventRepo) InsertRecurringCharge(ctx context.Context, c *model.RecurringCharge) error {
	return r.insertIgnoringConflict(ctx, "charge_id", c)
}

func (r *eventRepo) InsertRefund(ctx context.Context, rf *model.Refund) error {
	return r.insertIgnoringConflict(ctx, "refund_id", rf)
}

func (r *eventRepo) InsertChargeback(ctx context.Context, cb *model.Chargeback) error {
	return r.insertIgnoringConflict(ctx, "chargeback_id", cb)
}

func (r *eventRepo) InsertCancellation(ctx context.Context, cn *model.Cancellation) error {
	return r.insertIgnoringConflict(ctx, "cancel_id", cn)
}

func (r *eventRepo) InsertFulfillment(ctx context.Context, f *model.Fulfillment) error {
	return r.insertIgnoringConflict(ctx, "fulfillment_id", f)
}
