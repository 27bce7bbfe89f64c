package infra

import (
	"fmt"

	"github.com/hummafaranpilot-stack/metatrim/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies any idempotent SQL patches that GORM
// cannot express (partial indexes, etc.).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations is split out so integration tests can migrate a
// container database without going through NewDatabase.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.TrackedProduct{},
		&model.Order{},
		&model.PricingRule{},
		&model.RecurringCharge{},
		&model.Refund{},
		&model.Chargeback{},
		&model.Cancellation{},
		&model.Fulfillment{},
		&model.WebhookLog{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
// Each statement uses IF NOT EXISTS semantics so re-running is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// Partial index for the fraud retry cron: only unanalyzed orders
		// with an IP are ever scanned.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_orders_pending_ip_analysis') THEN
		    CREATE INDEX idx_orders_pending_ip_analysis
		        ON orders (id)
		        WHERE ip_analyzed = false AND ip_address IS NOT NULL;
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
