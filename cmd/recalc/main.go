// cmd/recalc/main.go — One-shot financial recalculation over every order.
// Usage: go run ./cmd/recalc
package main

import (
	"context"
	"os"
	"time"

	"github.com/hummafaranpilot-stack/metatrim/internal/config"
	"github.com/hummafaranpilot-stack/metatrim/internal/infra"
	"github.com/hummafaranpilot-stack/metatrim/internal/pricing"
	"github.com/hummafaranpilot-stack/metatrim/internal/repository"
	"github.com/hummafaranpilot-stack/metatrim/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	calc := pricing.NewCalculator()
	if rate, err := decimal.NewFromString(cfg.ProcessingFeeRate); err == nil && rate.IsPositive() {
		calc.ProcessingFeeRate = rate
	}
	if rate, err := decimal.NewFromString(cfg.AllowanceHoldRate); err == nil && rate.IsPositive() {
		calc.AllowanceHoldRate = rate
	}

	orderRepo := repository.NewOrderRepository(db)
	pricingSvc := service.NewPricingService(repository.NewPricingRepository(db), rdb)
	recalcSvc := service.NewRecalcService(orderRepo, pricingSvc, pricing.NewNormalizer(), calc)

	result, err := recalcSvc.Recalculate(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("recalculation failed")
	}
	log.Info().
		Int("updated", result.Updated).
		Int("skipped", result.Skipped).
		Int("no_match", result.NoMatch).
		Strs("unmatched", result.Unmatched).
		Msg("recalculation finished")
}
