package service

import (
	"context"

	"github.com/hummafaranpilot-stack/metatrim/internal/dto"
	"github.com/hummafaranpilot-stack/metatrim/internal/pricing"
	"github.com/hummafaranpilot-stack/metatrim/internal/repository"

	"github.com/rs/zerolog/log"
)

const recalcBatchSize = 500

// RecalcService re-derives financial columns for every stored order
// against the current pricing table. Used after rule changes and to
// backfill orders imported before the pricing core existed.
type RecalcService interface {
	Recalculate(ctx context.Context) (*dto.RecalculateResponse, error)
}

type recalcService struct {
	orderRepo  repository.OrderRepository
	pricingSvc PricingService
	normalizer *pricing.Normalizer
	calc       pricing.Calculator
}

func NewRecalcService(
	orderRepo repository.OrderRepository,
	pricingSvc PricingService,
	normalizer *pricing.Normalizer,
	calc pricing.Calculator,
) RecalcService {
	return &recalcService{
		orderRepo:  orderRepo,
		pricingSvc: pricingSvc,
		normalizer: normalizer,
		calc:       calc,
	}
}

// Recalculate walks all orders in id order, one snapshot for the whole
// run. Rules are resolved at each order's creation date, with the
// any-date fallback for orders predating their rule windows. The run is
// idempotent: re-running without rule changes rewrites identical values.
func (s *recalcService) Recalculate(ctx context.Context) (*dto.RecalculateResponse, error) {
	snap, err := s.pricingSvc.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	resp := &dto.RecalculateResponse{}
	unmatched := map[string]struct{}{}

	var afterID uint
	for {
		batch, err := s.orderRepo.FindBatch(ctx, afterID, recalcBatchSize)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}

		for i := range batch {
			order := &batch[i]
			afterID = order.ID

			if order.ProductName == nil {
				resp.Skipped++
				continue
			}
			sku, ok := s.normalizer.Normalize(*order.ProductName)
			if !ok {
				resp.Skipped++
				continue
			}

			rule, ok := snap.Resolve(sku, order.CreatedAt)
			if !ok {
				rule, ok = snap.ResolveAnyDate(sku)
			}
			if !ok {
				resp.NoMatch++
				unmatched[sku] = struct{}{}
				continue
			}

			fin := s.calc.Calculate(order.ProductPrice, rule, order.Commission)
			fields := map[string]any{
				"sku_pattern":    sku,
				"base_price":     fin.BasePrice,
				"taxes":          fin.Taxes,
				"processing_fee": fin.ProcessingFee,
				"allowance_hold": fin.AllowanceHold,
				"net_amount":     fin.NetAmount,
				"is_upsell":      fin.IsUpsell,
			}
			if err := s.orderRepo.UpdateFinancials(ctx, order.ID, fields); err != nil {
				return nil, err
			}
			resp.Updated++
		}
	}

	for sku := range unmatched {
		resp.Unmatched = append(resp.Unmatched, sku)
	}

	log.Info().
		Int("updated", resp.Updated).
		Int("skipped", resp.Skipped).
		Int("no_match", resp.NoMatch).
		Msg("recalc: run complete")

	return resp, nil
}
