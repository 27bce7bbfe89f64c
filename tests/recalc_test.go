package tests

import (
	"context"
	"testing"

	"github.com/hummafaranpilot-stack/metatrim/internal/model"
	"github.com/hummafaranpilot-stack/metatrim/internal/pricing"
	"github.com/hummafaranpilot-stack/metatrim/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecalcService(orderRepo *stubOrderRepo, rules []model.PricingRule) service.RecalcService {
	pricingSvc := service.NewPricingService(newStubPricingRepo(rules...), nil)
	return service.NewRecalcService(orderRepo, pricingSvc, pricing.NewNormalizer(), pricing.NewCalculator())
}

func seedOrder(t *testing.T, repo *stubOrderRepo, orderID string, productName *string, price string, createdAt string) {
	t.Helper()
	o := &model.Order{
		OrderID:      orderID,
		ProductName:  productName,
		ProductPrice: decimal.RequireFromString(price),
		Status:       "completed",
		CreatedAt:    dateArg(createdAt),
	}
	created, err := repo.Upsert(context.Background(), o)
	require.NoError(t, err)
	require.True(t, created)
}

func strp(s string) *string { return &s }

func TestRecalculate_ResolvesAtOrderDate(t *testing.T) {
	orderRepo := newStubOrderRepo()
	// One order inside the met2 window, one after it. The later order
	// must not pick up the expired window's price through Resolve; it
	// only matches via the any-date fallback.
	seedOrder(t, orderRepo, "R-1", strp("Meta Trim BHB 2 Bottle"), "191.16", "2026-01-20")

	svc := newRecalcService(orderRepo, januaryRules())
	resp, err := svc.Recalculate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Updated)
	assert.Equal(t, 0, resp.Skipped)
	assert.Equal(t, 0, resp.NoMatch)

	order := orderRepo.orders["R-1"]
	require.NotNil(t, order.SkuPattern)
	assert.Equal(t, "met2", *order.SkuPattern)
	require.NotNil(t, order.BasePrice)
	assert.True(t, order.BasePrice.Equal(decimal.RequireFromString("177.98")))
}

func TestRecalculate_CountsSkippedAndUnmatched(t *testing.T) {
	orderRepo := newStubOrderRepo()
	seedOrder(t, orderRepo, "R-10", strp("Meta Trim BHB 2 Bottle"), "191.16", "2026-01-20")
	seedOrder(t, orderRepo, "R-11", nil, "50.00", "2026-01-21")                              // no product name
	seedOrder(t, orderRepo, "R-12", strp("Mystery Gadget"), "50.00", "2026-01-21")           // not a known family
	seedOrder(t, orderRepo, "R-13", strp("Meta Trim BHB 6 Bottles"), "234.00", "2026-01-21") // met6: no rule seeded

	svc := newRecalcService(orderRepo, januaryRules())
	resp, err := svc.Recalculate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Updated)
	assert.Equal(t, 2, resp.Skipped)
	assert.Equal(t, 1, resp.NoMatch)
	assert.Equal(t, []string{"met6"}, resp.Unmatched)

	// Unresolvable orders keep their null financials.
	assert.Nil(t, orderRepo.orders["R-12"].BasePrice)
	assert.Nil(t, orderRepo.orders["R-13"].BasePrice)
}

func TestRecalculate_IsIdempotent(t *testing.T) {
	orderRepo := newStubOrderRepo()
	seedOrder(t, orderRepo, "R-20", strp("Meta Trim BHB 2 Bottle"), "191.16", "2026-01-20")

	svc := newRecalcService(orderRepo, januaryRules())
	first, err := svc.Recalculate(context.Background())
	require.NoError(t, err)
	firstBase := *orderRepo.orders["R-20"].BasePrice

	second, err := svc.Recalculate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.Updated, second.Updated)
	assert.True(t, orderRepo.orders["R-20"].BasePrice.Equal(firstBase))
}
