package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hummafaranpilot-stack/metatrim/internal/dto"
	"github.com/hummafaranpilot-stack/metatrim/internal/model"
	"github.com/hummafaranpilot-stack/metatrim/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubPricingRepo is an in-memory PricingRepository for testing.
type stubPricingRepo struct {
	rules  map[uint]*model.PricingRule
	nextID uint
}

func newStubPricingRepo(seed ...model.PricingRule) *stubPricingRepo {
	r := &stubPricingRepo{rules: make(map[uint]*model.PricingRule)}
	for i := range seed {
		rule := seed[i]
		if rule.ID == 0 {
			r.nextID++
			rule.ID = r.nextID
		} else if rule.ID > r.nextID {
			r.nextID = rule.ID
		}
		r.rules[rule.ID] = &rule
	}
	return r
}

func (r *stubPricingRepo) Create(_ context.Context, rule *model.PricingRule) error {
	r.nextID++
	rule.ID = r.nextID
	r.rules[rule.ID] = rule
	return nil
}

func (r *stubPricingRepo) FindByID(_ context.Context, id uint) (*model.PricingRule, error) {
	rule, ok := r.rules[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return rule, nil
}

func (r *stubPricingRepo) List(_ context.Context, productType string, includeInactive bool) ([]model.PricingRule, error) {
	var out []model.PricingRule
	for _, rule := range r.rules {
		if productType != "" && rule.ProductType != productType {
			continue
		}
		if !includeInactive && !rule.IsActive {
			continue
		}
		out = append(out, *rule)
	}
	return out, nil
}

func (r *stubPricingRepo) Update(_ context.Context, id uint, fields map[string]any) error {
	rule, ok := r.rules[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := fields["product_name"].(string); ok {
		rule.ProductName = v
	}
	if v, ok := fields["base_price"].(decimal.Decimal); ok {
		rule.BasePrice = v
	}
	if v, ok := fields["is_active"].(bool); ok {
		rule.IsActive = v
	}
	return nil
}

func (r *stubPricingRepo) SetActive(_ context.Context, id uint, active bool) error {
	rule, ok := r.rules[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	rule.IsActive = active
	return nil
}

func (r *stubPricingRepo) Delete(_ context.Context, id uint) error {
	if _, ok := r.rules[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.rules, id)
	return nil
}

func (r *stubPricingRepo) FindAll(_ context.Context) ([]model.PricingRule, error) {
	var out []model.PricingRule
	for _, rule := range r.rules {
		out = append(out, *rule)
	}
	return out, nil
}

func (r *stubPricingRepo) DB() *gorm.DB { return nil }

// ── Helpers ───────────────────────────────────────────────────────────────────

func datePtr(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func dateArg(s string) time.Time { return *datePtr(s) }

// The met2 price change from January 2026: $157.99 through Jan 29,
// $177.99 from Jan 30 under the met2v2 pattern.
func januaryRules() []model.PricingRule {
	return []model.PricingRule{
		{
			ProductType: model.ProductTypeMetaTrim,
			SkuPattern:  "met2",
			ProductName: "Meta Trim BHB 2 Bottle",
			BottleCount: 2,
			DateFrom:    datePtr("2026-01-13"),
			DateTo:      datePtr("2026-01-29"),
			BasePrice:   decimal.RequireFromString("157.99"),
			Shipping:    decimal.RequireFromString("19.99"),
			IsActive:    true,
		},
		{
			ProductType: model.ProductTypeMetaTrim,
			SkuPattern:  "met2v2",
			ProductName: "Meta Trim BHB 2 Bottle",
			BottleCount: 2,
			DateFrom:    datePtr("2026-01-30"),
			BasePrice:   decimal.RequireFromString("177.99"),
			Shipping:    decimal.RequireFromString("19.99"),
			IsActive:    true,
		},
	}
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestPricingService_CreateAndGet(t *testing.T) {
	svc := service.NewPricingService(newStubPricingRepo(), nil)

	created, err := svc.CreateRule(context.Background(), dto.CreatePricingRuleRequest{
		ProductType: model.ProductTypeMetaTrim,
		SkuPattern:  "met3",
		ProductName: "Meta Trim BHB 3 Bottles",
		BottleCount: 3,
		BasePrice:   decimal.RequireFromString("177.00"),
	})
	require.NoError(t, err)
	assert.True(t, created.IsActive)

	got, err := svc.GetRule(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "met3", got.SkuPattern)
	assert.True(t, got.BasePrice.Equal(decimal.RequireFromString("177.00")))
}

func TestPricingService_UpdatePatchesOnlyGivenFields(t *testing.T) {
	repo := newStubPricingRepo(januaryRules()...)
	svc := service.NewPricingService(repo, nil)

	newName := "Meta Trim BHB Twin Pack"
	updated, err := svc.UpdateRule(context.Background(), 1, dto.UpdatePricingRuleRequest{ProductName: &newName})
	require.NoError(t, err)
	assert.Equal(t, newName, updated.ProductName)
	assert.True(t, updated.BasePrice.Equal(decimal.RequireFromString("157.99")))
}

func TestPricingService_SetActiveUnknownRule(t *testing.T) {
	svc := service.NewPricingService(newStubPricingRepo(), nil)
	err := svc.SetRuleActive(context.Background(), 99, false)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestBasePrice_ResolvesByDateWindow(t *testing.T) {
	svc := service.NewPricingService(newStubPricingRepo(januaryRules()...), nil)

	resp, err := svc.BasePrice(context.Background(), "met2", dateArg("2026-01-20"))
	require.NoError(t, err)
	assert.Equal(t, "met2", resp.SkuPattern)
	assert.True(t, resp.BasePrice.Equal(decimal.RequireFromString("157.99")))
	assert.True(t, resp.TotalBase.Equal(decimal.RequireFromString("177.98")))
	assert.False(t, resp.Fallback)
}

func TestBasePrice_OutOfWindowFallsBackToNewestRule(t *testing.T) {
	svc := service.NewPricingService(newStubPricingRepo(januaryRules()...), nil)

	// met2's only window ended Jan 29; a February date has no covering
	// rule and takes the degraded match, flagged as such.
	resp, err := svc.BasePrice(context.Background(), "met2", dateArg("2026-02-10"))
	require.NoError(t, err)
	assert.Equal(t, "met2", resp.SkuPattern)
	assert.True(t, resp.Fallback)
}

func TestBasePrice_UnknownSku(t *testing.T) {
	svc := service.NewPricingService(newStubPricingRepo(januaryRules()...), nil)

	_, err := svc.BasePrice(context.Background(), "gadget deluxe", dateArg("2026-02-10"))
	assert.True(t, errors.Is(err, service.ErrNoPriceRule))
}

func TestBasePrice_InactiveRulesIgnored(t *testing.T) {
	rules := januaryRules()
	rules[0].IsActive = false
	rules[1].IsActive = false
	svc := service.NewPricingService(newStubPricingRepo(rules...), nil)

	_, err := svc.BasePrice(context.Background(), "met2", dateArg("2026-01-20"))
	assert.True(t, errors.Is(err, service.ErrNoPriceRule))
}
