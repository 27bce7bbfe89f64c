package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/hummafaranpilot-stack/metatrim/internal/dto"
	"github.com/hummafaranpilot-stack/metatrim/internal/model"
	"github.com/hummafaranpilot-stack/metatrim/internal/pricing"
	"github.com/hummafaranpilot-stack/metatrim/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	snapshotCacheKey = "pricing:snapshot"
	snapshotCacheTTL = 5 * time.Minute
)

var ErrNoPriceRule = errors.New("no pricing rule matches")

type PricingService interface {
	CreateRule(ctx context.Context, req dto.CreatePricingRuleRequest) (*dto.PricingRuleResponse, error)
	GetRule(ctx context.Context, id uint) (*dto.PricingRuleResponse, error)
	ListRules(ctx context.Context, productType string, includeInactive bool) ([]dto.PricingRuleResponse, error)
	UpdateRule(ctx context.Context, id uint, req dto.UpdatePricingRuleRequest) (*dto.PricingRuleResponse, error)
	SetRuleActive(ctx context.Context, id uint, active bool) error
	DeleteRule(ctx context.Context, id uint) error

	// Snapshot returns the current rule set for resolution, served from
	// Redis when fresh and rebuilt from the DB otherwise.
	Snapshot(ctx context.Context) (*pricing.Snapshot, error)
	// BasePrice resolves sku at date, falling back to the newest rule
	// for the pattern when no window covers the date.
	BasePrice(ctx context.Context, sku string, date time.Time) (*dto.BasePriceResponse, error)
}

type pricingService struct {
	repo repository.PricingRepository
	rdb  *redis.Client
}

func NewPricingService(repo repository.PricingRepository, rdb *redis.Client) PricingService {
	return &pricingService{repo: repo, rdb: rdb}
}

// ─── Rule conversion ─────────────────────────────────────────────────────────

func ruleFromModel(m *model.PricingRule) pricing.Rule {
	return pricing.Rule{
		ID:             m.ID,
		ProductType:    m.ProductType,
		SkuPattern:     m.SkuPattern,
		ProductName:    m.ProductName,
		BottleCount:    m.BottleCount,
		IsUpsell:       m.IsUpsell,
		IsSubscription: m.IsSubscription,
		DateFrom:       m.DateFrom,
		DateTo:         m.DateTo,
		BasePrice:      m.BasePrice,
		RecurringPrice: m.RecurringPrice,
		Shipping:       m.Shipping,
		Active:         m.IsActive,
	}
}

func fmtDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}

func ruleToResponse(m *model.PricingRule) *dto.PricingRuleResponse {
	return &dto.PricingRuleResponse{
		ID:             m.ID,
		ProductType:    m.ProductType,
		SkuPattern:     m.SkuPattern,
		ProductName:    m.ProductName,
		BottleCount:    m.BottleCount,
		IsUpsell:       m.IsUpsell,
		IsSubscription: m.IsSubscription,
		DateFrom:       fmtDatePtr(m.DateFrom),
		DateTo:         fmtDatePtr(m.DateTo),
		BasePrice:      m.BasePrice,
		RecurringPrice: m.RecurringPrice,
		Shipping:       m.Shipping,
		IsActive:       m.IsActive,
		CreatedAt:      m.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      m.UpdatedAt.Format(time.RFC3339),
	}
}

func parseDatePtr(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ─── CRUD ────────────────────────────────────────────────────────────────────

func (s *pricingService) CreateRule(ctx context.Context, req dto.CreatePricingRuleRequest) (*dto.PricingRuleResponse, error) {
	from, err := parseDatePtr(req.DateFrom)
	if err != nil {
		return nil, err
	}
	to, err := parseDatePtr(req.DateTo)
	if err != nil {
		return nil, err
	}

	rule := &model.PricingRule{
		ProductType:    req.ProductType,
		SkuPattern:     req.SkuPattern,
		ProductName:    req.ProductName,
		BottleCount:    req.BottleCount,
		IsUpsell:       req.IsUpsell,
		IsSubscription: req.IsSubscription,
		DateFrom:       from,
		DateTo:         to,
		BasePrice:      req.BasePrice,
		RecurringPrice: req.RecurringPrice,
		Shipping:       req.Shipping,
		IsActive:       true,
	}
	if err := s.repo.Create(ctx, rule); err != nil {
		return nil, err
	}
	s.invalidateSnapshot(ctx)
	return ruleToResponse(rule), nil
}

func (s *pricingService) GetRule(ctx context.Context, id uint) (*dto.PricingRuleResponse, error) {
	rule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ruleToResponse(rule), nil
}

func (s *pricingService) ListRules(ctx context.Context, productType string, includeInactive bool) ([]dto.PricingRuleResponse, error) {
	rules, err := s.repo.List(ctx, productType, includeInactive)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PricingRuleResponse, 0, len(rules))
	for i := range rules {
		out = append(out, *ruleToResponse(&rules[i]))
	}
	return out, nil
}

func (s *pricingService) UpdateRule(ctx context.Context, id uint, req dto.UpdatePricingRuleRequest) (*dto.PricingRuleResponse, error) {
	fields := map[string]any{}
	if req.ProductName != nil {
		fields["product_name"] = *req.ProductName
	}
	if req.DateFrom != nil {
		from, err := parseDatePtr(req.DateFrom)
		if err != nil {
			return nil, err
		}
		fields["date_from"] = from
	}
	if req.DateTo != nil {
		to, err := parseDatePtr(req.DateTo)
		if err != nil {
			return nil, err
		}
		fields["date_to"] = to
	}
	if req.BasePrice != nil {
		fields["base_price"] = *req.BasePrice
	}
	if req.RecurringPrice != nil {
		fields["recurring_price"] = *req.RecurringPrice
	}
	if req.Shipping != nil {
		fields["shipping"] = *req.Shipping
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	if len(fields) == 0 {
		return s.GetRule(ctx, id)
	}

	if err := s.repo.Update(ctx, id, fields); err != nil {
		return nil, err
	}
	s.invalidateSnapshot(ctx)
	return s.GetRule(ctx, id)
}

func (s *pricingService) SetRuleActive(ctx context.Context, id uint, active bool) error {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return err
	}
	s.invalidateSnapshot(ctx)
	return nil
}

func (s *pricingService) DeleteRule(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateSnapshot(ctx)
	return nil
}

// ─── Snapshot ────────────────────────────────────────────────────────────────

func (s *pricingService) Snapshot(ctx context.Context) (*pricing.Snapshot, error) {
	// 1. Try Redis cache
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, snapshotCacheKey).Bytes(); err == nil {
			var rules []pricing.Rule
			if jsonErr := json.Unmarshal(cached, &rules); jsonErr == nil {
				return pricing.NewSnapshot(rules), nil
			}
		}
	}

	// 2. Cache miss — query DB
	models, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	rules := make([]pricing.Rule, 0, len(models))
	for i := range models {
		rules = append(rules, ruleFromModel(&models[i]))
	}

	// 3. Populate cache — best effort, ignore errors
	if s.rdb != nil {
		if b, jsonErr := json.Marshal(rules); jsonErr == nil {
			_ = s.rdb.Set(context.WithoutCancel(ctx), snapshotCacheKey, b, snapshotCacheTTL).Err()
		}
	}

	return pricing.NewSnapshot(rules), nil
}

func (s *pricingService) invalidateSnapshot(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(context.WithoutCancel(ctx), snapshotCacheKey).Err(); err != nil {
		log.Warn().Err(err).Msg("pricing: snapshot cache invalidation failed")
	}
}

// ─── Resolution ──────────────────────────────────────────────────────────────

func (s *pricingService) BasePrice(ctx context.Context, sku string, date time.Time) (*dto.BasePriceResponse, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	fallback := false
	rule, ok := snap.Resolve(sku, date)
	if !ok {
		rule, ok = snap.ResolveAnyDate(sku)
		fallback = true
	}
	if !ok {
		return nil, ErrNoPriceRule
	}

	return &dto.BasePriceResponse{
		SkuPattern: sku,
		Date:       date.Format("2006-01-02"),
		BasePrice:  rule.BasePrice,
		Shipping:   rule.Shipping,
		TotalBase:  rule.TotalBase(),
		RuleID:     rule.ID,
		Fallback:   fallback,
	}, nil
}
