package pricing

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Rule is one row of the versioned price list, detached from its storage
// representation so the resolver can run without a database.
type Rule struct {
	ID             uint
	ProductType    string
	SkuPattern     string
	ProductName    string
	BottleCount    int
	IsUpsell       bool
	IsSubscription bool
	// DateFrom / DateTo are inclusive validity bounds; nil = unbounded.
	DateFrom       *time.Time
	DateTo         *time.Time
	BasePrice      decimal.Decimal
	RecurringPrice *decimal.Decimal
	Shipping       decimal.Decimal
	Active         bool
}

// TotalBase is the charge the customer should have paid before tax:
// list price plus shipping.
func (r Rule) TotalBase() decimal.Decimal {
	return r.BasePrice.Add(r.Shipping)
}

// Snapshot is a read-only copy of the pricing table taken once per
// request or batch. Concurrent resolves against the same snapshot are
// safe; staleness is the caller's tradeoff.
type Snapshot struct {
	rules []Rule
}

// NewSnapshot copies rules into an immutable snapshot.
func NewSnapshot(rules []Rule) *Snapshot {
	cp := make([]Rule, len(rules))
	copy(cp, rules)
	return &Snapshot{rules: cp}
}

// Len reports the number of rules in the snapshot (active or not).
func (s *Snapshot) Len() int { return len(s.rules) }

// Resolve picks the single active rule for sku valid on date.
//
// When the data is inconsistent and several rules overlap, the tie-break
// prefers time-boxed rules over open-ended fallbacks:
//
//  1. both bounds set > date_from only > date_to only > no bounds
//  2. within a tier, most recent date_from first (nil sorts last)
//
// Returns (Rule{}, false) when nothing matches.
func (s *Snapshot) Resolve(sku string, date time.Time) (Rule, bool) {
	day := dateOnly(date)

	var candidates []Rule
	for _, r := range s.rules {
		if !r.Active || r.SkuPattern != sku {
			continue
		}
		if r.DateFrom != nil && day.Before(dateOnly(*r.DateFrom)) {
			continue
		}
		if r.DateTo != nil && day.After(dateOnly(*r.DateTo)) {
			continue
		}
		candidates = append(candidates, r)
	}
	if len(candidates) == 0 {
		return Rule{}, false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		ti, tj := specificity(candidates[i]), specificity(candidates[j])
		if ti != tj {
			return ti < tj
		}
		return laterFrom(candidates[i], candidates[j])
	})
	return candidates[0], true
}

// ResolveAnyDate is the documented degraded-match pass: when no rule is
// valid for the order date, callers may opt to take any active rule for
// the sku regardless of its validity window. This is an explicit second
// call, never folded into Resolve.
func (s *Snapshot) ResolveAnyDate(sku string) (Rule, bool) {
	var candidates []Rule
	for _, r := range s.rules {
		if r.Active && r.SkuPattern == sku {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return Rule{}, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		ti, tj := specificity(candidates[i]), specificity(candidates[j])
		if ti != tj {
			return ti < tj
		}
		return laterFrom(candidates[i], candidates[j])
	})
	return candidates[0], true
}

// specificity ranks a rule's validity window; lower wins.
func specificity(r Rule) int {
	switch {
	case r.DateFrom != nil && r.DateTo != nil:
		return 0
	case r.DateFrom != nil:
		return 1
	case r.DateTo != nil:
		return 2
	default:
		return 3
	}
}

// laterFrom orders by date_from descending with nil last.
func laterFrom(a, b Rule) bool {
	switch {
	case a.DateFrom == nil:
		return false
	case b.DateFrom == nil:
		return true
	default:
		return a.DateFrom.After(*b.DateFrom)
	}
}

// dateOnly drops the time-of-day component so window bounds compare as
// calendar dates, matching the DATE columns they come from.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
