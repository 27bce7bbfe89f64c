package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func price(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func TestResolve_SpecificityOrdering(t *testing.T) {
	// Three overlapping active rules for met2: open-ended fallback,
	// from-bound only, and a fully boxed window.
	open := Rule{ID: 1, SkuPattern: "met2", BasePrice: price(88.99), Active: true}
	fromOnly := Rule{ID: 2, SkuPattern: "met2", BasePrice: price(177.99),
		DateFrom: datePtr(2026, time.January, 1), Active: true}
	boxed := Rule{ID: 3, SkuPattern: "met2", BasePrice: price(157.99),
		DateFrom: datePtr(2026, time.January, 13), DateTo: datePtr(2026, time.January, 29), Active: true}

	snap := NewSnapshot([]Rule{open, fromOnly, boxed})

	// Inside the boxed window all three match; the boxed rule wins.
	r, ok := snap.Resolve("met2", date(2026, time.January, 20))
	require.True(t, ok)
	assert.Equal(t, uint(3), r.ID)

	// After the box closes, the from-bound rule wins over the open one.
	r, ok = snap.Resolve("met2", date(2026, time.February, 1))
	require.True(t, ok)
	assert.Equal(t, uint(2), r.ID)

	// Before any bound starts, only the open-ended fallback matches.
	r, ok = snap.Resolve("met2", date(2025, time.January, 1))
	require.True(t, ok)
	assert.Equal(t, uint(1), r.ID)
}

func TestResolve_BoundsAreInclusive(t *testing.T) {
	boxed := Rule{ID: 1, SkuPattern: "pro2", BasePrice: price(157.99),
		DateFrom: datePtr(2026, time.January, 13), DateTo: datePtr(2026, time.January, 29), Active: true}
	snap := NewSnapshot([]Rule{boxed})

	_, ok := snap.Resolve("pro2", date(2026, time.January, 12))
	assert.False(t, ok)

	_, ok = snap.Resolve("pro2", date(2026, time.January, 13))
	assert.True(t, ok)

	_, ok = snap.Resolve("pro2", date(2026, time.January, 29))
	assert.True(t, ok)

	_, ok = snap.Resolve("pro2", date(2026, time.January, 30))
	assert.False(t, ok)

	// Time-of-day must not push an order off the last valid date.
	_, ok = snap.Resolve("pro2", time.Date(2026, time.January, 29, 23, 45, 0, 0, time.UTC))
	assert.True(t, ok)
}

func TestResolve_RecencyWithinTier(t *testing.T) {
	older := Rule{ID: 1, SkuPattern: "met4", BasePrice: price(232.00),
		DateFrom: datePtr(2025, time.June, 1), Active: true}
	newer := Rule{ID: 2, SkuPattern: "met4", BasePrice: price(256.00),
		DateFrom: datePtr(2026, time.January, 30), Active: true}
	snap := NewSnapshot([]Rule{older, newer})

	r, ok := snap.Resolve("met4", date(2026, time.March, 1))
	require.True(t, ok)
	assert.Equal(t, uint(2), r.ID, "most recently started rule wins within the tier")
}

func TestResolve_InactiveNeverMatches(t *testing.T) {
	only := Rule{ID: 1, SkuPattern: "met3", BasePrice: price(177.00), Active: true}
	snap := NewSnapshot([]Rule{only})

	_, ok := snap.Resolve("met3", date(2026, time.February, 1))
	require.True(t, ok)

	only.Active = false
	snap = NewSnapshot([]Rule{only})
	_, ok = snap.Resolve("met3", date(2026, time.February, 1))
	assert.False(t, ok)
}

func TestResolve_UnknownSku(t *testing.T) {
	snap := NewSnapshot([]Rule{{ID: 1, SkuPattern: "met3", BasePrice: price(177.00), Active: true}})
	_, ok := snap.Resolve("pro3", date(2026, time.February, 1))
	assert.False(t, ok)
}

func TestResolveAnyDate_Fallback(t *testing.T) {
	boxed := Rule{ID: 1, SkuPattern: "met6", BasePrice: price(234.00),
		DateTo: datePtr(2026, time.January, 29), Active: true}
	snap := NewSnapshot([]Rule{boxed})

	// Primary pass: order after the window closed — no match.
	_, ok := snap.Resolve("met6", date(2026, time.March, 1))
	require.False(t, ok)

	// Explicit degraded pass ignores the window entirely.
	r, ok := snap.ResolveAnyDate("met6")
	require.True(t, ok)
	assert.Equal(t, uint(1), r.ID)

	// Inactive rules stay invisible even to the fallback.
	boxed.Active = false
	snap = NewSnapshot([]Rule{boxed})
	_, ok = snap.ResolveAnyDate("met6")
	assert.False(t, ok)
}

func TestSnapshot_ImmutableCopy(t *testing.T) {
	src := []Rule{{ID: 1, SkuPattern: "met1", BasePrice: price(88.99), Active: true}}
	snap := NewSnapshot(src)

	// Mutating the source slice after the snapshot is taken has no effect.
	src[0].Active = false
	_, ok := snap.Resolve("met1", date(2026, time.January, 2))
	assert.True(t, ok)
}

func TestRule_TotalBase(t *testing.T) {
	r := Rule{BasePrice: price(158.00), Shipping: price(19.99)}
	assert.True(t, r.TotalBase().Equal(price(177.99)))
}
