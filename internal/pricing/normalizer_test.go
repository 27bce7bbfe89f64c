package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_KnownFormats(t *testing.T) {
	n := NewNormalizer()

	cases := []struct {
		in   string
		want string
	}{
		{"metatrim_3", "met3"},
		{"metatrim_2", "met2"},
		{"metatrimupsell_1", "met1u"},
		{"MetaTrim 3 Bottles (Upgrade)", "met3u"},
		{"Meta Trim BHB 2 Bottle", "met2"},
		{"ProstaPrime 6 Bottles", "pro6"},
		{"Prosta Prime Support 1 Bottle", "pro1"},
		{"prostaprimeupsell_3", "pro3u"},
		{"  METATRIM_6  ", "met6"},
		{"bhb 7", "met7"},
	}
	for _, tc := range cases {
		got, ok := n.Normalize(tc.in)
		assert.True(t, ok, "input %q should normalize", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestNormalize_CanonicalIdempotent(t *testing.T) {
	n := NewNormalizer()
	for _, sku := range []string{"met1", "met3u", "pro2", "pro7", "pro1u"} {
		got, ok := n.Normalize(sku)
		assert.True(t, ok)
		assert.Equal(t, sku, got)

		// normalize(normalize(x)) == normalize(x)
		again, ok := n.Normalize(got)
		assert.True(t, ok)
		assert.Equal(t, got, again)
	}
}

func TestNormalize_Unrecognized(t *testing.T) {
	n := NewNormalizer()
	for _, in := range []string{
		"",
		"   ",
		"random text",
		"3 Bottles",           // bottle count but no family keyword
		"totally unrelated 5", // trailing number but no family
		"metatrim",            // family but no bottle count
		"Shipping Insurance",
	} {
		got, ok := n.Normalize(in)
		assert.False(t, ok, "input %q must not normalize", in)
		assert.Empty(t, got)
	}
}

func TestNormalize_ExplicitBottleCountBeatsEmbeddedNumber(t *testing.T) {
	n := NewNormalizer()

	// The order id at the end must not be mistaken for a bottle count:
	// "N bottle(s)" is tried before the trailing-number fallback.
	got, ok := n.Normalize("Meta Trim BHB 3 Bottles - Order 88123")
	assert.True(t, ok)
	assert.Equal(t, "met3", got)

	// Underscore format beats the trailing number too.
	got, ok = n.Normalize("prostaprime_2 ref 41")
	assert.True(t, ok)
	assert.Equal(t, "pro2", got)
}

func TestNormalize_UpsellMarkers(t *testing.T) {
	n := NewNormalizer()

	got, ok := n.Normalize("MetaTrim 1 Bottle Upsell")
	assert.True(t, ok)
	assert.Equal(t, "met1u", got)

	got, ok = n.Normalize("Prosta Prime 3 Bottles (UPGRADE)")
	assert.True(t, ok)
	assert.Equal(t, "pro3u", got)
}

func TestNormalize_CustomFamilyTable(t *testing.T) {
	n := NewNormalizer(Family{Prefix: "zen", Keywords: []string{"zenith", "zen"}})

	got, ok := n.Normalize("Zenith Gold 4 Bottles")
	assert.True(t, ok)
	assert.Equal(t, "zen4", got)

	// Default families are not known to a custom normalizer.
	_, ok = n.Normalize("metatrim_3")
	assert.False(t, ok)

	// Canonical form for the custom family round-trips.
	got, ok = n.Normalize("zen4")
	assert.True(t, ok)
	assert.Equal(t, "zen4", got)
}
