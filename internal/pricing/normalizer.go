// Package pricing implements the order reconciliation core: SKU
// normalization, date-ranged price rule resolution, and the financial
// breakdown applied to every collected order amount.
//
// Everything in this package is a pure function over its inputs plus an
// immutable rule snapshot — no database access, no shared state. Callers
// load the snapshot once per request/batch and pass it in.
package pricing

import (
	"fmt"
	"regexp"
	"strings"
)

// Family maps marketing-name keywords to a canonical SKU prefix.
// The keyword lists are data, not logic — adding a product family is a
// configuration change, not a code change.
type Family struct {
	Prefix   string
	Keywords []string
}

// DefaultFamilies returns the two product families currently sold.
func DefaultFamilies() []Family {
	return []Family{
		{Prefix: "met", Keywords: []string{"metatrim", "meta", "trim", "bhb"}},
		{Prefix: "pro", Keywords: []string{"prostaprime", "prosta", "prime"}},
	}
}

var (
	bottleCountRe    = regexp.MustCompile(`(\d+)\s*bottle`)
	underscoreNumRe  = regexp.MustCompile(`_(\d+)`)
	trailingNumRe    = regexp.MustCompile(`(\d+)\s*$`)
	upsellMarkers    = []string{"upsell", "upgrade"}
)

// Normalizer maps free-text product names and vendor SKU strings onto
// canonical patterns like "met3" or "pro2u".
type Normalizer struct {
	families    []Family
	canonicalRe *regexp.Regexp
}

// NewNormalizer builds a Normalizer for the given families. With no
// arguments it uses DefaultFamilies.
func NewNormalizer(families ...Family) *Normalizer {
	if len(families) == 0 {
		families = DefaultFamilies()
	}
	prefixes := make([]string, 0, len(families))
	for _, f := range families {
		prefixes = append(prefixes, regexp.QuoteMeta(f.Prefix))
	}
	return &Normalizer{
		families:    families,
		canonicalRe: regexp.MustCompile(fmt.Sprintf(`^(%s)\d+u?$`, strings.Join(prefixes, "|"))),
	}
}

// Normalize maps a raw SKU or product name to its canonical pattern.
// Returns ("", false) when the input names no known family or carries no
// bottle count; callers must treat that as "financials unknown", not as
// an error.
//
//	"metatrim_3"                     -> "met3"
//	"MetaTrim 3 Bottles (Upgrade)"   -> "met3u"
//	"ProstaPrime 6 Bottles"          -> "pro6"
//	"met2"                           -> "met2" (already canonical)
func (n *Normalizer) Normalize(raw string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", false
	}

	// Already canonical — idempotent.
	if n.canonicalRe.MatchString(s) {
		return s, true
	}

	prefix := ""
	for _, f := range n.families {
		for _, kw := range f.Keywords {
			if strings.Contains(s, kw) {
				prefix = f.Prefix
				break
			}
		}
		if prefix != "" {
			break
		}
	}
	if prefix == "" {
		return "", false
	}

	upsell := false
	for _, m := range upsellMarkers {
		if strings.Contains(s, m) {
			upsell = true
			break
		}
	}

	// Bottle count extraction order matters: "Meta Trim 3 Bottles - Order 88123"
	// must match the explicit "3 Bottles" before the loose trailing number
	// would grab the embedded order id.
	count := ""
	if m := bottleCountRe.FindStringSubmatch(s); m != nil {
		count = m[1]
	} else if m := underscoreNumRe.FindStringSubmatch(s); m != nil {
		count = m[1]
	} else if m := trailingNumRe.FindStringSubmatch(s); m != nil {
		count = m[1]
	}
	if count == "" {
		return "", false
	}

	sku := prefix + count
	if upsell {
		sku += "u"
	}
	return sku, true
}
