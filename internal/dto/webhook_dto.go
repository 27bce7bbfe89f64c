package dto

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// WebhookPayload is the raw JSON body of a network webhook. BuyGoods
// has shipped both camelCase and snake_case field names over time, so
// handlers read fields through the accessor helpers below, trying each
// alias in order.
type WebhookPayload map[string]any

// Str returns the first non-empty string value among keys.
func (p WebhookPayload) Str(keys ...string) string {
	for _, k := range keys {
		switch v := p[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// StrPtr is Str returning nil instead of the empty string, for
// nullable columns.
func (p WebhookPayload) StrPtr(keys ...string) *string {
	if s := p.Str(keys...); s != "" {
		return &s
	}
	return nil
}

// Amount returns the first parseable monetary value among keys, or
// zero. Numeric and string representations are both accepted.
func (p WebhookPayload) Amount(keys ...string) decimal.Decimal {
	for _, k := range keys {
		switch v := p[k].(type) {
		case float64:
			return decimal.NewFromFloat(v)
		case string:
			if d, err := decimal.NewFromString(strings.TrimSpace(v)); err == nil {
				return d
			}
		}
	}
	return decimal.Zero
}

// Int returns the first integral value among keys, or def.
func (p WebhookPayload) Int(keys []string, def int) int {
	for _, k := range keys {
		switch v := p[k].(type) {
		case float64:
			return int(v)
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				return n
			}
		}
	}
	return def
}

// WebhookAck is returned to the network on every accepted delivery.
type WebhookAck struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Ref     string `json:"ref,omitempty"`
}
