package pricing

import "github.com/shopspring/decimal"

// Platform fee schedule. Both rates are business policy (the payment
// platform's published processing fee and refund/chargeback reserve),
// so they live here as named defaults and can be overridden per
// deployment through NewCalculator.
var (
	DefaultProcessingFeeRate = decimal.NewFromFloat(0.10)
	DefaultAllowanceHoldRate = decimal.NewFromFloat(0.10)
)

// Financials is the derived money breakdown persisted back onto an order.
type Financials struct {
	BasePrice     decimal.Decimal `json:"base_price"`
	Taxes         decimal.Decimal `json:"taxes"`
	ProcessingFee decimal.Decimal `json:"processing_fee"`
	AllowanceHold decimal.Decimal `json:"allowance_hold"`
	NetAmount     decimal.Decimal `json:"net_amount"`
	IsUpsell      bool            `json:"is_upsell"`
}

// Calculator applies the fee schedule to a collected amount. Zero-value
// rates are replaced with the platform defaults.
type Calculator struct {
	ProcessingFeeRate decimal.Decimal
	AllowanceHoldRate decimal.Decimal
}

// NewCalculator returns a Calculator using the platform default rates.
func NewCalculator() Calculator {
	return Calculator{
		ProcessingFeeRate: DefaultProcessingFeeRate,
		AllowanceHoldRate: DefaultAllowanceHoldRate,
	}
}

// Calculate derives the financial breakdown for one order.
//
//	base    = rule base price + shipping
//	taxes   = collected - base, clamped at zero
//	fee     = collected × processing fee rate
//	hold    = collected × allowance hold rate
//	net     = collected - fee - hold - commission
//
// All values round half-up to cents. Taxes never go negative — a
// collected amount below base is a data-quality signal, not an error.
// Net MAY go negative (heavy refund/chargeback months) and is not
// clamped. Callers must not invoke Calculate without a resolved rule;
// unresolved orders keep null financials rather than a default price.
func (c Calculator) Calculate(totalCollected decimal.Decimal, rule Rule, commission decimal.Decimal) Financials {
	feeRate := c.ProcessingFeeRate
	if feeRate.IsZero() {
		feeRate = DefaultProcessingFeeRate
	}
	holdRate := c.AllowanceHoldRate
	if holdRate.IsZero() {
		holdRate = DefaultAllowanceHoldRate
	}

	base := rule.TotalBase()

	taxes := totalCollected.Sub(base).Round(2)
	if taxes.IsNegative() {
		taxes = decimal.Zero
	}

	fee := totalCollected.Mul(feeRate).Round(2)
	hold := totalCollected.Mul(holdRate).Round(2)
	net := totalCollected.Sub(fee).Sub(hold).Sub(commission).Round(2)

	return Financials{
		BasePrice:     base,
		Taxes:         taxes,
		ProcessingFee: fee,
		AllowanceHold: hold,
		NetAmount:     net,
		IsUpsell:      rule.IsUpsell,
	}
}
