// Package pricing derives sale prices from purchase costs.
package pricing

import (
	"kasir-system/config"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type Markup struct {
	Enabled bool
	Percent decimal.Decimal
	Step    decimal.Decimal
}

func NewMarkup(cfg config.PricingConfig) Markup {
	return Markup{
		Enabled: cfg.AutoMarkup,
		Percent: cfg.MarkupPercent,
		Step:    cfg.RoundingStep,
	}
}

// SalePrice returns cost*(1+percent/100) rounded up to the next multiple of
// Step. A non-positive step disables rounding.
func (m Markup) SalePrice(cost decimal.Decimal) decimal.Decimal {
	raw := cost.Mul(decimal.NewFromInt(1).Add(m.Percent.Div(hundred)))
	if !m.Step.IsPositive() {
		return raw.Round(2)
	}
	return raw.Div(m.Step).Ceil().Mul(m.Step)
}

// Apply returns the new sale price for a restock at cost, or current when
// auto markup is off.
func (m Markup) Apply(current, cost decimal.Decimal) decimal.Decimal {
	if !m.Enabled {
		return current
	}
	return m.SalePrice(cost)
}
