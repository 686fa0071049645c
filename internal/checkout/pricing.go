// Package checkout derives order totals from a cart snapshot and gates
// order submission on shipping-form completeness.
package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/nairamart/storefront/internal/cart"
	"github.com/nairamart/storefront/pkg/config"
)

// Rates carries the flat-rate pricing figures applied at checkout.
type Rates struct {
	FlatShippingFee       decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	TaxRate               decimal.Decimal
}

// RatesFromConfig lifts the configured pricing section into checkout rates.
func RatesFromConfig(cfg config.PricingConfig) Rates {
	return Rates{
		FlatShippingFee:       cfg.FlatShippingFee,
		FreeShippingThreshold: cfg.FreeShippingThreshold,
		TaxRate:               cfg.TaxRate,
	}
}

// Totals is a pure derivation of a cart snapshot: Total is exactly
// Subtotal + Shipping + Tax, with tax rounded to the smallest currency unit.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// ComputeTotals derives the order figures from the snapshot. Shipping is
// waived once the subtotal reaches the free-shipping threshold; below it the
// flat fee applies.
func ComputeTotals(snapshot cart.Snapshot, rates Rates) Totals {
	subtotal := snapshot.Subtotal()

	shipping := rates.FlatShippingFee
	if subtotal.GreaterThanOrEqual(rates.FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	tax := subtotal.Mul(rates.TaxRate).Round(2)

	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax),
	}
}
