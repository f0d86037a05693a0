package pricing

import (
	"fmt"
	"math"
	"strings"
)

// FeeMode selects how the delivery fee reacts to the free-shipping threshold.
type FeeMode string

const (
	// FeeWaived drops the delivery fee once the cart reaches the threshold.
	FeeWaived FeeMode = "waived"
	// FeeFlat always charges the delivery fee.
	FeeFlat FeeMode = "flat"
)

// ParseFeeMode maps a configuration value onto a FeeMode. Empty input means FeeWaived.
func ParseFeeMode(value string) (FeeMode, error) {
	switch FeeMode(strings.ToLower(strings.TrimSpace(value))) {
	case "", FeeWaived:
		return FeeWaived, nil
	case FeeFlat:
		return FeeFlat, nil
	default:
		return "", fmt.Errorf("pricing: unknown fee mode %q", value)
	}
}

// Policy holds the pricing constants of a cart.
type Policy struct {
	DeliveryFee           Money
	FreeShippingThreshold int
	FeeMode               FeeMode
}

// Item describes a line item used for pricing calculation.
type Item struct {
	Qty       int
	UnitPrice Money
}

// Summary aggregates computed pricing components.
type Summary struct {
	ItemCount    int     `json:"itemCount"`
	Subtotal     Money   `json:"subtotal"`
	DeliveryFee  Money   `json:"deliveryFee"`
	Total        Money   `json:"total"`
	FreeShipping bool    `json:"isFreeShipping"`
	ItemsNeeded  int     `json:"itemsNeededForFreeShipping"`
	Progress     float64 `json:"freeShippingProgress"`
}

// Compute calculates cart totals given the provided inputs.
func Compute(items []Item, policy Policy) Summary {
	subtotal := Zero
	count := 0
	for _, it := range items {
		if it.Qty <= 0 {
			continue
		}
		count += it.Qty
		subtotal = subtotal.Add(it.UnitPrice.Times(it.Qty))
	}

	summary := Summary{
		ItemCount:   count,
		Subtotal:    subtotal,
		DeliveryFee: policy.DeliveryFee,
	}
	threshold := policy.FreeShippingThreshold
	if policy.FeeMode != FeeFlat && threshold > 0 {
		summary.FreeShipping = count >= threshold
		if summary.FreeShipping {
			summary.DeliveryFee = Zero
		}
		if needed := threshold - count; needed > 0 {
			summary.ItemsNeeded = needed
		}
		summary.Progress = math.Min(float64(count)/float64(threshold), 1.0)
	}
	summary.Total = subtotal.Add(summary.DeliveryFee)
	return summary
}
