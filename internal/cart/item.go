package cart

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"github.com/noah-isme/bandar-cart/internal/pricing"
)

// LineItem is one product and its selected quantity.
type LineItem struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	UnitPrice     pricing.Money `json:"unitPrice"`
	OriginalPrice pricing.Money `json:"originalPrice"`
	Image         string        `json:"image"`
	Quantity      int           `json:"quantity"`
}

// LineTotal returns unit price times quantity.
func (it LineItem) LineTotal() pricing.Money {
	return it.UnitPrice.Times(it.Quantity)
}

// NormalizeID maps identifiers arriving as strings or numbers onto their
// canonical trimmed string form.
func NormalizeID(v any) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(cast.ToString(v))
}

func toDecimal(v any) decimal.Decimal {
	switch val := v.(type) {
	case nil, bool:
		return decimal.Zero
	case decimal.Decimal:
		return val
	case pricing.Money:
		return val.Decimal
	case string:
		return parseDecimal(val)
	case json.Number:
		return parseDecimal(val.String())
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func toMoney(v any) pricing.Money {
	d := toDecimal(v)
	if d.IsNegative() {
		return pricing.Zero
	}
	return pricing.NewMoney(d)
}

// MaxQuantity caps the quantity of a single line.
const MaxQuantity = math.MaxInt32

var maxQuantity = decimal.NewFromInt(MaxQuantity)

func toQuantity(v any) int {
	d := toDecimal(v)
	if d.GreaterThan(maxQuantity) {
		return MaxQuantity
	}
	q := d.IntPart()
	if q < 1 {
		return 1
	}
	return int(q)
}

// addQuantity returns q+delta saturated at MaxQuantity.
func addQuantity(q, delta int) int {
	if delta > 0 && delta > MaxQuantity-q {
		return MaxQuantity
	}
	return q + delta
}

func cloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}

func indexOf(items []LineItem, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func pricingItems(items []LineItem) []pricing.Item {
	out := make([]pricing.Item, 0, len(items))
	for _, it := range items {
		out = append(out, pricing.Item{Qty: it.Quantity, UnitPrice: it.UnitPrice})
	}
	return out
}
