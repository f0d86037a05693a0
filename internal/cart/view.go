package cart

import (
	"math"

	"github.com/noah-isme/bandar-cart/internal/i18n"
	"github.com/noah-isme/bandar-cart/internal/pricing"
)

// View is the presentation-ready state consumed by the dropdown and modal
// renderers. It carries formatted strings only; markup is the renderer's job.
type View struct {
	Language      i18n.Language `json:"language"`
	Badge         int           `json:"badge"`
	Empty         bool          `json:"empty"`
	EmptyTitle    string        `json:"emptyTitle,omitempty"`
	EmptyHint     string        `json:"emptyHint,omitempty"`
	Rows          []ViewRow     `json:"rows"`
	SubtotalLabel string        `json:"subtotalLabel"`
	Subtotal      string        `json:"subtotal"`
	DeliveryLabel string        `json:"deliveryLabel"`
	Delivery      string        `json:"delivery"`
	TotalLabel    string        `json:"totalLabel"`
	Total         string        `json:"total"`
	Promotion     *Promotion    `json:"promotion,omitempty"`
}

// ViewRow is one rendered line.
type ViewRow struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Image         string `json:"image"`
	Quantity      int    `json:"quantity"`
	UnitPrice     string `json:"unitPrice"`
	OriginalPrice string `json:"originalPrice,omitempty"`
	LineTotal     string `json:"lineTotal"`
}

// Promotion is the free-shipping banner shown above the items.
type Promotion struct {
	FreeShipping  bool   `json:"freeShipping"`
	Message       string `json:"message"`
	Percent       int    `json:"percent"`
	ProgressLabel string `json:"progressLabel,omitempty"`
}

// BuildView renders items and their summary into display strings.
func BuildView(items []LineItem, summary pricing.Summary, policy pricing.Policy, currency string, lang i18n.Language) View {
	msgs := i18n.For(lang)
	v := View{
		Language:      lang.Or(i18n.Arabic),
		Badge:         summary.ItemCount,
		Rows:          make([]ViewRow, 0, len(items)),
		SubtotalLabel: msgs.SubtotalLabel,
		Subtotal:      msgs.Amount(summary.Subtotal.String(), currency),
		DeliveryLabel: msgs.DeliveryLabel,
		Delivery:      msgs.Amount(summary.DeliveryFee.String(), currency),
		TotalLabel:    msgs.TotalLabel,
		Total:         msgs.Amount(summary.Total.String(), currency),
	}
	if summary.FreeShipping {
		v.Delivery = msgs.Free
	}
	if len(items) == 0 {
		v.Empty = true
		v.EmptyTitle = msgs.EmptyCartTitle
		v.EmptyHint = msgs.EmptyCartHint
		return v
	}
	for _, it := range items {
		row := ViewRow{
			ID:        it.ID,
			Name:      it.Name,
			Image:     it.Image,
			Quantity:  it.Quantity,
			UnitPrice: msgs.Amount(it.UnitPrice.String(), currency),
			LineTotal: msgs.Amount(it.LineTotal().String(), currency),
		}
		if it.OriginalPrice.GreaterThan(it.UnitPrice.Decimal) {
			row.OriginalPrice = msgs.Amount(it.OriginalPrice.String(), currency)
		}
		v.Rows = append(v.Rows, row)
	}
	if policy.FeeMode == pricing.FeeFlat || summary.ItemCount == 0 {
		return v
	}
	if summary.FreeShipping {
		v.Promotion = &Promotion{FreeShipping: true, Message: msgs.FreeShippingAchieved, Percent: 100}
		return v
	}
	v.Promotion = &Promotion{
		Message:       msgs.ItemsNeeded(summary.ItemsNeeded),
		Percent:       int(math.Round(summary.Progress * 100)),
		ProgressLabel: msgs.Progress(summary.ItemCount, policy.FreeShippingThreshold),
	}
	return v
}

// View renders the current state in the active language.
func (s *Store) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return BuildView(s.items, s.summaryLocked(), s.policy, s.currency, s.lang)
}
