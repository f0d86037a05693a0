package cart

import (
	"context"
	"errors"

	"github.com/noah-isme/bandar-cart/internal/events"
	"github.com/noah-isme/bandar-cart/internal/pricing"
)

// ChangeKind names the observable outcome of a mutation.
type ChangeKind string

const (
	ChangeNone              ChangeKind = "none"
	ChangeItemAdded         ChangeKind = "item_added"
	ChangeQuantityIncreased ChangeKind = "quantity_increased"
	ChangeQuantityUpdated   ChangeKind = "quantity_updated"
	ChangeItemRemoved       ChangeKind = "item_removed"
)

// Topic returns the event topic published for the kind.
func (k ChangeKind) Topic() string {
	switch k {
	case ChangeItemAdded:
		return events.TopicCartItemAdded
	case ChangeQuantityIncreased:
		return events.TopicCartQuantityIncreased
	case ChangeQuantityUpdated:
		return events.TopicCartQuantityUpdated
	case ChangeItemRemoved:
		return events.TopicCartItemRemoved
	default:
		return ""
	}
}

// Change describes the result of a mutation together with the state it produced.
type Change struct {
	Kind             ChangeKind      `json:"kind"`
	Session          string          `json:"session,omitempty"`
	Item             LineItem        `json:"item"`
	PreviousQuantity int             `json:"previousQuantity"`
	Quantity         int             `json:"quantity"`
	Notice           string          `json:"notice,omitempty"`
	Items            []LineItem      `json:"items"`
	Summary          pricing.Summary `json:"summary"`
}

// Changed reports whether the mutation altered the cart.
func (c Change) Changed() bool {
	return c.Kind != "" && c.Kind != ChangeNone
}

// Listener is invoked after every mutation that altered the cart. Rendering
// collaborators subscribe here instead of being driven by the store.
type Listener interface {
	OnCartChange(ctx context.Context, change Change) error
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(ctx context.Context, change Change) error

// OnCartChange calls f.
func (f ListenerFunc) OnCartChange(ctx context.Context, change Change) error {
	return f(ctx, change)
}

// EventListener publishes cart changes on the event bus.
type EventListener struct {
	Bus *events.Bus
}

// OnCartChange emits the change under the topic of its kind.
func (l EventListener) OnCartChange(ctx context.Context, change Change) error {
	if l.Bus == nil {
		return errors.New("cart: event bus not configured")
	}
	topic := change.Kind.Topic()
	if topic == "" {
		return nil
	}
	_, err := l.Bus.Emit(ctx, topic, change.Session, map[string]any{
		"itemId":           change.Item.ID,
		"name":             change.Item.Name,
		"previousQuantity": change.PreviousQuantity,
		"quantity":         change.Quantity,
		"itemCount":        change.Summary.ItemCount,
		"total":            change.Summary.Total,
	})
	return err
}
