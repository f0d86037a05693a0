package cart

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/bandar-cart/internal/i18n"
	"github.com/noah-isme/bandar-cart/internal/pricing"
)

// Snapshot is the summary of a cart handed to a checkout channel.
type Snapshot struct {
	ID           string        `json:"id"`
	Session      string        `json:"session,omitempty"`
	Items        []LineItem    `json:"cart"`
	ItemCount    int           `json:"itemCount"`
	Subtotal     pricing.Money `json:"subtotal"`
	DeliveryFee  pricing.Money `json:"deliveryFee"`
	Total        pricing.Money `json:"total"`
	FreeShipping bool          `json:"isFreeShipping"`
	Currency     string        `json:"currency"`
	Language     i18n.Language `json:"language"`
	CreatedAt    time.Time     `json:"timestamp"`
}

// BuildCheckoutSnapshot captures the current items and totals. It fails with
// ErrEmptyCart when there is nothing to check out.
func (s *Store) BuildCheckoutSnapshot(ctx context.Context) (Snapshot, error) {
	_, span := tracer.Start(ctx, "cart.snapshot")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return Snapshot{}, ErrEmptyCart
	}
	summary := s.summaryLocked()
	return Snapshot{
		ID:           uuid.NewString(),
		Session:      s.session,
		Items:        cloneItems(s.items),
		ItemCount:    summary.ItemCount,
		Subtotal:     summary.Subtotal,
		DeliveryFee:  summary.DeliveryFee,
		Total:        summary.Total,
		FreeShipping: summary.FreeShipping,
		Currency:     s.currency,
		Language:     s.lang,
		CreatedAt:    s.now().UTC(),
	}, nil
}
