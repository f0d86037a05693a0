package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/bandar-cart/internal/i18n"
	"github.com/noah-isme/bandar-cart/internal/obs"
	"github.com/noah-isme/bandar-cart/internal/pricing"
	"github.com/noah-isme/bandar-cart/internal/storage"
)

// DefaultKey is the storage slot the cart is persisted under.
const DefaultKey = "bandarStoreCart"

var tracer = otel.Tracer("cart")

// Config describes how a Store is constructed.
type Config struct {
	Slot             storage.Slot
	Key              string
	Session          string
	Policy           pricing.Policy
	Currency         string
	Language         i18n.Language
	PlaceholderImage string
	Logger           *zerolog.Logger
	Now              func() time.Time
	Listeners        []Listener
}

// Store owns the line items of one session. Every mutation goes through
// AddItem, RemoveItem or UpdateQuantity and is persisted before it returns.
type Store struct {
	slot        storage.Slot
	key         string
	session     string
	policy      pricing.Policy
	currency    string
	placeholder string
	logger      zerolog.Logger
	now         func() time.Time

	mu        sync.Mutex
	items     []LineItem
	lang      i18n.Language
	listeners []Listener
}

// NewStore builds a store and hydrates it from its slot. Missing, unreadable
// or corrupt persisted data yields an empty cart rather than an error.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Slot == nil {
		return nil, errors.New("cart: storage slot not configured")
	}
	if cfg.Policy.DeliveryFee.IsNegative() {
		return nil, errors.New("cart: delivery fee must not be negative")
	}
	if cfg.Policy.FeeMode == "" {
		cfg.Policy.FeeMode = pricing.FeeWaived
	}
	if cfg.Policy.FeeMode == pricing.FeeWaived && cfg.Policy.FreeShippingThreshold < 1 {
		return nil, errors.New("cart: free shipping threshold must be positive")
	}
	key := strings.TrimSpace(cfg.Key)
	if key == "" {
		key = DefaultKey
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	s := &Store{
		slot:        cfg.Slot,
		key:         key,
		session:     cfg.Session,
		policy:      cfg.Policy,
		currency:    cfg.Currency,
		placeholder: cfg.PlaceholderImage,
		logger:      logger.With().Str("component", "cart").Str("key", key).Logger(),
		now:         cfg.Now,
		lang:        cfg.Language.Or(i18n.Arabic),
		listeners:   append([]Listener(nil), cfg.Listeners...),
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.items = s.hydrate(ctx)
	return s, nil
}

func (s *Store) hydrate(ctx context.Context) []LineItem {
	data, err := s.slot.Load(ctx, s.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			recordHydration("empty")
			return []LineItem{}
		}
		s.logger.Warn().Err(err).Msg("cart storage unreadable, starting empty")
		recordHydration("error")
		return []LineItem{}
	}
	items, discarded, err := decodeItems(data)
	if err != nil {
		s.logger.Warn().Err(err).Msg("discarding corrupt persisted cart")
		recordHydration("corrupt")
		return []LineItem{}
	}
	if discarded > 0 {
		s.logger.Warn().Int("discarded", discarded).Msg("dropped invalid persisted cart entries")
	}
	recordHydration("ok")
	return items
}

// Key returns the storage key of the store.
func (s *Store) Key() string { return s.key }

// Policy returns the pricing constants.
func (s *Store) Policy() pricing.Policy { return s.policy }

// Currency returns the configured currency code.
func (s *Store) Currency() string { return s.currency }

// Subscribe registers a listener for subsequent changes.
func (s *Store) Subscribe(l Listener) {
	if l == nil {
		return
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

// SetLanguage switches the language of notices and views.
func (s *Store) SetLanguage(lang i18n.Language) {
	if !lang.Valid() {
		return
	}
	s.mu.Lock()
	s.lang = lang
	s.mu.Unlock()
}

// Language returns the active display language.
func (s *Store) Language() i18n.Language {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lang
}

// AddItem merges the candidate into the cart. An existing id has its quantity
// increased and keeps its original prices; otherwise the item is appended.
func (s *Store) AddItem(ctx context.Context, candidate Candidate) (Change, error) {
	n := normalize(candidate, s.placeholder)
	return s.apply(ctx, "add", n.ID, func(items []LineItem, msgs i18n.Messages) ([]LineItem, Change, error) {
		if err := n.validate(); err != nil {
			return nil, Change{}, err
		}
		if idx := indexOf(items, n.ID); idx >= 0 {
			prev := items[idx].Quantity
			items[idx].Quantity = addQuantity(prev, n.Quantity)
			item := items[idx]
			return items, Change{
				Kind:             ChangeQuantityIncreased,
				Item:             item,
				PreviousQuantity: prev,
				Quantity:         item.Quantity,
				Notice:           msgs.QuantityIncreased(n.Name, prev, item.Quantity),
			}, nil
		}
		item := n.lineItem()
		return append(items, item), Change{
			Kind:     ChangeItemAdded,
			Item:     item,
			Quantity: item.Quantity,
			Notice:   msgs.ItemAdded(item.Name),
		}, nil
	})
}

// RemoveItem deletes the line with the given id. Absent ids are a no-op.
func (s *Store) RemoveItem(ctx context.Context, id any) (Change, error) {
	key := NormalizeID(id)
	return s.apply(ctx, "remove", key, func(items []LineItem, msgs i18n.Messages) ([]LineItem, Change, error) {
		idx := indexOf(items, key)
		if idx < 0 {
			return items, Change{Kind: ChangeNone}, nil
		}
		removed := items[idx]
		return append(items[:idx], items[idx+1:]...), Change{
			Kind:             ChangeItemRemoved,
			Item:             removed,
			PreviousQuantity: removed.Quantity,
			Notice:           msgs.ItemRemoved,
		}, nil
	})
}

// UpdateQuantity adds delta to the quantity of the line with the given id,
// removing it when the result drops to zero or below. The result saturates at
// MaxQuantity. Absent ids are a no-op.
func (s *Store) UpdateQuantity(ctx context.Context, id any, delta int) (Change, error) {
	key := NormalizeID(id)
	return s.apply(ctx, "update", key, func(items []LineItem, msgs i18n.Messages) ([]LineItem, Change, error) {
		idx := indexOf(items, key)
		if idx < 0 || delta == 0 {
			return items, Change{Kind: ChangeNone}, nil
		}
		item := items[idx]
		prev := item.Quantity
		next := addQuantity(prev, delta)
		if next == prev {
			return items, Change{Kind: ChangeNone}, nil
		}
		if next <= 0 {
			return append(items[:idx], items[idx+1:]...), Change{
				Kind:             ChangeItemRemoved,
				Item:             item,
				PreviousQuantity: prev,
				Notice:           msgs.ItemRemoved,
			}, nil
		}
		items[idx].Quantity = next
		return items, Change{
			Kind:             ChangeQuantityUpdated,
			Item:             items[idx],
			PreviousQuantity: prev,
			Quantity:         next,
		}, nil
	})
}

type mutation func(items []LineItem, msgs i18n.Messages) ([]LineItem, Change, error)

// apply runs fn against a copy of the items. The copy replaces the live
// items only after it has been written to storage.
func (s *Store) apply(ctx context.Context, op, id string, fn mutation) (Change, error) {
	ctx, span := tracer.Start(ctx, "cart."+op)
	defer span.End()
	span.SetAttributes(attribute.String("cart.item_id", id))

	s.mu.Lock()
	next, change, err := fn(cloneItems(s.items), i18n.For(s.lang))
	if err == nil && change.Changed() {
		err = s.persistLocked(ctx, next)
	}
	if err == nil {
		change.Session = s.session
		change.Items = cloneItems(s.items)
		change.Summary = s.summaryLocked()
	}
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	switch {
	case errors.Is(err, ErrInvalidProduct):
		recordMutation(op, "invalid")
		span.SetStatus(codes.Error, "invalid product")
		s.logger.Debug().Err(err).Str("op", op).Msg("cart mutation rejected")
		return Change{}, err
	case err != nil:
		recordMutation(op, "error")
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist")
		s.logger.Error().Err(err).Str("op", op).Msg("cart mutation failed")
		return Change{}, err
	case !change.Changed():
		recordMutation(op, "noop")
		return change, nil
	}

	recordMutation(op, "applied")
	span.SetAttributes(attribute.String("cart.change", string(change.Kind)), attribute.Int("cart.item_count", change.Summary.ItemCount))
	s.logger.Debug().
		Str("op", op).
		Str("kind", string(change.Kind)).
		Str("item_id", change.Item.ID).
		Int("quantity", change.Quantity).
		Int("item_count", change.Summary.ItemCount).
		Msg("cart mutation applied")
	for _, l := range listeners {
		if lerr := l.OnCartChange(ctx, change); lerr != nil {
			s.logger.Error().Err(lerr).Str("kind", string(change.Kind)).Msg("cart listener failed")
		}
	}
	return change, nil
}

func (s *Store) persistLocked(ctx context.Context, next []LineItem) error {
	data, err := encodeItems(next)
	if err != nil {
		return fmt.Errorf("cart: encode items: %w", err)
	}
	if err := s.slot.Save(ctx, s.key, data); err != nil {
		return fmt.Errorf("cart: persist items: %w", err)
	}
	s.items = next
	return nil
}

// Items returns a copy of the line items in display order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.items)
}

// StoreState is the items, totals and view of a cart read under one lock.
type StoreState struct {
	Items   []LineItem
	Summary pricing.Summary
	View    View
}

// State returns items, summary and view taken together, so the three always
// describe the same cart.
func (s *Store) State() StoreState {
	s.mu.Lock()
	defer s.mu.Unlock()
	summary := s.summaryLocked()
	return StoreState{
		Items:   cloneItems(s.items),
		Summary: summary,
		View:    BuildView(s.items, summary, s.policy, s.currency, s.lang),
	}
}

// Summary computes every derived total in one pass.
func (s *Store) Summary() pricing.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summaryLocked()
}

func (s *Store) summaryLocked() pricing.Summary {
	return pricing.Compute(pricingItems(s.items), s.policy)
}

// TotalItemCount sums the quantities of all lines.
func (s *Store) TotalItemCount() int { return s.Summary().ItemCount }

// IsFreeShippingEligible reports whether the delivery fee is waived.
func (s *Store) IsFreeShippingEligible() bool { return s.Summary().FreeShipping }

// CurrentDeliveryFee is zero when eligible for free shipping, otherwise the configured fee.
func (s *Store) CurrentDeliveryFee() pricing.Money { return s.Summary().DeliveryFee }

// ItemsNeededForFreeShipping is the number of units still missing to reach the threshold.
func (s *Store) ItemsNeededForFreeShipping() int { return s.Summary().ItemsNeeded }

// Subtotal sums unit price times quantity.
func (s *Store) Subtotal() pricing.Money { return s.Summary().Subtotal }

// Total is subtotal plus the current delivery fee.
func (s *Store) Total() pricing.Money { return s.Summary().Total }

// FreeShippingProgress is the item count over the threshold, clamped to 1.
func (s *Store) FreeShippingProgress() float64 { return s.Summary().Progress }

func recordMutation(op, result string) {
	if obs.CartMutationsTotal != nil {
		obs.CartMutationsTotal.WithLabelValues(op, result).Inc()
	}
}

func recordHydration(result string) {
	if obs.CartHydrationsTotal != nil {
		obs.CartHydrationsTotal.WithLabelValues(result).Inc()
	}
}
