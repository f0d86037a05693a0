package cart

import (
	"context"
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/noah-isme/bandar-cart/internal/i18n"
	"github.com/noah-isme/bandar-cart/internal/pricing"
	"github.com/noah-isme/bandar-cart/internal/storage"
)

func propertyStore(slot storage.Slot) (*Store, error) {
	return NewStore(context.Background(), Config{
		Slot:     slot,
		Policy:   testPolicy(),
		Currency: "SAR",
		Language: i18n.Arabic,
	})
}

// ops encode one mutation per int: id in the low digit, quantity or delta above it.
func applyOps(ctx context.Context, s *Store, ops []int) error {
	for _, op := range ops {
		id := strconv.Itoa(op % 5)
		n := op / 5 % 4
		var err error
		switch op % 3 {
		case 0:
			_, err = s.AddItem(ctx, Candidate{ID: id, Name: "item " + id, Price: op%7 + 1, Quantity: n + 1})
		case 1:
			_, err = s.UpdateQuantity(ctx, id, n-2)
		default:
			_, err = s.RemoveItem(ctx, id)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func TestCartInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("ids unique, quantities positive, totals consistent", prop.ForAll(
		func(ops []int) bool {
			ctx := context.Background()
			s, err := propertyStore(storage.NewMemorySlot(0))
			if err != nil || applyOps(ctx, s, ops) != nil {
				return false
			}
			seen := map[string]bool{}
			count := 0
			subtotal := pricing.Zero
			for _, it := range s.Items() {
				if seen[it.ID] || it.Quantity < 1 || !it.UnitPrice.IsPositive() {
					return false
				}
				seen[it.ID] = true
				count += it.Quantity
				subtotal = subtotal.Add(it.LineTotal())
			}
			sum := s.Summary()
			if sum.ItemCount != count || !sum.Subtotal.Equal(subtotal) {
				return false
			}
			policy := s.Policy()
			eligible := count >= policy.FreeShippingThreshold
			if sum.FreeShipping != eligible {
				return false
			}
			if eligible != sum.DeliveryFee.IsZero() {
				return false
			}
			if !sum.Total.Equal(sum.Subtotal.Add(sum.DeliveryFee)) {
				return false
			}
			return sum.Progress >= 0 && sum.Progress <= 1
		},
		gen.SliceOf(gen.IntRange(0, 200)),
	))

	properties.Property("hydrating a fresh store reproduces the items", prop.ForAll(
		func(ops []int) bool {
			ctx := context.Background()
			slot := storage.NewMemorySlot(0)
			s, err := propertyStore(slot)
			if err != nil || applyOps(ctx, s, ops) != nil {
				return false
			}
			fresh, err := propertyStore(slot)
			if err != nil {
				return false
			}
			want, got := s.Items(), fresh.Items()
			if len(want) != len(got) {
				return false
			}
			for i := range want {
				if want[i].ID != got[i].ID || want[i].Quantity != got[i].Quantity || !want[i].UnitPrice.Equal(got[i].UnitPrice) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 200)),
	))

	properties.Property("adding then removing a new id restores the persisted bytes", prop.ForAll(
		func(ops []int, qty int) bool {
			ctx := context.Background()
			slot := storage.NewMemorySlot(0)
			s, err := propertyStore(slot)
			if err != nil || applyOps(ctx, s, ops) != nil {
				return false
			}
			// seed a write so the slot holds a value even for an empty op list
			if _, err := s.AddItem(ctx, Candidate{ID: "seed", Name: "seed", Price: 1}); err != nil {
				return false
			}
			before, err := slot.Load(ctx, DefaultKey)
			if err != nil {
				return false
			}
			if _, err := s.AddItem(ctx, Candidate{ID: "fresh", Name: "fresh", Price: 2, Quantity: qty}); err != nil {
				return false
			}
			if _, err := s.RemoveItem(ctx, "fresh"); err != nil {
				return false
			}
			after, err := slot.Load(ctx, DefaultKey)
			return err == nil && string(before) == string(after)
		},
		gen.SliceOf(gen.IntRange(0, 200)),
		gen.IntRange(1, 9),
	))

	properties.TestingRun(t)
}
