package cart

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bandar-cart/internal/events"
)

func TestChangeTopicsAreRegistered(t *testing.T) {
	kinds := []ChangeKind{ChangeItemAdded, ChangeQuantityIncreased, ChangeQuantityUpdated, ChangeItemRemoved}
	for _, k := range kinds {
		require.Contains(t, events.DefaultTopics(), k.Topic(), "kind %s", k)
	}
	require.Empty(t, ChangeNone.Topic())
}
