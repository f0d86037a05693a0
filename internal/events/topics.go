package events

// Topic constants for domain events emitted by the cart.
const (
	TopicCartItemAdded         = "cart.item_added"
	TopicCartQuantityIncreased = "cart.quantity_increased"
	TopicCartQuantityUpdated   = "cart.quantity_updated"
	TopicCartItemRemoved       = "cart.item_removed"
	TopicCheckoutHandoff       = "checkout.handoff"
)

// DefaultTopics returns every topic the service emits.
func DefaultTopics() []string {
	return []string{
		TopicCartItemAdded,
		TopicCartQuantityIncreased,
		TopicCartQuantityUpdated,
		TopicCartItemRemoved,
		TopicCheckoutHandoff,
	}
}
