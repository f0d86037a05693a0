package checkout

import (
	"fmt"
	"strings"

	"github.com/noah-isme/bandar-cart/internal/cart"
	"github.com/noah-isme/bandar-cart/internal/i18n"
)

// FormatOrderMessage renders snap as a multi-line order summary in the
// snapshot's language.
func FormatOrderMessage(snap cart.Snapshot) string {
	msgs := i18n.For(snap.Language)
	lines := make([]string, 0, len(snap.Items)+5)
	lines = append(lines, msgs.OrderHeading, "")
	for _, it := range snap.Items {
		lines = append(lines, fmt.Sprintf("• %s × %d = %s", it.Name, it.Quantity, msgs.Amount(it.LineTotal().String(), snap.Currency)))
	}
	lines = append(lines, "")
	lines = append(lines, msgs.SubtotalLabel+" "+msgs.Amount(snap.Subtotal.String(), snap.Currency))
	delivery := msgs.Free
	if !snap.DeliveryFee.IsZero() {
		delivery = msgs.Amount(snap.DeliveryFee.String(), snap.Currency)
	}
	lines = append(lines, msgs.DeliveryLabel+" "+delivery)
	lines = append(lines, msgs.TotalLabel+" "+msgs.Amount(snap.Total.String(), snap.Currency))
	return strings.Join(lines, "\n")
}
