package i18n

import (
	"fmt"
	"strings"
)

// Messages is one language's set of cart strings.
type Messages struct {
	InvalidProduct       string
	ItemRemoved          string
	EmptyCheckout        string
	EmptyCartTitle       string
	EmptyCartHint        string
	Free                 string
	DeliveryLabel        string
	SubtotalLabel        string
	TotalLabel           string
	FreeShippingAchieved string
	OrderHeading         string

	quantityIncreased string
	itemAdded         string
	itemsNeededOne    string
	itemsNeededMany   string
	progress          string
	currency          map[string]string
}

var arabic = Messages{
	InvalidProduct:       "خطأ في بيانات المنتج",
	ItemRemoved:          "تم حذف المنتج من السلة",
	EmptyCheckout:        "السلة فارغة! أضف منتجات أولاً",
	EmptyCartTitle:       "سلة التسوق فارغة",
	EmptyCartHint:        "ابدأ بإضافة المنتجات التي تعجبك",
	Free:                 "مجاني",
	DeliveryLabel:        "التوصيل:",
	SubtotalLabel:        "المجموع الفرعي:",
	TotalLabel:           "الإجمالي:",
	FreeShippingAchieved: "🎉 تهانينا! شحن مجاني على طلبك",
	OrderHeading:         "طلب جديد",
	quantityIncreased:    "تم زيادة كمية \"%s\" من %d إلى %d قطع",
	itemAdded:            "تم إضافة \"%s\" للسلة بنجاح!",
	itemsNeededOne:       "أضف %d منتج أخرى للحصول على شحن مجاني!",
	itemsNeededMany:      "أضف %d منتجات أخرى للحصول على شحن مجاني!",
	progress:             "%d من %d منتجات",
	currency:             map[string]string{"SAR": "ريال", "OMR": "ر.ع"},
}

var english = Messages{
	InvalidProduct:       "Invalid product data",
	ItemRemoved:          "Product removed from cart",
	EmptyCheckout:        "Cart is empty! Add products first",
	EmptyCartTitle:       "Shopping cart is empty",
	EmptyCartHint:        "Start adding products you like",
	Free:                 "Free",
	DeliveryLabel:        "Delivery:",
	SubtotalLabel:        "Subtotal:",
	TotalLabel:           "Total:",
	FreeShippingAchieved: "🎉 Congratulations! Free shipping on your order",
	OrderHeading:         "New order",
	quantityIncreased:    "\"%s\" quantity increased from %d to %d items",
	itemAdded:            "\"%s\" added to cart successfully!",
	itemsNeededOne:       "Add %d more item for free shipping!",
	itemsNeededMany:      "Add %d more items for free shipping!",
	progress:             "%d of %d items",
}

// For returns the message set of l, falling back to Arabic.
func For(l Language) Messages {
	if l == English {
		return english
	}
	return arabic
}

// QuantityIncreased confirms a merge into an existing line.
func (m Messages) QuantityIncreased(name string, from, to int) string {
	return fmt.Sprintf(m.quantityIncreased, name, from, to)
}

// ItemAdded confirms a new line.
func (m Messages) ItemAdded(name string) string {
	return fmt.Sprintf(m.itemAdded, name)
}

// ItemsNeeded prompts for the units still missing for free shipping.
func (m Messages) ItemsNeeded(n int) string {
	if n > 1 {
		return fmt.Sprintf(m.itemsNeededMany, n)
	}
	return fmt.Sprintf(m.itemsNeededOne, n)
}

// Progress renders "count of threshold".
func (m Messages) Progress(count, threshold int) string {
	return fmt.Sprintf(m.progress, count, threshold)
}

// Currency returns the display label of an ISO currency code.
func (m Messages) Currency(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if label, ok := m.currency[code]; ok {
		return label
	}
	return code
}

// Amount appends the currency label to a formatted amount.
func (m Messages) Amount(amount, code string) string {
	label := m.Currency(code)
	if label == "" {
		return amount
	}
	return amount + " " + label
}
