package cart

import (
	"fmt"
	"strings"

	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/bandar-cart/internal/pricing"
)

// Candidate is a product descriptor submitted for AddItem. Numeric fields
// accept numbers or numeric strings; they are coerced before validation.
type Candidate struct {
	ID            any    `json:"id"`
	Name          string `json:"name"`
	Price         any    `json:"price"`
	OriginalPrice any    `json:"originalPrice,omitempty"`
	Image         string `json:"image,omitempty"`
	Quantity      any    `json:"quantity,omitempty"`
}

type normalizedCandidate struct {
	ID            string        `validate:"required"`
	Name          string        `validate:"required"`
	Price         pricing.Money `validate:"-"`
	OriginalPrice pricing.Money `validate:"-"`
	Image         string
	Quantity      int `validate:"min=1"`
}

var validate = validator.New()

func normalize(c Candidate, placeholderImage string) normalizedCandidate {
	n := normalizedCandidate{
		ID:            NormalizeID(c.ID),
		Name:          strings.TrimSpace(c.Name),
		Price:         toMoney(c.Price),
		OriginalPrice: toMoney(c.OriginalPrice),
		Image:         strings.TrimSpace(c.Image),
		Quantity:      1,
	}
	if c.Quantity != nil {
		n.Quantity = toQuantity(c.Quantity)
	}
	if n.OriginalPrice.IsZero() {
		n.OriginalPrice = n.Price
	}
	if n.Image == "" {
		n.Image = placeholderImage
	}
	return n
}

func (n normalizedCandidate) validate() error {
	if err := validate.Struct(n); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			return fmt.Errorf("%w: %s is %s", ErrInvalidProduct, strings.ToLower(errs[0].Field()), errs[0].Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidProduct, err)
	}
	if !n.Price.IsPositive() {
		return fmt.Errorf("%w: price must be positive", ErrInvalidProduct)
	}
	return nil
}

func (n normalizedCandidate) lineItem() LineItem {
	return LineItem{
		ID:            n.ID,
		Name:          n.Name,
		UnitPrice:     n.Price,
		OriginalPrice: n.OriginalPrice,
		Image:         n.Image,
		Quantity:      n.Quantity,
	}
}
