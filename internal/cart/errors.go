package cart

import "errors"

// ErrInvalidProduct rejects add-item input with a missing id or name or a non-positive price.
var ErrInvalidProduct = errors.New("invalid product data")

// ErrEmptyCart is returned when a checkout snapshot is requested for an empty cart.
var ErrEmptyCart = errors.New("cart is empty")

// ErrCorruptState classifies persisted data that could not be decoded. Hydration
// absorbs it and starts from an empty cart.
var ErrCorruptState = errors.New("persisted cart is corrupt")
