// Package storage provides the key-value slots the cart is persisted in.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when the key holds no value.
var ErrNotFound = errors.New("storage: key not found")

// Slot is a durable key-value store scoped by the caller's key prefix.
type Slot interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}
